/*
SPDX-License-Identifier: Apache-2.0

Copyright Contributors to the Periscope project.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cache

import (
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Lister is the read-only query surface over a Store. It never contacts the
// remote source and reflects only what the owning informer has applied so
// far, which may lag the true remote state.
type Lister struct {
	store         *Store
	groupResource schema.GroupResource
}

// NamespaceLister is a Lister scoped to one namespace.
type NamespaceLister struct {
	lister    *Lister
	namespace string
}

func NewLister(store *Store, groupResource schema.GroupResource) *Lister {
	return &Lister{store: store, groupResource: groupResource}
}

// Get returns the cluster-scoped object with the given name, or a NotFound
// error if the informer hasn't observed it. NotFound is a normal condition
// when an object was deleted between enqueue and processing.
func (l *Lister) Get(name string) (*unstructured.Unstructured, error) {
	return l.get("", name)
}

// List returns all cached objects across namespaces, ordered by namespace
// then name.
func (l *Lister) List() []*unstructured.Unstructured {
	return l.store.List("")
}

// Namespace returns a Lister view restricted to the given namespace.
func (l *Lister) Namespace(namespace string) *NamespaceLister {
	return &NamespaceLister{lister: l, namespace: namespace}
}

func (l *Lister) get(namespace, name string) (*unstructured.Unstructured, error) {
	obj, found := l.store.Get(namespace, name)
	if !found {
		return nil, apierrors.NewNotFound(l.groupResource, name)
	}

	return obj, nil
}

func (n *NamespaceLister) Get(name string) (*unstructured.Unstructured, error) {
	return n.lister.get(n.namespace, name)
}

// List returns the cached objects in this namespace, ordered by name.
func (n *NamespaceLister) List() []*unstructured.Unstructured {
	return n.lister.store.List(n.namespace)
}
