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

package resource

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/scheme"
)

// MustToMeta returns the ObjectMeta accessor for obj, panicking if obj isn't
// a metadata-carrying API object. Callers pass objects that originated from a
// Source so a failure here is a programming error.
func MustToMeta(obj interface{}) metav1.Object {
	objMeta, err := meta.Accessor(obj)
	if err != nil {
		panic(fmt.Sprintf("error retrieving ObjectMeta from %#v: %v", obj, err))
	}

	return objMeta
}

// Key returns the cache/queue key identifying an object: "namespace/name" for
// namespaced objects and just "name" for cluster-scoped ones.
func Key(namespace, name string) string {
	if namespace == "" {
		return name
	}

	return namespace + "/" + name
}

// KeyFor returns the key identifying obj.
func KeyFor(obj interface{}) string {
	objMeta := MustToMeta(obj)
	return Key(objMeta.GetNamespace(), objMeta.GetName())
}

// SplitKey is the inverse of Key.
func SplitKey(key string) (namespace, name string, err error) {
	parts := strings.Split(key, "/")
	switch len(parts) {
	case 1:
		return "", parts[0], nil
	case 2:
		return parts[0], parts[1], nil
	}

	return "", "", errors.Errorf("unexpected key format %q", key)
}

// ToUnstructured converts a typed API object to Unstructured via the global
// k8s scheme.
func ToUnstructured(from runtime.Object) (*unstructured.Unstructured, error) {
	if u, ok := from.(*unstructured.Unstructured); ok {
		return u, nil
	}

	to := &unstructured.Unstructured{}

	err := scheme.Scheme.Convert(from, to, nil)
	if err != nil {
		return nil, errors.WithMessagef(err, "error converting %#v to unstructured.Unstructured", from)
	}

	return to, nil
}

// MustToUnstructured is a convenience wrapper for test fixtures and synthetic
// objects whose conversion cannot fail.
func MustToUnstructured(from runtime.Object) *unstructured.Unstructured {
	to, err := ToUnstructured(from)
	if err != nil {
		panic(err)
	}

	return to
}
