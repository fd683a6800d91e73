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
	"sort"
	"strconv"
	"sync"

	"github.com/periscope-io/periscope/pkg/resource"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/apimachinery/pkg/watch"
)

// Event is a single change observed for one object, either from a remote
// watch stream or synthesized locally (initial list, resync).
type Event struct {
	Type   watch.EventType
	Object *unstructured.Unstructured
}

// Store holds the latest known representation of each object of one resource
// type, keyed by "namespace/name", with a secondary index by namespace. It is
// internally synchronized for a single writer (the informer that feeds it) and
// any number of concurrent readers.
type Store struct {
	mutex       sync.RWMutex
	byKey       map[string]*unstructured.Unstructured
	byNamespace map[string]sets.Set[string]
}

func NewStore() *Store {
	return &Store{
		byKey:       map[string]*unstructured.Unstructured{},
		byNamespace: map[string]sets.Set[string]{},
	}
}

// Apply applies event to the store and returns true if the store changed.
// An Added or Modified event whose resource version is not newer than the
// stored one is a no-op, making Apply idempotent under duplicate or
// out-of-order delivery. A Deleted event removes the object if present.
func (s *Store) Apply(event Event) bool {
	key := resource.KeyFor(event.Object)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	//nolint:exhaustive // Bookmark and Error events don't mutate the store.
	switch event.Type {
	case watch.Added, watch.Modified:
		existing, found := s.byKey[key]
		if found && !isNewer(existing.GetResourceVersion(), event.Object.GetResourceVersion()) {
			return false
		}

		s.byKey[key] = event.Object.DeepCopy()

		ns := event.Object.GetNamespace()
		if s.byNamespace[ns] == nil {
			s.byNamespace[ns] = sets.New[string]()
		}

		s.byNamespace[ns].Insert(key)

		return true
	case watch.Deleted:
		existing, found := s.byKey[key]
		if !found {
			return false
		}

		delete(s.byKey, key)
		s.byNamespace[existing.GetNamespace()].Delete(key)

		return true
	}

	return false
}

// Get returns a copy of the latest known object with the given namespace and
// name. Use an empty namespace for cluster-scoped objects.
func (s *Store) Get(namespace, name string) (*unstructured.Unstructured, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	obj, found := s.byKey[resource.Key(namespace, name)]
	if !found {
		return nil, false
	}

	return obj.DeepCopy(), true
}

// List returns copies of all objects in the given namespace, or in all
// namespaces when ns is empty, ordered by namespace then name.
func (s *Store) List(namespace string) []*unstructured.Unstructured {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var keys []string
	if namespace == "" {
		keys = make([]string, 0, len(s.byKey))
		for key := range s.byKey {
			keys = append(keys, key)
		}
	} else {
		keys = s.byNamespace[namespace].UnsortedList()
	}

	sort.Strings(keys)

	objects := make([]*unstructured.Unstructured, len(keys))
	for i, key := range keys {
		objects[i] = s.byKey[key].DeepCopy()
	}

	return objects
}

func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.byKey)
}

// isNewer determines if the incoming resource version supersedes the stored
// one. Versions are compared numerically when both parse; otherwise the token
// is treated as opaque and any differing value is accepted.
func isNewer(stored, incoming string) bool {
	storedV, err1 := strconv.ParseUint(stored, 10, 64)
	incomingV, err2 := strconv.ParseUint(incoming, 10, 64)

	if err1 != nil || err2 != nil {
		return stored != incoming
	}

	return incomingV > storedV
}
