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

// Package fake provides an in-memory remote source for testing the list+watch
// machinery without a real API server.
package fake

import (
	"context"
	"strconv"
	"sync"

	"github.com/periscope-io/periscope/pkg/resource"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/watch"
)

// Source is a resource.Source whose contents are mutated directly by tests.
// Mutations bump a monotonic resource version counter, are reflected in
// subsequent lists and are delivered as events on the active watch.
type Source struct {
	mutex           sync.Mutex
	items           map[string]*unstructured.Unstructured
	resourceVersion uint64
	watcher         *watch.RaceFreeFakeWatcher
	listError       error
	watchError      error
}

func NewSource() *Source {
	return &Source{items: map[string]*unstructured.Unstructured{}}
}

func (s *Source) List(_ context.Context, _ metav1.ListOptions) (*unstructured.UnstructuredList, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.listError != nil {
		err := s.listError
		s.listError = nil

		return nil, err
	}

	list := &unstructured.UnstructuredList{}
	list.SetResourceVersion(strconv.FormatUint(s.resourceVersion, 10))

	for _, obj := range s.items {
		list.Items = append(list.Items, *obj.DeepCopy())
	}

	return list, nil
}

func (s *Source) Watch(_ context.Context, _ metav1.ListOptions) (watch.Interface, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.watchError != nil {
		err := s.watchError
		s.watchError = nil

		return nil, err
	}

	s.watcher = watch.NewRaceFreeFake()

	return s.watcher, nil
}

// Create adds obj to the remote contents at the next resource version and
// delivers an Added event to the active watch.
func (s *Source) Create(obj *unstructured.Unstructured) *unstructured.Unstructured {
	return s.store(obj, watch.Added)
}

// Update replaces obj in the remote contents at the next resource version and
// delivers a Modified event to the active watch.
func (s *Source) Update(obj *unstructured.Unstructured) *unstructured.Unstructured {
	return s.store(obj, watch.Modified)
}

// Delete removes the named object and delivers a Deleted event to the active
// watch.
func (s *Source) Delete(namespace, name string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	key := resource.Key(namespace, name)

	obj, found := s.items[key]
	if !found {
		return
	}

	delete(s.items, key)
	s.nextResourceVersion()

	if s.watcher != nil {
		s.watcher.Delete(obj.DeepCopy())
	}
}

// FailOnNextList makes the next List call return err.
func (s *Source) FailOnNextList(err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.listError = err
}

// FailOnNextWatch makes the next Watch call return err.
func (s *Source) FailOnNextWatch(err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.watchError = err
}

// CloseWatch simulates a watch disconnect by closing the active watch's
// result channel.
func (s *Source) CloseWatch() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.watcher != nil {
		s.watcher.Stop()
		s.watcher = nil
	}
}

// ExpireCursor delivers a cursor-expired error event on the active watch,
// forcing the consumer to relist.
func (s *Source) ExpireCursor() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.watcher != nil {
		status := apierrors.NewResourceExpired("the resource version cursor is too old").ErrStatus
		s.watcher.Error(&status)
		s.watcher.Stop()
		s.watcher = nil
	}
}

func (s *Source) store(obj *unstructured.Unstructured, eventType watch.EventType) *unstructured.Unstructured {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	stored := obj.DeepCopy()
	stored.SetResourceVersion(s.nextResourceVersion())
	s.items[resource.KeyFor(stored)] = stored

	if s.watcher != nil {
		s.watcher.Action(eventType, stored.DeepCopy())
	}

	return stored.DeepCopy()
}

func (s *Source) nextResourceVersion() string {
	s.resourceVersion++
	return strconv.FormatUint(s.resourceVersion, 10)
}
