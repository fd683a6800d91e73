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
	"context"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/watch"
)

// Source provides read access to a remote collection of resources of a single
// type via list and watch. The returned list carries the resource version
// cursor from which a subsequent Watch can resume.
type Source interface {
	List(ctx context.Context, options metav1.ListOptions) (*unstructured.UnstructuredList, error)
	Watch(ctx context.Context, options metav1.ListOptions) (watch.Interface, error)
}

// SourceFuncs is an adaptor to implement Source from bare functions.
type SourceFuncs struct {
	ListFunc  func(ctx context.Context, options metav1.ListOptions) (*unstructured.UnstructuredList, error)
	WatchFunc func(ctx context.Context, options metav1.ListOptions) (watch.Interface, error)
}

func (s SourceFuncs) List(ctx context.Context, options metav1.ListOptions) (*unstructured.UnstructuredList, error) {
	return s.ListFunc(ctx, options)
}

func (s SourceFuncs) Watch(ctx context.Context, options metav1.ListOptions) (watch.Interface, error) {
	return s.WatchFunc(ctx, options)
}
