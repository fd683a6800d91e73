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

//nolint:wrapcheck // These functions are pass-through wrappers for the k8s APIs.
package resource

import (
	"context"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/dynamic"
)

type dynamicSource struct {
	client dynamic.ResourceInterface
}

//nolint:gocritic // hugeParam - we're matching K8s API
func (d *dynamicSource) List(ctx context.Context, options metav1.ListOptions) (*unstructured.UnstructuredList, error) {
	return d.client.List(ctx, options)
}

//nolint:gocritic // hugeParam - we're matching K8s API
func (d *dynamicSource) Watch(ctx context.Context, options metav1.ListOptions) (watch.Interface, error) {
	return d.client.Watch(ctx, options)
}

// ForDynamic returns a Source backed by a dynamic client's resource interface.
func ForDynamic(client dynamic.ResourceInterface) Source {
	return &dynamicSource{client: client}
}
