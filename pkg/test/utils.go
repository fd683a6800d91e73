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

// Package test provides object fixtures shared by the test suites.
package test

import (
	"github.com/periscope-io/periscope/pkg/resource"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// NewNode returns a cluster-scoped Node fixture as Unstructured.
func NewNode(name string) *unstructured.Unstructured {
	return resource.MustToUnstructured(&corev1.Node{
		TypeMeta: metav1.TypeMeta{
			Kind:       "Node",
			APIVersion: "v1",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name: name,
		},
	})
}

// NewPod returns a namespaced Pod fixture as Unstructured.
func NewPod(namespace, name string) *unstructured.Unstructured {
	return resource.MustToUnstructured(&corev1.Pod{
		TypeMeta: metav1.TypeMeta{
			Kind:       "Pod",
			APIVersion: "v1",
		},
		ObjectMeta: metav1.ObjectMeta{
			Namespace: namespace,
			Name:      name,
		},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{
				{
					Name:  "app",
					Image: "app:latest",
				},
			},
		},
	})
}

// WithResourceVersion returns a copy of obj at the given resource version.
func WithResourceVersion(obj *unstructured.Unstructured, resourceVersion string) *unstructured.Unstructured {
	ret := obj.DeepCopy()
	ret.SetResourceVersion(resourceVersion)

	return ret
}
