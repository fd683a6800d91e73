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

package resource_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/periscope-io/periscope/pkg/resource"
	"github.com/periscope-io/periscope/pkg/test"
)

var _ = Describe("Key", func() {
	When("a namespace is given", func() {
		It("should return namespace/name", func() {
			Expect(resource.Key("ns1", "pod1")).To(Equal("ns1/pod1"))
		})
	})

	When("the namespace is empty", func() {
		It("should return just the name", func() {
			Expect(resource.Key("", "node1")).To(Equal("node1"))
		})
	})
})

var _ = Describe("KeyFor", func() {
	It("should derive the key from the object's metadata", func() {
		Expect(resource.KeyFor(test.NewPod("ns1", "pod1"))).To(Equal("ns1/pod1"))
		Expect(resource.KeyFor(test.NewNode("node1"))).To(Equal("node1"))
	})
})

var _ = Describe("SplitKey", func() {
	When("the key is namespaced", func() {
		It("should return both parts", func() {
			namespace, name, err := resource.SplitKey("ns1/pod1")
			Expect(err).To(Succeed())
			Expect(namespace).To(Equal("ns1"))
			Expect(name).To(Equal("pod1"))
		})
	})

	When("the key is cluster-scoped", func() {
		It("should return an empty namespace", func() {
			namespace, name, err := resource.SplitKey("node1")
			Expect(err).To(Succeed())
			Expect(namespace).To(BeEmpty())
			Expect(name).To(Equal("node1"))
		})
	})

	When("the key has too many segments", func() {
		It("should return an error", func() {
			_, _, err := resource.SplitKey("a/b/c")
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("ToUnstructured", func() {
	It("should convert a typed object preserving its metadata", func() {
		obj := test.NewPod("ns1", "pod1")

		Expect(obj.GetKind()).To(Equal("Pod"))
		Expect(obj.GetNamespace()).To(Equal("ns1"))
		Expect(obj.GetName()).To(Equal("pod1"))
	})

	It("should pass through an object that is already unstructured", func() {
		obj := test.NewPod("ns1", "pod1")

		converted, err := resource.ToUnstructured(obj)
		Expect(err).To(Succeed())
		Expect(converted).To(BeIdenticalTo(obj))
	})
})

var _ = Describe("MustToMeta", func() {
	It("should return the metadata accessor", func() {
		Expect(resource.MustToMeta(test.NewPod("ns1", "pod1")).GetName()).To(Equal("pod1"))
	})

	When("the object carries no metadata", func() {
		It("should panic", func() {
			Expect(func() { resource.MustToMeta("not an object") }).To(Panic())
		})
	})
})
