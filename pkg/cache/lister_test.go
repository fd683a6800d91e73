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

package cache_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/periscope-io/periscope/pkg/cache"
	. "github.com/periscope-io/periscope/pkg/gomega"
	"github.com/periscope-io/periscope/pkg/test"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/watch"
)

var _ = Describe("Lister", func() {
	var (
		store  *cache.Store
		lister *cache.Lister
	)

	BeforeEach(func() {
		store = cache.NewStore()
		lister = cache.NewLister(store, schema.GroupResource{Resource: "pods"})

		for i, key := range []struct{ ns, name string }{
			{"ns1", "bravo"}, {"ns1", "alpha"}, {"ns2", "charlie"},
		} {
			applied := store.Apply(cache.Event{
				Type:   watch.Added,
				Object: test.WithResourceVersion(test.NewPod(key.ns, key.name), string(rune('1'+i))),
			})
			Expect(applied).To(BeTrue())
		}
	})

	Describe("Get", func() {
		It("should return a cached object", func() {
			obj, err := lister.Namespace("ns1").Get("alpha")
			Expect(err).To(Succeed())
			Expect(obj.GetName()).To(Equal("alpha"))
		})

		Context("for an absent object", func() {
			It("should return a NotFound error", func() {
				_, err := lister.Namespace("ns1").Get("missing")
				Expect(apierrors.IsNotFound(err)).To(BeTrue())
				Expect(err).To(ContainErrorSubstring(errors.New("missing")))
			})
		})

		Context("for a cluster-scoped object", func() {
			It("should not require a namespace", func() {
				nodes := cache.NewLister(store, schema.GroupResource{Resource: "nodes"})
				Expect(store.Apply(cache.Event{
					Type:   watch.Added,
					Object: test.WithResourceVersion(test.NewNode("node1"), "10"),
				})).To(BeTrue())

				obj, err := nodes.Get("node1")
				Expect(err).To(Succeed())
				Expect(obj.GetName()).To(Equal("node1"))
			})
		})
	})

	Describe("List", func() {
		It("should return the namespace's objects ordered by name", func() {
			names := []string{}
			for _, obj := range lister.Namespace("ns1").List() {
				names = append(names, obj.GetName())
			}

			Expect(names).To(Equal([]string{"alpha", "bravo"}))
		})

		It("should return all objects across namespaces", func() {
			Expect(lister.List()).To(HaveLen(3))
		})
	})
})
