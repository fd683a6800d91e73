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

package informer_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/periscope-io/periscope/pkg/fake"
	"github.com/periscope-io/periscope/pkg/informer"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

var _ = Describe("Registry", func() {
	var (
		registry *informer.Registry
		cancel   context.CancelFunc
	)

	BeforeEach(func() {
		registry = informer.NewRegistry()
		cancel = nil
	})

	AfterEach(func() {
		if cancel != nil {
			cancel()
		}
	})

	register := func(name string) *informer.Informer {
		return registry.Register(&informer.Config{
			Name:          name,
			Source:        fake.NewSource(),
			GroupResource: schema.GroupResource{Resource: name},
		})
	}

	When("the same name is registered twice", func() {
		It("should return the shared informer", func() {
			first := register("nodes")
			second := register("nodes")

			Expect(first).To(BeIdenticalTo(second))
			Expect(registry.Informers()).To(HaveLen(1))
		})
	})

	Describe("Start and WaitForCacheSync", func() {
		It("should start all registered informers and report aggregate sync state", func() {
			nodes := register("nodes")
			pods := register("pods")

			var ctx context.Context

			ctx, cancel = context.WithCancel(context.Background())

			registry.Start(ctx)

			Expect(registry.WaitForCacheSync(ctx)).To(BeTrue())
			Expect(nodes.HasSynced()).To(BeTrue())
			Expect(pods.HasSynced()).To(BeTrue())
		})

		It("should be safe to call Start repeatedly as registrations accumulate", func() {
			var ctx context.Context

			ctx, cancel = context.WithCancel(context.Background())

			register("nodes")
			registry.Start(ctx)

			pods := register("pods")
			registry.Start(ctx)

			Expect(registry.WaitForCacheSync(ctx)).To(BeTrue())
			Expect(pods.HasSynced()).To(BeTrue())
		})
	})

	When("the context is cancelled before sync completes", func() {
		It("WaitForCacheSync should return false", func() {
			register("nodes")

			cancelledCtx, cancelNow := context.WithCancel(context.Background())
			cancelNow()

			Expect(registry.WaitForCacheSync(cancelledCtx)).To(BeFalse())
		})
	})
})
