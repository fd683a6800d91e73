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

package workqueue_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/periscope-io/periscope/pkg/workqueue"
)

var _ = Describe("ItemExponentialFailureRateLimiter", func() {
	var limiter workqueue.RateLimiter

	BeforeEach(func() {
		limiter = workqueue.NewItemExponentialFailureRateLimiter(time.Millisecond, 10*time.Millisecond)
	})

	It("should double the delay per key on each failure up to the maximum", func() {
		Expect(limiter.When("one")).To(Equal(time.Millisecond))
		Expect(limiter.When("one")).To(Equal(2 * time.Millisecond))
		Expect(limiter.When("one")).To(Equal(4 * time.Millisecond))
		Expect(limiter.When("one")).To(Equal(8 * time.Millisecond))
		Expect(limiter.When("one")).To(Equal(10 * time.Millisecond))
		Expect(limiter.When("one")).To(Equal(10 * time.Millisecond))
		Expect(limiter.NumRequeues("one")).To(Equal(6))

		Expect(limiter.When("two")).To(Equal(time.Millisecond))
		Expect(limiter.NumRequeues("two")).To(Equal(1))
	})

	It("should reset a key's delay on Forget", func() {
		Expect(limiter.When("one")).To(Equal(time.Millisecond))
		Expect(limiter.When("one")).To(Equal(2 * time.Millisecond))

		limiter.Forget("one")

		Expect(limiter.NumRequeues("one")).To(Equal(0))
		Expect(limiter.When("one")).To(Equal(time.Millisecond))
	})
})

var _ = Describe("MaxOfRateLimiter", func() {
	It("should return the worst answer of its constituents", func() {
		limiter := workqueue.NewMaxOfRateLimiter(
			workqueue.NewItemExponentialFailureRateLimiter(time.Millisecond, time.Second),
			workqueue.NewItemExponentialFailureRateLimiter(5*time.Millisecond, time.Second),
		)

		Expect(limiter.When("one")).To(Equal(5 * time.Millisecond))
		Expect(limiter.When("one")).To(Equal(10 * time.Millisecond))
		Expect(limiter.NumRequeues("one")).To(Equal(2))

		limiter.Forget("one")
		Expect(limiter.NumRequeues("one")).To(Equal(0))
	})
})
