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
	"github.com/periscope-io/periscope/pkg/test"
	"github.com/periscope-io/periscope/pkg/workqueue"
	clocktesting "k8s.io/utils/clock/testing"
)

var _ = Describe("Queue", func() {
	d := newTestDriver()

	When("a key is added", func() {
		It("should be delivered exactly once", func() {
			d.queue.Add("ns1/pod1")

			Expect(d.await()).To(Equal("ns1/pod1"))
			d.ensureNoDelivery()

			d.queue.Done("ns1/pod1")
			d.ensureNoDelivery()
		})
	})

	When("a pending key is added again before delivery", func() {
		It("should coalesce into one delivery", func() {
			d.queue.Add("ns1/pod1")
			d.queue.Add("ns1/pod1")

			Expect(d.await()).To(Equal("ns1/pod1"))
			d.queue.Done("ns1/pod1")

			d.ensureNoDelivery()
		})
	})

	When("an in-flight key is re-added", func() {
		It("should be redelivered exactly once after Done", func() {
			d.queue.Add("ns1/pod1")
			Expect(d.await()).To(Equal("ns1/pod1"))

			d.queue.Add("ns1/pod1")
			d.queue.Add("ns1/pod1")
			d.queue.Add("ns1/pod1")
			d.ensureNoDelivery()

			d.queue.Done("ns1/pod1")
			Expect(d.await()).To(Equal("ns1/pod1"))

			d.queue.Done("ns1/pod1")
			d.ensureNoDelivery()
		})
	})

	Specify("a key should never be delivered to two consumers concurrently", func() {
		first := d.get()
		second := d.get()

		d.queue.Add("ns1/pod1")

		var blocked <-chan string

		select {
		case <-first:
			blocked = second
		case <-second:
			blocked = first
		case <-time.After(3 * time.Second):
			Fail("no delivery")
		}

		Consistently(blocked, 300*time.Millisecond).ShouldNot(Receive())

		d.queue.Done("ns1/pod1")
		Consistently(blocked, 300*time.Millisecond).ShouldNot(Receive())
	})

	Describe("AddAfter", func() {
		When("a delay is specified", func() {
			It("should deliver the key after the delay elapses", func() {
				d.queue.AddAfter("ns1/pod1", time.Minute)

				d.ensureNoDelivery()
				Eventually(d.clock.HasWaiters).Should(BeTrue())

				d.clock.Step(time.Minute)
				Expect(d.await()).To(Equal("ns1/pod1"))
			})
		})

		When("the same key is scheduled twice", func() {
			It("should coalesce to the earliest requested time", func() {
				d.queue.AddAfter("ns1/pod1", time.Hour)
				Eventually(d.clock.HasWaiters).Should(BeTrue())

				d.queue.AddAfter("ns1/pod1", time.Minute)

				Expect(d.awaitStepping(time.Minute, time.Second)).To(Equal("ns1/pod1"))

				d.queue.Done("ns1/pod1")
				d.ensureNoDelivery()
			})

			It("should ignore a later requested time", func() {
				d.queue.AddAfter("ns1/pod1", time.Minute)
				Eventually(d.clock.HasWaiters).Should(BeTrue())

				d.queue.AddAfter("ns1/pod1", time.Hour)

				Expect(d.awaitStepping(time.Minute, time.Second)).To(Equal("ns1/pod1"))
			})
		})

		When("a non-positive delay is specified", func() {
			It("should deliver the key immediately", func() {
				d.queue.AddAfter("ns1/pod1", 0)
				Expect(d.await()).To(Equal("ns1/pod1"))
			})
		})
	})

	Describe("AddRateLimited", func() {
		It("should track and deliver retries with growing delays", func() {
			d.queue.AddRateLimited("ns1/pod1")
			Expect(d.queue.NumRequeues("ns1/pod1")).To(Equal(1))

			Expect(d.awaitStepping(0, 10*time.Millisecond)).To(Equal("ns1/pod1"))
			d.queue.Done("ns1/pod1")

			d.queue.AddRateLimited("ns1/pod1")
			Expect(d.queue.NumRequeues("ns1/pod1")).To(Equal(2))

			Expect(d.awaitStepping(0, 10*time.Millisecond)).To(Equal("ns1/pod1"))
			d.queue.Done("ns1/pod1")
		})

		It("should reset the retry bookkeeping on Forget", func() {
			d.queue.AddRateLimited("ns1/pod1")
			d.queue.AddRateLimited("ns1/pod2")

			d.queue.Forget("ns1/pod1")

			Expect(d.queue.NumRequeues("ns1/pod1")).To(Equal(0))
			Expect(d.queue.NumRequeues("ns1/pod2")).To(Equal(1))
		})
	})

	Describe("Enqueue", func() {
		It("should derive the key from the object", func() {
			d.queue.Enqueue(test.NewPod("ns1", "pod1"))
			Expect(d.await()).To(Equal("ns1/pod1"))
		})

		Context("with a cluster-scoped object", func() {
			It("should use the bare name", func() {
				d.queue.Enqueue(test.NewNode("node1"))
				Expect(d.await()).To(Equal("node1"))
			})
		})
	})

	Describe("ShutDown", func() {
		It("should release blocked consumers with a shutdown indication", func() {
			ch := d.get()

			d.queue.ShutDown()

			Eventually(ch).Should(BeClosed())
			Expect(d.queue.ShuttingDown()).To(BeTrue())
		})

		It("should ignore subsequent adds", func() {
			d.queue.ShutDown()
			d.queue.Add("ns1/pod1")
			Expect(d.queue.Len()).To(Equal(0))
		})
	})
})

type testDriver struct {
	queue       workqueue.Interface
	clock       *clocktesting.FakeClock
	deliveries  chan string
	pumpStarted bool
}

func newTestDriver() *testDriver {
	d := &testDriver{}

	BeforeEach(func() {
		d.clock = clocktesting.NewFakeClock(time.Now())
		d.queue = workqueue.NewWithConfig(workqueue.Config{
			Name:  "test",
			Clock: d.clock,
		})
		d.deliveries = make(chan string, 100)
		d.pumpStarted = false
	})

	AfterEach(func() {
		d.queue.ShutDown()
	})

	return d
}

// get starts a one-shot consumer and returns the channel on which its
// delivery, if any, arrives. The channel is closed on queue shutdown. Used by
// tests that need direct control over individual consumers; the other tests
// observe deliveries through a single pump consumer.
func (d *testDriver) get() <-chan string {
	ch := make(chan string, 1)

	go func() {
		key, shutdown := d.queue.Get()
		if shutdown {
			close(ch)
			return
		}

		ch <- key
	}()

	return ch
}

func (d *testDriver) pump() {
	if d.pumpStarted {
		return
	}

	d.pumpStarted = true
	queue := d.queue
	deliveries := d.deliveries

	go func() {
		for {
			key, shutdown := queue.Get()
			if shutdown {
				close(deliveries)
				return
			}

			deliveries <- key
		}
	}()
}

func (d *testDriver) await() string {
	d.pump()

	var key string

	Eventually(d.deliveries, 3*time.Second).Should(Receive(&key))

	return key
}

// awaitStepping waits for a delivery while advancing the fake clock, first by
// initial and then by stepEach per poll, accommodating timers that are armed
// asynchronously by the queue's waiting loop.
func (d *testDriver) awaitStepping(initial, stepEach time.Duration) string {
	d.pump()

	if initial > 0 {
		Eventually(d.clock.HasWaiters).Should(BeTrue())
		d.clock.Step(initial)
	}

	var key string

	Eventually(func() bool {
		select {
		case key = <-d.deliveries:
			return true
		default:
			d.clock.Step(stepEach)
			return false
		}
	}, 3*time.Second).Should(BeTrue())

	return key
}

func (d *testDriver) ensureNoDelivery() {
	d.pump()
	Consistently(d.deliveries, 300*time.Millisecond).ShouldNot(Receive())
}
