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

// Package workqueue provides a deduplicating, delayable queue of
// reconciliation keys with per-item retry bookkeeping.
package workqueue

import (
	"sync"
	"time"

	"github.com/periscope-io/periscope/pkg/log"
	"github.com/periscope-io/periscope/pkg/resource"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/utils/clock"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
)

var logger = log.Logger{Logger: logf.Log.WithName("Workqueue")}

type Interface interface {
	// Add enqueues key for immediate delivery. If the key is currently
	// in-flight it is marked dirty and redelivered once Done is called for
	// it. Duplicate adds of a pending key coalesce into one delivery.
	Add(key string)

	// AddAfter enqueues key for delivery after the given delay, coalescing
	// with any pending delayed delivery of the same key to the earliest
	// requested time.
	AddAfter(key string, delay time.Duration)

	// AddRateLimited enqueues key after the delay prescribed by the queue's
	// rate limiter, growing with each retry until Forget is called.
	AddRateLimited(key string)

	// Enqueue derives the key from an API object and adds it.
	Enqueue(obj interface{})

	// Get blocks until a key is available or the queue is shut down, in
	// which case shutdown is true. The returned key is in-flight until Done
	// is called for it and is never concurrently delivered to two callers.
	Get() (key string, shutdown bool)

	// Done marks key as no longer in-flight. If it was re-added while
	// in-flight it is immediately returned to the ready set.
	Done(key string)

	// Forget clears the retry bookkeeping for key. It does not remove the
	// key from the queue.
	Forget(key string)

	// NumRequeues returns how many times key has been rate-limited requeued
	// since it was last forgotten.
	NumRequeues(key string) int

	Len() int

	ShutDown()

	ShuttingDown() bool
}

type queueType struct {
	cond *sync.Cond

	name        string
	ready       []string
	dirty       sets.Set[string]
	processing  sets.Set[string]
	rateLimiter RateLimiter
	clock       clock.Clock
	stopCh      chan struct{}
	waitingCh   chan waitEntry

	shuttingDown bool

	metrics queueMetrics
}

// New creates a work queue with the default rate limiter and the real clock.
func New(name string) Interface {
	return NewWithConfig(Config{Name: name})
}

type Config struct {
	Name string

	// RateLimiter used by AddRateLimited. Defaults to a per-item exponential
	// limiter combined with an overall token bucket.
	RateLimiter RateLimiter

	// Clock abstraction for delayed delivery, settable for testing.
	Clock clock.Clock
}

func NewWithConfig(config Config) Interface {
	if config.RateLimiter == nil {
		config.RateLimiter = DefaultRateLimiter()
	}

	if config.Clock == nil {
		config.Clock = clock.RealClock{}
	}

	queue := &queueType{
		cond:        sync.NewCond(&sync.Mutex{}),
		name:        config.Name,
		dirty:       sets.New[string](),
		processing:  sets.New[string](),
		rateLimiter: config.RateLimiter,
		clock:       config.Clock,
		stopCh:      make(chan struct{}),
		waitingCh:   make(chan waitEntry, 1000),
		metrics:     newQueueMetrics(config.Name),
	}

	go queue.waitingLoop()

	return queue
}

func (q *queueType) Add(key string) {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()

	if q.shuttingDown {
		return
	}

	if q.dirty.Has(key) {
		return
	}

	q.metrics.add()
	q.dirty.Insert(key)

	if q.processing.Has(key) {
		// Redelivered by Done once the in-flight processing completes.
		return
	}

	q.ready = append(q.ready, key)
	q.metrics.depth(len(q.ready))
	q.cond.Signal()
}

func (q *queueType) AddRateLimited(key string) {
	q.metrics.retry()
	q.AddAfter(key, q.rateLimiter.When(key))
}

func (q *queueType) Enqueue(obj interface{}) {
	key := resource.KeyFor(obj)
	logger.V(log.LIBTRACE).Info("Enqueueing key", "queue", q.name, "key", key)
	q.Add(key)
}

func (q *queueType) Get() (string, bool) {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()

	for len(q.ready) == 0 && !q.shuttingDown {
		q.cond.Wait()
	}

	if len(q.ready) == 0 {
		return "", true
	}

	key := q.ready[0]
	q.ready = q.ready[1:]
	q.metrics.depth(len(q.ready))

	q.processing.Insert(key)
	q.dirty.Delete(key)

	return key, false
}

func (q *queueType) Done(key string) {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()

	q.processing.Delete(key)

	if q.dirty.Has(key) {
		q.ready = append(q.ready, key)
		q.metrics.depth(len(q.ready))
		q.cond.Signal()
	}
}

func (q *queueType) Forget(key string) {
	q.rateLimiter.Forget(key)
}

func (q *queueType) NumRequeues(key string) int {
	return q.rateLimiter.NumRequeues(key)
}

func (q *queueType) Len() int {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()

	return len(q.ready)
}

func (q *queueType) ShutDown() {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()

	if q.shuttingDown {
		return
	}

	q.shuttingDown = true
	close(q.stopCh)
	q.cond.Broadcast()
}

func (q *queueType) ShuttingDown() bool {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()

	return q.shuttingDown
}
