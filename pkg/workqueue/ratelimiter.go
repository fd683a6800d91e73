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

package workqueue

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type RateLimiter interface {
	// When returns how long to wait before delivering key again.
	When(key string) time.Duration

	// Forget clears any tracked failure state for key.
	Forget(key string)

	// NumRequeues returns how many failures key has accumulated.
	NumRequeues(key string) int
}

// DefaultRateLimiter combines a per-item exponential limiter with an overall
// token bucket so a hot failing item backs off individually while the queue
// as a whole stays bounded.
func DefaultRateLimiter() RateLimiter {
	return NewMaxOfRateLimiter(
		NewItemExponentialFailureRateLimiter(5*time.Millisecond, 30*time.Second),
		&BucketRateLimiter{Limiter: rate.NewLimiter(rate.Limit(10), 100)},
	)
}

type itemExponentialFailureRateLimiter struct {
	mutex     sync.Mutex
	failures  map[string]int
	baseDelay time.Duration
	maxDelay  time.Duration
}

// NewItemExponentialFailureRateLimiter returns a RateLimiter whose delay for
// a key doubles on each failure, from baseDelay up to maxDelay.
func NewItemExponentialFailureRateLimiter(baseDelay, maxDelay time.Duration) RateLimiter {
	return &itemExponentialFailureRateLimiter{
		failures:  map[string]int{},
		baseDelay: baseDelay,
		maxDelay:  maxDelay,
	}
}

func (r *itemExponentialFailureRateLimiter) When(key string) time.Duration {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	exp := r.failures[key]
	r.failures[key]++

	backoff := float64(r.baseDelay.Nanoseconds()) * math.Pow(2, float64(exp))
	if backoff > math.MaxInt64 {
		return r.maxDelay
	}

	calculated := time.Duration(backoff)
	if calculated > r.maxDelay {
		return r.maxDelay
	}

	return calculated
}

func (r *itemExponentialFailureRateLimiter) Forget(key string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.failures, key)
}

func (r *itemExponentialFailureRateLimiter) NumRequeues(key string) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.failures[key]
}

// BucketRateLimiter adapts a token bucket to the RateLimiter interface. It
// has no per-item state.
type BucketRateLimiter struct {
	*rate.Limiter
}

func (r *BucketRateLimiter) When(_ string) time.Duration {
	return r.Reserve().Delay()
}

func (r *BucketRateLimiter) Forget(_ string) {
}

func (r *BucketRateLimiter) NumRequeues(_ string) int {
	return 0
}

type maxOfRateLimiter struct {
	limiters []RateLimiter
}

// NewMaxOfRateLimiter returns a RateLimiter that defers to the worst answer
// of its constituents.
func NewMaxOfRateLimiter(limiters ...RateLimiter) RateLimiter {
	return &maxOfRateLimiter{limiters: limiters}
}

func (r *maxOfRateLimiter) When(key string) time.Duration {
	ret := time.Duration(0)

	for _, limiter := range r.limiters {
		curr := limiter.When(key)
		if curr > ret {
			ret = curr
		}
	}

	return ret
}

func (r *maxOfRateLimiter) Forget(key string) {
	for _, limiter := range r.limiters {
		limiter.Forget(key)
	}
}

func (r *maxOfRateLimiter) NumRequeues(key string) int {
	ret := 0

	for _, limiter := range r.limiters {
		curr := limiter.NumRequeues(key)
		if curr > ret {
			ret = curr
		}
	}

	return ret
}
