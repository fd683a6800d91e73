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

package informer

import (
	"context"
	"sync"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// Registry owns the set of informers for a controller process. Registering
// the same name twice returns the already-registered informer so callers
// watching the same resource type share one cache.
type Registry struct {
	mutex     sync.Mutex
	informers map[string]*Informer
}

func NewRegistry() *Registry {
	return &Registry{informers: map[string]*Informer{}}
}

func (r *Registry) Register(config *Config) *Informer {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if existing, found := r.informers[config.Name]; found {
		return existing
	}

	informer := New(config)
	r.informers[config.Name] = informer

	return informer
}

// Informers returns the registered informers in no particular order.
func (r *Registry) Informers() []*Informer {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ret := make([]*Informer, 0, len(r.informers))
	for _, informer := range r.informers {
		ret = append(ret, informer)
	}

	return ret
}

// Start launches a goroutine for every registered informer that isn't
// already running. Safe to call repeatedly as registrations accumulate.
func (r *Registry) Start(ctx context.Context) {
	for _, informer := range r.Informers() {
		go informer.Run(ctx)
	}
}

// WaitForCacheSync blocks until every registered informer reports its initial
// sync is complete, returning false if ctx is cancelled first.
func (r *Registry) WaitForCacheSync(ctx context.Context) bool {
	err := wait.PollUntilContextCancel(ctx, 10*time.Millisecond, true, func(_ context.Context) (bool, error) {
		for _, informer := range r.Informers() {
			if !informer.HasSynced() {
				return false, nil
			}
		}

		return true, nil
	})

	return err == nil
}
