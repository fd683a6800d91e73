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

package controller

import (
	"context"
	"time"

	"github.com/periscope-io/periscope/pkg/resource"
)

// Request identifies the object to reconcile. It deliberately carries no
// object payload - reconcilers read the current state through a Lister,
// closing the gap between enqueue time and process time.
type Request struct {
	Namespace string
	Name      string
}

func (r Request) String() string {
	return resource.Key(r.Namespace, r.Name)
}

func requestFromKey(key string) (Request, error) {
	namespace, name, err := resource.SplitKey(key)
	if err != nil {
		return Request{}, err
	}

	return Request{Namespace: namespace, Name: name}, nil
}

// Result directs whether and when the request is redelivered. The zero value
// means done.
type Result struct {
	// Requeue redelivers the request subject to the queue's rate limiter.
	Requeue bool

	// RequeueAfter, if positive, redelivers the request after the given
	// duration and takes precedence over Requeue.
	RequeueAfter time.Duration
}

// Reconciler is the user-supplied logic converging observed state toward
// desired state for one object. Implementations must be idempotent: the same
// Request may be delivered an arbitrary number of times, including after no
// observable change and after crash-restart with no memory of prior attempts.
// A NotFound error from the Lister means the object was deleted between
// enqueue and processing and should be treated as nothing to do.
type Reconciler interface {
	Reconcile(ctx context.Context, request Request) (Result, error)
}

// Func adapts an ordinary function to the Reconciler interface.
type Func func(ctx context.Context, request Request) (Result, error)

func (f Func) Reconcile(ctx context.Context, request Request) (Result, error) {
	return f(ctx, request)
}
