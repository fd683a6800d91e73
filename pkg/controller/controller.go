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

// Package controller provides the run loop that drains a work queue and
// invokes a pluggable reconciler until observed state matches desired state.
package controller

import (
	"context"
	"sync"
	"time"

	"github.com/periscope-io/periscope/pkg/informer"
	"github.com/periscope-io/periscope/pkg/log"
	"github.com/periscope-io/periscope/pkg/workqueue"
	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/util/wait"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
)

var logger = log.Logger{Logger: logf.Log.WithName("Controller")}

type Config struct {
	// Name of this controller used for logging and queue naming.
	Name string

	// Reconciler invoked for each dequeued request. Required.
	Reconciler Reconciler

	// Informers watched by this controller. Their change notifications are
	// wired to the controller's queue and their sync state forms the default
	// readiness gate. At least one is required unless a pre-populated Queue
	// is supplied.
	Informers []*informer.Informer

	// Registry, if set, is started by Start so callers don't have to manage
	// informer goroutines themselves.
	Registry *informer.Registry

	// ReadyFunc is an optional extra readiness predicate ANDed with the
	// informers' sync state before the first reconcile.
	ReadyFunc func() bool

	// Workers is the number of concurrent reconcile loops. Defaults from the
	// CONTROLLER_WORKERS env var, or 1.
	Workers int

	// ShutdownGracePeriod bounds how long Start waits for in-flight
	// reconciliations after cancellation before abandoning them. Defaults
	// from CONTROLLER_SHUTDOWN_GRACE_PERIOD, or 30s.
	ShutdownGracePeriod time.Duration

	// Queue overrides the controller's work queue, mainly for testing.
	Queue workqueue.Interface
}

type Controller struct {
	config   Config
	queue    workqueue.Interface
	stop     context.CancelFunc
	stopped  bool
	stopLock sync.Mutex
}

// New validates config and wires the informers' event handlers to the
// controller's queue. Configuration errors here are the only fatal errors -
// everything at runtime is retried.
func New(config *Config) (*Controller, error) {
	if config.Reconciler == nil {
		return nil, errors.New("a Reconciler is required")
	}

	if len(config.Informers) == 0 && config.Queue == nil {
		return nil, errors.Errorf("controller %q has no informers - nothing would feed its queue", config.Name)
	}

	applyEnvDefaults(config)

	controller := &Controller{
		config: *config,
		queue:  config.Queue,
	}

	if controller.queue == nil {
		controller.queue = workqueue.New(config.Name)
	}

	for _, inf := range config.Informers {
		inf.AddEventHandler(informer.EventHandlerFuncs{
			OnAddFunc:    func(obj *unstructured.Unstructured) { controller.queue.Enqueue(obj) },
			OnUpdateFunc: func(obj *unstructured.Unstructured) { controller.queue.Enqueue(obj) },
			OnDeleteFunc: func(obj *unstructured.Unstructured) { controller.queue.Enqueue(obj) },
		})
	}

	return controller, nil
}

// Start blocks running the controller until ctx is cancelled or Stop is
// called. No reconcile happens until every watched informer has synced and
// the optional ReadyFunc reports true.
func (c *Controller) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.stopLock.Lock()

	if c.stopped {
		c.stopLock.Unlock()
		return nil
	}

	c.stop = cancel
	c.stopLock.Unlock()

	logger.Infof("Controller %q starting", c.config.Name)

	if c.config.Registry != nil {
		c.config.Registry.Start(runCtx)
	}

	if err := c.waitUntilReady(runCtx); err != nil {
		return err
	}

	logger.Infof("Controller %q ready - starting %d workers", c.config.Name, c.config.Workers)

	var wg sync.WaitGroup

	for n := 0; n < c.config.Workers; n++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for c.processNextWorkItem(runCtx) {
			}
		}()
	}

	<-runCtx.Done()

	c.queue.ShutDown()
	c.awaitWorkers(&wg)

	logger.Infof("Controller %q stopped", c.config.Name)

	return nil
}

// Stop triggers cancellation of a running Start. Idempotent; safe to call
// before Start, in which case Start returns promptly.
func (c *Controller) Stop() {
	c.stopLock.Lock()
	defer c.stopLock.Unlock()

	c.stopped = true

	if c.stop != nil {
		c.stop()
	}
}

func (c *Controller) waitUntilReady(ctx context.Context) error {
	err := wait.PollUntilContextCancel(ctx, 10*time.Millisecond, true, func(_ context.Context) (bool, error) {
		for _, inf := range c.config.Informers {
			if !inf.HasSynced() {
				return false, nil
			}
		}

		if c.config.ReadyFunc != nil && !c.config.ReadyFunc() {
			return false, nil
		}

		return true, nil
	})
	if err != nil && ctx.Err() != nil {
		return errors.Errorf("controller %q was stopped before its informer caches synced", c.config.Name)
	}

	return errors.WithMessagef(err, "controller %q failed waiting for readiness", c.config.Name)
}

func (c *Controller) processNextWorkItem(ctx context.Context) bool {
	key, shutdown := c.queue.Get()
	if shutdown {
		return false
	}

	// Done must run on every exit path so the in-flight slot is released even
	// if Reconcile panics.
	defer c.queue.Done(key)

	result, err := c.reconcile(ctx, key)

	switch {
	case err != nil:
		logger.Errorf(err, "Controller %q: failed to process %q - requeueing (retries: %d)",
			c.config.Name, key, c.queue.NumRequeues(key))
		c.queue.AddRateLimited(key)
	case result.RequeueAfter > 0:
		c.queue.Forget(key)
		c.queue.AddAfter(key, result.RequeueAfter)
	case result.Requeue:
		c.queue.AddRateLimited(key)
	default:
		c.queue.Forget(key)
	}

	return true
}

func (c *Controller) reconcile(ctx context.Context, key string) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("reconciler panicked processing %q: %v", key, r)
		}
	}()

	request, err := requestFromKey(key)
	if err != nil {
		// Malformed keys can never succeed; drop rather than retry.
		logger.Errorf(err, "Controller %q: dropping malformed key %q", c.config.Name, key)
		c.queue.Forget(key)

		return Result{}, nil
	}

	logger.V(log.LIBTRACE).Infof("Controller %q: reconciling %q", c.config.Name, key)

	return c.config.Reconciler.Reconcile(ctx, request)
}

func (c *Controller) awaitWorkers(wg *sync.WaitGroup) {
	done := make(chan struct{})

	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(c.config.ShutdownGracePeriod):
		logger.Warningf("Controller %q: in-flight reconciliations did not complete within %s - abandoning",
			c.config.Name, c.config.ShutdownGracePeriod)
	}
}
