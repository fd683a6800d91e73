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

// Package informer keeps a local cache current with a remote resource
// collection via list+watch and notifies handlers of every change.
package informer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/periscope-io/periscope/pkg/cache"
	"github.com/periscope-io/periscope/pkg/log"
	"github.com/periscope-io/periscope/pkg/resource"
	"github.com/pkg/errors"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/utils/clock"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
)

var logger = log.Logger{Logger: logf.Log.WithName("Informer")}

// EventHandler is notified of every cache mutation, including synthetic
// update notifications emitted on resync for unchanged objects.
type EventHandler interface {
	OnAdd(obj *unstructured.Unstructured)
	OnUpdate(obj *unstructured.Unstructured)
	OnDelete(obj *unstructured.Unstructured)
}

// EventHandlerFuncs is an adaptor to let you specify as many or as few of the
// notification functions as you want while still implementing EventHandler.
type EventHandlerFuncs struct {
	OnAddFunc    func(obj *unstructured.Unstructured)
	OnUpdateFunc func(obj *unstructured.Unstructured)
	OnDeleteFunc func(obj *unstructured.Unstructured)
}

type Config struct {
	// Name of this informer used for logging and registry lookup.
	Name string

	// Source provides list and watch access to the remote collection.
	Source resource.Source

	// GroupResource of the watched type, used to shape NotFound errors from
	// the Lister.
	GroupResource schema.GroupResource

	// ResyncPeriod is the period at which all cached objects are re-delivered
	// to handlers as update notifications without contacting the Source, so
	// periodic reconciliation happens even without remote changes. Zero
	// disables periodic resync.
	ResyncPeriod time.Duration

	// Retry controls the backoff applied to failed list/watch attempts.
	// Defaults to 1s growing 2x up to 30s.
	Retry wait.Backoff

	// Clock abstraction, settable for testing. NewTicker is needed for the
	// resync loop.
	Clock clock.WithTicker
}

type Informer struct {
	config   Config
	store    *cache.Store
	lister   *cache.Lister
	synced   atomic.Bool
	started  atomic.Bool
	handlers struct {
		sync.RWMutex
		list []EventHandler
	}
}

func New(config *Config) *Informer {
	cfg := *config

	if cfg.Clock == nil {
		cfg.Clock = clock.RealClock{}
	}

	if cfg.Retry.Duration == 0 {
		cfg.Retry = wait.Backoff{
			Duration: time.Second,
			Factor:   2.0,
			Cap:      30 * time.Second,
			Steps:    int(^uint(0) >> 1),
		}
	}

	store := cache.NewStore()

	return &Informer{
		config: cfg,
		store:  store,
		lister: cache.NewLister(store, cfg.GroupResource),
	}
}

// AddEventHandler registers handler for change notifications. Must be called
// before Run.
func (i *Informer) AddEventHandler(handler EventHandler) {
	i.handlers.Lock()
	defer i.handlers.Unlock()

	i.handlers.list = append(i.handlers.list, handler)
}

// HasSynced returns true once the initial full list has been applied to the
// cache. It never reverts to false, even while re-listing after a watch
// failure.
func (i *Informer) HasSynced() bool {
	return i.synced.Load()
}

func (i *Informer) Name() string {
	return i.config.Name
}

func (i *Informer) Store() *cache.Store {
	return i.store
}

func (i *Informer) Lister() *cache.Lister {
	return i.lister
}

// Run drives the list+watch loop until ctx is cancelled. List/watch failures
// are retried with backoff and never surfaced to the caller - callers depend
// on HasSynced becoming true, not on individual error visibility. Run is a
// no-op if already started.
func (i *Informer) Run(ctx context.Context) {
	if !i.started.CompareAndSwap(false, true) {
		return
	}

	logger.Infof("Informer %q starting", i.config.Name)

	if i.config.ResyncPeriod > 0 {
		go i.resyncLoop(ctx)
	}

	backoff := i.config.Retry

	for ctx.Err() == nil {
		cursor, err := i.listAndSync(ctx)
		if err != nil {
			logger.Errorf(err, "Informer %q: error listing - retrying", i.config.Name)
			i.sleep(ctx, backoff.Step())

			continue
		}

		backoff = i.config.Retry

		err = i.watch(ctx, cursor)
		switch {
		case err == nil:
		case resource.IsCursorExpiredErr(err):
			logger.V(log.LIBDEBUG).Infof("Informer %q: watch cursor expired - re-listing", i.config.Name)
		default:
			logger.Errorf(err, "Informer %q: watch ended - re-listing", i.config.Name)
			i.sleep(ctx, backoff.Step())
		}
	}

	logger.Infof("Informer %q stopped", i.config.Name)
}

// listAndSync performs a full list, reconciles the cache with it (including
// pruning objects deleted while disconnected) and returns the resource
// version cursor to watch from.
func (i *Informer) listAndSync(ctx context.Context) (string, error) {
	list, err := i.config.Source.List(ctx, metav1.ListOptions{})
	if err != nil {
		return "", errors.WithMessagef(err, "error listing %q", i.config.Name)
	}

	listed := sets.New[string]()

	for idx := range list.Items {
		obj := &list.Items[idx]
		listed.Insert(resource.KeyFor(obj))
		i.apply(cache.Event{Type: watch.Added, Object: obj})
	}

	for _, obj := range i.store.List("") {
		if !listed.Has(resource.KeyFor(obj)) {
			i.apply(cache.Event{Type: watch.Deleted, Object: obj})
		}
	}

	if i.synced.CompareAndSwap(false, true) {
		logger.Infof("Informer %q: initial sync complete with %d objects", i.config.Name, len(list.Items))
	}

	return list.GetResourceVersion(), nil
}

func (i *Informer) watch(ctx context.Context, cursor string) error {
	watcher, err := i.config.Source.Watch(ctx, metav1.ListOptions{ResourceVersion: cursor})
	if err != nil {
		return errors.WithMessagef(err, "error opening watch for %q from cursor %q", i.config.Name, cursor)
	}

	defer watcher.Stop()

	logger.V(log.LIBDEBUG).Infof("Informer %q: watching from cursor %q", i.config.Name, cursor)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.ResultChan():
			if !ok {
				// A closed channel is a normal end of stream - re-list
				// immediately rather than backing off.
				logger.V(log.LIBDEBUG).Infof("Informer %q: watch closed by the remote source - re-listing", i.config.Name)
				return nil
			}

			if err := i.handleWatchEvent(&event); err != nil {
				return err
			}
		}
	}
}

func (i *Informer) handleWatchEvent(event *watch.Event) error {
	if event.Type == watch.Error {
		return errors.WithMessagef(apierrors.FromObject(event.Object), "watch for %q reported an error", i.config.Name)
	}

	if event.Type == watch.Bookmark {
		return nil
	}

	obj, err := resource.ToUnstructured(event.Object)
	if err != nil {
		logger.Errorf(err, "Informer %q: skipping malformed watch event %q", i.config.Name, event.Type)
		return nil
	}

	i.apply(cache.Event{Type: event.Type, Object: obj})

	return nil
}

// apply applies the event to the store and, if the store changed, notifies
// the handlers. Stale or duplicate events are absorbed by the store.
func (i *Informer) apply(event cache.Event) {
	_, existed := i.store.Get(event.Object.GetNamespace(), event.Object.GetName())

	if !i.store.Apply(event) {
		return
	}

	if event.Type == watch.Deleted {
		i.notify(func(h EventHandler) { h.OnDelete(event.Object) })
	} else if existed {
		i.notify(func(h EventHandler) { h.OnUpdate(event.Object) })
	} else {
		i.notify(func(h EventHandler) { h.OnAdd(event.Object) })
	}
}

func (i *Informer) notify(fn func(EventHandler)) {
	i.handlers.RLock()
	defer i.handlers.RUnlock()

	for _, handler := range i.handlers.list {
		fn(handler)
	}
}

// resyncLoop periodically re-walks the cache and emits a synthetic update
// notification per object, without contacting the Source.
func (i *Informer) resyncLoop(ctx context.Context) {
	ticker := i.config.Clock.NewTicker(i.config.ResyncPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
		}

		if !i.HasSynced() {
			continue
		}

		objects := i.store.List("")
		logger.V(log.LIBDEBUG).Infof("Informer %q: resyncing %d objects", i.config.Name, len(objects))

		for _, obj := range objects {
			obj := obj
			i.notify(func(h EventHandler) { h.OnUpdate(obj) })
		}
	}
}

func (i *Informer) sleep(ctx context.Context, duration time.Duration) {
	timer := i.config.Clock.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C():
	}
}

func (f EventHandlerFuncs) OnAdd(obj *unstructured.Unstructured) {
	if f.OnAddFunc != nil {
		f.OnAddFunc(obj)
	}
}

func (f EventHandlerFuncs) OnUpdate(obj *unstructured.Unstructured) {
	if f.OnUpdateFunc != nil {
		f.OnUpdateFunc(obj)
	}
}

func (f EventHandlerFuncs) OnDelete(obj *unstructured.Unstructured) {
	if f.OnDeleteFunc != nil {
		f.OnDeleteFunc(obj)
	}
}
