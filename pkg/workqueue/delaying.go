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
	"time"

	"github.com/emirpasic/gods/maps/treemap"
	godsutils "github.com/emirpasic/gods/utils"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/utils/clock"
)

type waitEntry struct {
	key     string
	readyAt time.Time
}

func (q *queueType) AddAfter(key string, delay time.Duration) {
	if q.ShuttingDown() {
		return
	}

	if delay <= 0 {
		q.Add(key)
		return
	}

	select {
	case q.waitingCh <- waitEntry{key: key, readyAt: q.clock.Now().Add(delay)}:
	case <-q.stopCh:
	}
}

// waitingLoop holds keys scheduled via AddAfter until their ready time and
// then moves them to the ready set. Entries are ordered by ready time in a
// treemap of UnixNano -> key set; per-key coalescing keeps only the earliest
// requested time.
func (q *queueType) waitingLoop() {
	waiting := treemap.NewWith(godsutils.Int64Comparator)
	waitingByKey := map[string]int64{}

	for {
		now := q.clock.Now()

		for !waiting.Empty() {
			at, keys := waiting.Min()
			if at.(int64) > now.UnixNano() {
				break
			}

			waiting.Remove(at)

			for key := range keys.(sets.Set[string]) {
				delete(waitingByKey, key)
				q.Add(key)
			}
		}

		var (
			nextReadyCh <-chan time.Time
			timer       clock.Timer
		)

		if !waiting.Empty() {
			at, _ := waiting.Min()
			timer = q.clock.NewTimer(time.Unix(0, at.(int64)).Sub(now))
			nextReadyCh = timer.C()
		}

		select {
		case <-q.stopCh:
			if timer != nil {
				timer.Stop()
			}

			return
		case <-nextReadyCh:
		case entry := <-q.waitingCh:
			insertWaitEntry(waiting, waitingByKey, entry)
		}

		if timer != nil {
			timer.Stop()
		}
	}
}

func insertWaitEntry(waiting *treemap.Map, waitingByKey map[string]int64, entry waitEntry) {
	at := entry.readyAt.UnixNano()

	existing, found := waitingByKey[entry.key]
	if found {
		if existing <= at {
			return
		}

		removeWaitEntry(waiting, existing, entry.key)
	}

	waitingByKey[entry.key] = at

	keys, found := waiting.Get(at)
	if !found {
		keys = sets.New[string]()
		waiting.Put(at, keys)
	}

	keys.(sets.Set[string]).Insert(entry.key)
}

func removeWaitEntry(waiting *treemap.Map, at int64, key string) {
	value, found := waiting.Get(at)
	if !found {
		return
	}

	keys := value.(sets.Set[string])
	keys.Delete(key)

	if keys.Len() == 0 {
		waiting.Remove(at)
	}
}
