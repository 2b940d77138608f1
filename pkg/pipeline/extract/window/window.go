/*
 * Copyright (C) 2023 IBM, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

// Package window maintains per-sensor sliding-window statistics over event
// time. Windows hop on a fixed interval and are evaluated lazily: all
// bookkeeping happens when a reading of the same sensor arrives, so an idle
// sensor costs nothing.
package window

import (
	"container/list"
	"math"
	"time"
)

// Stat is the finalized statistics of one window. WindowEndMs is the
// timestamp of the reading that triggered finalization; the window itself
// covers [WindowEndMs - duration, WindowEndMs) and therefore never contains
// the triggering reading.
type Stat struct {
	SensorID    string
	WindowEndMs int64
	Mean        float64
	Std         float64
	Count       int
}

type entry struct {
	tsMs  int64
	value float64
}

// accumulator holds the running sums of one sensor. Eviction slides the
// window forward entry by entry; the full set is never rescanned.
type accumulator struct {
	entries    *list.List // of *entry, ordered by arrival
	sum        float64
	sumSq      float64
	count      int
	nextHopMs  int64
	lastSeenMs int64
}

func newAccumulator() *accumulator {
	return &accumulator{entries: list.New()}
}

func (a *accumulator) push(tsMs int64, value float64) {
	a.entries.PushBack(&entry{tsMs: tsMs, value: value})
	a.sum += value
	a.sumSq += value * value
	a.count++
	a.lastSeenMs = tsMs
}

// evictBefore drops entries older than cutoffMs, adjusting the running sums.
func (a *accumulator) evictBefore(cutoffMs int64) {
	for a.entries.Len() > 0 {
		front := a.entries.Front()
		e := front.Value.(*entry)
		if e.tsMs >= cutoffMs {
			break
		}
		a.entries.Remove(front)
		a.sum -= e.value
		a.sumSq -= e.value * e.value
		a.count--
	}
}

func (a *accumulator) stat(sensorID string, windowEndMs int64) Stat {
	mean := a.sum / float64(a.count)
	// floating point drift can push the variance slightly negative
	variance := a.sumSq/float64(a.count) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return Stat{
		SensorID:    sensorID,
		WindowEndMs: windowEndMs,
		Mean:        mean,
		Std:         math.Sqrt(variance),
		Count:       a.count,
	}
}

// Engine computes hopping-window statistics for many sensors, sharded by
// sensor id.
type Engine struct {
	durationMs int64
	hopMs      int64
	store      *Store
}

func NewEngine(duration, hop time.Duration) *Engine {
	return &Engine{
		durationMs: duration.Milliseconds(),
		hopMs:      hop.Milliseconds(),
		store:      NewStore(),
	}
}

// Add ingests one reading and returns the window statistics it finalized,
// if any. A stat is emitted when the reading crosses the sensor's next hop
// boundary; the stat covers the half-open window ending at the reading's own
// timestamp, so the reading being scored never contributes to its own
// baseline. An accumulator with no entries in range emits nothing.
func (e *Engine) Add(sensorID string, tsMs int64, value float64) []Stat {
	shard := e.store.shardFor(sensorID)
	shard.mux.Lock()
	defer shard.mux.Unlock()

	acc, found := shard.accumulators[sensorID]
	if !found {
		acc = newAccumulator()
		shard.accumulators[sensorID] = acc
		acc.nextHopMs = nextBoundary(tsMs, e.hopMs)
	}

	var stats []Stat
	if tsMs >= acc.nextHopMs {
		acc.evictBefore(tsMs - e.durationMs)
		if acc.count > 0 {
			stats = append(stats, acc.stat(sensorID, tsMs))
		}
		acc.nextHopMs = nextBoundary(tsMs, e.hopMs)
	}
	acc.push(tsMs, value)
	return stats
}

// Sensors returns the ids of all tracked sensors.
func (e *Engine) Sensors() []string {
	return e.store.keys()
}

// nextBoundary returns the first hop boundary strictly after tsMs.
func nextBoundary(tsMs, hopMs int64) int64 {
	b := (tsMs / hopMs) * hopMs
	if tsMs < 0 && tsMs%hopMs != 0 {
		b -= hopMs
	}
	return b + hopMs
}
