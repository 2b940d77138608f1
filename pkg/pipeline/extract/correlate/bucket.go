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

package correlate

import (
	"math"
	"sort"
	"time"

	"github.com/benbjohnson/clock"
)

// BucketKey identifies one open bucket: a group and the start of its
// sync-tolerance-aligned time slot.
type BucketKey struct {
	GroupName string
	StartMs   int64
}

// Bucket accumulates the z-score contributions of one group over one time
// slot. The contribution mask is idempotent: re-observing a member sets no
// new bit, but replaces its stored z-score and degrades attribution.
type Bucket struct {
	Mask        uint64
	ZScores     map[string]float64
	LatestTs    string
	LatestTsMs  int64
	Degraded    bool
	LastUpdated time.Time
}

// UpdateResult reports what happened when a contribution was applied.
type UpdateResult struct {
	Duplicate bool
}

// Store owns the open buckets of all groups plus a per-group event-time
// watermark used to close buckets and reject late contributions. It is not
// safe for concurrent use; the owning stage serializes access.
type Store struct {
	syncMs     int64
	graceMs    int64
	buckets    map[BucketKey]*Bucket
	watermarks map[string]int64
	clk        clock.Clock
}

func NewStore(syncTolerance time.Duration, clk clock.Clock) *Store {
	syncMs := syncTolerance.Milliseconds()
	return &Store{
		syncMs:     syncMs,
		graceMs:    syncMs,
		buckets:    map[BucketKey]*Bucket{},
		watermarks: map[string]int64{},
		clk:        clk,
	}
}

// BucketStart aligns a timestamp down to its bucket slot.
func (s *Store) BucketStart(tsMs int64) int64 {
	b := (tsMs / s.syncMs) * s.syncMs
	if tsMs < 0 && tsMs%s.syncMs != 0 {
		b -= s.syncMs
	}
	return b
}

// IsLate reports whether a contribution targets a bucket that the group's
// watermark has already closed. A bucket ending at E closes once the
// watermark reaches E plus one grace interval.
func (s *Store) IsLate(group string, bucketStartMs int64) bool {
	wm, ok := s.watermarks[group]
	if !ok {
		return false
	}
	return bucketStartMs+s.syncMs+s.graceMs <= wm
}

// Contribute applies one sensor's z-score to the bucket, creating it when
// needed. Caller must have ruled out lateness first.
func (s *Store) Contribute(key BucketKey, sensorID string, bitIndex int, zscore float64, ts string, tsMs int64) (*Bucket, UpdateResult) {
	b, found := s.buckets[key]
	if !found {
		b = &Bucket{ZScores: map[string]float64{}}
		s.buckets[key] = b
	}
	res := UpdateResult{}
	bit := uint64(1) << uint(bitIndex)
	if b.Mask&bit != 0 {
		// same member twice in one slot; last value wins, attribution is suspect
		res.Duplicate = true
		b.Degraded = true
	}
	b.Mask |= bit
	b.ZScores[sensorID] = zscore
	if tsMs >= b.LatestTsMs {
		b.LatestTs = ts
		b.LatestTsMs = tsMs
	}
	b.LastUpdated = s.clk.Now()
	return b, res
}

// CompositeScore is the root mean square of the stored z-scores over the
// members observed so far.
func (b *Bucket) CompositeScore() float64 {
	if len(b.ZScores) == 0 {
		return 0
	}
	var sumSq float64
	for _, z := range b.ZScores {
		sumSq += z * z
	}
	return math.Sqrt(sumSq / float64(len(b.ZScores)))
}

// AdvanceWatermark raises the group's event-time watermark and returns the
// keys of this group's buckets that are now closed, oldest first.
func (s *Store) AdvanceWatermark(group string, tsMs int64) []BucketKey {
	wm, ok := s.watermarks[group]
	if !ok || tsMs > wm {
		s.watermarks[group] = tsMs
		wm = tsMs
	}
	var closed []BucketKey
	for key := range s.buckets {
		if key.GroupName == group && key.StartMs+s.syncMs+s.graceMs <= wm {
			closed = append(closed, key)
		}
	}
	sortKeys(closed)
	return closed
}

// ExpireIdle returns the keys of buckets untouched for longer than the idle
// timeout, by wall clock. Used to bound memory when a stream stalls.
func (s *Store) ExpireIdle(timeout time.Duration) []BucketKey {
	if timeout <= 0 {
		return nil
	}
	cutoff := s.clk.Now().Add(-timeout)
	var expired []BucketKey
	for key, b := range s.buckets {
		if b.LastUpdated.Before(cutoff) {
			expired = append(expired, key)
		}
	}
	sortKeys(expired)
	return expired
}

// AllKeys returns every open bucket, oldest first. Used to flush on shutdown.
func (s *Store) AllKeys() []BucketKey {
	keys := make([]BucketKey, 0, len(s.buckets))
	for key := range s.buckets {
		keys = append(keys, key)
	}
	sortKeys(keys)
	return keys
}

// Get returns the bucket for the key, or nil.
func (s *Store) Get(key BucketKey) *Bucket {
	return s.buckets[key]
}

// Remove deletes a bucket after its final record was emitted.
func (s *Store) Remove(key BucketKey) {
	delete(s.buckets, key)
}

// Len returns the number of open buckets.
func (s *Store) Len() int {
	return len(s.buckets)
}

func sortKeys(keys []BucketKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].StartMs != keys[j].StartMs {
			return keys[i].StartMs < keys[j].StartMs
		}
		return keys[i].GroupName < keys[j].GroupName
	})
}
