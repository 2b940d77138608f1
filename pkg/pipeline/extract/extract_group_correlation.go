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

package extract

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/effluentwatch/discharge-pipeline/pkg/api"
	"github.com/effluentwatch/discharge-pipeline/pkg/config"
	"github.com/effluentwatch/discharge-pipeline/pkg/model"
	operationalMetrics "github.com/effluentwatch/discharge-pipeline/pkg/operational/metrics"
	"github.com/effluentwatch/discharge-pipeline/pkg/pipeline/extract/correlate"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

var (
	bucketsOpen = operationalMetrics.NewGauge(prometheus.GaugeOpts{
		Name: "correlation_buckets_open",
		Help: "Number of currently open correlation buckets across all groups",
	})
	bucketsClosed = operationalMetrics.NewCounterVec(prometheus.CounterOpts{
		Name: "correlation_buckets_closed",
		Help: "Number of correlation buckets closed, by reason",
	}, []string{"reason"})
	lateContributions = operationalMetrics.NewCounter(prometheus.CounterOpts{
		Name: "correlation_late_contributions",
		Help: "Scored readings dropped because their bucket was already closed",
	})
	duplicateContributions = operationalMetrics.NewCounter(prometheus.CounterOpts{
		Name: "correlation_duplicate_contributions",
		Help: "Repeated contributions of one sensor to one bucket; attribution of the bucket is flagged degraded",
	})
	groupAnomalies = operationalMetrics.NewCounterVec(prometheus.CounterOpts{
		Name: "group_anomalies_total",
		Help: "Closed buckets whose composite score exceeded the group threshold",
	}, []string{"group_name"})
)

// ExtractGroupCorrelation buckets scored readings per group and
// sync-tolerance slot, tracks member contributions in a bitset, and emits
// composite RMS scores with per-sensor attribution. Every update to an open
// bucket emits a revision; the record emitted when the bucket closes carries
// bucket_closed = true and is final.
type ExtractGroupCorrelation struct {
	memberships correlate.Memberships
	groups      map[string][]string
	threshold   float64
	idleTimeout time.Duration
	store       *correlate.Store
	clk         clock.Clock
}

func NewExtractGroupCorrelation(params config.StageParam) (Extractor, error) {
	return newExtractGroupCorrelation(params, clock.New())
}

func newExtractGroupCorrelation(params config.StageParam, clk clock.Clock) (Extractor, error) {
	cfg := api.GroupCorrelation{}
	if params.Extract != nil && params.Extract.GroupCorrelation != nil {
		cfg = *params.Extract.GroupCorrelation
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	defs := make([]correlate.GroupDef, 0, len(cfg.Groups))
	groups := map[string][]string{}
	for _, g := range cfg.Groups {
		defs = append(defs, correlate.GroupDef{Name: g.Name, Sensors: g.Sensors})
		groups[g.Name] = g.Sensors
	}
	log.Debugf("NewExtractGroupCorrelation: %d groups, threshold %v, syncTolerance %v",
		len(cfg.Groups), cfg.GroupThreshold, cfg.SyncTolerance.Duration)
	return &ExtractGroupCorrelation{
		memberships: correlate.BuildMemberships(defs),
		groups:      groups,
		threshold:   cfg.GroupThreshold,
		idleTimeout: cfg.BucketIdleTimeout.Duration,
		store:       correlate.NewStore(cfg.SyncTolerance.Duration, clk),
		clk:         clk,
	}, nil
}

// Extract consumes scored readings. Every reading of a group member
// contributes its z-score to the member's bucket, anomalous or not, so that
// several moderately elevated sensors can jointly cross the group threshold.
// Event time also advances the group watermark, closing buckets that fall
// behind it.
func (e *ExtractGroupCorrelation) Extract(in []config.GenericMap) []config.GenericMap {
	var out []config.GenericMap
	for _, entry := range in {
		if entry[model.FieldRecordType] != model.TypeScoredReading {
			continue
		}
		scored, err := model.ScoredFromGenericMap(entry)
		if err != nil {
			log.Errorf("cannot decode scored reading: %v", err)
			continue
		}
		slots, found := e.memberships[scored.SensorID]
		if !found {
			continue
		}
		for _, m := range slots {
			out = append(out, e.contribute(m, scored)...)
			for _, key := range e.store.AdvanceWatermark(m.GroupName, scored.TimestampMs) {
				out = append(out, e.closeBucket(key, "watermark"))
			}
		}
	}
	out = append(out, e.expireIdle()...)
	bucketsOpen.Set(float64(e.store.Len()))
	return out
}

func (e *ExtractGroupCorrelation) contribute(m correlate.Membership, scored model.ScoredReading) []config.GenericMap {
	key := correlate.BucketKey{GroupName: m.GroupName, StartMs: e.store.BucketStart(scored.TimestampMs)}
	if e.store.IsLate(m.GroupName, key.StartMs) {
		lateContributions.Inc()
		log.Warnf("late contribution of sensor %s to closed bucket %s/%d; dropped",
			scored.SensorID, key.GroupName, key.StartMs)
		return nil
	}
	bucket, res := e.store.Contribute(key, scored.SensorID, m.BitIndex, scored.ZScore, scored.Timestamp, scored.TimestampMs)
	if res.Duplicate {
		duplicateContributions.Inc()
		log.Warnf("sensor %s contributed twice to bucket %s/%d; attribution degraded",
			scored.SensorID, key.GroupName, key.StartMs)
	}
	return []config.GenericMap{e.record(key, bucket, false)}
}

func (e *ExtractGroupCorrelation) closeBucket(key correlate.BucketKey, reason string) config.GenericMap {
	bucket := e.store.Get(key)
	rec := e.record(key, bucket, true)
	e.store.Remove(key)
	bucketsClosed.WithLabelValues(reason).Inc()
	if rec[model.FieldIsGroupAnomaly] == true {
		groupAnomalies.WithLabelValues(key.GroupName).Inc()
	}
	return rec
}

func (e *ExtractGroupCorrelation) expireIdle() []config.GenericMap {
	var out []config.GenericMap
	for _, key := range e.store.ExpireIdle(e.idleTimeout) {
		log.Debugf("bucket %s/%d idle for more than %v; closing", key.GroupName, key.StartMs, e.idleTimeout)
		out = append(out, e.closeBucket(key, "idle"))
	}
	return out
}

// Flush closes all open buckets. Called once when the pipeline drains.
func (e *ExtractGroupCorrelation) Flush() []config.GenericMap {
	var out []config.GenericMap
	for _, key := range e.store.AllKeys() {
		out = append(out, e.closeBucket(key, "shutdown"))
	}
	bucketsOpen.Set(0)
	return out
}

func (e *ExtractGroupCorrelation) record(key correlate.BucketKey, bucket *correlate.Bucket, closed bool) config.GenericMap {
	composite := bucket.CompositeScore()
	contributors := correlate.Attribute(bucket.ZScores)
	detail, err := correlate.Detail(contributors)
	if err != nil {
		log.Errorf("cannot render attribution detail for bucket %s/%d: %v", key.GroupName, key.StartMs, err)
	}
	present, missing := correlate.DecodeBitset(e.groups[key.GroupName], bucket.Mask)
	isAnomaly := composite > e.threshold
	rec := model.GroupAnomaly{
		GroupName:           key.GroupName,
		Timestamp:           bucket.LatestTs,
		BucketStartMs:       key.StartMs,
		CompositeScore:      composite,
		ContributingSensors: correlate.JoinSensors(present),
		MissingSensors:      correlate.JoinSensors(missing),
		IsGroupAnomaly:      isAnomaly,
		TopContributor:      correlate.TopContributor(contributors),
		AttributionDetail:   detail,
		AttributionDegraded: bucket.Degraded,
		BucketClosed:        closed,
	}
	if isAnomaly {
		rec.AlertMessage = correlate.AlertMessage(key.GroupName, composite, contributors)
	}
	return rec.ToGenericMap()
}
