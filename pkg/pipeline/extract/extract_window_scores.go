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
	"math"

	"github.com/effluentwatch/discharge-pipeline/pkg/api"
	"github.com/effluentwatch/discharge-pipeline/pkg/config"
	"github.com/effluentwatch/discharge-pipeline/pkg/model"
	operationalMetrics "github.com/effluentwatch/discharge-pipeline/pkg/operational/metrics"
	"github.com/effluentwatch/discharge-pipeline/pkg/pipeline/extract/window"
	"github.com/effluentwatch/discharge-pipeline/pkg/pipeline/utils"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const defaultMaxPendingPerSensor = 1024

var (
	readingsScored = operationalMetrics.NewCounter(prometheus.CounterOpts{
		Name: "readings_scored",
		Help: "Number of readings joined to a window stat and scored",
	})
	anomaliesFlagged = operationalMetrics.NewCounterVec(prometheus.CounterOpts{
		Name: "anomalies_flagged",
		Help: "Number of readings whose |z-score| exceeded the threshold",
	}, []string{"sensor_id"})
	pendingDropped = operationalMetrics.NewCounter(prometheus.CounterOpts{
		Name: "pending_readings_dropped",
		Help: "Readings dropped from the join buffer because it reached its per-sensor cap",
	})
	scoreTypeErrors = operationalMetrics.NewCounter(prometheus.CounterOpts{
		Name: "score_type_contract_errors",
		Help: "Readings rejected by the scorer because a field broke the numeric type contract",
	})
	readingsUnscored = operationalMetrics.NewCounter(prometheus.CounterOpts{
		Name: "readings_unscored",
		Help: "Readings that never matched a window stat, typically the first reading of a sensor",
	})
)

type pendingReading struct {
	tsMs  int64
	ts    string
	value float64
}

// ExtractWindowScores maintains per-sensor sliding-window statistics and
// joins every reading to the stat of the window ending at its timestamp.
// Readings whose stat is not yet available wait in a bounded per-sensor
// buffer; when the buffer is full the oldest waiting reading is dropped.
type ExtractWindowScores struct {
	engine     *window.Engine
	threshold  float64
	epsilon    float64
	maxPending int
	// both maps are owned by the single stage goroutine
	pending map[string][]pendingReading
	stats   map[statKey]window.Stat
}

type statKey struct {
	sensorID    string
	windowEndMs int64
}

func NewExtractWindowScores(params config.StageParam) (Extractor, error) {
	cfg := api.WindowScores{}
	if params.Extract != nil && params.Extract.WindowScores != nil {
		cfg = *params.Extract.WindowScores
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	maxPending := cfg.MaxPendingPerSensor
	if maxPending == 0 {
		maxPending = defaultMaxPendingPerSensor
	}
	log.Debugf("NewExtractWindowScores: duration %v, hop %v, threshold %v",
		cfg.WindowDuration.Duration, cfg.WindowHop.Duration, cfg.ZScoreThreshold)
	return &ExtractWindowScores{
		engine:     window.NewEngine(cfg.WindowDuration.Duration, cfg.WindowHop.Duration),
		threshold:  cfg.ZScoreThreshold,
		epsilon:    cfg.Epsilon,
		maxPending: maxPending,
		pending:    map[string][]pendingReading{},
		stats:      map[statKey]window.Stat{},
	}, nil
}

// Extract feeds each reading into the window engine and emits a scored
// reading for every (reading, stat) pair whose timestamps match exactly.
// Readings with no matching stat are an accepted loss at stream start.
func (e *ExtractWindowScores) Extract(in []config.GenericMap) []config.GenericMap {
	out := make([]config.GenericMap, 0, len(in))
	for _, entry := range in {
		reading, err := model.ReadingFromGenericMap(entry)
		if err != nil {
			log.Errorf("cannot decode reading: %v", err)
			scoreTypeErrors.Inc()
			continue
		}
		if rawValue, present := entry[model.FieldValue]; present {
			if _, err = utils.ConvertToFloat64(rawValue); err != nil {
				log.Errorf("reading for sensor %s: %v", reading.SensorID, err)
				scoreTypeErrors.Inc()
				continue
			}
		}

		stats := e.engine.Add(reading.SensorID, reading.TimestampMs, reading.Value)
		for _, stat := range stats {
			e.stats[statKey{sensorID: stat.SensorID, windowEndMs: stat.WindowEndMs}] = stat
		}
		e.appendPending(reading)
		out = append(out, e.matchPending(reading.SensorID, reading.TimestampMs)...)
	}
	return out
}

func (e *ExtractWindowScores) appendPending(r model.Reading) {
	queue := e.pending[r.SensorID]
	if len(queue) >= e.maxPending {
		dropped := queue[0]
		queue = queue[1:]
		pendingDropped.Inc()
		log.Warnf("join buffer full for sensor %s; dropping reading at %d ms", r.SensorID, dropped.tsMs)
		// the dropped reading's stat will never be consumed
		delete(e.stats, statKey{sensorID: r.SensorID, windowEndMs: dropped.tsMs})
	}
	e.pending[r.SensorID] = append(queue, pendingReading{tsMs: r.TimestampMs, ts: r.Timestamp, value: r.Value})
}

// matchPending scores every waiting reading of the sensor whose stat has
// arrived, preserving arrival order. Stats only ever carry the timestamp of
// the sensor's newest reading, so older unmatched entries are settled as
// unscored rather than kept waiting.
func (e *ExtractWindowScores) matchPending(sensorID string, newestTsMs int64) []config.GenericMap {
	queue := e.pending[sensorID]
	var out []config.GenericMap
	remaining := queue[:0]
	for _, p := range queue {
		key := statKey{sensorID: sensorID, windowEndMs: p.tsMs}
		stat, found := e.stats[key]
		if !found {
			if p.tsMs < newestTsMs {
				readingsUnscored.Inc()
				continue
			}
			remaining = append(remaining, p)
			continue
		}
		delete(e.stats, key)
		out = append(out, e.score(sensorID, p, stat))
	}
	if len(remaining) == 0 {
		delete(e.pending, sensorID)
	} else {
		e.pending[sensorID] = remaining
	}
	return out
}

func (e *ExtractWindowScores) score(sensorID string, p pendingReading, stat window.Stat) config.GenericMap {
	z := window.ZScore(p.value, stat.Mean, stat.Std, e.epsilon)
	isAnomaly := math.Abs(z) > e.threshold
	readingsScored.Inc()
	if isAnomaly {
		anomaliesFlagged.WithLabelValues(sensorID).Inc()
	}
	scored := model.ScoredReading{
		SensorID:    sensorID,
		Timestamp:   p.ts,
		TimestampMs: p.tsMs,
		Value:       p.value,
		RollingMean: stat.Mean,
		RollingStd:  stat.Std,
		ZScore:      z,
		IsAnomaly:   isAnomaly,
	}
	return scored.ToGenericMap()
}
