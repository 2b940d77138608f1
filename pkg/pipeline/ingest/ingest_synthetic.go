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

package ingest

import (
	"math/rand"
	"time"

	"github.com/effluentwatch/discharge-pipeline/pkg/api"
	"github.com/effluentwatch/discharge-pipeline/pkg/config"
	"github.com/effluentwatch/discharge-pipeline/pkg/model"
	operationalMetrics "github.com/effluentwatch/discharge-pipeline/pkg/operational/metrics"
	"github.com/effluentwatch/discharge-pipeline/pkg/pipeline/utils"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

var readingsGenerated = operationalMetrics.NewCounter(prometheus.CounterOpts{
	Name: "ingest_synthetic_readings_generated",
	Help: "Number of synthetic readings generated",
})

const (
	defaultReadingsPerMin    = 60
	defaultSyntheticBatchLen = 10
	defaultBaseValue         = 100.0
	defaultJitter            = 1.0
	defaultSpikeFactor       = 4.0
)

// IngestSynthetic generates readings for the configured sensors at a fixed
// rate, with uniform jitter around a base value and optional periodic spikes.
// Records are emitted as generic maps; pair it with the none decoder.
type IngestSynthetic struct {
	params      api.IngestSynthetic
	exitChan    <-chan struct{}
	perSensorNo map[string]int
}

func (s *IngestSynthetic) Ingest(out chan<- []interface{}) {
	interval := time.Minute / time.Duration(s.params.ReadingsPerMin)
	log.Debugf("synthetic ingest: one reading every %v", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	batch := make([]interface{}, 0, s.params.BatchMaxLen)
	next := 0
	for {
		select {
		case <-s.exitChan:
			log.Debugf("exiting synthetic ingest because of signal")
			return
		case <-ticker.C:
			sensorID := s.params.Sensors[next]
			next = (next + 1) % len(s.params.Sensors)
			batch = append(batch, s.generate(sensorID))
			readingsGenerated.Inc()
			if len(batch) >= s.params.BatchMaxLen {
				out <- batch
				batch = make([]interface{}, 0, s.params.BatchMaxLen)
			}
		}
	}
}

func (s *IngestSynthetic) generate(sensorID string) config.GenericMap {
	s.perSensorNo[sensorID]++
	value := s.params.BaseValue + (rand.Float64()*2-1)*s.params.Jitter
	if s.params.SpikeEvery > 0 && s.perSensorNo[sensorID]%s.params.SpikeEvery == 0 {
		value = s.params.BaseValue * s.params.SpikeFactor
	}
	now := time.Now()
	reading := model.Reading{
		SensorID:    sensorID,
		Timestamp:   now.Format(time.RFC3339),
		TimestampMs: now.UnixMilli(),
		Value:       value,
	}
	return reading.ToGenericMap()
}

func NewIngestSynthetic(params config.StageParam) (Ingester, error) {
	cfg := api.IngestSynthetic{}
	if params.Ingest != nil && params.Ingest.Synthetic != nil {
		cfg = *params.Ingest.Synthetic
	}
	if len(cfg.Sensors) == 0 {
		return nil, errors.New("ingest synthetic: missing sensors")
	}
	if cfg.ReadingsPerMin == 0 {
		cfg.ReadingsPerMin = defaultReadingsPerMin
	}
	if cfg.BatchMaxLen == 0 {
		cfg.BatchMaxLen = defaultSyntheticBatchLen
	}
	if cfg.BaseValue == 0 {
		cfg.BaseValue = defaultBaseValue
	}
	if cfg.Jitter == 0 {
		cfg.Jitter = defaultJitter
	}
	if cfg.SpikeFactor == 0 {
		cfg.SpikeFactor = defaultSpikeFactor
	}
	exitChan := make(chan struct{})
	utils.RegisterExitChannel(exitChan)
	return &IngestSynthetic{
		params:      cfg,
		exitChan:    exitChan,
		perSensorNo: map[string]int{},
	}, nil
}
