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

package transform

import (
	"github.com/effluentwatch/discharge-pipeline/pkg/api"
	"github.com/effluentwatch/discharge-pipeline/pkg/config"
	"github.com/effluentwatch/discharge-pipeline/pkg/model"
	operationalMetrics "github.com/effluentwatch/discharge-pipeline/pkg/operational/metrics"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

var confirmedAnomalies = operationalMetrics.NewCounterVec(prometheus.CounterOpts{
	Name: "confirmed_anomalies_total",
	Help: "Confirmed anomaly records emitted by the persistence gate",
}, []string{"sensor_id"})

// Persistence suppresses one-off spikes: a sensor's anomaly must persist for
// a configured number of consecutive readings before it is confirmed. Once
// the streak reaches the count, every further anomalous reading re-confirms
// with the grown streak, until a non-anomalous reading resets it to zero.
// Scored readings pass through unchanged; confirmations are appended.
type Persistence struct {
	count   int
	streaks map[string]int
}

func NewTransformPersistence(params config.StageParam) (Transformer, error) {
	cfg := api.Persistence{}
	if params.Transform != nil && params.Transform.Persistence != nil {
		cfg = *params.Transform.Persistence
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Debugf("NewTransformPersistence: count %d", cfg.PersistenceCount)
	return &Persistence{
		count:   cfg.PersistenceCount,
		streaks: map[string]int{},
	}, nil
}

func (p *Persistence) Transform(in []config.GenericMap) []config.GenericMap {
	out := make([]config.GenericMap, 0, len(in))
	for _, entry := range in {
		out = append(out, entry)
		if entry[model.FieldRecordType] != model.TypeScoredReading {
			continue
		}
		scored, err := model.ScoredFromGenericMap(entry)
		if err != nil {
			log.Errorf("cannot decode scored reading: %v", err)
			continue
		}
		if !scored.IsAnomaly {
			delete(p.streaks, scored.SensorID)
			continue
		}
		p.streaks[scored.SensorID]++
		streak := p.streaks[scored.SensorID]
		if streak < p.count {
			continue
		}
		confirmed := model.ConfirmedAnomaly{
			SensorID:         scored.SensorID,
			Timestamp:        scored.Timestamp,
			ConsecutiveCount: streak,
			ZScore:           scored.ZScore,
			Value:            scored.Value,
		}
		confirmedAnomalies.WithLabelValues(scored.SensorID).Inc()
		out = append(out, confirmed.ToGenericMap())
	}
	return out
}
