/*
 * Copyright (C) 2022 IBM, Inc.
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
	"path"
	"strings"
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

// DefaultTimeFormat matches timestamps like "2024-03-01 08:15".
const DefaultTimeFormat = "2006-01-02 15:04"

const defaultMaxSensorIDLength = 64

var (
	rowsSanitized = operationalMetrics.NewCounter(prometheus.CounterOpts{
		Name: "rows_sanitized",
		Help: "Number of input rows that passed validation",
	})
	rowsRejected = operationalMetrics.NewCounterVec(prometheus.CounterOpts{
		Name: "rows_rejected",
		Help: "Number of input rows dropped by validation, by reason",
	}, []string{"reason"})
)

// Sanitize is the validation boundary between raw decoded rows and the typed
// readings the detection stages consume. Rows failing any check are dropped,
// logged and counted; they never reach scoring.
type Sanitize struct {
	timeFormat  string
	maxIDLength int
	valueRanges []api.SensorValueRange
}

func NewTransformSanitize(params config.StageParam) (Transformer, error) {
	cfg := api.TransformSanitize{}
	if params.Transform != nil && params.Transform.Sanitize != nil {
		cfg = *params.Transform.Sanitize
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = DefaultTimeFormat
	}
	maxIDLength := cfg.MaxSensorIDLength
	if maxIDLength == 0 {
		maxIDLength = defaultMaxSensorIDLength
	}
	return &Sanitize{
		timeFormat:  timeFormat,
		maxIDLength: maxIDLength,
		valueRanges: cfg.ValueRanges,
	}, nil
}

func (s *Sanitize) Transform(in []config.GenericMap) []config.GenericMap {
	out := make([]config.GenericMap, 0, len(in))
	for _, entry := range in {
		reading, reason, err := s.sanitize(entry)
		if err != nil {
			rowsRejected.WithLabelValues(reason).Inc()
			log.Warnf("dropping row (%s): %v", reason, err)
			continue
		}
		rowsSanitized.Inc()
		rec := entry.Copy()
		for k, v := range reading.ToGenericMap() {
			rec[k] = v
		}
		out = append(out, rec)
	}
	return out
}

func (s *Sanitize) sanitize(entry config.GenericMap) (*model.Reading, string, error) {
	sensorID, err := stringField(entry, model.FieldSensorID)
	if err != nil {
		return nil, "malformed", err
	}
	sensorID = strings.TrimSpace(sensorID)
	if sensorID == "" {
		return nil, "malformed", errors.New("empty sensor id")
	}
	if len(sensorID) > s.maxIDLength {
		return nil, "malformed", errors.Errorf("sensor id %q longer than %d characters", sensorID, s.maxIDLength)
	}

	tsRaw, err := stringField(entry, model.FieldTimestamp)
	if err != nil {
		return nil, "malformed", err
	}
	tsRaw = strings.TrimSpace(tsRaw)
	ts, err := time.Parse(s.timeFormat, tsRaw)
	if err != nil {
		return nil, "malformed", errors.Wrapf(err, "cannot parse timestamp %q", tsRaw)
	}

	rawValue, present := entry[model.FieldValue]
	if !present {
		return nil, "malformed", errors.New("missing value field")
	}
	value, err := utils.ParseFloat64(rawValue)
	if err != nil {
		if _, contract := err.(*utils.ErrNonNumeric); contract {
			return nil, "type_contract", err
		}
		return nil, "malformed", err
	}

	if reason, err := s.checkRange(sensorID, value); err != nil {
		return nil, reason, err
	}

	return &model.Reading{
		SensorID:    sensorID,
		Timestamp:   tsRaw,
		TimestampMs: ts.UnixMilli(),
		Value:       value,
	}, "", nil
}

// checkRange applies the first value range whose pattern matches the sensor
// id. With ranges configured, a sensor matching no pattern is rejected.
func (s *Sanitize) checkRange(sensorID string, value float64) (string, error) {
	if len(s.valueRanges) == 0 {
		return "", nil
	}
	for _, vr := range s.valueRanges {
		matched, _ := path.Match(vr.Pattern, sensorID)
		if !matched {
			continue
		}
		if value < vr.Min || value > vr.Max {
			return "out_of_range", errors.Errorf("sensor %s value %v outside [%v, %v]", sensorID, value, vr.Min, vr.Max)
		}
		return "", nil
	}
	return "unknown_sensor", errors.Errorf("sensor %s matches no configured value range", sensorID)
}

func stringField(entry config.GenericMap, field string) (string, error) {
	raw, present := entry[field]
	if !present {
		return "", errors.Errorf("missing %s field", field)
	}
	s, ok := raw.(string)
	if !ok {
		return "", errors.Errorf("%s is %T, expected string", field, raw)
	}
	return s, nil
}
