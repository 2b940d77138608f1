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

// Package test holds helpers shared by the package-level tests.
package test

import (
	"time"

	"github.com/effluentwatch/discharge-pipeline/pkg/config"
	"github.com/effluentwatch/discharge-pipeline/pkg/model"
)

// BaseTime anchors generated readings; tests use offsets from it.
var BaseTime = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

// ReadingAt builds a validated reading record minute-aligned at
// BaseTime + minutes.
func ReadingAt(sensorID string, minutes int, value float64) config.GenericMap {
	ts := BaseTime.Add(time.Duration(minutes) * time.Minute)
	r := model.Reading{
		SensorID:    sensorID,
		Timestamp:   ts.Format("2006-01-02 15:04"),
		TimestampMs: ts.UnixMilli(),
		Value:       value,
	}
	return r.ToGenericMap()
}

// ScoredReadingAt builds a scored reading record minute-aligned at
// BaseTime + minutes.
func ScoredReadingAt(sensorID string, minutes int, value, zscore float64, isAnomaly bool) config.GenericMap {
	ts := BaseTime.Add(time.Duration(minutes) * time.Minute)
	s := model.ScoredReading{
		SensorID:    sensorID,
		Timestamp:   ts.Format("2006-01-02 15:04"),
		TimestampMs: ts.UnixMilli(),
		Value:       value,
		ZScore:      zscore,
		IsAnomaly:   isAnomaly,
	}
	return s.ToGenericMap()
}

// RawRowAt builds an unvalidated raw row such as the csv decoder produces.
func RawRowAt(sensorID string, minutes int, value string) config.GenericMap {
	ts := BaseTime.Add(time.Duration(minutes) * time.Minute)
	return config.GenericMap{
		model.FieldSensorID:  sensorID,
		model.FieldTimestamp: ts.Format("2006-01-02 15:04"),
		model.FieldValue:     value,
	}
}

// FilterByType keeps the records of one record_type.
func FilterByType(records []config.GenericMap, recordType string) []config.GenericMap {
	var out []config.GenericMap
	for _, r := range records {
		if r[model.FieldRecordType] == recordType {
			out = append(out, r)
		}
	}
	return out
}
