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

// Package model defines the typed records exchanged by the detection stages
// and their conversion to the config.GenericMap boundary representation.
package model

import (
	"github.com/effluentwatch/discharge-pipeline/pkg/config"
	"github.com/mitchellh/mapstructure"
)

// field names of the generic record representation
const (
	FieldSensorID            = "sensor_id"
	FieldTimestamp           = "timestamp"
	FieldTimestampMs         = "timestamp_ms"
	FieldValue               = "value"
	FieldRollingMean         = "rolling_mean"
	FieldRollingStd          = "rolling_std"
	FieldZScore              = "z_score"
	FieldIsAnomaly           = "is_anomaly"
	FieldConsecutiveCount    = "consecutive_count"
	FieldGroupName           = "group_name"
	FieldCompositeScore      = "composite_score"
	FieldContributingSensors = "contributing_sensors"
	FieldMissingSensors      = "missing_sensors"
	FieldIsGroupAnomaly      = "is_group_anomaly"
	FieldTopContributor      = "top_contributor"
	FieldAttributionDetail   = "attribution_detail"
	FieldAlertMessage        = "alert_message"
	FieldAttributionDegraded = "attribution_degraded"
	FieldBucketStartMs       = "bucket_start_ms"
	FieldBucketClosed        = "bucket_closed"
	FieldRecordType          = "record_type"
)

// record_type values
const (
	TypeReading          = "reading"
	TypeScoredReading    = "scored_reading"
	TypeConfirmedAnomaly = "confirmed_anomaly"
	TypeGroupAnomaly     = "group_anomaly"
)

// Reading is one validated sensor observation. Immutable once observed.
type Reading struct {
	SensorID    string  `mapstructure:"sensor_id"`
	Timestamp   string  `mapstructure:"timestamp"`
	TimestampMs int64   `mapstructure:"timestamp_ms"`
	Value       float64 `mapstructure:"value"`
}

// ScoredReading is a Reading joined to the statistics of the window ending at
// its timestamp.
type ScoredReading struct {
	SensorID    string  `mapstructure:"sensor_id"`
	Timestamp   string  `mapstructure:"timestamp"`
	TimestampMs int64   `mapstructure:"timestamp_ms"`
	Value       float64 `mapstructure:"value"`
	RollingMean float64 `mapstructure:"rolling_mean"`
	RollingStd  float64 `mapstructure:"rolling_std"`
	ZScore      float64 `mapstructure:"z_score"`
	IsAnomaly   bool    `mapstructure:"is_anomaly"`
}

// ConfirmedAnomaly is emitted by the persistence gate for every reading whose
// anomaly streak has reached the configured count.
type ConfirmedAnomaly struct {
	SensorID         string  `mapstructure:"sensor_id"`
	Timestamp        string  `mapstructure:"timestamp"`
	ConsecutiveCount int     `mapstructure:"consecutive_count"`
	ZScore           float64 `mapstructure:"z_score"`
	Value            float64 `mapstructure:"value"`
}

// GroupAnomaly is the group-level composite score of one time bucket, with
// attribution across the contributing sensors.
type GroupAnomaly struct {
	GroupName           string  `mapstructure:"group_name"`
	Timestamp           string  `mapstructure:"timestamp"`
	BucketStartMs       int64   `mapstructure:"bucket_start_ms"`
	CompositeScore      float64 `mapstructure:"composite_score"`
	ContributingSensors string  `mapstructure:"contributing_sensors"`
	MissingSensors      string  `mapstructure:"missing_sensors"`
	IsGroupAnomaly      bool    `mapstructure:"is_group_anomaly"`
	TopContributor      string  `mapstructure:"top_contributor"`
	AttributionDetail   string  `mapstructure:"attribution_detail"`
	AlertMessage        string  `mapstructure:"alert_message"`
	AttributionDegraded bool    `mapstructure:"attribution_degraded"`
	BucketClosed        bool    `mapstructure:"bucket_closed"`
}

func (r *Reading) ToGenericMap() config.GenericMap {
	return config.GenericMap{
		FieldRecordType:  TypeReading,
		FieldSensorID:    r.SensorID,
		FieldTimestamp:   r.Timestamp,
		FieldTimestampMs: r.TimestampMs,
		FieldValue:       r.Value,
	}
}

func (s *ScoredReading) ToGenericMap() config.GenericMap {
	return config.GenericMap{
		FieldRecordType:  TypeScoredReading,
		FieldSensorID:    s.SensorID,
		FieldTimestamp:   s.Timestamp,
		FieldTimestampMs: s.TimestampMs,
		FieldValue:       s.Value,
		FieldRollingMean: s.RollingMean,
		FieldRollingStd:  s.RollingStd,
		FieldZScore:      s.ZScore,
		FieldIsAnomaly:   s.IsAnomaly,
	}
}

func (c *ConfirmedAnomaly) ToGenericMap() config.GenericMap {
	return config.GenericMap{
		FieldRecordType:       TypeConfirmedAnomaly,
		FieldSensorID:         c.SensorID,
		FieldTimestamp:        c.Timestamp,
		FieldConsecutiveCount: c.ConsecutiveCount,
		FieldZScore:           c.ZScore,
		FieldValue:            c.Value,
	}
}

func (g *GroupAnomaly) ToGenericMap() config.GenericMap {
	return config.GenericMap{
		FieldRecordType:          TypeGroupAnomaly,
		FieldGroupName:           g.GroupName,
		FieldTimestamp:           g.Timestamp,
		FieldBucketStartMs:       g.BucketStartMs,
		FieldCompositeScore:      g.CompositeScore,
		FieldContributingSensors: g.ContributingSensors,
		FieldMissingSensors:      g.MissingSensors,
		FieldIsGroupAnomaly:      g.IsGroupAnomaly,
		FieldTopContributor:      g.TopContributor,
		FieldAttributionDetail:   g.AttributionDetail,
		FieldAlertMessage:        g.AlertMessage,
		FieldAttributionDegraded: g.AttributionDegraded,
		FieldBucketClosed:        g.BucketClosed,
	}
}

func decode(in config.GenericMap, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(map[string]interface{}(in))
}

// ReadingFromGenericMap decodes a validated reading record.
func ReadingFromGenericMap(in config.GenericMap) (Reading, error) {
	r := Reading{}
	err := decode(in, &r)
	return r, err
}

// ScoredFromGenericMap decodes a scored reading record.
func ScoredFromGenericMap(in config.GenericMap) (ScoredReading, error) {
	s := ScoredReading{}
	err := decode(in, &s)
	return s, err
}
