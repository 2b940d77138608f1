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

package api

import (
	"fmt"
	"path"
)

// TransformSanitize is the validation boundary of the pipeline. Rows that do
// not pass it never reach the detection stages.
type TransformSanitize struct {
	TimeFormat        string             `yaml:"timeFormat,omitempty" json:"timeFormat,omitempty" doc:"go reference layout of the timestamp column (default '2006-01-02 15:04')"`
	MaxSensorIDLength int                `yaml:"maxSensorIdLength,omitempty" json:"maxSensorIdLength,omitempty" doc:"maximum allowed length of a sensor id (default 64)"`
	ValueRanges       []SensorValueRange `yaml:"valueRanges,omitempty" json:"valueRanges,omitempty" doc:"allowed value range per sensor-id glob pattern; first match wins"`
}

// SensorValueRange bounds the allowed values of sensors whose id matches
// Pattern (path.Match syntax, e.g. \"*ph*\").
type SensorValueRange struct {
	Pattern string  `yaml:"pattern" json:"pattern" doc:"sensor-id glob pattern"`
	Min     float64 `yaml:"min" json:"min" doc:"minimum allowed value (inclusive)"`
	Max     float64 `yaml:"max" json:"max" doc:"maximum allowed value (inclusive)"`
}

func (ts *TransformSanitize) Validate() error {
	if ts.MaxSensorIDLength < 0 {
		return fmt.Errorf("maxSensorIdLength must be >= 1 (got %d)", ts.MaxSensorIDLength)
	}
	for _, vr := range ts.ValueRanges {
		if vr.Pattern == "" {
			return fmt.Errorf("valueRanges entry with empty pattern")
		}
		if _, err := path.Match(vr.Pattern, "probe"); err != nil {
			return fmt.Errorf("valueRanges pattern %q is not a valid glob: %w", vr.Pattern, err)
		}
		if vr.Min >= vr.Max {
			return fmt.Errorf("valueRanges[%s] min (%v) must be strictly less than max (%v)", vr.Pattern, vr.Min, vr.Max)
		}
	}
	return nil
}
