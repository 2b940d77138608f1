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

package model

import (
	"testing"

	"github.com/effluentwatch/discharge-pipeline/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestReadingFromGenericMapIsWeaklyTyped(t *testing.T) {
	// json decoding yields float64 timestamps; mapstructure must coerce them
	r, err := ReadingFromGenericMap(config.GenericMap{
		FieldSensorID:    "ph-7",
		FieldTimestampMs: float64(1709280000000),
		FieldValue:       7.2,
	})
	require.NoError(t, err)
	require.Equal(t, "ph-7", r.SensorID)
	require.Equal(t, int64(1709280000000), r.TimestampMs)
	require.Equal(t, 7.2, r.Value)
}

func TestScoredFromGenericMapIgnoresExtraFields(t *testing.T) {
	s, err := ScoredFromGenericMap(config.GenericMap{
		FieldRecordType: TypeScoredReading,
		FieldSensorID:   "ph-7",
		FieldZScore:     4.5,
		FieldIsAnomaly:  true,
		"site":          "plant-3",
	})
	require.NoError(t, err)
	require.Equal(t, 4.5, s.ZScore)
	require.True(t, s.IsAnomaly)
}
