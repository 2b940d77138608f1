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
	"strings"
	"testing"
	"time"

	"github.com/effluentwatch/discharge-pipeline/pkg/api"
	"github.com/effluentwatch/discharge-pipeline/pkg/config"
	"github.com/effluentwatch/discharge-pipeline/pkg/model"
	"github.com/effluentwatch/discharge-pipeline/pkg/test"
	"github.com/stretchr/testify/require"
)

func sanitizeParams(cfg api.TransformSanitize) config.StageParam {
	return config.StageParam{
		Name:      "sanitize",
		Transform: &config.Transform{Type: api.SanitizeType, Sanitize: &cfg},
	}
}

func TestSanitizeValidRow(t *testing.T) {
	sanitizer, err := NewTransformSanitize(sanitizeParams(api.TransformSanitize{}))
	require.NoError(t, err)

	out := sanitizer.Transform([]config.GenericMap{test.RawRowAt("ph-7", 0, "7.2")})
	require.Len(t, out, 1)
	rec := out[0]
	require.Equal(t, model.TypeReading, rec[model.FieldRecordType])
	require.Equal(t, "ph-7", rec[model.FieldSensorID])
	require.Equal(t, 7.2, rec[model.FieldValue])
	require.Equal(t, test.BaseTime.UnixMilli(), rec[model.FieldTimestampMs])
}

func TestSanitizeDropsMalformedRows(t *testing.T) {
	sanitizer, err := NewTransformSanitize(sanitizeParams(api.TransformSanitize{}))
	require.NoError(t, err)

	missingSensor := test.RawRowAt("ph-7", 0, "7.2")
	delete(missingSensor, model.FieldSensorID)

	emptySensor := test.RawRowAt("  ", 0, "7.2")

	badTime := test.RawRowAt("ph-7", 0, "7.2")
	badTime[model.FieldTimestamp] = "yesterday at noon"

	missingValue := test.RawRowAt("ph-7", 0, "7.2")
	delete(missingValue, model.FieldValue)

	badValue := test.RawRowAt("ph-7", 0, "not-a-number")

	out := sanitizer.Transform([]config.GenericMap{
		missingSensor, emptySensor, badTime, missingValue, badValue,
	})
	require.Empty(t, out)
}

func TestSanitizeRejectsLongSensorID(t *testing.T) {
	sanitizer, err := NewTransformSanitize(sanitizeParams(api.TransformSanitize{MaxSensorIDLength: 8}))
	require.NoError(t, err)

	out := sanitizer.Transform([]config.GenericMap{
		test.RawRowAt(strings.Repeat("x", 9), 0, "7.2"),
		test.RawRowAt("short", 0, "7.2"),
	})
	require.Len(t, out, 1)
	require.Equal(t, "short", out[0][model.FieldSensorID])
}

func TestSanitizeRejectsNonNumericTypedValue(t *testing.T) {
	sanitizer, err := NewTransformSanitize(sanitizeParams(api.TransformSanitize{}))
	require.NoError(t, err)

	row := test.RawRowAt("ph-7", 0, "7.2")
	row[model.FieldValue] = []string{"nope"}
	out := sanitizer.Transform([]config.GenericMap{row})
	require.Empty(t, out)
}

func TestSanitizeValueRanges(t *testing.T) {
	sanitizer, err := NewTransformSanitize(sanitizeParams(api.TransformSanitize{
		ValueRanges: []api.SensorValueRange{
			{Pattern: "ph-*", Min: 0, Max: 14},
			{Pattern: "*", Min: -1e6, Max: 1e6},
		},
	}))
	require.NoError(t, err)

	out := sanitizer.Transform([]config.GenericMap{
		test.RawRowAt("ph-7", 0, "7.2"),    // in range
		test.RawRowAt("ph-7", 1, "15.0"),   // above the ph range
		test.RawRowAt("ph-7", 2, "-0.5"),   // below the ph range
		test.RawRowAt("turb-7", 3, "950"),  // matches the catch-all
		test.RawRowAt("turb-7", 4, "2e12"), // outside the catch-all
	})
	require.Len(t, out, 2)
	require.Equal(t, 7.2, out[0][model.FieldValue])
	require.Equal(t, 950.0, out[1][model.FieldValue])
}

func TestSanitizeRejectsUnmatchedSensorWhenRangesConfigured(t *testing.T) {
	sanitizer, err := NewTransformSanitize(sanitizeParams(api.TransformSanitize{
		ValueRanges: []api.SensorValueRange{{Pattern: "ph-*", Min: 0, Max: 14}},
	}))
	require.NoError(t, err)

	out := sanitizer.Transform([]config.GenericMap{test.RawRowAt("turb-7", 0, "950")})
	require.Empty(t, out)
}

func TestSanitizeCustomTimeFormat(t *testing.T) {
	sanitizer, err := NewTransformSanitize(sanitizeParams(api.TransformSanitize{
		TimeFormat: "2006-01-02T15:04:05",
	}))
	require.NoError(t, err)

	row := config.GenericMap{
		model.FieldSensorID:  "ph-7",
		model.FieldTimestamp: "2024-03-01T08:00:30",
		model.FieldValue:     "7.2",
	}
	out := sanitizer.Transform([]config.GenericMap{row})
	require.Len(t, out, 1)
	require.Equal(t, test.BaseTime.Add(30*time.Second).UnixMilli(), out[0][model.FieldTimestampMs])
}

func TestSanitizePreservesExtraColumns(t *testing.T) {
	sanitizer, err := NewTransformSanitize(sanitizeParams(api.TransformSanitize{}))
	require.NoError(t, err)

	row := test.RawRowAt("ph-7", 0, "7.2")
	row["site"] = "plant-3"
	out := sanitizer.Transform([]config.GenericMap{row})
	require.Len(t, out, 1)
	require.Equal(t, "plant-3", out[0]["site"])
}
