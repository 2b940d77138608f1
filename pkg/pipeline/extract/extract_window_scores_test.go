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
	"testing"
	"time"

	"github.com/effluentwatch/discharge-pipeline/pkg/api"
	"github.com/effluentwatch/discharge-pipeline/pkg/config"
	"github.com/effluentwatch/discharge-pipeline/pkg/model"
	"github.com/effluentwatch/discharge-pipeline/pkg/test"
	"github.com/stretchr/testify/require"
)

func windowScoresParams(duration, hop time.Duration) config.StageParam {
	return config.StageParam{
		Name: "scores",
		Extract: &config.Extract{
			Type: api.WindowType,
			WindowScores: &api.WindowScores{
				WindowDuration:  api.Duration{Duration: duration},
				WindowHop:       api.Duration{Duration: hop},
				ZScoreThreshold: 3.0,
				Epsilon:         1e-9,
			},
		},
	}
}

func TestWindowScoresValidation(t *testing.T) {
	params := windowScoresParams(time.Minute, 2*time.Minute)
	_, err := NewExtractWindowScores(params)
	require.Error(t, err)

	params = windowScoresParams(5*time.Minute, 30*time.Second)
	params.Extract.WindowScores.Epsilon = 1
	_, err = NewExtractWindowScores(params)
	require.Error(t, err)

	// the stage type alone, with no window scores section, is a config error
	_, err = NewExtractWindowScores(config.StageParam{Name: "scores", Extract: &config.Extract{Type: api.WindowType}})
	require.Error(t, err)

	params = windowScoresParams(5*time.Minute, 30*time.Second)
	_, err = NewExtractWindowScores(params)
	require.NoError(t, err)
}

func TestZScoreEqualToThresholdIsNotAnomalous(t *testing.T) {
	extractor, err := NewExtractWindowScores(windowScoresParams(5*time.Minute, 30*time.Second))
	require.NoError(t, err)

	// history [100, 200] gives mean 150 and stddev 50; with threshold 3.0
	// a reading of exactly 300 lands on the boundary and must stay clean
	extractor.Extract([]config.GenericMap{test.ReadingAt("s1", 0, 100)})
	extractor.Extract([]config.GenericMap{test.ReadingAt("s1", 1, 200)})
	out := extractor.Extract([]config.GenericMap{test.ReadingAt("s1", 2, 300)})
	require.Len(t, out, 1)
	require.Equal(t, 3.0, out[0][model.FieldZScore])
	require.Equal(t, false, out[0][model.FieldIsAnomaly])

	// one unit past the boundary flips the flag
	extractor.Extract([]config.GenericMap{test.ReadingAt("s2", 0, 100)})
	extractor.Extract([]config.GenericMap{test.ReadingAt("s2", 1, 200)})
	out = extractor.Extract([]config.GenericMap{test.ReadingAt("s2", 2, 301)})
	require.Len(t, out, 1)
	require.Equal(t, true, out[0][model.FieldIsAnomaly])
}

func TestFirstReadingOfSensorIsNotScored(t *testing.T) {
	extractor, err := NewExtractWindowScores(windowScoresParams(5*time.Minute, 30*time.Second))
	require.NoError(t, err)

	out := extractor.Extract([]config.GenericMap{test.ReadingAt("s1", 0, 100)})
	require.Empty(t, out)
}

func TestFlatBaselineScoresZero(t *testing.T) {
	extractor, err := NewExtractWindowScores(windowScoresParams(5*time.Minute, 30*time.Second))
	require.NoError(t, err)

	extractor.Extract([]config.GenericMap{test.ReadingAt("s1", 0, 100)})
	out := extractor.Extract([]config.GenericMap{test.ReadingAt("s1", 1, 100)})
	require.Len(t, out, 1)
	require.Equal(t, model.TypeScoredReading, out[0][model.FieldRecordType])
	require.Equal(t, 0.0, out[0][model.FieldZScore])
	require.Equal(t, false, out[0][model.FieldIsAnomaly])
	require.Equal(t, 100.0, out[0][model.FieldRollingMean])
	require.Equal(t, 0.0, out[0][model.FieldRollingStd])
}

func TestSpikeAgainstFlatHistoryIsAnomalous(t *testing.T) {
	extractor, err := NewExtractWindowScores(windowScoresParams(5*time.Minute, 30*time.Second))
	require.NoError(t, err)

	var out []config.GenericMap
	for minutes, value := range []float64{100, 100, 100} {
		out = extractor.Extract([]config.GenericMap{test.ReadingAt("s1", minutes, value)})
	}
	out = extractor.Extract([]config.GenericMap{test.ReadingAt("s1", 3, 400)})
	require.Len(t, out, 1)
	require.Equal(t, true, out[0][model.FieldIsAnomaly])
	// flat history, stddev floored by epsilon, enormous z
	require.Greater(t, out[0][model.FieldZScore].(float64), 1e9)
}

func TestNegativeSpikeIsAnomalousToo(t *testing.T) {
	extractor, err := NewExtractWindowScores(windowScoresParams(5*time.Minute, 30*time.Second))
	require.NoError(t, err)

	extractor.Extract([]config.GenericMap{test.ReadingAt("s1", 0, 100)})
	extractor.Extract([]config.GenericMap{test.ReadingAt("s1", 1, 100)})
	out := extractor.Extract([]config.GenericMap{test.ReadingAt("s1", 2, -200)})
	require.Len(t, out, 1)
	require.Equal(t, true, out[0][model.FieldIsAnomaly])
	require.Less(t, out[0][model.FieldZScore].(float64), 0.0)
}

func TestNonNumericValueIsRejected(t *testing.T) {
	extractor, err := NewExtractWindowScores(windowScoresParams(5*time.Minute, 30*time.Second))
	require.NoError(t, err)

	entry := test.ReadingAt("s1", 0, 100)
	entry[model.FieldValue] = true
	out := extractor.Extract([]config.GenericMap{entry})
	require.Empty(t, out)

	// the engine must not have been polluted by the rejected entry
	out = extractor.Extract([]config.GenericMap{test.ReadingAt("s1", 1, 100)})
	require.Empty(t, out)
}

func TestBatchProcessingKeepsOrder(t *testing.T) {
	extractor, err := NewExtractWindowScores(windowScoresParams(5*time.Minute, 30*time.Second))
	require.NoError(t, err)

	out := extractor.Extract([]config.GenericMap{
		test.ReadingAt("s1", 0, 100),
		test.ReadingAt("s1", 1, 100),
		test.ReadingAt("s1", 2, 100),
	})
	require.Len(t, out, 2)
	require.Equal(t, test.BaseTime.Add(time.Minute).UnixMilli(), out[0][model.FieldTimestampMs])
	require.Equal(t, test.BaseTime.Add(2*time.Minute).UnixMilli(), out[1][model.FieldTimestampMs])
}
