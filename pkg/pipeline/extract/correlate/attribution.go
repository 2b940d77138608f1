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

package correlate

import (
	"fmt"
	"math"
	"sort"

	jsoniter "github.com/json-iterator/go"
)

// Contributor is one sensor's share of a bucket's composite score.
type Contributor struct {
	SensorID string  `json:"sensor_id"`
	Fraction float64 `json:"fraction"`
}

// Attribute splits responsibility for a composite score across the bucket's
// contributors. Each sensor's fraction is its squared z-score over the sum of
// squares, so the fractions always total 1 when any z is nonzero. Ordering is
// by fraction descending; ties break on sensor id ascending so that the top
// contributor is deterministic.
func Attribute(zscores map[string]float64) []Contributor {
	var sumSq float64
	for _, z := range zscores {
		sumSq += z * z
	}
	out := make([]Contributor, 0, len(zscores))
	for sensorID, z := range zscores {
		f := 0.0
		if sumSq > 0 {
			f = z * z / sumSq
		}
		out = append(out, Contributor{SensorID: sensorID, Fraction: round3(f)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Fraction != out[j].Fraction {
			return out[i].Fraction > out[j].Fraction
		}
		return out[i].SensorID < out[j].SensorID
	})
	return out
}

// Detail renders the ranked contributors as a JSON array string for the
// attribution_detail field.
func Detail(contributors []Contributor) (string, error) {
	b, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(contributors)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// AlertMessage builds the operator-facing one-liner of a flagged bucket.
func AlertMessage(group string, composite float64, contributors []Contributor) string {
	if len(contributors) == 0 {
		return fmt.Sprintf("group %s anomalous: composite score %.3f", group, composite)
	}
	top := contributors[0]
	return fmt.Sprintf("group %s anomalous: composite score %.3f, led by %s (%.0f%% of signal)",
		group, composite, top.SensorID, top.Fraction*100)
}

// TopContributor returns the first ranked sensor, or empty for an empty
// bucket.
func TopContributor(contributors []Contributor) string {
	if len(contributors) == 0 {
		return ""
	}
	return contributors[0].SensorID
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
