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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAttributionFractionsSumToOne(t *testing.T) {
	contributors := Attribute(map[string]float64{
		"s1": 3.0,
		"s2": 4.0,
	})
	require.Len(t, contributors, 2)
	// fractions are z^2 / sum(z^2), rounded to 3 decimals
	require.Equal(t, "s2", contributors[0].SensorID)
	require.Equal(t, 0.64, contributors[0].Fraction)
	require.Equal(t, "s1", contributors[1].SensorID)
	require.Equal(t, 0.36, contributors[1].Fraction)
}

func TestAttributionSignInsensitive(t *testing.T) {
	contributors := Attribute(map[string]float64{
		"s1": -4.0,
		"s2": 3.0,
	})
	require.Equal(t, "s1", contributors[0].SensorID)
	require.Equal(t, 0.64, contributors[0].Fraction)
}

func TestAttributionTieBreaksOnSensorID(t *testing.T) {
	contributors := Attribute(map[string]float64{
		"zeta": 2.0,
		"alef": 2.0,
		"mid":  2.0,
	})
	require.Equal(t, "alef", contributors[0].SensorID)
	require.Equal(t, "mid", contributors[1].SensorID)
	require.Equal(t, "zeta", contributors[2].SensorID)
	require.Equal(t, "alef", TopContributor(contributors))
}

func TestAttributionAllZeroScores(t *testing.T) {
	contributors := Attribute(map[string]float64{"s1": 0, "s2": 0})
	require.Len(t, contributors, 2)
	require.Equal(t, 0.0, contributors[0].Fraction)
	require.Equal(t, 0.0, contributors[1].Fraction)
}

func TestDetailRendersRankedJSON(t *testing.T) {
	detail, err := Detail([]Contributor{
		{SensorID: "s2", Fraction: 0.64},
		{SensorID: "s1", Fraction: 0.36},
	})
	require.NoError(t, err)
	require.JSONEq(t, `[{"sensor_id":"s2","fraction":0.64},{"sensor_id":"s1","fraction":0.36}]`, detail)
}

func TestAlertMessageNamesTopContributor(t *testing.T) {
	msg := AlertMessage("outfall-7", 5.25, []Contributor{
		{SensorID: "ph-3", Fraction: 0.8},
		{SensorID: "turb-3", Fraction: 0.2},
	})
	require.Contains(t, msg, "outfall-7")
	require.Contains(t, msg, "5.250")
	require.Contains(t, msg, "ph-3")
	require.Contains(t, msg, "80%")
}

func TestMembershipInversion(t *testing.T) {
	m := BuildMemberships([]GroupDef{
		{Name: "g1", Sensors: []string{"s1", "s2"}},
		{Name: "g2", Sensors: []string{"s2", "s3"}},
	})
	require.Len(t, m["s1"], 1)
	require.Equal(t, 0, m["s1"][0].BitIndex)
	// s2 belongs to both groups, with a different bit in each
	require.Len(t, m["s2"], 2)
	require.Equal(t, "g1", m["s2"][0].GroupName)
	require.Equal(t, 1, m["s2"][0].BitIndex)
	require.Equal(t, "g2", m["s2"][1].GroupName)
	require.Equal(t, 0, m["s2"][1].BitIndex)
}

func TestDecodeBitset(t *testing.T) {
	members := []string{"s1", "s2", "s3"}
	present, missing := DecodeBitset(members, 0b101)
	require.Equal(t, []string{"s1", "s3"}, present)
	require.Equal(t, []string{"s2"}, missing)

	present, missing = DecodeBitset(members, 0)
	require.Empty(t, present)
	require.Equal(t, members, missing)
}
