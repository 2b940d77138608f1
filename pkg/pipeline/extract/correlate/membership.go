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

// Package correlate combines per-sensor z-scores into group-level composite
// anomalies over synchronized time buckets. Group membership is tracked as a
// uint64 bitset: each member sensor owns the bit at its index in the group's
// configured sensor list.
package correlate

import "strings"

// Membership is one sensor's slot in one group.
type Membership struct {
	GroupName string
	BitIndex  int
	GroupSize int
}

// Memberships maps a sensor id to every group slot it occupies. A sensor may
// belong to several groups.
type Memberships map[string][]Membership

// GroupDef is the resolved definition of one group, indexable by member bit.
type GroupDef struct {
	Name    string
	Sensors []string
}

// BuildMemberships inverts the group definitions into a per-sensor lookup.
// Definitions are assumed validated (no duplicates, at most 64 members).
func BuildMemberships(groups []GroupDef) Memberships {
	m := Memberships{}
	for _, g := range groups {
		for i, sensorID := range g.Sensors {
			m[sensorID] = append(m[sensorID], Membership{
				GroupName: g.Name,
				BitIndex:  i,
				GroupSize: len(g.Sensors),
			})
		}
	}
	return m
}

// DecodeBitset splits a group's members into contributing and missing lists
// according to the contribution mask, preserving the configured order.
func DecodeBitset(members []string, mask uint64) (present, missing []string) {
	for i, sensorID := range members {
		if mask&(uint64(1)<<uint(i)) != 0 {
			present = append(present, sensorID)
		} else {
			missing = append(missing, sensorID)
		}
	}
	return present, missing
}

// JoinSensors renders a sensor list as the comma-separated form used in
// output records.
func JoinSensors(sensors []string) string {
	return strings.Join(sensors, ",")
}
