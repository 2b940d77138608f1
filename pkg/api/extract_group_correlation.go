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

import "fmt"

// maximum sensors per group; member index is encoded as a bit of a uint64
const MaxGroupMembers = 64

// GroupCorrelation configures the multivariate stage that combines
// per-sensor z-scores into group-level composite anomalies.
type GroupCorrelation struct {
	Groups            []SensorGroup `yaml:"groups" json:"groups" doc:"sensor groups to correlate; must not be empty"`
	GroupThreshold    float64       `yaml:"groupThreshold,omitempty" json:"groupThreshold,omitempty" doc:"RMS z-score above which a bucket is flagged as a group anomaly (strict inequality)"`
	SyncTolerance     Duration      `yaml:"syncTolerance,omitempty" json:"syncTolerance,omitempty" doc:"width of the time bucket aligning readings from different sensors"`
	BucketIdleTimeout Duration      `yaml:"bucketIdleTimeout,omitempty" json:"bucketIdleTimeout,omitempty" doc:"wall-clock inactivity after which an open bucket is force-closed (0 = disabled)"`
}

// SensorGroup names an ordered list of member sensors. A member's position in
// the list is its bit index inside the group's contribution bitset.
type SensorGroup struct {
	Name    string   `yaml:"name" json:"name" doc:"group name, e.g. the discharge point fed by the member sensors"`
	Sensors []string `yaml:"sensors" json:"sensors" doc:"ordered member sensor ids; no duplicates"`
}

func (gc *GroupCorrelation) Validate() error {
	if len(gc.Groups) == 0 {
		return fmt.Errorf("groups must not be empty")
	}
	for _, g := range gc.Groups {
		if g.Name == "" {
			return fmt.Errorf("group with empty name")
		}
		if len(g.Sensors) == 0 {
			return fmt.Errorf("group %q must contain at least one sensor id", g.Name)
		}
		if len(g.Sensors) > MaxGroupMembers {
			return fmt.Errorf("group %q has %d sensors; at most %d are supported", g.Name, len(g.Sensors), MaxGroupMembers)
		}
		seen := map[string]struct{}{}
		for _, s := range g.Sensors {
			if s == "" {
				return fmt.Errorf("group %q contains an empty sensor id", g.Name)
			}
			if _, dup := seen[s]; dup {
				// index defines the bit position; a duplicate would corrupt the bitset
				return fmt.Errorf("group %q lists sensor %q more than once", g.Name, s)
			}
			seen[s] = struct{}{}
		}
	}
	if gc.GroupThreshold <= 0 {
		return fmt.Errorf("groupThreshold must be > 0 (got %v)", gc.GroupThreshold)
	}
	if gc.SyncTolerance.Duration <= 0 {
		return fmt.Errorf("syncTolerance must be >= 1ms (got %v)", gc.SyncTolerance.Duration)
	}
	if gc.BucketIdleTimeout.Duration < 0 {
		return fmt.Errorf("bucketIdleTimeout must be >= 0 (got %v)", gc.BucketIdleTimeout.Duration)
	}
	return nil
}
