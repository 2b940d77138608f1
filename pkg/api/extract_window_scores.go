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

// WindowScores configures the sliding-window statistics engine and the
// per-reading z-score join that feeds all downstream detection.
type WindowScores struct {
	WindowDuration      Duration `yaml:"windowDuration,omitempty" json:"windowDuration,omitempty" doc:"width of the trailing statistics window (must be > windowHop)"`
	WindowHop           Duration `yaml:"windowHop,omitempty" json:"windowHop,omitempty" doc:"interval between successive window emissions (must be >= 1ms)"`
	ZScoreThreshold     float64  `yaml:"zscoreThreshold,omitempty" json:"zscoreThreshold,omitempty" doc:"|z| above which a reading is flagged anomalous (strict inequality)"`
	Epsilon             float64  `yaml:"epsilon,omitempty" json:"epsilon,omitempty" doc:"stddev denominator floor; must be in (0, 1e-6)"`
	MaxPendingPerSensor int      `yaml:"maxPendingPerSensor,omitempty" json:"maxPendingPerSensor,omitempty" doc:"readings buffered per sensor awaiting their window stat before the oldest is dropped (default 1024)"`
}

func (ws *WindowScores) Validate() error {
	if ws.WindowHop.Duration <= 0 {
		return fmt.Errorf("windowHop must be >= 1ms (got %v)", ws.WindowHop.Duration)
	}
	if ws.WindowDuration.Duration <= ws.WindowHop.Duration {
		return fmt.Errorf("windowDuration (%v) must be strictly greater than windowHop (%v)",
			ws.WindowDuration.Duration, ws.WindowHop.Duration)
	}
	if ws.ZScoreThreshold <= 0 {
		return fmt.Errorf("zscoreThreshold must be > 0 (got %v)", ws.ZScoreThreshold)
	}
	if ws.Epsilon <= 0 || ws.Epsilon >= 1e-6 {
		return fmt.Errorf("epsilon must be in (0, 1e-6) (got %v); it is a numerical floor for stddev", ws.Epsilon)
	}
	if ws.MaxPendingPerSensor < 0 {
		return fmt.Errorf("maxPendingPerSensor must be >= 0 (got %d)", ws.MaxPendingPerSensor)
	}
	return nil
}

// Persistence configures the consecutive-anomaly gate.
type Persistence struct {
	PersistenceCount int `yaml:"persistenceCount,omitempty" json:"persistenceCount,omitempty" doc:"consecutive anomalous readings required before a confirmed anomaly is emitted"`
}

func (p *Persistence) Validate() error {
	if p.PersistenceCount < 1 {
		return fmt.Errorf("persistenceCount must be >= 1 (got %d)", p.PersistenceCount)
	}
	return nil
}
