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

package api

// IngestSynthetic generates fake sensor readings; used for demos and load tests.
type IngestSynthetic struct {
	Sensors        []string `yaml:"sensors,omitempty" json:"sensors,omitempty" doc:"sensor ids to generate readings for"`
	ReadingsPerMin int      `yaml:"readingsPerMin,omitempty" json:"readingsPerMin,omitempty" doc:"reading rate across all sensors"`
	BatchMaxLen    int      `yaml:"batchMaxLen,omitempty" json:"batchMaxLen,omitempty" doc:"the number of accumulated readings before being forwarded for processing"`
	BaseValue      float64  `yaml:"baseValue,omitempty" json:"baseValue,omitempty" doc:"mean of the generated values"`
	Jitter         float64  `yaml:"jitter,omitempty" json:"jitter,omitempty" doc:"half-width of the uniform noise added to baseValue"`
	SpikeEvery     int      `yaml:"spikeEvery,omitempty" json:"spikeEvery,omitempty" doc:"emit an anomalous spike every N readings per sensor (0 = never)"`
	SpikeFactor    float64  `yaml:"spikeFactor,omitempty" json:"spikeFactor,omitempty" doc:"multiplier applied to baseValue on a spike"`
}
