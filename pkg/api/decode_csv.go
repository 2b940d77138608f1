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

// DecodeCsv turns raw CSV lines into generic records. The first line seen is
// taken as the header; subsequent lines map header column -> cell string.
type DecodeCsv struct {
	Comma        string   `yaml:"comma,omitempty" json:"comma,omitempty" doc:"field separator, defaults to ','"`
	Header       []string `yaml:"header,omitempty" json:"header,omitempty" doc:"explicit column names; when set, all lines are data lines"`
	SensorColumn string   `yaml:"sensorColumn,omitempty" json:"sensorColumn,omitempty" doc:"column carrying the sensor / factory channel id (default sensor_id)"`
	ValueColumn  string   `yaml:"valueColumn,omitempty" json:"valueColumn,omitempty" doc:"column carrying the measurement used for scoring (default value)"`
	TimeColumn   string   `yaml:"timeColumn,omitempty" json:"timeColumn,omitempty" doc:"column carrying the reading time string (default timestamp)"`
}
