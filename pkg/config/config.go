/*
 * Copyright (C) 2021 IBM, Inc.
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

package config

import (
	"encoding/json"

	"github.com/effluentwatch/discharge-pipeline/pkg/api"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// GenericMap is the record type flowing between pipeline stages.
type GenericMap map[string]interface{}

// Copy returns a shallow copy of the map.
func (m GenericMap) Copy() GenericMap {
	result := make(GenericMap, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}

type Options struct {
	PipeLine        string
	Parameters      string
	MetricsSettings string
	Health          Health
	Profile         Profile
}

type Health struct {
	Address string
	Port    string
}

type Profile struct {
	Port int
}

type MetricsSettings struct {
	Address string `yaml:"address,omitempty" json:"address,omitempty" doc:"address of the prometheus server"`
	Port    int    `yaml:"port,omitempty" json:"port,omitempty" doc:"port of the prometheus server (0 = disabled)"`
	Prefix  string `yaml:"prefix,omitempty" json:"prefix,omitempty" doc:"prefix for the metrics names"`
	NoPanic bool   `yaml:"noPanic,omitempty" json:"noPanic,omitempty" doc:"tolerate failures of the metrics server instead of panicking"`
}

// ConfigFileStruct is the parsed representation of the whole configuration.
type ConfigFileStruct struct {
	LogLevel        string          `yaml:"log-level,omitempty" json:"log-level,omitempty"`
	MetricsSettings MetricsSettings `yaml:"metricsSettings,omitempty" json:"metricsSettings,omitempty"`
	Pipeline        []Stage         `yaml:"pipeline,omitempty" json:"pipeline,omitempty"`
	Parameters      []StageParam    `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

// Stage is a connection in the pipeline graph: stage Name consumes the
// output of stage Follows.
type Stage struct {
	Name    string `yaml:"name" json:"name"`
	Follows string `yaml:"follows,omitempty" json:"follows,omitempty"`
}

// StageParam holds the configuration of one named stage. Exactly one of the
// stage-kind fields is expected to be non-nil.
type StageParam struct {
	Name      string     `yaml:"name" json:"name"`
	Ingest    *Ingest    `yaml:"ingest,omitempty" json:"ingest,omitempty"`
	Decode    *Decode    `yaml:"decode,omitempty" json:"decode,omitempty"`
	Transform *Transform `yaml:"transform,omitempty" json:"transform,omitempty"`
	Extract   *Extract   `yaml:"extract,omitempty" json:"extract,omitempty"`
	Encode    *Encode    `yaml:"encode,omitempty" json:"encode,omitempty"`
	Write     *Write     `yaml:"write,omitempty" json:"write,omitempty"`
}

type Ingest struct {
	Type      string               `yaml:"type" json:"type"`
	File      *File                `yaml:"file,omitempty" json:"file,omitempty"`
	Kafka     *api.IngestKafka     `yaml:"kafka,omitempty" json:"kafka,omitempty"`
	Synthetic *api.IngestSynthetic `yaml:"synthetic,omitempty" json:"synthetic,omitempty"`
}

type File struct {
	Filename string `yaml:"filename" json:"filename"`
}

type Decode struct {
	Type string         `yaml:"type" json:"type"`
	Csv  *api.DecodeCsv `yaml:"csv,omitempty" json:"csv,omitempty"`
}

type Transform struct {
	Type        string                 `yaml:"type" json:"type"`
	Sanitize    *api.TransformSanitize `yaml:"sanitize,omitempty" json:"sanitize,omitempty"`
	Persistence *api.Persistence       `yaml:"persistence,omitempty" json:"persistence,omitempty"`
}

type Extract struct {
	Type             string                `yaml:"type" json:"type"`
	WindowScores     *api.WindowScores     `yaml:"windowScores,omitempty" json:"windowScores,omitempty"`
	GroupCorrelation *api.GroupCorrelation `yaml:"groupCorrelation,omitempty" json:"groupCorrelation,omitempty"`
}

type Encode struct {
	Type  string           `yaml:"type" json:"type"`
	Kafka *api.EncodeKafka `yaml:"kafka,omitempty" json:"kafka,omitempty"`
}

type Write struct {
	Type   string           `yaml:"type" json:"type"`
	Stdout *api.WriteStdout `yaml:"stdout,omitempty" json:"stdout,omitempty"`
	JSONL  *api.WriteJSONL  `yaml:"jsonl,omitempty" json:"jsonl,omitempty"`
}

// ParseConfig creates the internal unmarshalled representation from the
// pipeline and parameters json strings.
func ParseConfig(opts *Options) (ConfigFileStruct, error) {
	out := ConfigFileStruct{}

	logrus.Debugf("opts.PipeLine = %v ", opts.PipeLine)
	err := json.Unmarshal([]byte(opts.PipeLine), &out.Pipeline)
	if err != nil {
		return out, errors.Wrap(err, "error reading pipeline configuration")
	}
	logrus.Debugf("stages = %v ", out.Pipeline)

	err = json.Unmarshal([]byte(opts.Parameters), &out.Parameters)
	if err != nil {
		return out, errors.Wrap(err, "error reading parameters configuration")
	}
	logrus.Debugf("params = %v ", out.Parameters)

	if opts.MetricsSettings != "" {
		err = json.Unmarshal([]byte(opts.MetricsSettings), &out.MetricsSettings)
		if err != nil {
			return out, errors.Wrap(err, "error reading metrics settings")
		}
	}

	return out, nil
}
