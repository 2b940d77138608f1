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

package config

import (
	"encoding/json"

	"github.com/effluentwatch/discharge-pipeline/pkg/api"
)

// pipeline stores the stages and parameters of a pipeline under construction.
type pipeline struct {
	stages []Stage
	config []StageParam
}

// PipelineBuilderStage holds the handle to the just-added stage; calling a
// stage method on it appends a follower. Keeping an older handle around and
// adding two followers to it creates a fan-out.
type PipelineBuilderStage struct {
	lastStage string
	pipeline  *pipeline
}

// NewPipeline creates a new pipeline from an existing ingest definition.
func NewPipeline(name string, ingest *Ingest) PipelineBuilderStage {
	p := pipeline{
		stages: []Stage{{Name: name}},
		config: []StageParam{{Name: name, Ingest: ingest}},
	}
	return PipelineBuilderStage{pipeline: &p, lastStage: name}
}

// NewFilePipeline creates a new pipeline reading raw lines from a file.
func NewFilePipeline(name string, file File) PipelineBuilderStage {
	return NewPipeline(name, &Ingest{Type: api.FileType, File: &file})
}

// NewKafkaPipeline creates a new pipeline consuming from a kafka topic.
func NewKafkaPipeline(name string, kafka api.IngestKafka) PipelineBuilderStage {
	return NewPipeline(name, &Ingest{Type: api.KafkaType, Kafka: &kafka})
}

// NewSyntheticPipeline creates a new pipeline fed by generated readings.
func NewSyntheticPipeline(name string, synthetic api.IngestSynthetic) PipelineBuilderStage {
	return NewPipeline(name, &Ingest{Type: api.SyntheticType, Synthetic: &synthetic})
}

// NewInProcessPipeline creates a new pipeline fed from a Go channel by the
// embedding process.
func NewInProcessPipeline(name string) PipelineBuilderStage {
	return NewPipeline(name, &Ingest{Type: api.InProcessType})
}

func (b *PipelineBuilderStage) next(name string, param StageParam) PipelineBuilderStage {
	b.pipeline.stages = append(b.pipeline.stages, Stage{Name: name, Follows: b.lastStage})
	b.pipeline.config = append(b.pipeline.config, param)
	return PipelineBuilderStage{pipeline: b.pipeline, lastStage: name}
}

// DecodeCsv chains a CSV decoder to the current stage.
func (b *PipelineBuilderStage) DecodeCsv(name string, csv api.DecodeCsv) PipelineBuilderStage {
	return b.next(name, StageParam{Name: name, Decode: &Decode{Type: api.CsvType, Csv: &csv}})
}

// DecodeJSON chains a JSON decoder to the current stage.
func (b *PipelineBuilderStage) DecodeJSON(name string) PipelineBuilderStage {
	return b.next(name, StageParam{Name: name, Decode: &Decode{Type: api.JSONType}})
}

// DecodeNone chains a passthrough decoder, for sources that already emit
// generic records (synthetic and in-process ingest).
func (b *PipelineBuilderStage) DecodeNone(name string) PipelineBuilderStage {
	return b.next(name, StageParam{Name: name, Decode: &Decode{Type: api.NoneType}})
}

// TransformSanitize chains the validation boundary to the current stage.
func (b *PipelineBuilderStage) TransformSanitize(name string, sanitize api.TransformSanitize) PipelineBuilderStage {
	return b.next(name, StageParam{Name: name, Transform: &Transform{Type: api.SanitizeType, Sanitize: &sanitize}})
}

// ExtractWindowScores chains the window statistics / z-score stage.
func (b *PipelineBuilderStage) ExtractWindowScores(name string, ws api.WindowScores) PipelineBuilderStage {
	return b.next(name, StageParam{Name: name, Extract: &Extract{Type: api.WindowType, WindowScores: &ws}})
}

// TransformPersistence chains the consecutive-anomaly gate.
func (b *PipelineBuilderStage) TransformPersistence(name string, p api.Persistence) PipelineBuilderStage {
	return b.next(name, StageParam{Name: name, Transform: &Transform{Type: api.PersistType, Persistence: &p}})
}

// ExtractGroupCorrelation chains the multivariate group scoring stage.
func (b *PipelineBuilderStage) ExtractGroupCorrelation(name string, gc api.GroupCorrelation) PipelineBuilderStage {
	return b.next(name, StageParam{Name: name, Extract: &Extract{Type: api.CorrelateType, GroupCorrelation: &gc}})
}

// EncodeKafka chains a kafka producer to the current stage.
func (b *PipelineBuilderStage) EncodeKafka(name string, kafka api.EncodeKafka) PipelineBuilderStage {
	return b.next(name, StageParam{Name: name, Encode: &Encode{Type: api.KafkaType, Kafka: &kafka}})
}

// WriteStdout chains a stdout writer to the current stage.
func (b *PipelineBuilderStage) WriteStdout(name string, stdout api.WriteStdout) PipelineBuilderStage {
	return b.next(name, StageParam{Name: name, Write: &Write{Type: api.StdoutType, Stdout: &stdout}})
}

// WriteJSONL chains the append-only evidence log writer to the current stage.
func (b *PipelineBuilderStage) WriteJSONL(name string, jsonl api.WriteJSONL) PipelineBuilderStage {
	return b.next(name, StageParam{Name: name, Write: &Write{Type: api.JSONLType, JSONL: &jsonl}})
}

// WriteFake chains the in-memory test writer to the current stage.
func (b *PipelineBuilderStage) WriteFake(name string) PipelineBuilderStage {
	return b.next(name, StageParam{Name: name, Write: &Write{Type: api.FakeType}})
}

// GetStages returns the current pipeline stages. It can be called before
// chaining all stages but the result would be incomplete.
func (b *PipelineBuilderStage) GetStages() []Stage {
	return b.pipeline.stages
}

// GetStageParams returns the current pipeline stage parameters.
func (b *PipelineBuilderStage) GetStageParams() []StageParam {
	return b.pipeline.config
}

// IntoOptions serializes the pipeline into the string form carried by Options.
func (b *PipelineBuilderStage) IntoOptions(opts *Options) error {
	stages, err := json.Marshal(b.GetStages())
	if err != nil {
		return err
	}
	params, err := json.Marshal(b.GetStageParams())
	if err != nil {
		return err
	}
	opts.PipeLine = string(stages)
	opts.Parameters = string(params)
	return nil
}
