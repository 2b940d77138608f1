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

const TagYaml = "yaml"
const TagDoc = "doc"
const TagEnum = "enum"

// Note: items beginning with doc: "## title" are top level items that get divided into sections inside api.md.

type API struct {
	IngestKafka       IngestKafka       `yaml:"kafka" doc:"## Ingest Kafka API\nFollowing is the supported API format for the kafka ingest:\n"`
	IngestSynthetic   IngestSynthetic   `yaml:"synthetic" doc:"## Ingest Synthetic API\nFollowing is the supported API format for the synthetic readings generator:\n"`
	DecodeCsv         DecodeCsv         `yaml:"csv" doc:"## Decode CSV API\nFollowing is the supported API format for CSV sensor rows:\n"`
	TransformSanitize TransformSanitize `yaml:"sanitize" doc:"## Transform Sanitize API\nFollowing is the supported API format for reading validation:\n"`
	WindowScores      WindowScores      `yaml:"windowScores" doc:"## Window Scores API\nFollowing is the supported API format for sliding-window z-score extraction:\n"`
	Persistence       Persistence       `yaml:"persistence" doc:"## Persistence API\nFollowing is the supported API format for the consecutive-anomaly gate:\n"`
	GroupCorrelation  GroupCorrelation  `yaml:"groupCorrelation" doc:"## Group Correlation API\nFollowing is the supported API format for multivariate group scoring:\n"`
	EncodeKafka       EncodeKafka       `yaml:"kafka" doc:"## Encode Kafka API\nFollowing is the supported API format for kafka encode:\n"`
	WriteStdout       WriteStdout       `yaml:"stdout" doc:"## Write Standard Output\nFollowing is the supported API format for writing to standard output:\n"`
	WriteJSONL        WriteJSONL        `yaml:"jsonl" doc:"## Write JSONL\nFollowing is the supported API format for the append-only JSONL evidence log:\n"`
}

// stage type names as used in the pipeline configuration
const (
	FileType      = "file"
	FileLoopType  = "file_loop"
	KafkaType     = "kafka"
	SyntheticType = "synthetic"
	InProcessType = "inprocess"
	CsvType       = "csv"
	JSONType      = "json"
	NoneType      = "none"
	SanitizeType  = "sanitize"
	WindowType    = "window_scores"
	PersistType   = "persistence"
	CorrelateType = "group_correlation"
	StdoutType    = "stdout"
	JSONLType     = "jsonl"
	FakeType      = "fake"
)
