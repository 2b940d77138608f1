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

package write

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/effluentwatch/discharge-pipeline/pkg/api"
	"github.com/effluentwatch/discharge-pipeline/pkg/config"
	"github.com/effluentwatch/discharge-pipeline/pkg/model"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
)

func jsonlParams(filename string) config.StageParam {
	return config.StageParam{
		Name:  "write",
		Write: &config.Write{Type: api.JSONLType, JSONL: &api.WriteJSONL{Filename: filename}},
	}
}

func TestWriteJSONLAppendsAcrossBatches(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "evidence", "anomalies.jsonl")
	writer, err := NewWriteJSONL(jsonlParams(filename))
	require.NoError(t, err)

	writer.Write([]config.GenericMap{
		{model.FieldSensorID: "ph-7", model.FieldValue: 7.2},
	})
	writer.Write([]config.GenericMap{
		{model.FieldSensorID: "turb-7", model.FieldValue: 950.0},
	})

	raw, err := os.ReadFile(filename)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)

	first := config.GenericMap{}
	require.NoError(t, jsoniter.Unmarshal([]byte(lines[0]), &first))
	require.Equal(t, "ph-7", first[model.FieldSensorID])

	second := config.GenericMap{}
	require.NoError(t, jsoniter.Unmarshal([]byte(lines[1]), &second))
	require.Equal(t, 950.0, second[model.FieldValue])
}

func TestWriteJSONLMissingFilename(t *testing.T) {
	_, err := NewWriteJSONL(config.StageParam{Name: "write", Write: &config.Write{Type: api.JSONLType}})
	require.Error(t, err)
}
