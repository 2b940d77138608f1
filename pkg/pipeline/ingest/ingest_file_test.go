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

package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/effluentwatch/discharge-pipeline/pkg/api"
	"github.com/effluentwatch/discharge-pipeline/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestIngestFileReadsWholeFileAndReturns(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "readings.csv")
	content := "sensor_id,timestamp,value\n" +
		"ph-7,2024-03-01 08:00,7.2\n" +
		"\n" +
		"ph-7,2024-03-01 08:01,7.3\n"
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o644))

	ingester, err := NewIngestFile(config.StageParam{
		Name:   "ingest",
		Ingest: &config.Ingest{Type: api.FileType, File: &config.File{Filename: filename}},
	})
	require.NoError(t, err)

	out := make(chan []interface{}, 10)
	done := make(chan struct{})
	go func() {
		ingester.Ingest(out)
		close(done)
	}()
	<-done
	close(out)

	var lines []interface{}
	for chunk := range out {
		lines = append(lines, chunk...)
	}
	// empty lines are skipped
	require.Len(t, lines, 3)
	require.Equal(t, "sensor_id,timestamp,value", lines[0])
	require.Equal(t, "ph-7,2024-03-01 08:01,7.3", lines[2])
}

func TestIngestFileMissingFilename(t *testing.T) {
	_, err := NewIngestFile(config.StageParam{Name: "ingest", Ingest: &config.Ingest{Type: api.FileType}})
	require.Error(t, err)
}
