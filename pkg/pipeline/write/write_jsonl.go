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
	"bufio"
	"os"
	"path/filepath"
	"sync"

	"github.com/effluentwatch/discharge-pipeline/pkg/config"
	operationalMetrics "github.com/effluentwatch/discharge-pipeline/pkg/operational/metrics"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

var jsonlRecordsWritten = operationalMetrics.NewCounter(prometheus.CounterOpts{
	Name: "write_jsonl_records_written",
	Help: "Number of records appended to the jsonl evidence file",
})

// WriteJSONL appends one json object per line to a file. It is the durable
// evidence trail of emitted anomalies; records are flushed per batch.
type WriteJSONL struct {
	mux  sync.Mutex
	file *os.File
	out  *bufio.Writer
}

func (w *WriteJSONL) Write(in []config.GenericMap) {
	w.mux.Lock()
	defer w.mux.Unlock()
	for _, record := range in {
		line, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(record)
		if err != nil {
			log.Errorf("cannot marshal record: %v", err)
			continue
		}
		if _, err = w.out.Write(append(line, '\n')); err != nil {
			log.Errorf("cannot append to %s: %v", w.file.Name(), err)
			continue
		}
		jsonlRecordsWritten.Inc()
	}
	if err := w.out.Flush(); err != nil {
		log.Errorf("cannot flush %s: %v", w.file.Name(), err)
	}
}

func NewWriteJSONL(params config.StageParam) (Writer, error) {
	if params.Write == nil || params.Write.JSONL == nil || params.Write.JSONL.Filename == "" {
		return nil, errors.New("write jsonl: missing filename")
	}
	filename := params.Write.JSONL.Filename
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "cannot create directory for %s", filename)
		}
	}
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open %s", filename)
	}
	log.Debugf("NewWriteJSONL: appending to %s", filename)
	return &WriteJSONL{
		file: file,
		out:  bufio.NewWriter(file),
	}, nil
}
