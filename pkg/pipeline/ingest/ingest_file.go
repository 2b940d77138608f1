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
	"bufio"
	"os"
	"time"

	"github.com/effluentwatch/discharge-pipeline/pkg/api"
	"github.com/effluentwatch/discharge-pipeline/pkg/config"
	operationalMetrics "github.com/effluentwatch/discharge-pipeline/pkg/operational/metrics"
	"github.com/effluentwatch/discharge-pipeline/pkg/pipeline/utils"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

var linesRead = operationalMetrics.NewCounter(prometheus.CounterOpts{
	Name: "ingest_lines_read",
	Help: "Number of lines read from file sources",
})

const fileChunkLines = 100

// IngestFile reads a file line by line and forwards the lines in chunks. In
// loop mode the file is replayed until shutdown, which serves as a crude
// soak-test source.
type IngestFile struct {
	params   config.StageParam
	loop     bool
	exitChan <-chan struct{}
}

// Ingest ingests entries from a file and resends the same data over and over
// again while in loop mode.
func (f *IngestFile) Ingest(out chan<- []interface{}) {
	filename := f.params.Ingest.File.Filename
	for {
		file, err := os.Open(filename)
		if err != nil {
			log.Errorf("cannot open %s: %v", filename, err)
			return
		}
		lines := make([]interface{}, 0, fileChunkLines)
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			linesRead.Inc()
			lines = append(lines, line)
			if len(lines) == fileChunkLines {
				if !f.forward(out, lines) {
					_ = file.Close()
					return
				}
				lines = make([]interface{}, 0, fileChunkLines)
			}
		}
		if err = scanner.Err(); err != nil {
			log.Errorf("error reading %s: %v", filename, err)
		}
		_ = file.Close()
		if len(lines) > 0 && !f.forward(out, lines) {
			return
		}
		if !f.loop {
			return
		}
		select {
		case <-f.exitChan:
			log.Debugf("exiting file loop ingest because of signal")
			return
		case <-time.After(time.Second):
		}
	}
}

func (f *IngestFile) forward(out chan<- []interface{}, lines []interface{}) bool {
	select {
	case <-f.exitChan:
		log.Debugf("exiting file ingest because of signal")
		return false
	case out <- lines:
		log.Debugf("ingest file sent %d lines", len(lines))
		return true
	}
}

func NewIngestFile(params config.StageParam) (Ingester, error) {
	if params.Ingest == nil || params.Ingest.File == nil || params.Ingest.File.Filename == "" {
		return nil, errors.New("ingest file: missing filename")
	}
	exitChan := make(chan struct{})
	utils.RegisterExitChannel(exitChan)
	return &IngestFile{
		params:   params,
		loop:     params.Ingest.Type == api.FileLoopType,
		exitChan: exitChan,
	}, nil
}
