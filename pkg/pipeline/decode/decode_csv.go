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

package decode

import (
	"encoding/csv"
	"strings"

	"github.com/effluentwatch/discharge-pipeline/pkg/api"
	"github.com/effluentwatch/discharge-pipeline/pkg/config"
	"github.com/effluentwatch/discharge-pipeline/pkg/model"
	operationalMetrics "github.com/effluentwatch/discharge-pipeline/pkg/operational/metrics"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

var csvDecodeFailures = operationalMetrics.NewCounter(prometheus.CounterOpts{
	Name: "csv_decode_failures",
	Help: "Input lines that could not be decoded as a csv row",
})

// DecodeCsv maps csv rows to generic records keyed by column name, renaming
// the configured id/value/time columns to the canonical field names. All cell
// values stay strings; the sanitize transform owns parsing and validation.
type DecodeCsv struct {
	comma        rune
	header       []string
	sensorColumn string
	valueColumn  string
	timeColumn   string
}

func NewDecodeCsv(params config.StageParam) (Decoder, error) {
	cfg := api.DecodeCsv{}
	if params.Decode != nil && params.Decode.Csv != nil {
		cfg = *params.Decode.Csv
	}
	comma := ','
	if cfg.Comma != "" {
		runes := []rune(cfg.Comma)
		if len(runes) != 1 {
			return nil, errors.Errorf("comma must be a single character (got %q)", cfg.Comma)
		}
		comma = runes[0]
	}
	return &DecodeCsv{
		comma:        comma,
		header:       cfg.Header,
		sensorColumn: defaulted(cfg.SensorColumn, model.FieldSensorID),
		valueColumn:  defaulted(cfg.ValueColumn, model.FieldValue),
		timeColumn:   defaulted(cfg.TimeColumn, model.FieldTimestamp),
	}, nil
}

func (c *DecodeCsv) Decode(in []interface{}) []config.GenericMap {
	out := make([]config.GenericMap, 0, len(in))
	for _, item := range in {
		line, ok := item.(string)
		if !ok {
			if raw, isBytes := item.([]byte); isBytes {
				line = string(raw)
			} else {
				log.Errorf("cannot decode %T as a csv line", item)
				csvDecodeFailures.Inc()
				continue
			}
		}
		cells, err := c.parseLine(line)
		if err != nil {
			log.Errorf("cannot parse csv line %q: %v", line, err)
			csvDecodeFailures.Inc()
			continue
		}
		if c.header == nil {
			// first line of a headerless config is the header
			c.header = cells
			continue
		}
		if len(cells) != len(c.header) {
			log.Errorf("csv line has %d cells, header has %d: %q", len(cells), len(c.header), line)
			csvDecodeFailures.Inc()
			continue
		}
		record := config.GenericMap{}
		for i, column := range c.header {
			record[c.canonical(column)] = cells[i]
		}
		out = append(out, record)
	}
	return out
}

func (c *DecodeCsv) parseLine(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = c.comma
	return r.Read()
}

func (c *DecodeCsv) canonical(column string) string {
	switch column {
	case c.sensorColumn:
		return model.FieldSensorID
	case c.valueColumn:
		return model.FieldValue
	case c.timeColumn:
		return model.FieldTimestamp
	default:
		return column
	}
}

func defaulted(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
