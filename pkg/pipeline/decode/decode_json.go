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

package decode

import (
	"github.com/effluentwatch/discharge-pipeline/pkg/config"
	operationalMetrics "github.com/effluentwatch/discharge-pipeline/pkg/operational/metrics"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

var jsonDecodeFailures = operationalMetrics.NewCounter(prometheus.CounterOpts{
	Name: "json_decode_failures",
	Help: "Input items that could not be decoded as a json object",
})

type DecodeJSON struct {
}

// Decode decodes input strings to a list of generic records.
func (c *DecodeJSON) Decode(in []interface{}) []config.GenericMap {
	out := make([]config.GenericMap, 0, len(in))
	for _, line := range in {
		var raw []byte
		switch l := line.(type) {
		case string:
			raw = []byte(l)
		case []byte:
			raw = l
		case config.GenericMap:
			out = append(out, l)
			continue
		default:
			log.Errorf("cannot decode %T as json", line)
			jsonDecodeFailures.Inc()
			continue
		}
		record := config.GenericMap{}
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(raw, &record); err != nil {
			log.Errorf("cannot unmarshal json line: %v", err)
			jsonDecodeFailures.Inc()
			continue
		}
		out = append(out, record)
	}
	return out
}

func NewDecodeJSON() (Decoder, error) {
	log.Debugf("entering NewDecodeJSON")
	return &DecodeJSON{}, nil
}
