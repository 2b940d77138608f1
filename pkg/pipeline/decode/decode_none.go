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
	log "github.com/sirupsen/logrus"
)

// DecodeNone passes through items that are already generic records, for
// ingesters that build records directly (synthetic, inprocess).
type DecodeNone struct {
}

func (c *DecodeNone) Decode(in []interface{}) []config.GenericMap {
	out := make([]config.GenericMap, 0, len(in))
	for _, item := range in {
		record, ok := item.(config.GenericMap)
		if !ok {
			log.Errorf("decode none expects generic records, got %T", item)
			continue
		}
		out = append(out, record)
	}
	return out
}

func NewDecodeNone() (Decoder, error) {
	return &DecodeNone{}, nil
}
