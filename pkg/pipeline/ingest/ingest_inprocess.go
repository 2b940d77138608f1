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

package ingest

import (
	"github.com/effluentwatch/discharge-pipeline/pkg/config"
)

// InProcess ingests batches from a Go channel. It lets a host application,
// or a test, embed the pipeline and feed it records directly.
type InProcess struct {
	in chan []config.GenericMap
}

func (d *InProcess) Ingest(out chan<- []interface{}) {
	for batch := range d.in {
		items := make([]interface{}, 0, len(batch))
		for _, record := range batch {
			items = append(items, record)
		}
		out <- items
	}
}

func NewInProcess(in chan []config.GenericMap) *InProcess {
	return &InProcess{in: in}
}
