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

package write

import (
	"sync"

	"github.com/effluentwatch/discharge-pipeline/pkg/config"
	log "github.com/sirupsen/logrus"
)

// WriteNone discards records, keeping only the previous batch for inspection.
type WriteNone struct {
	mux         sync.Mutex
	PrevRecords []config.GenericMap
}

func (t *WriteNone) Write(in []config.GenericMap) {
	t.mux.Lock()
	defer t.mux.Unlock()
	t.PrevRecords = in
	log.Debugf("WriteNone discarded %d records", len(in))
}

func NewWriteNone() (Writer, error) {
	return &WriteNone{}, nil
}
