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

package write

import (
	"sync"

	"github.com/effluentwatch/discharge-pipeline/pkg/config"
	log "github.com/sirupsen/logrus"
)

// WriteFake collects every record it receives; tests read them back.
type WriteFake struct {
	mux        sync.Mutex
	allRecords []config.GenericMap
}

func (w *WriteFake) Write(in []config.GenericMap) {
	log.Debugf("entering WriteFake Write")
	w.mux.Lock()
	defer w.mux.Unlock()
	w.allRecords = append(w.allRecords, in...)
}

// AllRecords returns a copy of everything written so far.
func (w *WriteFake) AllRecords() []config.GenericMap {
	w.mux.Lock()
	defer w.mux.Unlock()
	out := make([]config.GenericMap, len(w.allRecords))
	copy(out, w.allRecords)
	return out
}

// Count returns the number of records written so far.
func (w *WriteFake) Count() int {
	w.mux.Lock()
	defer w.mux.Unlock()
	return len(w.allRecords)
}

func NewWriteFake() (Writer, error) {
	log.Debugf("entering NewWriteFake")
	return &WriteFake{}, nil
}
