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
	"fmt"
	"sort"
	"time"

	"github.com/effluentwatch/discharge-pipeline/pkg/config"
	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"
)

type WriteStdout struct {
	format string
}

// Write writes a record batch to stdout.
func (t *WriteStdout) Write(in []config.GenericMap) {
	log.Debugf("entering WriteStdout Write")
	for _, record := range in {
		if t.format == "json" {
			txt, _ := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(record)
			fmt.Println(string(txt))
		} else if t.format == "fields" {
			var order sort.StringSlice
			for fieldName := range record {
				order = append(order, fieldName)
			}
			order.Sort()
			fmt.Printf("\n%v {\n", time.Now().Format(time.RFC3339))
			for _, field := range order {
				fmt.Printf("	%v: %v\n", field, record[field])
			}
			fmt.Printf("}\n")
		} else {
			fmt.Printf("%v\n", record)
		}
	}
}

// NewWriteStdout creates a new write
func NewWriteStdout(params config.StageParam) (Writer, error) {
	log.Debugf("entering NewWriteStdout")
	writeStdout := &WriteStdout{}
	if params.Write != nil && params.Write.Stdout != nil {
		writeStdout.format = params.Write.Stdout.Format
	}
	return writeStdout, nil
}
