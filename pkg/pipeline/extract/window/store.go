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

package window

import (
	"hash/fnv"
	"sync"
)

const nShards = 32

// Store shards per-sensor accumulators so that concurrent producers contend
// on a shard mutex instead of one global lock.
type Store struct {
	shards [nShards]*shard
}

type shard struct {
	mux          sync.Mutex
	accumulators map[string]*accumulator
}

func NewStore() *Store {
	s := &Store{}
	for i := range s.shards {
		s.shards[i] = &shard{accumulators: map[string]*accumulator{}}
	}
	return s
}

func (s *Store) shardFor(sensorID string) *shard {
	h := fnv.New64a()
	_, _ = h.Write([]byte(sensorID))
	return s.shards[h.Sum64()%nShards]
}

func (s *Store) keys() []string {
	var out []string
	for _, sh := range s.shards {
		sh.mux.Lock()
		for k := range sh.accumulators {
			out = append(out, k)
		}
		sh.mux.Unlock()
	}
	return out
}
