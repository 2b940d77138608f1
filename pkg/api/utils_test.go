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

package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v2"
)

func TestDurationJSON(t *testing.T) {
	b, err := json.Marshal(Duration{Duration: 90 * time.Second})
	require.NoError(t, err)
	require.Equal(t, `"1m30s"`, string(b))

	d := Duration{}
	require.NoError(t, json.Unmarshal([]byte(`"30s"`), &d))
	require.Equal(t, 30*time.Second, d.Duration)

	require.NoError(t, json.Unmarshal([]byte(`60000000000`), &d))
	require.Equal(t, time.Minute, d.Duration)

	require.Error(t, json.Unmarshal([]byte(`"bogus"`), &d))
	require.Error(t, json.Unmarshal([]byte(`true`), &d))
}

func TestDurationYAML(t *testing.T) {
	b, err := yaml.Marshal(Duration{Duration: 5 * time.Minute})
	require.NoError(t, err)
	require.Equal(t, "5m0s\n", string(b))

	d := Duration{}
	require.NoError(t, yaml.Unmarshal([]byte("2m"), &d))
	require.Equal(t, 2*time.Minute, d.Duration)

	require.Error(t, yaml.Unmarshal([]byte("bogus"), &d))
}
