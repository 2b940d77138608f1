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
	"testing"

	"github.com/effluentwatch/discharge-pipeline/pkg/config"
	"github.com/effluentwatch/discharge-pipeline/pkg/model"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSONObjects(t *testing.T) {
	decoder, err := NewDecodeJSON()
	require.NoError(t, err)

	out := decoder.Decode([]interface{}{
		`{"sensor_id":"ph-7","timestamp":"2024-03-01 08:00","value":7.2}`,
		[]byte(`{"sensor_id":"turb-7","value":950}`),
	})
	require.Len(t, out, 2)
	require.Equal(t, "ph-7", out[0][model.FieldSensorID])
	require.Equal(t, 7.2, out[0][model.FieldValue])
	require.Equal(t, "turb-7", out[1][model.FieldSensorID])
}

func TestDecodeJSONSkipsInvalidInput(t *testing.T) {
	decoder, err := NewDecodeJSON()
	require.NoError(t, err)

	out := decoder.Decode([]interface{}{
		`{"sensor_id":"ph-7"`,
		12345,
		`{"sensor_id":"ok"}`,
	})
	require.Len(t, out, 1)
	require.Equal(t, "ok", out[0][model.FieldSensorID])
}

func TestDecodeJSONPassesGenericMapsThrough(t *testing.T) {
	decoder, err := NewDecodeJSON()
	require.NoError(t, err)

	in := config.GenericMap{model.FieldSensorID: "ph-7"}
	out := decoder.Decode([]interface{}{in})
	require.Len(t, out, 1)
	require.Equal(t, in, out[0])
}
