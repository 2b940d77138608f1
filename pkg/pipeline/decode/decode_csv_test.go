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
	"testing"

	"github.com/effluentwatch/discharge-pipeline/pkg/api"
	"github.com/effluentwatch/discharge-pipeline/pkg/config"
	"github.com/effluentwatch/discharge-pipeline/pkg/model"
	"github.com/stretchr/testify/require"
)

func csvParams(cfg api.DecodeCsv) config.StageParam {
	return config.StageParam{
		Name:   "decode",
		Decode: &config.Decode{Type: api.CsvType, Csv: &cfg},
	}
}

func TestDecodeCsvFirstLineIsHeader(t *testing.T) {
	decoder, err := NewDecodeCsv(csvParams(api.DecodeCsv{}))
	require.NoError(t, err)

	out := decoder.Decode([]interface{}{
		"sensor_id,timestamp,value",
		"ph-7,2024-03-01 08:00,7.2",
		"turb-7,2024-03-01 08:00,950",
	})
	require.Len(t, out, 2)
	require.Equal(t, config.GenericMap{
		model.FieldSensorID:  "ph-7",
		model.FieldTimestamp: "2024-03-01 08:00",
		model.FieldValue:     "7.2",
	}, out[0])
	require.Equal(t, "950", out[1][model.FieldValue])
}

func TestDecodeCsvExplicitHeaderAndColumnRenaming(t *testing.T) {
	decoder, err := NewDecodeCsv(csvParams(api.DecodeCsv{
		Header:       []string{"probe", "when", "reading", "site"},
		SensorColumn: "probe",
		ValueColumn:  "reading",
		TimeColumn:   "when",
	}))
	require.NoError(t, err)

	out := decoder.Decode([]interface{}{"ph-7,2024-03-01 08:00,7.2,plant-3"})
	require.Len(t, out, 1)
	require.Equal(t, "ph-7", out[0][model.FieldSensorID])
	require.Equal(t, "7.2", out[0][model.FieldValue])
	require.Equal(t, "2024-03-01 08:00", out[0][model.FieldTimestamp])
	// unmapped columns keep their original name
	require.Equal(t, "plant-3", out[0]["site"])
}

func TestDecodeCsvSkipsBadLines(t *testing.T) {
	decoder, err := NewDecodeCsv(csvParams(api.DecodeCsv{
		Header: []string{"sensor_id", "timestamp", "value"},
	}))
	require.NoError(t, err)

	out := decoder.Decode([]interface{}{
		"ph-7,2024-03-01 08:00,7.2",
		"only,two",
		`unterminated,"quote`,
		42,
		"ph-7,2024-03-01 08:01,7.3",
	})
	require.Len(t, out, 2)
}

func TestDecodeCsvCustomComma(t *testing.T) {
	decoder, err := NewDecodeCsv(csvParams(api.DecodeCsv{
		Header: []string{"sensor_id", "timestamp", "value"},
		Comma:  ";",
	}))
	require.NoError(t, err)

	out := decoder.Decode([]interface{}{"ph-7;2024-03-01 08:00;7.2"})
	require.Len(t, out, 1)
	require.Equal(t, "7.2", out[0][model.FieldValue])

	_, err = NewDecodeCsv(csvParams(api.DecodeCsv{Comma: "ab"}))
	require.Error(t, err)
}
