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

package encode

import (
	"context"
	"testing"

	"github.com/effluentwatch/discharge-pipeline/pkg/api"
	"github.com/effluentwatch/discharge-pipeline/pkg/config"
	"github.com/effluentwatch/discharge-pipeline/pkg/model"
	jsoniter "github.com/json-iterator/go"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type fakeKafkaWriter struct {
	messages []kafkago.Message
}

func (f *fakeKafkaWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.messages = append(f.messages, msgs...)
	return nil
}

func TestEncodeKafkaKeysBySensor(t *testing.T) {
	fake := &fakeKafkaWriter{}
	encoder := &EncodeKafka{kafkaWriter: fake}

	encoder.Encode([]config.GenericMap{
		{model.FieldSensorID: "ph-7", model.FieldValue: 7.2},
		{model.FieldGroupName: "outfall-7", model.FieldCompositeScore: 5.2},
	})
	require.Len(t, fake.messages, 2)
	require.Equal(t, "ph-7", string(fake.messages[0].Key))
	require.Equal(t, "outfall-7", string(fake.messages[1].Key))

	decoded := config.GenericMap{}
	require.NoError(t, jsoniter.Unmarshal(fake.messages[0].Value, &decoded))
	require.Equal(t, 7.2, decoded[model.FieldValue])
}

func TestEncodeKafkaEmptyBatch(t *testing.T) {
	fake := &fakeKafkaWriter{}
	encoder := &EncodeKafka{kafkaWriter: fake}
	encoder.Encode(nil)
	require.Empty(t, fake.messages)
}

func TestEncodeKafkaValidation(t *testing.T) {
	_, err := NewEncodeKafka(config.StageParam{
		Name:   "encode",
		Encode: &config.Encode{Type: api.KafkaType, Kafka: &api.EncodeKafka{Topic: "alerts"}},
	})
	require.Error(t, err)

	_, err = NewEncodeKafka(config.StageParam{
		Name: "encode",
		Encode: &config.Encode{Type: api.KafkaType, Kafka: &api.EncodeKafka{
			Address: "localhost:9092", Topic: "alerts", Balancer: "bogus",
		}},
	})
	require.Error(t, err)

	enc, err := NewEncodeKafka(config.StageParam{
		Name: "encode",
		Encode: &config.Encode{Type: api.KafkaType, Kafka: &api.EncodeKafka{
			Address: "localhost:9092", Topic: "alerts", Balancer: "murmur2",
		}},
	})
	require.NoError(t, err)
	require.NotNil(t, enc)
}
