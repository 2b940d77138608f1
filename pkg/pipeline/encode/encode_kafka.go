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
	"time"

	"github.com/effluentwatch/discharge-pipeline/pkg/config"
	"github.com/effluentwatch/discharge-pipeline/pkg/model"
	operationalMetrics "github.com/effluentwatch/discharge-pipeline/pkg/operational/metrics"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	kafkago "github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

var recordsWrittenKafka = operationalMetrics.NewCounter(prometheus.CounterOpts{
	Name: "encode_kafka_records_written",
	Help: "Number of records written to the kafka topic",
})

const defaultKafkaTimeout = 10 * time.Second

// kafkaWriteMessage abstracts kafkago.Writer for tests.
type kafkaWriteMessage interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// EncodeKafka writes each record as one json message, keyed by sensor or
// group so that per-key ordering survives partitioning.
type EncodeKafka struct {
	kafkaWriter kafkaWriteMessage
}

func (r *EncodeKafka) Encode(in []config.GenericMap) {
	messages := make([]kafkago.Message, 0, len(in))
	for _, record := range in {
		value, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(record)
		if err != nil {
			log.Errorf("cannot marshal record: %v", err)
			continue
		}
		messages = append(messages, kafkago.Message{
			Key:   []byte(orderingKey(record)),
			Value: value,
		})
	}
	if len(messages) == 0 {
		return
	}
	if err := r.kafkaWriter.WriteMessages(context.Background(), messages...); err != nil {
		log.Errorf("kafka WriteMessages: %v", err)
		return
	}
	recordsWrittenKafka.Add(float64(len(messages)))
}

func orderingKey(record config.GenericMap) string {
	if sensorID, ok := record[model.FieldSensorID].(string); ok {
		return sensorID
	}
	if group, ok := record[model.FieldGroupName].(string); ok {
		return group
	}
	return ""
}

func NewEncodeKafka(params config.StageParam) (Encoder, error) {
	cfg := params.Encode.Kafka
	if cfg == nil || cfg.Address == "" || cfg.Topic == "" {
		return nil, errors.New("encode kafka: missing address or topic")
	}

	var balancer kafkago.Balancer
	switch cfg.Balancer {
	case "", "roundRobin":
		balancer = &kafkago.RoundRobin{}
	case "leastBytes":
		balancer = &kafkago.LeastBytes{}
	case "hash":
		balancer = &kafkago.Hash{}
	case "crc32":
		balancer = &kafkago.CRC32Balancer{}
	case "murmur2":
		balancer = &kafkago.Murmur2Balancer{}
	default:
		return nil, errors.Errorf("unknown balancer %q", cfg.Balancer)
	}

	readTimeout := defaultKafkaTimeout
	if cfg.ReadTimeout != 0 {
		readTimeout = time.Duration(cfg.ReadTimeout) * time.Second
	}
	writeTimeout := defaultKafkaTimeout
	if cfg.WriteTimeout != 0 {
		writeTimeout = time.Duration(cfg.WriteTimeout) * time.Second
	}

	return &EncodeKafka{
		kafkaWriter: &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Address),
			Topic:        cfg.Topic,
			Balancer:     balancer,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
	}, nil
}
