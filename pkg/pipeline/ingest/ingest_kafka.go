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
	"context"
	"time"

	"github.com/effluentwatch/discharge-pipeline/pkg/config"
	operationalMetrics "github.com/effluentwatch/discharge-pipeline/pkg/operational/metrics"
	"github.com/effluentwatch/discharge-pipeline/pkg/pipeline/utils"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	kafkago "github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

var (
	kafkaMessagesRead = operationalMetrics.NewCounter(prometheus.CounterOpts{
		Name: "ingest_kafka_messages_read",
		Help: "Number of messages read from the kafka topic",
	})
	kafkaBatchesForwarded = operationalMetrics.NewCounter(prometheus.CounterOpts{
		Name: "ingest_kafka_batches_forwarded",
		Help: "Number of batches forwarded for processing",
	})
)

const (
	defaultBatchReadTimeout = int64(1000)
	defaultKafkaBatchMaxLen = 500
	defaultCommitInterval   = int64(500)
)

// kafkaReader abstracts kafkago.Reader for tests.
type kafkaReader interface {
	ReadMessage(ctx context.Context) (kafkago.Message, error)
}

// IngestKafka reads raw readings from a kafka topic and forwards them in
// batches, flushed on size or on the batch read timeout.
type IngestKafka struct {
	reader           kafkaReader
	batchReadTimeout int64
	batchMaxLen      int
	exitChan         <-chan struct{}
	canLogMessages   bool
}

// Ingest runs a reader goroutine feeding an internal channel and batches its
// output toward the pipeline.
func (k *IngestKafka) Ingest(out chan<- []interface{}) {
	msgs := make(chan []byte, 2*k.batchMaxLen)
	go k.readLoop(msgs)

	ticker := time.NewTicker(time.Duration(k.batchReadTimeout) * time.Millisecond)
	defer ticker.Stop()
	batch := make([]interface{}, 0, k.batchMaxLen)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		kafkaBatchesForwarded.Inc()
		out <- batch
		batch = make([]interface{}, 0, k.batchMaxLen)
	}
	for {
		select {
		case <-k.exitChan:
			log.Debugf("exiting kafka ingest because of signal")
			flush()
			return
		case msg := <-msgs:
			batch = append(batch, string(msg))
			if len(batch) >= k.batchMaxLen {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (k *IngestKafka) readLoop(msgs chan<- []byte) {
	for {
		select {
		case <-k.exitChan:
			return
		default:
		}
		message, err := k.reader.ReadMessage(context.Background())
		if err != nil {
			log.Errorf("kafka ReadMessage: %v", err)
			return
		}
		kafkaMessagesRead.Inc()
		if k.canLogMessages {
			log.Debugf("kafka message: %s", string(message.Value))
		}
		msgs <- message.Value
	}
}

func NewIngestKafka(params config.StageParam) (Ingester, error) {
	cfg := params.Ingest.Kafka
	if cfg == nil || len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, errors.New("ingest kafka: missing brokers or topic")
	}

	startOffset := kafkago.FirstOffset
	switch cfg.StartOffset {
	case "", "FirstOffset":
	case "LastOffset":
		startOffset = kafkago.LastOffset
	default:
		return nil, errors.Errorf("illegal start offset %q", cfg.StartOffset)
	}

	var balancers []kafkago.GroupBalancer
	for _, b := range cfg.GroupBalancers {
		switch b {
		case "range":
			balancers = append(balancers, &kafkago.RangeGroupBalancer{})
		case "roundRobin":
			balancers = append(balancers, &kafkago.RoundRobinGroupBalancer{})
		case "rackAffinity":
			balancers = append(balancers, &kafkago.RackAffinityGroupBalancer{})
		default:
			return nil, errors.Errorf("unknown group balancer %q", b)
		}
	}

	commitInterval := cfg.CommitInterval
	if commitInterval == 0 {
		commitInterval = defaultCommitInterval
	}
	batchReadTimeout := cfg.BatchReadTimeout
	if batchReadTimeout == 0 {
		batchReadTimeout = defaultBatchReadTimeout
	}
	batchMaxLen := cfg.BatchMaxLen
	if batchMaxLen == 0 {
		batchMaxLen = defaultKafkaBatchMaxLen
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		GroupBalancers: balancers,
		StartOffset:    startOffset,
		CommitInterval: time.Duration(commitInterval) * time.Millisecond,
	})

	exitChan := make(chan struct{})
	utils.RegisterExitChannel(exitChan)
	log.Debugf("NewIngestKafka: topic %s, brokers %v", cfg.Topic, cfg.Brokers)
	return &IngestKafka{
		reader:           reader,
		batchReadTimeout: batchReadTimeout,
		batchMaxLen:      batchMaxLen,
		exitChan:         exitChan,
		canLogMessages:   log.IsLevelEnabled(log.DebugLevel),
	}, nil
}
