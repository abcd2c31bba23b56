package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"FinLevels/internal/domain/models"
	domrepo "FinLevels/internal/domain/repository"
	pkgkafka "FinLevels/pkg/kafka"
)

// KafkaSignalsHandler consumes signal events from Kafka and writes them to storage.
type KafkaSignalsHandler struct {
	topic   string
	storage domrepo.SignalStorage
	metrics domrepo.Metrics
}

func NewKafkaSignalsHandler(topic string, storage domrepo.SignalStorage, metrics domrepo.Metrics) *KafkaSignalsHandler {
	return &KafkaSignalsHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaSignalsHandler) Topic() string { return h.topic }

func (h *KafkaSignalsHandler) Handle(ctx context.Context, b []byte) error {
	var ev models.SignalEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if ev.Symbol == "" || ev.Timestamp.IsZero() {
		h.metrics.RecordError("consumer_invalid")
		return errors.New("signal event missing symbol or timestamp")
	}
	h.metrics.RecordLatency("signal_e2e_seconds", time.Since(ev.Timestamp).Seconds())

	start := time.Now()
	err := h.storage.Store(ctx, &ev)
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordMessageSent("clickhouse", ev.Symbol)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaSignalsHandler)(nil)
