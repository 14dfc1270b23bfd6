package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"audio-transcriber/internal/config"
	"audio-transcriber/internal/domain"

	wbkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
)

// ProducerClient publishes transcription tasks for the worker.
type ProducerClient struct {
	producer *wbkafka.Producer
	retries  retry.Strategy
}

func NewProducerClient(cfg *config.Config) *ProducerClient {
	return &ProducerClient{
		producer: wbkafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic),
		retries:  cfg.DefaultRetryStrategy(),
	}
}

func (p *ProducerClient) Send(ctx context.Context, task *domain.TranscriptionTask) error {
	value, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	return p.producer.SendWithRetry(ctx, p.retries, []byte(task.JobID), value)
}

func (p *ProducerClient) Close() error {
	return p.producer.Close()
}
