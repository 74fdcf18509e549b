package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// Kafka publishes each application as a JSON record keyed by listing id.
type Kafka struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafka(brokers []string, topic string, timeout time.Duration) (*Kafka, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	if timeout > 0 {
		cfg.Producer.Timeout = timeout
		cfg.Net.DialTimeout = timeout
	}

	p, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka: producer: %w", err)
	}
	return NewKafkaWithProducer(p, topic), nil
}

func NewKafkaWithProducer(p sarama.SyncProducer, topic string) *Kafka {
	return &Kafka{producer: p, topic: topic}
}

func (k *Kafka) Notify(ctx context.Context, a Applied) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v, err := json.Marshal(a)
	if err != nil {
		return err
	}
	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(a.ListingID),
		Value: sarama.ByteEncoder(v),
	})
	if err != nil {
		return fmt.Errorf("kafka: send %s: %w", k.topic, err)
	}
	return nil
}

func (k *Kafka) Close() error { return k.producer.Close() }
