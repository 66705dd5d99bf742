package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"

	"payoff/internal/events"
)

type Publisher struct {
	writer *kafka.Writer
}

var _ events.Publisher = (*Publisher)(nil)

// NewPublisher writes to topic on brokers. Events of one owner share a key
// and therefore a partition.
func NewPublisher(brokers []string, topic string) *Publisher {
	if topic == "" {
		topic = events.TopicProjectionCompleted
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *Publisher) PublishProjectionCompleted(ctx context.Context, e events.ProjectionCompleted) error {
	msg, err := message(e)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write projection event: %w", err)
	}
	return nil
}

func message(e events.ProjectionCompleted) (kafka.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal projection event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(e.OwnerID, 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "run_id", Value: []byte(e.RunID)},
		},
	}, nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
