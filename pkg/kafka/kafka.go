package kafka

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Client knows the broker list; writers are created per topic.
type Client struct {
	Brokers []string
}

func NewClient(brokersCSV string) *Client {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return &Client{Brokers: brokers}
}

func (c *Client) Enabled() bool {
	return len(c.Brokers) > 0
}

func (c *Client) NewWriter(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(c.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes events to one topic. Messages are keyed so that all
// events of an order land on the same partition.
type Publisher struct {
	writer MessageWriter
}

func NewPublisher(writer MessageWriter) *Publisher {
	return &Publisher{writer: writer}
}

// Publish writes body with the event name in the "event" header.
func (p *Publisher) Publish(ctx context.Context, routingKey, key string, body []byte) error {
	err := p.writer.WriteMessages(ctx, NewMessage(routingKey, key, body))
	if err != nil {
		return fmt.Errorf("failed to write %s to kafka: %w", routingKey, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func NewMessage(routingKey, key string, body []byte) kafka.Message {
	return kafka.Message{
		Key:     []byte(key),
		Value:   body,
		Headers: []kafka.Header{{Key: "event", Value: []byte(routingKey)}},
		Time:    time.Now().UTC(),
	}
}
