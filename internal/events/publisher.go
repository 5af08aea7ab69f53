// Package events publishes payment decisions to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"outreach-service/internal/domain"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	log "github.com/sirupsen/logrus"
)

const DefaultTopic = "payment_decisions"

// producer is the part of *kafka.Producer the publisher uses.
type producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Flush(timeoutMs int) int
	Close()
}

type KafkaPublisher struct {
	producer producer
	topic    string
}

// NewProducer builds a confluent producer for bootstrapServers.
func NewProducer(bootstrapServers string) (*kafka.Producer, error) {
	configMap := &kafka.ConfigMap{
		"bootstrap.servers": bootstrapServers,
		"acks":              "all",
	}
	p, err := kafka.NewProducer(configMap)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return p, nil
}

func NewKafkaPublisher(p producer, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaPublisher{producer: p, topic: topic}
}

// PublishDecision writes the decision keyed by payment id and waits for the
// broker acknowledgement.
func (p *KafkaPublisher) PublishDecision(ctx context.Context, decision domain.PaymentDecision) error {
	value, err := json.Marshal(decision)
	if err != nil {
		return fmt.Errorf("marshal payment decision: %w", err)
	}

	delivery := make(chan kafka.Event, 1)
	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Key:            []byte(strconv.FormatInt(decision.PaymentID, 10)),
		Value:          value,
	}
	if err := p.producer.Produce(msg, delivery); err != nil {
		return fmt.Errorf("produce payment decision: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case ev := <-delivery:
		m, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event %v", ev)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("deliver payment decision: %w", m.TopicPartition.Error)
		}
	}

	log.WithFields(log.Fields{
		"topic":      p.topic,
		"payment_id": decision.PaymentID,
		"status":     decision.Status,
	}).Info("Payment decision published")
	return nil
}

// Close flushes outstanding messages before closing the producer.
func (p *KafkaPublisher) Close(ctx context.Context) error {
	timeoutMs := 5000
	if deadline, ok := ctx.Deadline(); ok {
		if ms := int(time.Until(deadline).Milliseconds()); ms > 0 {
			timeoutMs = ms
		}
	}
	if left := p.producer.Flush(timeoutMs); left > 0 {
		log.WithField("unflushed", left).Warn("Kafka producer closed with undelivered messages")
	}
	p.producer.Close()
	return nil
}
