// Package consumer reads payment decision events from Kafka.
package consumer

import (
	"context"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	log "github.com/sirupsen/logrus"
)

type MessageHandler interface {
	HandleMessage(ctx context.Context, message []byte) error
}

// poller is the part of *kafka.Consumer the loop uses.
type poller interface {
	SubscribeTopics(topics []string, rebalanceCb kafka.RebalanceCb) error
	Poll(timeoutMs int) kafka.Event
	Close() error
}

type KafkaConsumer struct {
	consumer poller
	topic    string
	handler  MessageHandler
	done     chan struct{}
}

// NewConsumer builds a confluent consumer in groupID reading from the earliest offset.
func NewConsumer(bootstrapServers, groupID string) (*kafka.Consumer, error) {
	configMap := &kafka.ConfigMap{
		"bootstrap.servers": bootstrapServers,
		"group.id":          groupID,
		"auto.offset.reset": "earliest",
	}
	log.WithField("config", fmt.Sprintf("%+v", configMap)).Debug("Kafka consumer config")
	c, err := kafka.NewConsumer(configMap)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	return c, nil
}

func NewKafkaConsumer(consumer poller, topic string, handler MessageHandler) (*KafkaConsumer, error) {
	if err := consumer.SubscribeTopics([]string{topic}, nil); err != nil {
		return nil, err
	}
	log.WithField("topic", topic).Info("Subscribed to Kafka topic")
	return &KafkaConsumer{consumer: consumer, topic: topic, handler: handler, done: make(chan struct{})}, nil
}

// Start polls until ctx is cancelled or Kafka reports a fatal error. Handler
// errors are logged and the message is skipped.
func (c *KafkaConsumer) Start(ctx context.Context) error {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			log.Info("Kafka consumer stopping due to context cancellation")
			return ctx.Err()
		default:
			ev := c.consumer.Poll(100)
			if ev == nil {
				continue
			}

			switch e := ev.(type) {
			case *kafka.Message:
				logCtx := log.WithFields(log.Fields{
					"topic":  c.topic,
					"key":    string(e.Key),
					"offset": e.TopicPartition.Offset.String(),
				})
				logCtx.Info("Processing payment decision event")
				if err := c.handler.HandleMessage(ctx, e.Value); err != nil {
					logCtx.WithError(err).Error("Failed to handle message")
				}
			case kafka.Error:
				log.WithError(e).Error("Kafka error")
				if e.IsFatal() {
					return e
				}
			}
		}
	}
}

// Done is closed once Start has returned.
func (c *KafkaConsumer) Done() <-chan struct{} {
	return c.done
}

func (c *KafkaConsumer) Close() error {
	return c.consumer.Close()
}
