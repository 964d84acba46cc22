package kafka

import (
	"context"
	"time"

	"cryptosignals/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// ConsumerService 消费单个主题，消息写入返回的通道
type ConsumerService interface {
	Consume(ctx context.Context, groupID string) (<-chan kafka.Message, error)
}

type kafkaConsumer struct {
	brokerURL string
	topic     string
}

func NewKafkaConsumer(brokerURL, topic string) ConsumerService {
	return &kafkaConsumer{
		brokerURL: brokerURL,
		topic:     topic,
	}
}

// Consume 启动消费协程，ctx 结束时关闭 Reader 和通道
func (c *kafkaConsumer) Consume(ctx context.Context, groupID string) (<-chan kafka.Message, error) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{c.brokerURL},
		Topic:          c.topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second, // 自动提交，不在循环里手动 Commit
		MaxAttempts:    3,
	})
	outputCh := make(chan kafka.Message, 100)

	go func() {
		defer close(outputCh)
		defer r.Close()
		for {
			m, err := r.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Errorf("kafka read error on topic %s: %v", c.topic, err)
				select {
				case <-time.After(time.Second):
					continue
				case <-ctx.Done():
					return
				}
			}
			select {
			case outputCh <- m:
			case <-ctx.Done():
				return
			}
		}
	}()

	return outputCh, nil
}
