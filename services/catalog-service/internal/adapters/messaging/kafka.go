package messaging

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/athebyme/autoparts-catalog/pkg/interfaces"
	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"
)

// flushTimeoutMs сколько ждать отправки буфера при закрытии
const flushTimeoutMs = 15 * 1000

// KafkaMessaging публикует события каталога в Kafka
type KafkaMessaging struct {
	producer *kafka.Producer
	logger   interfaces.LoggerPort
	done     chan struct{}
}

// NewKafkaMessaging создает producer для указанных брокеров
func NewKafkaMessaging(brokers []string, clientID string, logger interfaces.LoggerPort) (*KafkaMessaging, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":            strings.Join(brokers, ","),
		"client.id":                    clientID,
		"acks":                         "1", // события информационные, ждем только лидера
		"retries":                      3,
		"retry.backoff.ms":             200,
		"compression.type":             "snappy",
		"linger.ms":                    10,
		"message.max.bytes":            1000000,
		"queue.buffering.max.messages": 100000,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Kafka producer: %w", err)
	}

	k := &KafkaMessaging{
		producer: producer,
		logger:   logger,
		done:     make(chan struct{}),
	}
	go k.watchDeliveries()

	return k, nil
}

var _ interfaces.MessagingPort = (*KafkaMessaging)(nil)

// watchDeliveries читает отчеты о доставке, иначе канал событий producer переполнится
func (k *KafkaMessaging) watchDeliveries() {
	defer close(k.done)
	for ev := range k.producer.Events() {
		switch e := ev.(type) {
		case *kafka.Message:
			if e.TopicPartition.Error != nil {
				k.logger.Warn("Событие не доставлено в Kafka",
					interfaces.LogField{Key: "topic", Value: topicName(e)},
					interfaces.LogField{Key: "error", Value: e.TopicPartition.Error.Error()},
				)
			}
		case kafka.Error:
			k.logger.Error("Ошибка Kafka producer",
				interfaces.LogField{Key: "code", Value: e.Code().String()},
				interfaces.LogField{Key: "error", Value: e.Error()},
			)
		}
	}
}

// buildMessage собирает сообщение Kafka со служебными заголовками
func buildMessage(topic, key string, value []byte, now time.Time) *kafka.Message {
	headers := []kafka.Header{
		{Key: "message_id", Value: []byte(uuid.New().String())},
		{Key: "timestamp", Value: []byte(strconv.FormatInt(now.UnixNano(), 10))},
	}

	var keyBytes []byte
	if key != "" {
		keyBytes = []byte(key)
	}

	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          value,
		Key:            keyBytes,
		Headers:        headers,
	}
}

// Publish публикует сообщение в указанную тему
func (k *KafkaMessaging) Publish(ctx context.Context, topic string, message []byte) error {
	return k.PublishWithKey(ctx, topic, "", message)
}

// PublishWithKey публикует сообщение с ключом партиционирования
func (k *KafkaMessaging) PublishWithKey(ctx context.Context, topic string, key string, message []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := k.producer.Produce(buildMessage(topic, key, message, time.Now()), nil); err != nil {
		return fmt.Errorf("ошибка публикации в %s: %w", topic, err)
	}
	return nil
}

// Close отправляет остаток буфера и закрывает producer
func (k *KafkaMessaging) Close() error {
	if left := k.producer.Flush(flushTimeoutMs); left > 0 {
		k.logger.Warn("Не все события отправлены в Kafka", interfaces.LogField{Key: "left", Value: left})
	}
	k.producer.Close()
	<-k.done
	return nil
}

func topicName(m *kafka.Message) string {
	if m.TopicPartition.Topic == nil {
		return ""
	}
	return *m.TopicPartition.Topic
}
