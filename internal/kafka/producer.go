// Package kafka 提供注册表事件的 Kafka 生产者与参与者登记的消费者。
//
// 生产的 Topic (供外部索引器订阅):
//   - project-created:        model.ProjectCreatedEvent，项目创建后发送
//   - project-started:        model.ProjectStatusEvent，项目开始后发送
//   - project-finished:       model.ProjectStatusEvent，项目结束后发送
//   - magic-number-published: model.MagicNumberEvent，开奖后发送
//
// 每个事件在对应状态变更持久化之后恰好发送一次。
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/luckpool/registry/internal/metrics"
	"github.com/luckpool/registry/internal/model"
	"github.com/luckpool/registry/pkg/logger"
)

// Kafka 生产者发送的 Topic
const (
	// TopicProjectCreated 项目创建事件 Topic
	// Partition Key: project_id
	TopicProjectCreated = "project-created"

	// TopicProjectStarted 项目开始事件 Topic
	// Partition Key: project_id
	TopicProjectStarted = "project-started"

	// TopicProjectFinished 项目结束事件 Topic
	// Partition Key: project_id
	TopicProjectFinished = "project-finished"

	// TopicMagicNumberPublished 开奖事件 Topic
	// Partition Key: project_id
	TopicMagicNumberPublished = "magic-number-published"
)

// Producer Kafka 生产者
type Producer struct {
	producer sarama.SyncProducer
	mu       sync.RWMutex
	closed   bool
}

// ProducerConfig 生产者配置
type ProducerConfig struct {
	Brokers      []string
	ClientID     string
	RequiredAcks sarama.RequiredAcks
	MaxRetries   int
	RetryBackoff time.Duration
}

// NewProducer 创建生产者
func NewProducer(cfg *ProducerConfig) (*Producer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_8_0_0
	config.ClientID = cfg.ClientID
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true

	requiredAcks := cfg.RequiredAcks
	if requiredAcks == 0 {
		requiredAcks = sarama.WaitForAll
	}
	config.Producer.RequiredAcks = requiredAcks

	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}
	config.Producer.Retry.Max = maxRetries

	retryBackoff := cfg.RetryBackoff
	if retryBackoff == 0 {
		retryBackoff = 100 * time.Millisecond
	}
	config.Producer.Retry.Backoff = retryBackoff

	producer, err := sarama.NewSyncProducer(cfg.Brokers, config)
	if err != nil {
		return nil, err
	}

	return &Producer{
		producer: producer,
	}, nil
}

// Close 关闭生产者
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	return p.producer.Close()
}

// send 发送消息
func (p *Producer) send(topic string, key string, value []byte) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return errors.New("producer is closed")
	}
	p.mu.RUnlock()

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		logger.Error("failed to send kafka message",
			zap.String("topic", topic),
			zap.String("key", key),
			zap.Error(err))
		return err
	}

	metrics.KafkaMessagesProducedTotal.WithLabelValues(topic).Inc()
	logger.Debug("kafka message sent",
		zap.String("topic", topic),
		zap.String("key", key),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset))

	return nil
}

// SendProjectCreated 发送项目创建事件
func (p *Producer) SendProjectCreated(ctx context.Context, event *model.ProjectCreatedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.send(TopicProjectCreated, strconv.FormatUint(event.ProjectID, 10), data)
}

// SendProjectStarted 发送项目开始事件
func (p *Producer) SendProjectStarted(ctx context.Context, event *model.ProjectStatusEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.send(TopicProjectStarted, strconv.FormatUint(event.ProjectID, 10), data)
}

// SendProjectFinished 发送项目结束事件
func (p *Producer) SendProjectFinished(ctx context.Context, event *model.ProjectStatusEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.send(TopicProjectFinished, strconv.FormatUint(event.ProjectID, 10), data)
}

// SendMagicNumberPublished 发送开奖事件
func (p *Producer) SendMagicNumberPublished(ctx context.Context, event *model.MagicNumberEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.send(TopicMagicNumberPublished, strconv.FormatUint(event.ProjectID, 10), data)
}

// EventPublisher 事件发布器接口
type EventPublisher interface {
	PublishProjectCreated(ctx context.Context, event *model.ProjectCreatedEvent) error
	PublishProjectStarted(ctx context.Context, event *model.ProjectStatusEvent) error
	PublishProjectFinished(ctx context.Context, event *model.ProjectStatusEvent) error
	PublishMagicNumber(ctx context.Context, event *model.MagicNumberEvent) error
}

// KafkaEventPublisher Kafka 事件发布器
type KafkaEventPublisher struct {
	producer *Producer
}

// NewKafkaEventPublisher 创建 Kafka 事件发布器
func NewKafkaEventPublisher(producer *Producer) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		producer: producer,
	}
}

func (p *KafkaEventPublisher) PublishProjectCreated(ctx context.Context, event *model.ProjectCreatedEvent) error {
	return p.producer.SendProjectCreated(ctx, event)
}

func (p *KafkaEventPublisher) PublishProjectStarted(ctx context.Context, event *model.ProjectStatusEvent) error {
	return p.producer.SendProjectStarted(ctx, event)
}

func (p *KafkaEventPublisher) PublishProjectFinished(ctx context.Context, event *model.ProjectStatusEvent) error {
	return p.producer.SendProjectFinished(ctx, event)
}

func (p *KafkaEventPublisher) PublishMagicNumber(ctx context.Context, event *model.MagicNumberEvent) error {
	return p.producer.SendMagicNumberPublished(ctx, event)
}
