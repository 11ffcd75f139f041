// 消费者订阅的 Topic:
//   - participant-registrations: 外部报名/分号流程产出的
//     (project_id, address, lucky_num) 三元组，由 ParticipantService 持久化。
//     本服务不关心 lucky_num 如何计算，只负责存储与后续的证明/分页。
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/luckpool/registry/internal/metrics"
	"github.com/luckpool/registry/internal/model"
	"github.com/luckpool/registry/internal/repository"
	"github.com/luckpool/registry/internal/service"
	"github.com/luckpool/registry/pkg/logger"
)

// TopicParticipantRegistrations 参与者登记 Topic
// Partition Key: project_id
// 消息格式: model.ParticipantRegistration
const TopicParticipantRegistrations = "participant-registrations"

// Consumer Kafka 消费者
type Consumer struct {
	client         sarama.ConsumerGroup
	participantSvc *service.ParticipantService
	topics         []string
	groupID        string

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
}

// ConsumerConfig 消费者配置
type ConsumerConfig struct {
	Brokers            []string
	GroupID            string
	ParticipantService *service.ParticipantService
}

// NewConsumer 创建消费者
func NewConsumer(cfg *ConsumerConfig) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_8_0_0
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Offsets.AutoCommit.Enable = true
	config.Consumer.Offsets.AutoCommit.Interval = time.Second

	client, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, config)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		client:         client,
		participantSvc: cfg.ParticipantService,
		topics:         []string{TopicParticipantRegistrations},
		groupID:        cfg.GroupID,
	}, nil
}

// Start 启动消费者
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return errors.New("consumer already running")
	}
	c.running = true
	c.stopCh = make(chan struct{})
	c.mu.Unlock()

	handler := &consumerGroupHandler{
		participantSvc: c.participantSvc,
	}

	go func() {
		for {
			select {
			case <-c.stopCh:
				return
			case <-ctx.Done():
				return
			default:
			}

			if err := c.client.Consume(ctx, c.topics, handler); err != nil {
				logger.Error("kafka consume error", zap.Error(err))
				time.Sleep(time.Second)
			}
		}
	}()

	logger.Info("kafka consumer started",
		zap.Strings("topics", c.topics),
		zap.String("group_id", c.groupID))

	return nil
}

// Stop 停止消费者
func (c *Consumer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}

	close(c.stopCh)
	c.running = false

	return c.client.Close()
}

// consumerGroupHandler 消费组处理器
type consumerGroupHandler struct {
	participantSvc *service.ParticipantService
}

func (h *consumerGroupHandler) Setup(_ sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerGroupHandler) Cleanup(_ sarama.ConsumerGroupSession) error { return nil }

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		ctx := context.Background()

		err := h.handleRegistration(ctx, msg.Value)
		if err == nil {
			metrics.KafkaMessagesConsumedTotal.WithLabelValues(msg.Topic, "ok").Inc()
			session.MarkMessage(msg, "")
			continue
		}

		metrics.KafkaMessagesConsumedTotal.WithLabelValues(msg.Topic, "error").Inc()
		logger.Error("failed to handle registration message",
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset),
			zap.Error(err))

		// 消息内容本身非法时重试无意义，跳过以免阻塞分区；
		// 瞬时错误 (数据库不可用、项目记录尚未落库) 不提交位点，等待重新投递。
		if isPermanentRegistrationError(err) {
			session.MarkMessage(msg, "")
		}
	}
	return nil
}

// isPermanentRegistrationError 判断登记失败是否由消息内容造成
func isPermanentRegistrationError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return true
	}
	return errors.Is(err, service.ErrInvalidAddress)
}

// handleRegistration 处理一条登记消息
//
// 重复登记视为已处理 (生产者重试会造成重复投递)，不计为错误。
func (h *consumerGroupHandler) handleRegistration(ctx context.Context, data []byte) error {
	var reg model.ParticipantRegistration
	if err := json.Unmarshal(data, &reg); err != nil {
		return err
	}

	logger.Debug("received participant registration",
		zap.Uint64("project_id", reg.ProjectID),
		zap.String("address", reg.Address))

	_, err := h.participantSvc.Register(ctx, &reg)
	if errors.Is(err, repository.ErrDuplicateParticipant) {
		return nil
	}
	return err
}
