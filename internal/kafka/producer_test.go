package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luckpool/registry/internal/model"
)

// TestProducerConfig 测试生产者配置
func TestProducerConfig_Defaults(t *testing.T) {
	cfg := &ProducerConfig{
		Brokers:  []string{"localhost:9092"},
		ClientID: "test-client",
	}

	assert.Len(t, cfg.Brokers, 1)
	assert.Equal(t, "test-client", cfg.ClientID)
}

// TestMagicNumberEventSerialization 测试开奖事件序列化
func TestMagicNumberEventSerialization(t *testing.T) {
	event := &model.MagicNumberEvent{
		EventID:     "evt-123",
		ProjectID:   100,
		MagicNumber: 1234567890,
		DrawnAt:     1234567890000,
	}

	data, err := json.Marshal(event)
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"magic_number":1234567890`)
	assert.Contains(t, string(data), `"project_id":100`)
}

// TestProjectStatusEventSerialization 测试状态流转事件序列化
func TestProjectStatusEventSerialization(t *testing.T) {
	event := &model.ProjectStatusEvent{
		EventID:    "evt-456",
		ProjectID:  100,
		Status:     "IN_PROGRESS",
		OccurredAt: 1234567890000,
	}

	data, err := json.Marshal(event)
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"status":"IN_PROGRESS"`)
}

// TestKafkaEventPublisherStruct 测试 KafkaEventPublisher 结构
func TestKafkaEventPublisherStruct(t *testing.T) {
	// 不连接真实 Kafka
	publisher := &KafkaEventPublisher{
		producer: nil,
	}

	assert.Nil(t, publisher.producer)
}
