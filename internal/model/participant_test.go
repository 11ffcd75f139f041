package model

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

// TestParticipant_TableName 测试表名
func TestParticipant_TableName(t *testing.T) {
	participant := &Participant{}
	assert.Equal(t, "registry_participants", participant.TableName())
}

// TestLotteryResult_TableName 测试表名
func TestLotteryResult_TableName(t *testing.T) {
	result := &LotteryResult{}
	assert.Equal(t, "registry_lottery_results", result.TableName())
}

// TestParticipant_Addr 测试地址解析
func TestParticipant_Addr(t *testing.T) {
	participant := &Participant{
		Address: "0x1234567890123456789012345678901234567890",
	}
	assert.Equal(t, common.HexToAddress("0x1234567890123456789012345678901234567890"), participant.Addr())
}

// TestParticipant_Fields 测试 Participant 字段
func TestParticipant_Fields(t *testing.T) {
	participant := &Participant{
		ID:        1,
		ProjectID: 100,
		Seq:       0,
		Address:   "0x1234567890123456789012345678901234567890",
		LuckyNum:  777,
		CreatedAt: 1234567890000,
	}

	assert.Equal(t, uint64(100), participant.ProjectID)
	assert.Equal(t, uint64(0), participant.Seq)
	assert.Equal(t, uint64(777), participant.LuckyNum)
}

// TestLotteryResult_Fields 测试 LotteryResult 字段
func TestLotteryResult_Fields(t *testing.T) {
	result := &LotteryResult{
		ProjectID:   100,
		MagicNumber: 1234567890,
		DrawnAt:     1234567890000,
	}

	assert.Equal(t, uint64(100), result.ProjectID)
	assert.Equal(t, uint64(1234567890), result.MagicNumber)
	assert.Equal(t, int64(1234567890000), result.DrawnAt)
}
