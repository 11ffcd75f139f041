package model

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

// TestProjectStatus_Values 测试项目状态枚举值
func TestProjectStatus_Values(t *testing.T) {
	assert.Equal(t, ProjectStatus(0), ProjectStatusNotStart)
	assert.Equal(t, ProjectStatus(1), ProjectStatusInProgress)
	assert.Equal(t, ProjectStatus(2), ProjectStatusFinished)
}

// TestProjectStatus_String 测试状态字符串表示
func TestProjectStatus_String(t *testing.T) {
	assert.Equal(t, "NOT_START", ProjectStatusNotStart.String())
	assert.Equal(t, "IN_PROGRESS", ProjectStatusInProgress.String())
	assert.Equal(t, "FINISHED", ProjectStatusFinished.String())
	assert.Equal(t, "UNKNOWN", ProjectStatus(99).String())
}

// TestProject_TableName 测试表名
func TestProject_TableName(t *testing.T) {
	project := &Project{}
	assert.Equal(t, "registry_projects", project.TableName())
}

// TestIDCounter_TableName 测试表名
func TestIDCounter_TableName(t *testing.T) {
	counter := &IDCounter{}
	assert.Equal(t, "registry_id_counters", counter.TableName())
}

// TestProject_Owner 测试所有者地址解析
func TestProject_Owner(t *testing.T) {
	project := &Project{
		OwnerAddress: "0x1234567890123456789012345678901234567890",
	}
	assert.Equal(t, common.HexToAddress("0x1234567890123456789012345678901234567890"), project.Owner())
}

// TestProject_HasMerkleRoot 测试 Merkle 根提交状态判断
func TestProject_HasMerkleRoot(t *testing.T) {
	project := &Project{}
	assert.False(t, project.HasMerkleRoot())

	// 全零哈希与空串等同于未提交
	project.MerkleRoot = common.Hash{}.Hex()
	assert.False(t, project.HasMerkleRoot())

	project.MerkleRoot = "0x59d76dc3b33357712a2c5e42a2e0e47bc2cf6f023a3f6fb0300bd4b399b9b0a8"
	assert.True(t, project.HasMerkleRoot())
	assert.Equal(t, common.HexToHash("0x59d76dc3b33357712a2c5e42a2e0e47bc2cf6f023a3f6fb0300bd4b399b9b0a8"), project.Root())
}

// TestProject_Fields 测试 Project 字段
func TestProject_Fields(t *testing.T) {
	project := &Project{
		ID:           100,
		Fingerprint:  "0xabc123",
		OwnerAddress: "0x1234567890123456789012345678901234567890",
		TotalSupply:  1000,
		Status:       ProjectStatusInProgress,
		CreatedAt:    1234567890000,
		UpdatedAt:    1234567890000,
	}

	assert.Equal(t, uint64(100), project.ID)
	assert.Equal(t, "0xabc123", project.Fingerprint)
	assert.Equal(t, uint64(1000), project.TotalSupply)
	assert.Equal(t, ProjectStatusInProgress, project.Status)
}
