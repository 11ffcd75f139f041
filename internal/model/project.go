package model

import "github.com/ethereum/go-ethereum/common"

// ProjectStatus 项目状态
type ProjectStatus int8

const (
	ProjectStatusNotStart   ProjectStatus = 0 // 未开始
	ProjectStatusInProgress ProjectStatus = 1 // 进行中
	ProjectStatusFinished   ProjectStatus = 2 // 已结束
)

func (s ProjectStatus) String() string {
	switch s {
	case ProjectStatusNotStart:
		return "NOT_START"
	case ProjectStatusInProgress:
		return "IN_PROGRESS"
	case ProjectStatusFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// Project 项目记录
//
// ID 由注册表的全局计数器分配，非数据库自增；MerkleRoot 为空串表示尚未提交。
type Project struct {
	ID           uint64        `gorm:"column:id;primaryKey" json:"id"`
	Fingerprint  string        `gorm:"column:fingerprint;type:varchar(66);not null" json:"fingerprint"`
	OwnerAddress string        `gorm:"column:owner_address;type:varchar(42);index;not null" json:"owner_address"`
	TotalSupply  uint64        `gorm:"column:total_supply;type:bigint;not null" json:"total_supply"`
	Status       ProjectStatus `gorm:"column:status;type:smallint;index;not null;default:0" json:"status"`
	MerkleRoot   string        `gorm:"column:merkle_root;type:varchar(66);not null;default:''" json:"merkle_root"`
	CreatedAt    int64         `gorm:"column:created_at;type:bigint;not null" json:"created_at"`
	UpdatedAt    int64         `gorm:"column:updated_at;type:bigint;not null" json:"updated_at"`
}

// TableName 返回表名
func (Project) TableName() string {
	return "registry_projects"
}

// Owner 返回项目所有者地址
func (p *Project) Owner() common.Address {
	return common.HexToAddress(p.OwnerAddress)
}

// Root 返回已提交的 Merkle 根
func (p *Project) Root() common.Hash {
	return common.HexToHash(p.MerkleRoot)
}

// HasMerkleRoot 判断 Merkle 根是否已提交
//
// 空串与全零哈希都视为未提交。
func (p *Project) HasMerkleRoot() bool {
	return p.MerkleRoot != "" && p.Root() != (common.Hash{})
}

// IDCounter 全局项目 ID 计数器，单行表
type IDCounter struct {
	ID        int16  `gorm:"column:id;primaryKey" json:"id"`
	NextID    uint64 `gorm:"column:next_id;type:bigint;not null" json:"next_id"`
	UpdatedAt int64  `gorm:"column:updated_at;type:bigint;not null" json:"updated_at"`
}

// TableName 返回表名
func (IDCounter) TableName() string {
	return "registry_id_counters"
}

// IDCounterRowID 计数器单行的固定主键
const IDCounterRowID int16 = 1

// ProjectCreatedEvent 项目创建事件 (发送到 Kafka)
type ProjectCreatedEvent struct {
	EventID     string `json:"event_id"`
	ProjectID   uint64 `json:"project_id"`
	Fingerprint string `json:"fingerprint"`
	CreatedAt   int64  `json:"created_at"`
}

// ProjectStatusEvent 项目状态流转事件 (发送到 Kafka)
type ProjectStatusEvent struct {
	EventID    string `json:"event_id"`
	ProjectID  uint64 `json:"project_id"`
	Status     string `json:"status"`
	OccurredAt int64  `json:"occurred_at"`
}
