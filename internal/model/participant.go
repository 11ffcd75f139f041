package model

import "github.com/ethereum/go-ethereum/common"

// Participant 参与者记录
//
// Seq 是项目内的追加序号，从 0 开始；(project_id, seq) 与 (project_id, address)
// 两个唯一索引共同保证顺序视图与地址视图一致。
type Participant struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"-"`
	ProjectID uint64 `gorm:"column:project_id;type:bigint;uniqueIndex:idx_participant_project_seq,priority:1;uniqueIndex:idx_participant_project_address,priority:1;not null" json:"project_id"`
	Seq       uint64 `gorm:"column:seq;type:bigint;uniqueIndex:idx_participant_project_seq,priority:2;not null" json:"seq"`
	Address   string `gorm:"column:address;type:varchar(42);uniqueIndex:idx_participant_project_address,priority:2;not null" json:"address"`
	LuckyNum  uint64 `gorm:"column:lucky_num;type:bigint;not null" json:"lucky_num"`
	CreatedAt int64  `gorm:"column:created_at;type:bigint;not null" json:"created_at"`
}

// TableName 返回表名
func (Participant) TableName() string {
	return "registry_participants"
}

// Addr 返回参与者地址
func (p *Participant) Addr() common.Address {
	return common.HexToAddress(p.Address)
}

// ParticipantRegistration 参与者登记消息 (来自 Kafka)
type ParticipantRegistration struct {
	ProjectID uint64 `json:"project_id"`
	Address   string `json:"address"`
	LuckyNum  uint64 `json:"lucky_num"`
}
