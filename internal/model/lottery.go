package model

// LotteryResult 开奖结果
//
// project_id 作为主键保证每个项目至多一条结果。零值记录
// (project_id=0, magic_number=0) 是"未开奖"的约定返回值。
type LotteryResult struct {
	ProjectID   uint64 `gorm:"column:project_id;primaryKey" json:"project_id"`
	MagicNumber uint64 `gorm:"column:magic_number;type:bigint;not null" json:"magic_number"`
	DrawnAt     int64  `gorm:"column:drawn_at;type:bigint;not null" json:"drawn_at"`
}

// TableName 返回表名
func (LotteryResult) TableName() string {
	return "registry_lottery_results"
}

// MagicNumberEvent 开奖事件 (发送到 Kafka)
type MagicNumberEvent struct {
	EventID     string `json:"event_id"`
	ProjectID   uint64 `json:"project_id"`
	MagicNumber uint64 `json:"magic_number"`
	DrawnAt     int64  `json:"drawn_at"`
}
