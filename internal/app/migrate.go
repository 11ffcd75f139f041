package app

import (
	"gorm.io/gorm"

	"github.com/luckpool/registry/internal/model"
)

// AutoMigrate 执行数据库自动迁移
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Project{},
		&model.IDCounter{},
		&model.Participant{},
		&model.LotteryResult{},
	)
}
