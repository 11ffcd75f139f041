package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/luckpool/registry/internal/model"
)

var (
	ErrLotteryResultNotFound  = errors.New("lottery result not found")
	ErrDuplicateLotteryResult = errors.New("duplicate lottery result")
)

// LotteryRepository 开奖结果仓储接口
type LotteryRepository interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	Create(ctx context.Context, result *model.LotteryResult) error
	GetByProjectID(ctx context.Context, projectID uint64) (*model.LotteryResult, error)
	ExistsByProjectID(ctx context.Context, projectID uint64) (bool, error)
}

// lotteryRepository 开奖结果仓储实现
type lotteryRepository struct {
	*Repository
}

// NewLotteryRepository 创建开奖结果仓储
func NewLotteryRepository(db *gorm.DB) LotteryRepository {
	return &lotteryRepository{
		Repository: NewRepository(db),
	}
}

func (r *lotteryRepository) Create(ctx context.Context, result *model.LotteryResult) error {
	err := r.DB(ctx).Create(result).Error
	if err != nil && isDuplicateKeyError(err) {
		return ErrDuplicateLotteryResult
	}
	return err
}

func (r *lotteryRepository) GetByProjectID(ctx context.Context, projectID uint64) (*model.LotteryResult, error) {
	var result model.LotteryResult
	err := r.DB(ctx).
		Where("project_id = ?", projectID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLotteryResultNotFound
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *lotteryRepository) ExistsByProjectID(ctx context.Context, projectID uint64) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&model.LotteryResult{}).
		Where("project_id = ?", projectID).
		Count(&count).Error
	return count > 0, err
}
