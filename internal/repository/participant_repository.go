package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/luckpool/registry/internal/model"
)

var (
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrDuplicateParticipant = errors.New("duplicate participant")
)

// ParticipantRepository 参与者仓储接口
type ParticipantRepository interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	Create(ctx context.Context, participant *model.Participant) error
	CountByProject(ctx context.Context, projectID uint64) (uint64, error)
	// ListByProject 按追加顺序返回参与者子序列，越界处理由服务层负责
	ListByProject(ctx context.Context, projectID uint64, offset, limit uint64) ([]*model.Participant, error)
	GetByAddress(ctx context.Context, projectID uint64, address string) (*model.Participant, error)
}

// participantRepository 参与者仓储实现
type participantRepository struct {
	*Repository
}

// NewParticipantRepository 创建参与者仓储
func NewParticipantRepository(db *gorm.DB) ParticipantRepository {
	return &participantRepository{
		Repository: NewRepository(db),
	}
}

func (r *participantRepository) Create(ctx context.Context, participant *model.Participant) error {
	participant.CreatedAt = time.Now().UnixMilli()

	err := r.DB(ctx).Create(participant).Error
	if err != nil && isDuplicateKeyError(err) {
		return ErrDuplicateParticipant
	}
	return err
}

func (r *participantRepository) CountByProject(ctx context.Context, projectID uint64) (uint64, error) {
	var count int64
	err := r.DB(ctx).Model(&model.Participant{}).
		Where("project_id = ?", projectID).
		Count(&count).Error
	return uint64(count), err
}

func (r *participantRepository) ListByProject(ctx context.Context, projectID uint64, offset, limit uint64) ([]*model.Participant, error) {
	var participants []*model.Participant
	err := r.DB(ctx).
		Where("project_id = ?", projectID).
		Order("seq ASC").
		Offset(int(offset)).
		Limit(int(limit)).
		Find(&participants).Error
	return participants, err
}

func (r *participantRepository) GetByAddress(ctx context.Context, projectID uint64, address string) (*model.Participant, error) {
	var participant model.Participant
	err := r.DB(ctx).
		Where("project_id = ? AND address = ?", projectID, address).
		First(&participant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrParticipantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &participant, nil
}
