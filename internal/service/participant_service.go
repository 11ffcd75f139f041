package service

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/luckpool/registry/internal/metrics"
	"github.com/luckpool/registry/internal/model"
	"github.com/luckpool/registry/internal/repository"
	"github.com/luckpool/registry/pkg/logger"
)

// ParticipantService 参与者存储
//
// 登记消息来自 Kafka 注册通道；读侧提供追加序分页、计数与按地址查询。
type ParticipantService struct {
	participantRepo repository.ParticipantRepository
	projectRepo     repository.ProjectRepository
}

// NewParticipantService 创建参与者服务
func NewParticipantService(participantRepo repository.ParticipantRepository, projectRepo repository.ProjectRepository) *ParticipantService {
	return &ParticipantService{
		participantRepo: participantRepo,
		projectRepo:     projectRepo,
	}
}

// Register 登记一名参与者
//
// 在事务内持有项目行锁分配追加序号，保证顺序视图与地址视图一致。
// 重复地址返回 repository.ErrDuplicateParticipant。
func (s *ParticipantService) Register(ctx context.Context, reg *model.ParticipantRegistration) (*model.Participant, error) {
	if !common.IsHexAddress(reg.Address) {
		return nil, ErrInvalidAddress
	}
	address := common.HexToAddress(reg.Address).Hex()

	var participant *model.Participant
	err := s.participantRepo.Transaction(ctx, func(txCtx context.Context) error {
		if _, err := s.projectRepo.GetByID(txCtx, reg.ProjectID, &repository.QueryOptions{ForUpdate: true}); err != nil {
			return err
		}

		seq, err := s.participantRepo.CountByProject(txCtx, reg.ProjectID)
		if err != nil {
			return err
		}

		participant = &model.Participant{
			ProjectID: reg.ProjectID,
			Seq:       seq,
			Address:   address,
			LuckyNum:  reg.LuckyNum,
		}
		return s.participantRepo.Create(txCtx, participant)
	})
	if err != nil {
		return nil, err
	}

	metrics.ParticipantsRegisteredTotal.Inc()
	logger.Debug("participant registered",
		zap.Uint64("project_id", participant.ProjectID),
		zap.String("address", participant.Address),
		zap.Uint64("seq", participant.Seq))

	return participant, nil
}

// GetProjectParticipants 按追加顺序分页返回参与者
//
// offset 超出当前数量 (含空项目) 返回 ErrOffsetOutOfBounds；
// limit 超出剩余数量时截断，不报错。
func (s *ParticipantService) GetProjectParticipants(ctx context.Context, projectID, offset, limit uint64) ([]*model.Participant, error) {
	count, err := s.participantRepo.CountByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if offset >= count {
		return nil, ErrOffsetOutOfBounds
	}
	if remaining := count - offset; limit > remaining {
		limit = remaining
	}
	return s.participantRepo.ListByProject(ctx, projectID, offset, limit)
}

// GetProjectParticipantsAmount 返回项目当前参与者数量，未知项目为零
func (s *ParticipantService) GetProjectParticipantsAmount(ctx context.Context, projectID uint64) (uint64, error) {
	return s.participantRepo.CountByProject(ctx, projectID)
}

// GetParticipantInfo 按地址查询参与者，缺失返回零值记录
func (s *ParticipantService) GetParticipantInfo(ctx context.Context, projectID uint64, address common.Address) (*model.Participant, error) {
	participant, err := s.participantRepo.GetByAddress(ctx, projectID, address.Hex())
	if errors.Is(err, repository.ErrParticipantNotFound) {
		return &model.Participant{}, nil
	}
	if err != nil {
		return nil, err
	}
	return participant, nil
}
