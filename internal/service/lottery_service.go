package service

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/luckpool/registry/internal/metrics"
	"github.com/luckpool/registry/internal/model"
	"github.com/luckpool/registry/internal/repository"
	"github.com/luckpool/registry/pkg/logger"
)

// LotteryService 开奖引擎
//
// 仅 Finished 状态的项目可由其所有者开奖；每个项目只开一次，
// 重复尝试返回 ErrLotteryAlreadyDrawn，已存结果不可变。
type LotteryService struct {
	projectRepo repository.ProjectRepository
	lotteryRepo repository.LotteryRepository
	guard       *AccessGuard
	random      RandomSource
	drawLock    *DrawLock

	onMagicNumberPublished func(ctx context.Context, event *model.MagicNumberEvent) error
}

// NewLotteryService 创建开奖服务
//
// drawLock 可为 nil，此时仅依赖数据库行锁与唯一约束串行化开奖。
func NewLotteryService(
	projectRepo repository.ProjectRepository,
	lotteryRepo repository.LotteryRepository,
	guard *AccessGuard,
	random RandomSource,
	drawLock *DrawLock,
) *LotteryService {
	return &LotteryService{
		projectRepo: projectRepo,
		lotteryRepo: lotteryRepo,
		guard:       guard,
		random:      random,
		drawLock:    drawLock,
	}
}

// SetOnMagicNumberPublished 设置开奖事件回调
func (s *LotteryService) SetOnMagicNumberPublished(fn func(ctx context.Context, event *model.MagicNumberEvent) error) {
	s.onMagicNumberPublished = fn
}

// Draw 对 Finished 项目执行一次开奖
func (s *LotteryService) Draw(ctx context.Context, caller common.Address, projectID uint64) (*model.LotteryResult, error) {
	if s.drawLock != nil {
		ok, err := s.drawLock.Acquire(ctx, projectID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrDrawLockFailed
		}
		defer s.drawLock.Release(ctx, projectID)
	}

	var result *model.LotteryResult
	err := s.lotteryRepo.Transaction(ctx, func(txCtx context.Context) error {
		project, err := s.projectRepo.GetByID(txCtx, projectID, &repository.QueryOptions{ForUpdate: true})
		if err != nil {
			return err
		}
		if err := s.guard.RequireProjectOwner(caller, project); err != nil {
			return err
		}
		// NotStart 与 InProgress 统一视为"尚不可开奖"
		if project.Status != model.ProjectStatusFinished {
			return ErrProjectNotFinished
		}

		drawn, err := s.lotteryRepo.ExistsByProjectID(txCtx, projectID)
		if err != nil {
			return err
		}
		if drawn {
			return ErrLotteryAlreadyDrawn
		}

		magicNumber, err := s.random.NextNumber(txCtx)
		if err != nil {
			return err
		}

		result = &model.LotteryResult{
			ProjectID:   projectID,
			MagicNumber: magicNumber,
			DrawnAt:     time.Now().UnixMilli(),
		}
		if err := s.lotteryRepo.Create(txCtx, result); err != nil {
			if errors.Is(err, repository.ErrDuplicateLotteryResult) {
				return ErrLotteryAlreadyDrawn
			}
			return err
		}
		return nil
	})
	if err != nil {
		metrics.LotteryDrawsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	metrics.LotteryDrawsTotal.WithLabelValues("drawn").Inc()
	logger.Info("magic number published",
		zap.Uint64("project_id", projectID),
		zap.Uint64("magic_number", result.MagicNumber))

	if s.onMagicNumberPublished != nil {
		event := &model.MagicNumberEvent{
			EventID:     uuid.NewString(),
			ProjectID:   projectID,
			MagicNumber: result.MagicNumber,
			DrawnAt:     result.DrawnAt,
		}
		if err := s.onMagicNumberPublished(ctx, event); err != nil {
			logger.Error("failed to publish magic number event",
				zap.Uint64("project_id", projectID),
				zap.Error(err))
		}
	}

	return result, nil
}

// GetLotteryResult 查询开奖结果，未开奖返回零值记录
func (s *LotteryService) GetLotteryResult(ctx context.Context, projectID uint64) (*model.LotteryResult, error) {
	result, err := s.lotteryRepo.GetByProjectID(ctx, projectID)
	if errors.Is(err, repository.ErrLotteryResultNotFound) {
		return &model.LotteryResult{}, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}
