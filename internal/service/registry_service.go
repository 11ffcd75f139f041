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

// RegistryService 项目注册表
//
// 负责项目创建、全局 ID 分配、生命周期流转与 Merkle 根提交。
// 写操作在数据库事务内持有项目行锁 (FOR UPDATE)，以此保证
// 状态机只前进、根只提交一次、ID 严格递增。
type RegistryService struct {
	projectRepo repository.ProjectRepository
	guard       *AccessGuard

	// 事件回调，事务提交后触发
	onProjectCreated  func(ctx context.Context, event *model.ProjectCreatedEvent) error
	onProjectStarted  func(ctx context.Context, event *model.ProjectStatusEvent) error
	onProjectFinished func(ctx context.Context, event *model.ProjectStatusEvent) error
}

// NewRegistryService 创建注册表服务
func NewRegistryService(projectRepo repository.ProjectRepository, guard *AccessGuard) *RegistryService {
	return &RegistryService{
		projectRepo: projectRepo,
		guard:       guard,
	}
}

// SetOnProjectCreated 设置项目创建事件回调
func (s *RegistryService) SetOnProjectCreated(fn func(ctx context.Context, event *model.ProjectCreatedEvent) error) {
	s.onProjectCreated = fn
}

// SetOnProjectStarted 设置项目开始事件回调
func (s *RegistryService) SetOnProjectStarted(fn func(ctx context.Context, event *model.ProjectStatusEvent) error) {
	s.onProjectStarted = fn
}

// SetOnProjectFinished 设置项目结束事件回调
func (s *RegistryService) SetOnProjectFinished(fn func(ctx context.Context, event *model.ProjectStatusEvent) error) {
	s.onProjectFinished = fn
}

// CreateProject 创建项目
//
// 仅注册表所有者可调用；totalSupply 必须非零。全局 ID 在
// 事务内从计数器行取出并前移，仅成功创建消耗 ID。
func (s *RegistryService) CreateProject(ctx context.Context, caller common.Address, fingerprint common.Hash, owner common.Address, totalSupply uint64) (*model.Project, error) {
	if err := s.guard.RequireRegistryOwner(caller); err != nil {
		return nil, err
	}
	if totalSupply == 0 {
		return nil, ErrTotalSupplyZero
	}

	var project *model.Project
	err := s.projectRepo.Transaction(ctx, func(txCtx context.Context) error {
		id, err := s.projectRepo.NextGlobalID(txCtx)
		if err != nil {
			return err
		}

		project = &model.Project{
			ID:           id,
			Fingerprint:  fingerprint.Hex(),
			OwnerAddress: owner.Hex(),
			TotalSupply:  totalSupply,
			Status:       model.ProjectStatusNotStart,
		}
		return s.projectRepo.Create(txCtx, project)
	})
	if err != nil {
		return nil, err
	}

	metrics.ProjectsCreatedTotal.Inc()
	logger.Info("project created",
		zap.Uint64("project_id", project.ID),
		zap.String("fingerprint", project.Fingerprint),
		zap.String("owner", project.OwnerAddress),
		zap.Uint64("total_supply", project.TotalSupply))

	if s.onProjectCreated != nil {
		event := &model.ProjectCreatedEvent{
			EventID:     uuid.NewString(),
			ProjectID:   project.ID,
			Fingerprint: project.Fingerprint,
			CreatedAt:   project.CreatedAt,
		}
		if err := s.onProjectCreated(ctx, event); err != nil {
			logger.Error("failed to publish project created event",
				zap.Uint64("project_id", project.ID),
				zap.Error(err))
		}
	}

	return project, nil
}

// GetProjectInfo 查询项目
//
// 不存在的项目返回零值记录而非错误。
func (s *RegistryService) GetProjectInfo(ctx context.Context, id uint64) (*model.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id, nil)
	if errors.Is(err, repository.ErrProjectNotFound) {
		return &model.Project{}, nil
	}
	if err != nil {
		return nil, err
	}
	return project, nil
}

// GetProjectStatus 查询项目状态，缺失语义同 GetProjectInfo
func (s *RegistryService) GetProjectStatus(ctx context.Context, id uint64) (model.ProjectStatus, error) {
	project, err := s.GetProjectInfo(ctx, id)
	if err != nil {
		return model.ProjectStatusNotStart, err
	}
	return project.Status, nil
}

// ListProjects 分页列出项目
func (s *RegistryService) ListProjects(ctx context.Context, page *repository.Pagination) ([]*model.Project, error) {
	return s.projectRepo.List(ctx, page)
}

// SetMerkleRoot 提交参与者集合的 Merkle 根，每个项目仅允许一次
//
// 全零哈希是"未提交"的存储哨兵，不允许作为根提交。
func (s *RegistryService) SetMerkleRoot(ctx context.Context, caller common.Address, id uint64, root common.Hash) error {
	if root == (common.Hash{}) {
		return ErrZeroMerkleRoot
	}

	err := s.projectRepo.Transaction(ctx, func(txCtx context.Context) error {
		project, err := s.projectRepo.GetByID(txCtx, id, &repository.QueryOptions{ForUpdate: true})
		if err != nil {
			return err
		}
		if err := s.guard.RequireProjectOwner(caller, project); err != nil {
			return err
		}
		if project.HasMerkleRoot() {
			return ErrMerkleRootAlreadySet
		}
		return s.projectRepo.SetMerkleRoot(txCtx, id, root.Hex())
	})
	if err != nil {
		return err
	}

	logger.Info("merkle root committed",
		zap.Uint64("project_id", id),
		zap.String("merkle_root", root.Hex()))
	return nil
}

// StartProject 将项目从 NotStart 推进到 InProgress
func (s *RegistryService) StartProject(ctx context.Context, caller common.Address, id uint64) error {
	err := s.projectRepo.Transaction(ctx, func(txCtx context.Context) error {
		project, err := s.projectRepo.GetByID(txCtx, id, &repository.QueryOptions{ForUpdate: true})
		if err != nil {
			return err
		}
		if err := s.guard.RequireProjectOwner(caller, project); err != nil {
			return err
		}
		// InProgress 与 Finished 都视为"不可再开始"
		if project.Status != model.ProjectStatusNotStart {
			return ErrProjectAlreadyStarted
		}
		return s.projectRepo.UpdateStatus(txCtx, id, model.ProjectStatusInProgress)
	})
	if err != nil {
		return err
	}

	metrics.StatusTransitionsTotal.WithLabelValues(model.ProjectStatusInProgress.String()).Inc()
	logger.Info("project started", zap.Uint64("project_id", id))

	if s.onProjectStarted != nil {
		event := &model.ProjectStatusEvent{
			EventID:    uuid.NewString(),
			ProjectID:  id,
			Status:     model.ProjectStatusInProgress.String(),
			OccurredAt: time.Now().UnixMilli(),
		}
		if err := s.onProjectStarted(ctx, event); err != nil {
			logger.Error("failed to publish project started event",
				zap.Uint64("project_id", id),
				zap.Error(err))
		}
	}
	return nil
}

// FinishProject 将项目从 InProgress 推进到 Finished
func (s *RegistryService) FinishProject(ctx context.Context, caller common.Address, id uint64) error {
	err := s.projectRepo.Transaction(ctx, func(txCtx context.Context) error {
		project, err := s.projectRepo.GetByID(txCtx, id, &repository.QueryOptions{ForUpdate: true})
		if err != nil {
			return err
		}
		if err := s.guard.RequireProjectOwner(caller, project); err != nil {
			return err
		}
		if project.Status != model.ProjectStatusInProgress {
			return ErrProjectNotInProgress
		}
		return s.projectRepo.UpdateStatus(txCtx, id, model.ProjectStatusFinished)
	})
	if err != nil {
		return err
	}

	metrics.StatusTransitionsTotal.WithLabelValues(model.ProjectStatusFinished.String()).Inc()
	logger.Info("project finished", zap.Uint64("project_id", id))

	if s.onProjectFinished != nil {
		event := &model.ProjectStatusEvent{
			EventID:    uuid.NewString(),
			ProjectID:  id,
			Status:     model.ProjectStatusFinished.String(),
			OccurredAt: time.Now().UnixMilli(),
		}
		if err := s.onProjectFinished(ctx, event); err != nil {
			logger.Error("failed to publish project finished event",
				zap.Uint64("project_id", id),
				zap.Error(err))
		}
	}
	return nil
}
