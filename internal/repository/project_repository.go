package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/luckpool/registry/internal/model"
)

var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrDuplicateProject = errors.New("duplicate project")
	ErrCounterNotFound  = errors.New("id counter not found")
)

// ProjectRepository 项目仓储接口
type ProjectRepository interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	// SeedCounter 初始化全局 ID 计数器，已存在则不变
	SeedCounter(ctx context.Context, startID uint64) error
	// NextGlobalID 锁定计数器行，返回当前值并前移。必须在事务内调用。
	NextGlobalID(ctx context.Context) (uint64, error)

	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id uint64, opts *QueryOptions) (*model.Project, error)
	UpdateStatus(ctx context.Context, id uint64, status model.ProjectStatus) error
	SetMerkleRoot(ctx context.Context, id uint64, root string) error
	List(ctx context.Context, page *Pagination) ([]*model.Project, error)
}

// projectRepository 项目仓储实现
type projectRepository struct {
	*Repository
}

// NewProjectRepository 创建项目仓储
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{
		Repository: NewRepository(db),
	}
}

func (r *projectRepository) SeedCounter(ctx context.Context, startID uint64) error {
	counter := &model.IDCounter{
		ID:        model.IDCounterRowID,
		NextID:    startID,
		UpdatedAt: time.Now().UnixMilli(),
	}
	return r.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(counter).Error
}

func (r *projectRepository) NextGlobalID(ctx context.Context) (uint64, error) {
	var counter model.IDCounter
	err := r.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", model.IDCounterRowID).
		First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrCounterNotFound
	}
	if err != nil {
		return 0, err
	}

	next := counter.NextID
	result := r.DB(ctx).Model(&model.IDCounter{}).
		Where("id = ?", model.IDCounterRowID).
		Updates(map[string]interface{}{
			"next_id":    next + 1,
			"updated_at": time.Now().UnixMilli(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return next, nil
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	now := time.Now().UnixMilli()
	project.CreatedAt = now
	project.UpdatedAt = now

	err := r.DB(ctx).Create(project).Error
	if err != nil && isDuplicateKeyError(err) {
		return ErrDuplicateProject
	}
	return err
}

func (r *projectRepository) GetByID(ctx context.Context, id uint64, opts *QueryOptions) (*model.Project, error) {
	var project model.Project
	db := opts.ApplyLock(r.DB(ctx))
	err := db.Where("id = ?", id).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) UpdateStatus(ctx context.Context, id uint64, status model.ProjectStatus) error {
	result := r.DB(ctx).Model(&model.Project{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UnixMilli(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (r *projectRepository) SetMerkleRoot(ctx context.Context, id uint64, root string) error {
	result := r.DB(ctx).Model(&model.Project{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"merkle_root": root,
			"updated_at":  time.Now().UnixMilli(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (r *projectRepository) List(ctx context.Context, page *Pagination) ([]*model.Project, error) {
	var projects []*model.Project

	query := r.DB(ctx).Model(&model.Project{})
	if err := query.Count(&page.Total).Error; err != nil {
		return nil, err
	}

	err := query.
		Order("id ASC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&projects).Error
	return projects, err
}
