package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/luckpool/registry/internal/model"
	"github.com/luckpool/registry/internal/repository"
)

var (
	testRegistryOwner = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	testProjectOwner  = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	testOutsider      = common.HexToAddress("0x00000000000000000000000000000000000000c3")
	testFingerprint   = common.HexToHash("0x1111111111111111111111111111111111111111111111111111111111111111")
)

// mockProjectRepository 模拟项目仓储
type mockProjectRepository struct {
	mock.Mock
}

// Transaction 直接执行闭包，锁语义由真实仓储层测试覆盖
func (m *mockProjectRepository) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *mockProjectRepository) SeedCounter(ctx context.Context, startID uint64) error {
	args := m.Called(ctx, startID)
	return args.Error(0)
}

func (m *mockProjectRepository) NextGlobalID(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockProjectRepository) Create(ctx context.Context, project *model.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *mockProjectRepository) GetByID(ctx context.Context, id uint64, opts *repository.QueryOptions) (*model.Project, error) {
	args := m.Called(ctx, id, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *mockProjectRepository) UpdateStatus(ctx context.Context, id uint64, status model.ProjectStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockProjectRepository) SetMerkleRoot(ctx context.Context, id uint64, root string) error {
	args := m.Called(ctx, id, root)
	return args.Error(0)
}

func (m *mockProjectRepository) List(ctx context.Context, page *repository.Pagination) ([]*model.Project, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Project), args.Error(1)
}

// createTestRegistryService 创建测试用的注册表服务
func createTestRegistryService(repo *mockProjectRepository) *RegistryService {
	return NewRegistryService(repo, NewAccessGuard(testRegistryOwner))
}

func TestAccessGuard_RequireRegistryOwner(t *testing.T) {
	guard := NewAccessGuard(testRegistryOwner)

	assert.NoError(t, guard.RequireRegistryOwner(testRegistryOwner))
	assert.ErrorIs(t, guard.RequireRegistryOwner(testOutsider), ErrUnauthorized)
}

func TestAccessGuard_RequireProjectOwner(t *testing.T) {
	guard := NewAccessGuard(testRegistryOwner)
	project := &model.Project{OwnerAddress: testProjectOwner.Hex()}

	assert.NoError(t, guard.RequireProjectOwner(testProjectOwner, project))
	assert.ErrorIs(t, guard.RequireProjectOwner(testRegistryOwner, project), ErrOnlyProjectOwner)
}

func TestRegistryService_CreateProject_SequentialIDs(t *testing.T) {
	repo := new(mockProjectRepository)
	svc := createTestRegistryService(repo)
	ctx := context.Background()

	repo.On("NextGlobalID", mock.Anything).Return(uint64(100), nil).Once()
	repo.On("NextGlobalID", mock.Anything).Return(uint64(101), nil).Once()
	repo.On("NextGlobalID", mock.Anything).Return(uint64(102), nil).Once()
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Times(3)

	for i, want := range []uint64{100, 101, 102} {
		project, err := svc.CreateProject(ctx, testRegistryOwner, testFingerprint, testProjectOwner, uint64(10*(i+1)))
		require.NoError(t, err)
		assert.Equal(t, want, project.ID)
		assert.Equal(t, model.ProjectStatusNotStart, project.Status)
		assert.Equal(t, testFingerprint.Hex(), project.Fingerprint)
		assert.Equal(t, testProjectOwner.Hex(), project.OwnerAddress)
	}

	repo.AssertExpectations(t)
}

func TestRegistryService_CreateProject_EmitsEvent(t *testing.T) {
	repo := new(mockProjectRepository)
	svc := createTestRegistryService(repo)
	ctx := context.Background()

	repo.On("NextGlobalID", mock.Anything).Return(uint64(7), nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	var got *model.ProjectCreatedEvent
	svc.SetOnProjectCreated(func(ctx context.Context, event *model.ProjectCreatedEvent) error {
		got = event
		return nil
	})

	_, err := svc.CreateProject(ctx, testRegistryOwner, testFingerprint, testProjectOwner, 50)
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.NotEmpty(t, got.EventID)
	assert.Equal(t, uint64(7), got.ProjectID)
	assert.Equal(t, testFingerprint.Hex(), got.Fingerprint)
}

func TestRegistryService_CreateProject_NotRegistryOwner(t *testing.T) {
	repo := new(mockProjectRepository)
	svc := createTestRegistryService(repo)

	_, err := svc.CreateProject(context.Background(), testOutsider, testFingerprint, testProjectOwner, 10)

	assert.ErrorIs(t, err, ErrUnauthorized)
	repo.AssertNotCalled(t, "NextGlobalID", mock.Anything)
}

func TestRegistryService_CreateProject_ZeroSupply(t *testing.T) {
	repo := new(mockProjectRepository)
	svc := createTestRegistryService(repo)

	_, err := svc.CreateProject(context.Background(), testRegistryOwner, testFingerprint, testProjectOwner, 0)

	assert.ErrorIs(t, err, ErrTotalSupplyZero)
	repo.AssertNotCalled(t, "NextGlobalID", mock.Anything)
}

func TestRegistryService_GetProjectInfo_Missing(t *testing.T) {
	repo := new(mockProjectRepository)
	svc := createTestRegistryService(repo)

	repo.On("GetByID", mock.Anything, uint64(999), (*repository.QueryOptions)(nil)).
		Return(nil, repository.ErrProjectNotFound)

	// 未知项目返回零值记录而非错误
	project, err := svc.GetProjectInfo(context.Background(), 999)

	assert.NoError(t, err)
	assert.Equal(t, &model.Project{}, project)
}

func TestRegistryService_GetProjectInfo_WrappedNotFound(t *testing.T) {
	repo := new(mockProjectRepository)
	svc := createTestRegistryService(repo)

	// 仓储层可能包装哨兵错误，缺失语义必须穿透包装
	repo.On("GetByID", mock.Anything, uint64(999), (*repository.QueryOptions)(nil)).
		Return(nil, fmt.Errorf("query project: %w", repository.ErrProjectNotFound))

	project, err := svc.GetProjectInfo(context.Background(), 999)

	assert.NoError(t, err)
	assert.Equal(t, &model.Project{}, project)
}

func TestRegistryService_GetProjectStatus_Missing(t *testing.T) {
	repo := new(mockProjectRepository)
	svc := createTestRegistryService(repo)

	repo.On("GetByID", mock.Anything, uint64(999), (*repository.QueryOptions)(nil)).
		Return(nil, repository.ErrProjectNotFound)

	status, err := svc.GetProjectStatus(context.Background(), 999)

	assert.NoError(t, err)
	assert.Equal(t, model.ProjectStatusNotStart, status)
}

func TestRegistryService_StartProject_Success(t *testing.T) {
	repo := new(mockProjectRepository)
	svc := createTestRegistryService(repo)

	project := &model.Project{ID: 100, OwnerAddress: testProjectOwner.Hex(), Status: model.ProjectStatusNotStart}
	repo.On("GetByID", mock.Anything, uint64(100), mock.Anything).Return(project, nil)
	repo.On("UpdateStatus", mock.Anything, uint64(100), model.ProjectStatusInProgress).Return(nil)

	var got *model.ProjectStatusEvent
	svc.SetOnProjectStarted(func(ctx context.Context, event *model.ProjectStatusEvent) error {
		got = event
		return nil
	})

	err := svc.StartProject(context.Background(), testProjectOwner, 100)

	assert.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "IN_PROGRESS", got.Status)
	repo.AssertExpectations(t)
}

func TestRegistryService_StartProject_AlreadyStarted(t *testing.T) {
	repo := new(mockProjectRepository)
	svc := createTestRegistryService(repo)

	for _, status := range []model.ProjectStatus{model.ProjectStatusInProgress, model.ProjectStatusFinished} {
		project := &model.Project{ID: 100, OwnerAddress: testProjectOwner.Hex(), Status: status}
		repo.On("GetByID", mock.Anything, uint64(100), mock.Anything).Return(project, nil).Once()

		err := svc.StartProject(context.Background(), testProjectOwner, 100)
		assert.ErrorIs(t, err, ErrProjectAlreadyStarted)
	}

	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegistryService_StartProject_NotOwner(t *testing.T) {
	repo := new(mockProjectRepository)
	svc := createTestRegistryService(repo)

	project := &model.Project{ID: 100, OwnerAddress: testProjectOwner.Hex(), Status: model.ProjectStatusNotStart}
	repo.On("GetByID", mock.Anything, uint64(100), mock.Anything).Return(project, nil)

	// 注册表所有者也不能代项目所有者启动
	err := svc.StartProject(context.Background(), testRegistryOwner, 100)

	assert.ErrorIs(t, err, ErrOnlyProjectOwner)
}

func TestRegistryService_FinishProject_Success(t *testing.T) {
	repo := new(mockProjectRepository)
	svc := createTestRegistryService(repo)

	project := &model.Project{ID: 100, OwnerAddress: testProjectOwner.Hex(), Status: model.ProjectStatusInProgress}
	repo.On("GetByID", mock.Anything, uint64(100), mock.Anything).Return(project, nil)
	repo.On("UpdateStatus", mock.Anything, uint64(100), model.ProjectStatusFinished).Return(nil)

	err := svc.FinishProject(context.Background(), testProjectOwner, 100)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRegistryService_FinishProject_NotStarted(t *testing.T) {
	repo := new(mockProjectRepository)
	svc := createTestRegistryService(repo)

	for _, status := range []model.ProjectStatus{model.ProjectStatusNotStart, model.ProjectStatusFinished} {
		project := &model.Project{ID: 100, OwnerAddress: testProjectOwner.Hex(), Status: status}
		repo.On("GetByID", mock.Anything, uint64(100), mock.Anything).Return(project, nil).Once()

		err := svc.FinishProject(context.Background(), testProjectOwner, 100)
		assert.ErrorIs(t, err, ErrProjectNotInProgress)
	}
}

func TestRegistryService_SetMerkleRoot_Success(t *testing.T) {
	repo := new(mockProjectRepository)
	svc := createTestRegistryService(repo)

	root := common.HexToHash("0x2222222222222222222222222222222222222222222222222222222222222222")
	project := &model.Project{ID: 100, OwnerAddress: testProjectOwner.Hex()}
	repo.On("GetByID", mock.Anything, uint64(100), mock.Anything).Return(project, nil)
	repo.On("SetMerkleRoot", mock.Anything, uint64(100), root.Hex()).Return(nil)

	err := svc.SetMerkleRoot(context.Background(), testProjectOwner, 100, root)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRegistryService_SetMerkleRoot_AlreadySet(t *testing.T) {
	repo := new(mockProjectRepository)
	svc := createTestRegistryService(repo)

	root := common.HexToHash("0x2222222222222222222222222222222222222222222222222222222222222222")
	project := &model.Project{
		ID:           100,
		OwnerAddress: testProjectOwner.Hex(),
		MerkleRoot:   "0x3333333333333333333333333333333333333333333333333333333333333333",
	}
	repo.On("GetByID", mock.Anything, uint64(100), mock.Anything).Return(project, nil)

	// 根只允许提交一次，重复提交拒绝，即使值相同
	err := svc.SetMerkleRoot(context.Background(), testProjectOwner, 100, root)

	assert.ErrorIs(t, err, ErrMerkleRootAlreadySet)
	repo.AssertNotCalled(t, "SetMerkleRoot", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegistryService_SetMerkleRoot_ZeroRoot(t *testing.T) {
	repo := new(mockProjectRepository)
	svc := createTestRegistryService(repo)

	// 全零哈希是未提交哨兵，提交被拒绝且不触碰存储，
	// 之后提交真实根仍算首次提交
	err := svc.SetMerkleRoot(context.Background(), testProjectOwner, 100, common.Hash{})
	assert.ErrorIs(t, err, ErrZeroMerkleRoot)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "SetMerkleRoot", mock.Anything, mock.Anything, mock.Anything)

	root := common.HexToHash("0x2222222222222222222222222222222222222222222222222222222222222222")
	project := &model.Project{ID: 100, OwnerAddress: testProjectOwner.Hex()}
	repo.On("GetByID", mock.Anything, uint64(100), mock.Anything).Return(project, nil)
	repo.On("SetMerkleRoot", mock.Anything, uint64(100), root.Hex()).Return(nil)

	assert.NoError(t, svc.SetMerkleRoot(context.Background(), testProjectOwner, 100, root))
	repo.AssertExpectations(t)
}

func TestRegistryService_SetMerkleRoot_NotOwner(t *testing.T) {
	repo := new(mockProjectRepository)
	svc := createTestRegistryService(repo)

	root := common.HexToHash("0x2222222222222222222222222222222222222222222222222222222222222222")
	project := &model.Project{ID: 100, OwnerAddress: testProjectOwner.Hex()}
	repo.On("GetByID", mock.Anything, uint64(100), mock.Anything).Return(project, nil)

	err := svc.SetMerkleRoot(context.Background(), testOutsider, 100, root)

	assert.ErrorIs(t, err, ErrOnlyProjectOwner)
}

func TestRegistryService_ListProjects(t *testing.T) {
	repo := new(mockProjectRepository)
	svc := createTestRegistryService(repo)

	page := &repository.Pagination{Page: 1, PageSize: 10}
	want := []*model.Project{{ID: 100}, {ID: 101}}
	repo.On("List", mock.Anything, page).Return(want, nil)

	projects, err := svc.ListProjects(context.Background(), page)

	assert.NoError(t, err)
	assert.Equal(t, want, projects)
}
