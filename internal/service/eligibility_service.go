package service

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/luckpool/registry/internal/merkle"
	"github.com/luckpool/registry/internal/metrics"
	"github.com/luckpool/registry/internal/repository"
	"github.com/luckpool/registry/pkg/logger"
)

// EligibilityService Merkle 资格校验
type EligibilityService struct {
	projectRepo repository.ProjectRepository
}

// NewEligibilityService 创建资格校验服务
func NewEligibilityService(projectRepo repository.ProjectRepository) *EligibilityService {
	return &EligibilityService{projectRepo: projectRepo}
}

// VerifyMerkleProof 校验调用者在项目已提交参与者集合中的包含性
//
// 叶子由调用者地址派生，自底向上与 proof 逐层有序对哈希后比对
// 项目存储的根。不匹配返回 ErrInvalidMerkleProof 而非 false。
// 空 proof 对应单叶子树：叶子即根。
func (s *EligibilityService) VerifyMerkleProof(ctx context.Context, caller common.Address, projectID uint64, proof []common.Hash) error {
	project, err := s.projectRepo.GetByID(ctx, projectID, nil)
	if err != nil {
		return err
	}

	leaf := merkle.LeafHash(caller)
	root := merkle.ComputeRoot(leaf, proof)

	if !project.HasMerkleRoot() || root != project.Root() {
		metrics.MerkleVerificationsTotal.WithLabelValues("invalid").Inc()
		logger.Debug("merkle proof rejected",
			zap.Uint64("project_id", projectID),
			zap.String("caller", caller.Hex()),
			zap.Int("proof_len", len(proof)))
		return ErrInvalidMerkleProof
	}

	metrics.MerkleVerificationsTotal.WithLabelValues("valid").Inc()
	return nil
}
