package handler

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/luckpool/registry/internal/middleware"
	"github.com/luckpool/registry/internal/repository"
	"github.com/luckpool/registry/internal/service"
)

// RegistryHandler 项目登记接口
type RegistryHandler struct {
	registrySvc    *service.RegistryService
	eligibilitySvc *service.EligibilityService
}

// NewRegistryHandler 创建项目登记处理器
func NewRegistryHandler(registrySvc *service.RegistryService, eligibilitySvc *service.EligibilityService) *RegistryHandler {
	return &RegistryHandler{
		registrySvc:    registrySvc,
		eligibilitySvc: eligibilitySvc,
	}
}

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Fingerprint string `json:"fingerprint" binding:"required"`
	Owner       string `json:"owner" binding:"required"`
	TotalSupply uint64 `json:"total_supply"`
}

// SetMerkleRootRequest 设置 Merkle 根请求
type SetMerkleRootRequest struct {
	MerkleRoot string `json:"merkle_root" binding:"required"`
}

// VerifyProofRequest Merkle 证明校验请求
type VerifyProofRequest struct {
	Proof []string `json:"proof"`
}

// CreateProject 创建项目
// POST /api/v1/projects
func (h *RegistryHandler) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	fingerprint, ok := parseHash(req.Fingerprint)
	if !ok {
		BadRequest(c, "项目指纹格式非法")
		return
	}
	if !common.IsHexAddress(req.Owner) {
		BadRequest(c, "项目所有者地址非法")
		return
	}

	caller := middleware.GetCaller(c)
	project, err := h.registrySvc.CreateProject(c.Request.Context(), caller, fingerprint, common.HexToAddress(req.Owner), req.TotalSupply)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	Success(c, project)
}

// GetProject 查询项目信息
// GET /api/v1/projects/:id
func (h *RegistryHandler) GetProject(c *gin.Context) {
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	project, err := h.registrySvc.GetProjectInfo(c.Request.Context(), projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	Success(c, project)
}

// GetProjectStatus 查询项目状态
// GET /api/v1/projects/:id/status
func (h *RegistryHandler) GetProjectStatus(c *gin.Context) {
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	status, err := h.registrySvc.GetProjectStatus(c.Request.Context(), projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	Success(c, gin.H{
		"project_id": projectID,
		"status":     status,
		"status_str": status.String(),
	})
}

// ListProjects 分页查询项目列表
// GET /api/v1/projects
func (h *RegistryHandler) ListProjects(c *gin.Context) {
	var page repository.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		BadRequest(c, "分页参数错误: "+err.Error())
		return
	}

	projects, err := h.registrySvc.ListProjects(c.Request.Context(), &page)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	SuccessPaged(c, projects, page.Page, page.PageSize, page.Total)
}

// StartProject 启动项目
// POST /api/v1/projects/:id/start
func (h *RegistryHandler) StartProject(c *gin.Context) {
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	caller := middleware.GetCaller(c)
	if err := h.registrySvc.StartProject(c.Request.Context(), caller, projectID); err != nil {
		respondServiceError(c, err)
		return
	}

	Success(c, gin.H{"project_id": projectID, "status": "IN_PROGRESS"})
}

// FinishProject 结束项目
// POST /api/v1/projects/:id/finish
func (h *RegistryHandler) FinishProject(c *gin.Context) {
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	caller := middleware.GetCaller(c)
	if err := h.registrySvc.FinishProject(c.Request.Context(), caller, projectID); err != nil {
		respondServiceError(c, err)
		return
	}

	Success(c, gin.H{"project_id": projectID, "status": "FINISHED"})
}

// SetMerkleRoot 设置项目资格 Merkle 根
// PUT /api/v1/projects/:id/merkle-root
func (h *RegistryHandler) SetMerkleRoot(c *gin.Context) {
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	var req SetMerkleRootRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	root, valid := parseHash(req.MerkleRoot)
	if !valid {
		BadRequest(c, "Merkle 根格式非法")
		return
	}

	caller := middleware.GetCaller(c)
	if err := h.registrySvc.SetMerkleRoot(c.Request.Context(), caller, projectID, root); err != nil {
		respondServiceError(c, err)
		return
	}

	Success(c, gin.H{"project_id": projectID, "merkle_root": root.Hex()})
}

// VerifyProof 校验调用方的 Merkle 资格证明
// POST /api/v1/projects/:id/merkle-proof
func (h *RegistryHandler) VerifyProof(c *gin.Context) {
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	var req VerifyProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	proof := make([]common.Hash, 0, len(req.Proof))
	for _, raw := range req.Proof {
		node, valid := parseHash(raw)
		if !valid {
			BadRequest(c, "证明节点格式非法: "+raw)
			return
		}
		proof = append(proof, node)
	}

	caller := middleware.GetCaller(c)
	if err := h.eligibilitySvc.VerifyMerkleProof(c.Request.Context(), caller, projectID, proof); err != nil {
		respondServiceError(c, err)
		return
	}

	Success(c, gin.H{"project_id": projectID, "eligible": true})
}

// parseProjectID 解析路径中的项目 ID，失败时直接写入响应
func parseProjectID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "项目 ID 非法")
		return 0, false
	}
	return id, true
}

// parseHash 解析 0x 前缀的 32 字节哈希
func parseHash(raw string) (common.Hash, bool) {
	if len(raw) != 2+2*common.HashLength || raw[:2] != "0x" {
		return common.Hash{}, false
	}
	for _, ch := range raw[2:] {
		if !((ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')) {
			return common.Hash{}, false
		}
	}
	return common.HexToHash(raw), true
}
