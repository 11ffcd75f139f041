package handler

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/luckpool/registry/internal/service"
)

// ParticipantHandler 参与者查询接口
type ParticipantHandler struct {
	participantSvc *service.ParticipantService
}

// NewParticipantHandler 创建参与者处理器
func NewParticipantHandler(participantSvc *service.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{participantSvc: participantSvc}
}

// ListParticipants 按登记顺序分页查询项目参与者
// GET /api/v1/projects/:id/participants?offset=0&limit=20
func (h *ParticipantHandler) ListParticipants(c *gin.Context) {
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	offset, err := strconv.ParseUint(c.DefaultQuery("offset", "0"), 10, 64)
	if err != nil {
		BadRequest(c, "offset 参数非法")
		return
	}
	limit, err := strconv.ParseUint(c.DefaultQuery("limit", "20"), 10, 64)
	if err != nil {
		BadRequest(c, "limit 参数非法")
		return
	}

	participants, err := h.participantSvc.GetProjectParticipants(c.Request.Context(), projectID, offset, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	Success(c, gin.H{
		"project_id":   projectID,
		"offset":       offset,
		"limit":        limit,
		"participants": participants,
	})
}

// GetParticipantsAmount 查询项目参与者总数
// GET /api/v1/projects/:id/participants/count
func (h *ParticipantHandler) GetParticipantsAmount(c *gin.Context) {
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	amount, err := h.participantSvc.GetProjectParticipantsAmount(c.Request.Context(), projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	Success(c, gin.H{"project_id": projectID, "amount": amount})
}

// GetParticipant 按地址查询参与者信息
// GET /api/v1/projects/:id/participants/:address
func (h *ParticipantHandler) GetParticipant(c *gin.Context) {
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	raw := c.Param("address")
	if !common.IsHexAddress(raw) {
		BadRequest(c, "参与者地址非法")
		return
	}

	participant, err := h.participantSvc.GetParticipantInfo(c.Request.Context(), projectID, common.HexToAddress(raw))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	Success(c, participant)
}
