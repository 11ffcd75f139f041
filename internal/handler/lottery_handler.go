package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/luckpool/registry/internal/middleware"
	"github.com/luckpool/registry/internal/service"
)

// LotteryHandler 开奖接口
type LotteryHandler struct {
	lotterySvc *service.LotteryService
}

// NewLotteryHandler 创建开奖处理器
func NewLotteryHandler(lotterySvc *service.LotteryService) *LotteryHandler {
	return &LotteryHandler{lotterySvc: lotterySvc}
}

// Draw 为已结束项目开出幸运数
// POST /api/v1/projects/:id/lottery
func (h *LotteryHandler) Draw(c *gin.Context) {
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	caller := middleware.GetCaller(c)
	result, err := h.lotterySvc.Draw(c.Request.Context(), caller, projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	Success(c, result)
}

// GetResult 查询项目开奖结果
// GET /api/v1/projects/:id/lottery
func (h *LotteryHandler) GetResult(c *gin.Context) {
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	result, err := h.lotterySvc.GetLotteryResult(c.Request.Context(), projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	Success(c, result)
}
