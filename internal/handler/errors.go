package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/luckpool/registry/internal/repository"
	"github.com/luckpool/registry/internal/service"
	"github.com/luckpool/registry/pkg/logger"
	"go.uber.org/zap"
)

// respondServiceError 将业务错误映射为 HTTP 响应
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		Forbidden(c, "仅登记簿所有者可执行该操作")
	case errors.Is(err, service.ErrOnlyProjectOwner):
		Forbidden(c, "仅项目所有者可执行该操作")
	case errors.Is(err, repository.ErrProjectNotFound):
		NotFound(c, "项目不存在")
	case errors.Is(err, service.ErrTotalSupplyZero):
		BadRequest(c, "票券总量必须大于零")
	case errors.Is(err, service.ErrInvalidAddress):
		BadRequest(c, "地址格式非法")
	case errors.Is(err, service.ErrOffsetOutOfBounds):
		BadRequest(c, "分页偏移超出参与者数量")
	case errors.Is(err, service.ErrZeroMerkleRoot):
		BadRequest(c, "Merkle 根不能为全零")
	case errors.Is(err, service.ErrProjectAlreadyStarted):
		Conflict(c, "项目已启动")
	case errors.Is(err, service.ErrProjectNotInProgress):
		Conflict(c, "项目未处于进行中状态")
	case errors.Is(err, service.ErrProjectNotFinished):
		Conflict(c, "项目尚未结束")
	case errors.Is(err, service.ErrMerkleRootAlreadySet):
		Conflict(c, "Merkle 根已设置")
	case errors.Is(err, service.ErrLotteryAlreadyDrawn):
		Conflict(c, "幸运数已开出")
	case errors.Is(err, service.ErrInvalidMerkleProof):
		Forbidden(c, "Merkle 证明校验失败")
	case errors.Is(err, service.ErrDrawLockFailed):
		Conflict(c, "开奖正在进行中")
	default:
		logger.Error("请求处理失败", zap.Error(err))
		InternalError(c, "内部错误")
	}
}
