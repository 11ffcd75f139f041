package middleware

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

const (
	// CallerHeader 调用方身份头
	//
	// 宿主执行环境负责认证调用方，本服务只消费其传入的地址。
	CallerHeader = "X-Caller-Address"
	// ContextKeyCaller 上下文中的调用方地址键
	ContextKeyCaller = "caller_address"
)

// CallerRequired 返回要求调用方身份的中间件
func CallerRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(CallerHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "未提供调用方身份",
			})
			return
		}

		if !common.IsHexAddress(raw) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "调用方地址非法",
			})
			return
		}

		c.Set(ContextKeyCaller, common.HexToAddress(raw))
		c.Next()
	}
}

// GetCaller 从上下文获取调用方地址
func GetCaller(c *gin.Context) common.Address {
	if v, exists := c.Get(ContextKeyCaller); exists {
		if addr, ok := v.(common.Address); ok {
			return addr
		}
	}
	return common.Address{}
}
