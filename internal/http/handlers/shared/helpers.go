package shared

import (
	"errors"

	"github.com/bookwell-commerce/internal/http/response"
	"github.com/bookwell-commerce/internal/logger"
	"github.com/bookwell-commerce/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.S().With("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 记录错误并返回统一错误响应。
func RespondError(c *gin.Context, code int, msg string, err error) {
	if err != nil {
		RequestLog(c).Warnw("request_failed", "code", code, "msg", msg, "error", err)
	}
	response.Error(c, code, msg)
}

// GetContextUintWithKeys 从上下文读取 uint 值并统一处理错误响应。
func GetContextUintWithKeys(c *gin.Context, key string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "unauthorized", nil)
		return 0, false
	}
	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, "invalid identity", nil)
			return 0, false
		}
		return uint(v), true
	case float64:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, "invalid identity", nil)
			return 0, false
		}
		return uint(v), true
	default:
		RespondError(c, response.CodeInternal, "invalid identity type", nil)
		return 0, false
	}
}

// RespondServiceError 将业务错误映射到统一响应码。
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGiftCardNotFound),
		errors.Is(err, service.ErrTenantNotFound),
		errors.Is(err, service.ErrStaffNotFound):
		RespondError(c, response.CodeNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrGiftCardInvalidValue),
		errors.Is(err, service.ErrGiftCardInvalidAmount),
		errors.Is(err, service.ErrGiftCardImportTooLarge):
		RespondError(c, response.CodeBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrGiftCardVoided),
		errors.Is(err, service.ErrGiftCardExpired),
		errors.Is(err, service.ErrGiftCardZeroBalance),
		errors.Is(err, service.ErrGiftCardInsufficientBalance),
		errors.Is(err, service.ErrGiftCardBalanceExceeded),
		errors.Is(err, service.ErrGiftCardDuplicateCode):
		RespondError(c, response.CodeUnprocessable, err.Error(), nil)
	case errors.Is(err, service.ErrStorageConflict):
		RespondError(c, response.CodeConflict, err.Error(), nil)
	case errors.Is(err, service.ErrTenantDisabled),
		errors.Is(err, service.ErrStaffDisabled):
		RespondError(c, response.CodeForbidden, err.Error(), nil)
	case errors.Is(err, service.ErrInvalidPassword):
		RespondError(c, response.CodeUnauthorized, err.Error(), nil)
	default:
		RespondError(c, response.CodeInternal, "internal error", err)
	}
}
