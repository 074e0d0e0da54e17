package public

import (
	"github.com/bookwell-commerce/internal/provider"
)

// Handler 公开 API 处理器（租户 API Key 鉴权）
type Handler struct {
	*provider.Container
}

// New 创建公开处理器
func New(container *provider.Container) *Handler {
	return &Handler{Container: container}
}
