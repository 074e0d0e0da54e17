package admin

import "github.com/bookwell-commerce/internal/provider"

// Handler 后台管理接口处理器入口
// 说明：该处理器仅用于商户员工使用的管理端 API。
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
