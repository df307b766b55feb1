package admin

import "github.com/jaisdevansh/monu-bhiya/internal/provider"

// Handler 店主后台接口，挂在 /api/v1/admin 下并经过 owner 角色校验
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
