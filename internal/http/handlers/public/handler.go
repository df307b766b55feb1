package public

import "github.com/jaisdevansh/monu-bhiya/internal/provider"

// Handler 顾客侧接口：菜单、购物车、结账、手机号会话
type Handler struct {
	*provider.Container
}

// New 创建顾客侧处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
