package public

import (
	handlershared "github.com/jaisdevansh/monu-bhiya/internal/http/handlers/shared"
	"github.com/jaisdevansh/monu-bhiya/internal/http/response"

	"github.com/gin-gonic/gin"
)

const cartIDHeader = "X-Cart-ID"

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondServiceError(c *gin.Context, err error) {
	handlershared.RespondServiceError(c, err)
}

func badRequest(c *gin.Context) {
	respondError(c, response.CodeBadRequest, "error.bad_request", nil)
}

// resolveCartID 读取 X-Cart-ID，缺失或无效时签发新 ID 并回写响应头
func (h *Handler) resolveCartID(c *gin.Context) string {
	cartID, issued := h.CartService.ResolveID(c.GetHeader(cartIDHeader))
	if issued {
		handlershared.RequestLog(c).Debugw("cart_id_issued", "cart_id", cartID)
	}
	c.Header(cartIDHeader, cartID)
	return cartID
}
