package public

import (
	"github.com/jaisdevansh/monu-bhiya/internal/http/response"
	"github.com/jaisdevansh/monu-bhiya/internal/i18n"
	"github.com/jaisdevansh/monu-bhiya/internal/models"
	"github.com/jaisdevansh/monu-bhiya/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrderRequest 直接下单请求，需要同一会话与邮箱已通过验证码校验
type CreateOrderRequest struct {
	CheckoutSessionID string            `json:"checkout_session_id" binding:"required"`
	Name              string            `json:"name"`
	Email             string            `json:"email"`
	Phone             string            `json:"phone"`
	Address           string            `json:"address"`
	Items             models.DraftLines `json:"items"`
	Total             models.Money      `json:"total"`
	PaymentMethod     string            `json:"payment_method"`
}

// CreateOrder 落单
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	locale := i18n.ResolveLocale(c)
	order, err := h.CheckoutService.PlaceOrder(c.Request.Context(), service.PlaceOrderInput{
		CheckoutSessionID: req.CheckoutSessionID,
		Details: service.CustomerDetails{
			Name:          req.Name,
			Email:         req.Email,
			Phone:         req.Phone,
			Address:       req.Address,
			PaymentMethod: req.PaymentMethod,
		},
		Items:    req.Items,
		Total:    req.Total,
		Locale:   locale,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, i18n.T(locale, "message.order_placed"), order)
}
