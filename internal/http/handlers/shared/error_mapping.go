package shared

import (
	"errors"

	"github.com/jaisdevansh/monu-bhiya/internal/http/response"
	"github.com/jaisdevansh/monu-bhiya/internal/i18n"
	"github.com/jaisdevansh/monu-bhiya/internal/service"

	"github.com/gin-gonic/gin"
)

// MappedHandlerError 定义业务错误到接口错误响应的映射关系。
type MappedHandlerError struct {
	Target error
	Code   int
	Key    string
}

// 具体错误优先匹配，分类错误兜底
var serviceErrorRules = []MappedHandlerError{
	{Target: service.ErrNameRequired, Code: response.CodeBadRequest, Key: "error.name_required"},
	{Target: service.ErrEmailInvalid, Code: response.CodeBadRequest, Key: "error.email_invalid"},
	{Target: service.ErrPhoneInvalid, Code: response.CodeBadRequest, Key: "error.phone_invalid"},
	{Target: service.ErrAddressRequired, Code: response.CodeBadRequest, Key: "error.validation"},
	{Target: service.ErrAddressTooLong, Code: response.CodeBadRequest, Key: "error.address_too_long"},
	{Target: service.ErrCartEmpty, Code: response.CodeBadRequest, Key: "error.cart_empty"},
	{Target: service.ErrCartItemInvalid, Code: response.CodeBadRequest, Key: "error.cart_item_invalid"},
	{Target: service.ErrPaymentMethodInvalid, Code: response.CodeBadRequest, Key: "error.payment_method_invalid"},
	{Target: service.ErrPaymentMethodDisabled, Code: response.CodeBadRequest, Key: "error.payment_method_disabled"},
	{Target: service.ErrStoreClosed, Code: response.CodeBadRequest, Key: "error.store_closed"},
	{Target: service.ErrCheckoutSessionExpired, Code: response.CodeBadRequest, Key: "error.checkout_session_expired"},
	{Target: service.ErrOrderStatusInvalid, Code: response.CodeBadRequest, Key: "error.order_status_invalid"},
	{Target: service.ErrOrderTotalMismatch, Code: response.CodeBadRequest, Key: "error.cart_item_invalid"},
	{Target: service.ErrProductInvalid, Code: response.CodeBadRequest, Key: "error.product_invalid"},
	{Target: service.ErrCategoryInvalid, Code: response.CodeBadRequest, Key: "error.category_invalid"},
	{Target: service.ErrSettingsInvalid, Code: response.CodeBadRequest, Key: "error.settings_invalid"},
	{Target: service.ErrCaptchaInvalid, Code: response.CodeBadRequest, Key: "error.captcha_invalid"},
	{Target: service.ErrOtpMismatch, Code: response.CodeInvalidCode, Key: "error.otp_invalid"},
	{Target: service.ErrOtpExpired, Code: response.CodeInvalidCode, Key: "error.otp_expired"},
	{Target: service.ErrOtpNotRequested, Code: response.CodeInvalidCode, Key: "error.otp_not_requested"},
	{Target: service.ErrOtpAttemptsExceeded, Code: response.CodeInvalidCode, Key: "error.otp_attempts_exceeded"},
	{Target: service.ErrCheckoutSessionNotFound, Code: response.CodeNotFound, Key: "error.checkout_session_not_found"},
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.order_not_found"},
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
	{Target: service.ErrCategoryNotFound, Code: response.CodeNotFound, Key: "error.category_not_found"},
	{Target: service.ErrCheckoutStageInvalid, Code: response.CodeConflict, Key: "error.checkout_stage_invalid"},
	{Target: service.ErrCategorySlugExists, Code: response.CodeConflict, Key: "error.category_slug_exists"},
	{Target: service.ErrAdminSecretInvalid, Code: response.CodeUnauthorized, Key: "error.admin_secret_invalid"},
	{Target: service.ErrSessionInvalid, Code: response.CodeUnauthorized, Key: "error.unauthorized"},
	{Target: service.ErrOrderSaveFailed, Code: response.CodeInternal, Key: "error.order_save_failed"},
}

var kindErrorRules = []MappedHandlerError{
	{Target: service.ErrValidation, Code: response.CodeBadRequest, Key: "error.validation"},
	{Target: service.ErrInvalidCode, Code: response.CodeInvalidCode, Key: "error.otp_invalid"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
	{Target: service.ErrConflict, Code: response.CodeConflict, Key: "error.checkout_stage_invalid"},
	{Target: service.ErrUnauthorized, Code: response.CodeUnauthorized, Key: "error.unauthorized"},
	{Target: service.ErrRateLimited, Code: response.CodeTooManyRequests, Key: "error.too_many_requests"},
	{Target: service.ErrPersistence, Code: response.CodeInternal, Key: "error.persistence_failed"},
}

// RespondWithMappedError 按规则顺序匹配错误，未命中时记录原始错误并返回兜底响应。
func RespondWithMappedError(c *gin.Context, err error, rules []MappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			if rule.Code >= response.CodeInternal {
				RespondError(c, rule.Code, rule.Key, err)
				return
			}
			RespondError(c, rule.Code, rule.Key, nil)
			return
		}
	}
	RespondError(c, fallbackCode, fallbackKey, err)
}

// RespondServiceError 将 service 层错误映射为统一响应。
func RespondServiceError(c *gin.Context, err error) {
	locale := i18n.ResolveLocale(c)
	var transitionErr *service.TransitionError
	switch {
	case errors.Is(err, service.ErrDispatch):
		// 投递失败时向调用方透出可读原因
		key := service.DispatchReasonKey(err)
		RequestLog(c).Warnw("otp_dispatch_failed", "reason", key, "error", err)
		response.ErrorWithData(c, response.CodeDispatchFailed, i18n.T(locale, key), gin.H{"reason": key})
		return
	case errors.Is(err, service.ErrOtpResendTooSoon):
		var wait *service.ResendWaitError
		seconds := 0
		if errors.As(err, &wait) {
			seconds = wait.Seconds()
		}
		response.ErrorWithData(c, response.CodeTooManyRequests,
			i18n.Sprintf(locale, "error.otp_resend_too_soon", seconds),
			gin.H{"retry_after_seconds": seconds},
		)
		return
	case errors.As(err, &transitionErr):
		response.ErrorWithData(c, response.CodeConflict,
			i18n.Sprintf(locale, "error.order_transition_not_allowed", transitionErr.From, transitionErr.To),
			gin.H{"from": transitionErr.From, "to": transitionErr.To},
		)
		return
	}
	RespondWithMappedError(c, err, concatMappedHandlerErrors(serviceErrorRules, kindErrorRules), response.CodeInternal, "error.internal_error")
}

func concatMappedHandlerErrors(groups ...[]MappedHandlerError) []MappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]MappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}
