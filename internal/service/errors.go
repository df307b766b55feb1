package service

import (
	"errors"
	"fmt"
	"time"
)

// 错误分类，调用方通过 errors.Is 判断
var (
	ErrValidation   = errors.New("validation failed")
	ErrDispatch     = errors.New("dispatch failed")
	ErrInvalidCode  = errors.New("invalid verification code")
	ErrPersistence  = errors.New("persistence failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

func kindOf(kind error, message string) error {
	return fmt.Errorf("%w: %s", kind, message)
}

// 校验类错误
var (
	ErrNameRequired           = kindOf(ErrValidation, "name is required")
	ErrEmailInvalid           = kindOf(ErrValidation, "email is invalid")
	ErrPhoneInvalid           = kindOf(ErrValidation, "phone must be 10 digits")
	ErrAddressRequired        = kindOf(ErrValidation, "address is required")
	ErrAddressTooLong         = kindOf(ErrValidation, "address is too long")
	ErrCartEmpty              = kindOf(ErrValidation, "cart is empty")
	ErrCartItemInvalid        = kindOf(ErrValidation, "cart item is invalid")
	ErrPaymentMethodInvalid   = kindOf(ErrValidation, "payment method is invalid")
	ErrPaymentMethodDisabled  = kindOf(ErrValidation, "payment method is disabled")
	ErrStoreClosed            = kindOf(ErrValidation, "store is closed")
	ErrCheckoutSessionExpired = kindOf(ErrValidation, "checkout session expired")
	ErrOrderStatusInvalid     = kindOf(ErrValidation, "order status is invalid")
	ErrOrderTotalMismatch     = kindOf(ErrValidation, "declared total does not match items")
	ErrProductInvalid         = kindOf(ErrValidation, "product is invalid")
	ErrCategoryInvalid        = kindOf(ErrValidation, "category is invalid")
	ErrSettingsInvalid        = kindOf(ErrValidation, "store settings are invalid")
	ErrCaptchaInvalid         = kindOf(ErrValidation, "captcha is invalid")
)

// 验证码类错误
var (
	ErrOtpMismatch         = kindOf(ErrInvalidCode, "code does not match")
	ErrOtpExpired          = kindOf(ErrInvalidCode, "code expired")
	ErrOtpNotRequested     = kindOf(ErrInvalidCode, "no code requested for this session")
	ErrOtpAttemptsExceeded = kindOf(ErrInvalidCode, "too many wrong codes")
)

// 邮件投递错误，由 OTP 服务包装为 ErrDispatch
var (
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
	ErrInvalidEmail              = errors.New("invalid email address")
)

// 其他错误
var (
	ErrOrderSaveFailed           = kindOf(ErrPersistence, "order save failed")
	ErrCheckoutSessionNotFound   = kindOf(ErrNotFound, "checkout session not found")
	ErrOrderNotFound             = kindOf(ErrNotFound, "order not found")
	ErrProductNotFound           = kindOf(ErrNotFound, "product not found")
	ErrCategoryNotFound          = kindOf(ErrNotFound, "category not found")
	ErrCheckoutStageInvalid      = kindOf(ErrConflict, "checkout stage does not allow this action")
	ErrOrderTransitionNotAllowed = kindOf(ErrConflict, "order status transition not allowed")
	ErrCategorySlugExists        = kindOf(ErrConflict, "category slug already exists")
	ErrAdminSecretInvalid        = kindOf(ErrUnauthorized, "admin secret invalid")
	ErrSessionInvalid            = kindOf(ErrUnauthorized, "session invalid or expired")
	ErrOtpResendTooSoon          = kindOf(ErrRateLimited, "code requested too recently")
)

// wrapDispatch 将投递失败归入 ErrDispatch，同时保留具体原因
func wrapDispatch(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrDispatch, err)
}

// wrapPersistence 将存储失败归入 ErrPersistence
func wrapPersistence(sentinel, err error) error {
	if err == nil {
		return nil
	}
	if sentinel == nil {
		sentinel = ErrPersistence
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// TransitionError 携带被拒绝的状态流转
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrOrderTransitionNotAllowed.Error(), e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrOrderTransitionNotAllowed
}

// ResendWaitError 携带距离可重新发送的剩余时间
type ResendWaitError struct {
	Wait time.Duration
}

func (e *ResendWaitError) Error() string {
	return fmt.Sprintf("%s: retry in %ds", ErrOtpResendTooSoon.Error(), e.Seconds())
}

func (e *ResendWaitError) Unwrap() error {
	return ErrOtpResendTooSoon
}

// Seconds 向上取整的等待秒数
func (e *ResendWaitError) Seconds() int {
	seconds := int((e.Wait + time.Second - 1) / time.Second)
	if seconds < 1 {
		return 1
	}
	return seconds
}
