package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jaisdevansh/monu-bhiya/internal/constants"
)

var (
	phonePattern    = regexp.MustCompile(`^[0-9]{10}$`)
	slugPattern     = regexp.MustCompile(`^[a-z0-9-]+$`)
	clockPattern    = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	maxAddressRunes = 500
)

// CustomerDetails 结账时填写的顾客信息
type CustomerDetails struct {
	Name          string
	Email         string
	Phone         string
	Address       string
	PaymentMethod string
}

// normalize 去除首尾空白并统一邮箱大小写
func (d CustomerDetails) normalize() CustomerDetails {
	return CustomerDetails{
		Name:          strings.TrimSpace(d.Name),
		Email:         strings.ToLower(strings.TrimSpace(d.Email)),
		Phone:         strings.TrimSpace(d.Phone),
		Address:       strings.TrimSpace(d.Address),
		PaymentMethod: strings.ToUpper(strings.TrimSpace(d.PaymentMethod)),
	}
}

// validateCustomerDetails 校验姓名、邮箱、10 位手机号与地址
func validateCustomerDetails(d CustomerDetails) (CustomerDetails, error) {
	d, err := validateContact(d)
	if err != nil {
		return d, err
	}
	if d.Address == "" {
		return d, ErrAddressRequired
	}
	return d, nil
}

// validateContact 地址可以为空，但仍受长度限制
func validateContact(d CustomerDetails) (CustomerDetails, error) {
	d = d.normalize()
	if d.Name == "" {
		return d, ErrNameRequired
	}
	email, err := normalizeEmail(d.Email)
	if err != nil {
		return d, err
	}
	d.Email = email
	if !phonePattern.MatchString(d.Phone) {
		return d, ErrPhoneInvalid
	}
	if utf8.RuneCountInString(d.Address) > maxAddressRunes {
		return d, ErrAddressTooLong
	}
	return d, nil
}

// resolvePaymentMethod 空值取默认方式，其余必须为 COD 或 UPI
func resolvePaymentMethod(raw, fallback string) (string, error) {
	method := strings.ToUpper(strings.TrimSpace(raw))
	if method == "" {
		method = strings.ToUpper(strings.TrimSpace(fallback))
	}
	if method == "" {
		method = constants.PaymentMethodCOD
	}
	switch method {
	case constants.PaymentMethodCOD, constants.PaymentMethodUPI:
		return method, nil
	default:
		return "", ErrPaymentMethodInvalid
	}
}

// ValidPhone 判断是否为 10 位手机号
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(strings.TrimSpace(phone))
}

func runeLenBetween(value string, min, max int) bool {
	n := utf8.RuneCountInString(value)
	return n >= min && (max <= 0 || n <= max)
}
