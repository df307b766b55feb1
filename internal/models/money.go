package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Money 统一金额类型（保留 2 位小数）
type Money struct {
	decimal.Decimal
}

var priceTextPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// ErrInvalidPrice 价格格式不合法
var ErrInvalidPrice = errors.New("invalid price format")

// NewMoneyFromDecimal 从 decimal 创建金额
func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(2)}
}

// NewMoneyFromInt 以整数卢比创建金额
func NewMoneyFromInt(amount int64) Money {
	return Money{Decimal: decimal.NewFromInt(amount)}
}

// ParsePrice 按菜单价格格式解析，最多两位小数且非负
func ParsePrice(raw string) (Money, error) {
	raw = strings.TrimSpace(raw)
	if !priceTextPattern.MatchString(raw) {
		return Money{}, ErrInvalidPrice
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return Money{}, ErrInvalidPrice
	}
	return NewMoneyFromDecimal(d), nil
}

// MulInt 单价乘以数量
func (m Money) MulInt(qty int) Money {
	return NewMoneyFromDecimal(m.Decimal.Mul(decimal.NewFromInt(int64(qty))))
}

// Add 金额相加
func (m Money) Add(other Money) Money {
	return NewMoneyFromDecimal(m.Decimal.Add(other.Decimal))
}

// Equal 按两位小数比较
func (m Money) Equal(other Money) bool {
	return m.Decimal.Round(2).Equal(other.Decimal.Round(2))
}

// MarshalJSON 统一输出 2 位小数的字符串
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Decimal.Round(2).StringFixed(2))
}

// UnmarshalJSON 解析金额（字符串或数字）
func (m *Money) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return err
		}
		m.Decimal = d.Round(2)
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return err
	}
	m.Decimal = d.Round(2)
	return nil
}

// Value 用于数据库写入
func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Round(2).Value()
}

// Scan 用于数据库读取
func (m *Money) Scan(value interface{}) error {
	if err := m.Decimal.Scan(value); err != nil {
		return err
	}
	m.Decimal = m.Decimal.Round(2)
	return nil
}

// String 返回 2 位小数格式
func (m Money) String() string {
	return m.Decimal.Round(2).StringFixed(2)
}
