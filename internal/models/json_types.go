package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

func scanJSONBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported json column type %T", value)
	}
}

// DayTiming 单日营业时间
type DayTiming struct {
	Open     string `json:"open"`      // HH:MM
	Close    string `json:"close"`     // HH:MM
	IsClosed bool   `json:"is_closed"` // 当天休息
}

// StoreTimings 按星期存储的营业时间
type StoreTimings map[string]DayTiming

// Value 实现 driver.Valuer 接口
func (t StoreTimings) Value() (driver.Value, error) {
	if t == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan 实现 sql.Scanner 接口
func (t *StoreTimings) Scan(value interface{}) error {
	raw, err := scanJSONBytes(value)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		*t = StoreTimings{}
		return nil
	}
	return json.Unmarshal(raw, t)
}

// DraftLine 结账草稿中的一行购物车快照
type DraftLine struct {
	ItemID    string `json:"id"`
	Name      string `json:"name"`
	UnitPrice Money  `json:"price"`
	Quantity  int    `json:"quantity"`
	ImageRef  string `json:"image,omitempty"`
}

// Subtotal 行小计
func (l DraftLine) Subtotal() Money {
	return l.UnitPrice.MulInt(l.Quantity)
}

// DraftLines 草稿行集合
type DraftLines []DraftLine

// Total 草稿合计
func (d DraftLines) Total() Money {
	total := Money{}
	for _, line := range d {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Value 实现 driver.Valuer 接口
func (d DraftLines) Value() (driver.Value, error) {
	if d == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan 实现 sql.Scanner 接口
func (d *DraftLines) Scan(value interface{}) error {
	raw, err := scanJSONBytes(value)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		*d = DraftLines{}
		return nil
	}
	return json.Unmarshal(raw, d)
}
