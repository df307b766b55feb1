// Package cart 实现购物车状态容器，序列化与存储集中在 Adapter 边界。
package cart

import (
	"errors"
	"strings"

	"github.com/jaisdevansh/monu-bhiya/internal/models"
)

var (
	// ErrInvalidItem 商品行缺少 ID 或价格为负
	ErrInvalidItem = errors.New("invalid cart item")
	// ErrCartNotFound 存储中没有该购物车
	ErrCartNotFound = errors.New("cart not found")
)

// Item 购物车行
type Item struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	UnitPrice models.Money `json:"price"`
	Quantity  int          `json:"quantity"`
	ImageRef  string       `json:"image"`
}

// Subtotal 行小计
func (i Item) Subtotal() models.Money {
	return i.UnitPrice.MulInt(i.Quantity)
}

func (i Item) validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return ErrInvalidItem
	}
	if i.UnitPrice.IsNegative() {
		return ErrInvalidItem
	}
	return nil
}

// sanitize 丢弃损坏的行，合并重复 ID，保证数量均大于 0
func sanitize(items []Item) []Item {
	out := make([]Item, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		if item.validate() != nil || item.Quantity <= 0 {
			continue
		}
		if pos, ok := index[item.ID]; ok {
			out[pos].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item)
	}
	return out
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
