package cart

import (
	"context"
	"sync"

	"github.com/jaisdevansh/monu-bhiya/internal/models"
)

// Store 单个购物车的状态容器；每次变更都先写入存储，成功后才更新内存状态
type Store struct {
	mu      sync.Mutex
	id      string
	items   []Item
	visible bool
	adapter *Adapter
}

// Open 从存储恢复购物车，读取失败时得到空购物车
func Open(ctx context.Context, id string, adapter *Adapter) *Store {
	return &Store{
		id:      id,
		items:   adapter.Load(ctx, id),
		adapter: adapter,
	}
}

// ID 购物车 ID
func (s *Store) ID() string {
	return s.id
}

// AddItem 已存在则数量加 1，否则追加一行数量为 1，并将购物车置为可见
func (s *Store) AddItem(ctx context.Context, item Item) error {
	if err := item.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneItems(s.items)
	found := false
	for i := range next {
		if next[i].ID == item.ID {
			next[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		item.Quantity = 1
		next = append(next, item)
	}
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.visible = true
	return nil
}

// UpdateQuantity 按增量调整数量，结果小于等于 0 时移除该行
func (s *Store) UpdateQuantity(ctx context.Context, id string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		if item.ID == id {
			qty := item.Quantity + delta
			if qty <= 0 {
				continue
			}
			item.Quantity = qty
		}
		next = append(next, item)
	}
	return s.commit(ctx, next)
}

// RemoveItem 删除一行，不存在时不报错
func (s *Store) RemoveItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		if item.ID != id {
			next = append(next, item)
		}
	}
	return s.commit(ctx, next)
}

// Clear 清空购物车并删除持久化快照
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.adapter.Drop(ctx, s.id); err != nil {
		return err
	}
	s.items = []Item{}
	return nil
}

// Visible 购物车面板是否可见
func (s *Store) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Items 返回当前行的副本
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// Total 合计金额，实时计算
func (s *Store) Total() models.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := models.Money{}
	for _, item := range s.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ItemCount 商品总件数，实时计算
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// IsEmpty 是否为空
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

// Snapshot 返回带派生值的只读视图
func (s *Store) Snapshot() View {
	items := s.Items()
	view := View{ID: s.id, Items: items, Visible: s.Visible()}
	for _, item := range items {
		view.Total = view.Total.Add(item.Subtotal())
		view.ItemCount += item.Quantity
	}
	return view
}

func (s *Store) commit(ctx context.Context, next []Item) error {
	if err := s.adapter.Save(ctx, s.id, next); err != nil {
		return err
	}
	s.items = next
	return nil
}

// View 购物车对外视图
type View struct {
	ID        string       `json:"id"`
	Items     []Item       `json:"items"`
	Total     models.Money `json:"total"`
	ItemCount int          `json:"item_count"`
	Visible   bool         `json:"visible"`
}
