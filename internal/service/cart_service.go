package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jaisdevansh/monu-bhiya/internal/cart"
	"github.com/jaisdevansh/monu-bhiya/internal/logger"
	"github.com/jaisdevansh/monu-bhiya/internal/repository"
)

// CartService 购物车服务，按商品目录构造购物车行
type CartService struct {
	manager     *cart.Manager
	productRepo repository.ProductRepository
}

// NewCartService 创建购物车服务
func NewCartService(manager *cart.Manager, productRepo repository.ProductRepository) *CartService {
	return &CartService{
		manager:     manager,
		productRepo: productRepo,
	}
}

// ResolveID 校验客户端携带的购物车 ID，无效时签发新的 ID
func (s *CartService) ResolveID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if cart.ValidID(raw) {
		return raw, false
	}
	return cart.NewCartID(), true
}

// Get 读取购物车
func (s *CartService) Get(ctx context.Context, cartID string) cart.View {
	return s.manager.View(ctx, cartID)
}

// AddProduct 将可售商品加入购物车，名称与单价取自当前目录
func (s *CartService) AddProduct(ctx context.Context, cartID string, productID uint) (cart.View, error) {
	if productID == 0 {
		return cart.View{}, ErrProductNotFound
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return cart.View{}, wrapPersistence(nil, err)
	}
	if product == nil || !product.IsAvailable {
		return cart.View{}, ErrProductNotFound
	}
	item := cart.Item{
		ID:        strconv.FormatUint(uint64(product.ID), 10),
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  1,
		ImageRef:  product.Image,
	}
	return s.mutate(ctx, cartID, func(store *cart.Store) error {
		return store.AddItem(ctx, item)
	})
}

// UpdateQuantity 调整数量，结果不大于 0 时移除该行
func (s *CartService) UpdateQuantity(ctx context.Context, cartID, itemID string, delta int) (cart.View, error) {
	return s.mutate(ctx, cartID, func(store *cart.Store) error {
		return store.UpdateQuantity(ctx, itemID, delta)
	})
}

// RemoveItem 移除购物车行，不存在时不报错
func (s *CartService) RemoveItem(ctx context.Context, cartID, itemID string) (cart.View, error) {
	return s.mutate(ctx, cartID, func(store *cart.Store) error {
		return store.RemoveItem(ctx, itemID)
	})
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, cartID string) (cart.View, error) {
	return s.mutate(ctx, cartID, func(store *cart.Store) error {
		return store.Clear(ctx)
	})
}

func (s *CartService) mutate(ctx context.Context, cartID string, fn func(store *cart.Store) error) (cart.View, error) {
	var view cart.View
	err := s.manager.WithCart(ctx, cartID, func(store *cart.Store) error {
		if err := fn(store); err != nil {
			return err
		}
		view = store.Snapshot()
		return nil
	})
	if err != nil {
		if errors.Is(err, cart.ErrInvalidItem) {
			return cart.View{}, ErrCartItemInvalid
		}
		logger.Warnw("cart_save_failed", "cart_id", cartID, "error", err)
		return cart.View{}, wrapPersistence(nil, err)
	}
	return view, nil
}
