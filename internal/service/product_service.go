package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jaisdevansh/monu-bhiya/internal/cache"
	"github.com/jaisdevansh/monu-bhiya/internal/logger"
	"github.com/jaisdevansh/monu-bhiya/internal/models"
	"github.com/jaisdevansh/monu-bhiya/internal/repository"
)

const publicMenuCacheTTL = 2 * time.Minute

// ProductService 商品业务服务
type ProductService struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, categoryRepo repository.CategoryRepository) *ProductService {
	return &ProductService{repo: repo, categoryRepo: categoryRepo}
}

// ProductInput 创建/更新商品输入，价格以文本提交
type ProductInput struct {
	CategoryID  *uint  `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Image       string `json:"image"`
	IsPopular   bool   `json:"is_popular"`
	IsAvailable bool   `json:"is_available"`
	BadgeText   string `json:"badge_text"`
	SortOrder   int    `json:"sort_order"`
}

func (s *ProductService) normalizeInput(input ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	description := strings.TrimSpace(input.Description)
	image := strings.TrimSpace(input.Image)
	if !runeLenBetween(name, 2, 100) || utf8.RuneCountInString(description) < 5 {
		return nil, ErrProductInvalid
	}
	if !validHTTPURL(image) {
		return nil, ErrProductInvalid
	}
	price, err := models.ParsePrice(input.Price)
	if err != nil {
		return nil, ErrProductInvalid
	}
	if input.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(*input.CategoryID)
		if err != nil {
			return nil, wrapPersistence(nil, err)
		}
		if category == nil {
			return nil, ErrCategoryNotFound
		}
	}
	return &models.Product{
		CategoryID:  input.CategoryID,
		Name:        name,
		Description: description,
		Price:       price,
		Image:       image,
		IsPopular:   input.IsPopular,
		IsAvailable: input.IsAvailable,
		BadgeText:   strings.TrimSpace(input.BadgeText),
		SortOrder:   input.SortOrder,
	}, nil
}

// ListAdmin 管理端商品列表，包含下架商品
func (s *ProductService) ListAdmin(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	filter.WithCategory = true
	products, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, wrapPersistence(nil, err)
	}
	return products, total, nil
}

type cachedMenu struct {
	Products []models.Product `json:"products"`
}

// ListPublic 前台菜单，仅返回可售商品，可按分类 slug 过滤
func (s *ProductService) ListPublic(ctx context.Context, categorySlug string, popularOnly bool) ([]models.Product, error) {
	categorySlug = strings.TrimSpace(categorySlug)
	cacheKey, keyErr := cache.VersionedKey(ctx, cache.VersionCatalog, fmt.Sprintf("menu:%s:%t", categorySlug, popularOnly))
	if keyErr == nil && cache.Enabled() {
		var menu cachedMenu
		if hit, err := cache.GetJSON(ctx, cacheKey, &menu); err == nil && hit {
			return menu.Products, nil
		}
	}

	filter := repository.ProductListFilter{
		OnlyAvailable: true,
		OnlyPopular:   popularOnly,
		WithCategory:  true,
	}
	if categorySlug != "" {
		category, err := s.categoryRepo.GetBySlug(categorySlug)
		if err != nil {
			return nil, wrapPersistence(nil, err)
		}
		if category == nil {
			return nil, ErrCategoryNotFound
		}
		filter.CategoryID = &category.ID
	}
	products, _, err := s.repo.List(filter)
	if err != nil {
		return nil, wrapPersistence(nil, err)
	}
	if keyErr == nil {
		if err := cache.SetJSON(ctx, cacheKey, cachedMenu{Products: products}, publicMenuCacheTTL); err != nil {
			logger.Debugw("menu_cache_set_failed", "error", err)
		}
	}
	return products, nil
}

// Get 获取商品详情
func (s *ProductService) Get(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, wrapPersistence(nil, err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// GetPublic 前台商品详情，下架商品视为不存在
func (s *ProductService) GetPublic(id uint) (*models.Product, error) {
	product, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !product.IsAvailable {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(ctx context.Context, input ProductInput) (*models.Product, error) {
	product, err := s.normalizeInput(input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(product); err != nil {
		return nil, wrapPersistence(nil, err)
	}
	bumpCatalog(ctx)
	return product, nil
}

// Update 更新商品，已有订单项的快照不受影响
func (s *ProductService) Update(ctx context.Context, id uint, input ProductInput) (*models.Product, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	product, err := s.normalizeInput(input)
	if err != nil {
		return nil, err
	}
	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(product); err != nil {
		return nil, wrapPersistence(nil, err)
	}
	bumpCatalog(ctx)
	return product, nil
}

// Delete 删除商品，不触及 order_items
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return wrapPersistence(nil, err)
	}
	bumpCatalog(ctx)
	logger.Infow("product_deleted", "product_id", id)
	return nil
}
