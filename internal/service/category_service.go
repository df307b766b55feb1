package service

import (
	"context"
	"strings"

	"github.com/jaisdevansh/monu-bhiya/internal/cache"
	"github.com/jaisdevansh/monu-bhiya/internal/logger"
	"github.com/jaisdevansh/monu-bhiya/internal/models"
	"github.com/jaisdevansh/monu-bhiya/internal/repository"
)

// CategoryService 分类业务服务
type CategoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// CategoryInput 创建/更新分类输入
type CategoryInput struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
}

func (in CategoryInput) normalize() (CategoryInput, error) {
	in.Slug = strings.TrimSpace(in.Slug)
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if !runeLenBetween(in.Slug, 2, 50) || !slugPattern.MatchString(in.Slug) {
		return in, ErrCategoryInvalid
	}
	if !runeLenBetween(in.Name, 2, 50) {
		return in, ErrCategoryInvalid
	}
	return in, nil
}

// List 获取分类列表
func (s *CategoryService) List() ([]models.Category, error) {
	categories, err := s.repo.List()
	if err != nil {
		return nil, wrapPersistence(nil, err)
	}
	return categories, nil
}

// Create 创建分类
func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*models.Category, error) {
	input, err := input.normalize()
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountBySlug(input.Slug, nil)
	if err != nil {
		return nil, wrapPersistence(nil, err)
	}
	if count > 0 {
		return nil, ErrCategorySlugExists
	}

	category := models.Category{
		Slug:        input.Slug,
		Name:        input.Name,
		Description: input.Description,
		SortOrder:   input.SortOrder,
	}
	if err := s.repo.Create(&category); err != nil {
		return nil, wrapPersistence(nil, err)
	}
	bumpCatalog(ctx)
	return &category, nil
}

// Update 更新分类
func (s *CategoryService) Update(ctx context.Context, id uint, input CategoryInput) (*models.Category, error) {
	input, err := input.normalize()
	if err != nil {
		return nil, err
	}
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, wrapPersistence(nil, err)
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	count, err := s.repo.CountBySlug(input.Slug, &id)
	if err != nil {
		return nil, wrapPersistence(nil, err)
	}
	if count > 0 {
		return nil, ErrCategorySlugExists
	}

	category.Slug = input.Slug
	category.Name = input.Name
	category.Description = input.Description
	category.SortOrder = input.SortOrder
	if err := s.repo.Update(category); err != nil {
		return nil, wrapPersistence(nil, err)
	}
	bumpCatalog(ctx)
	return category, nil
}

// Delete 删除分类，其下商品保留并解除关联，历史订单项不受影响
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return wrapPersistence(nil, err)
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		return wrapPersistence(nil, err)
	}
	bumpCatalog(ctx)
	logger.Infow("category_deleted", "category_id", id, "slug", category.Slug)
	return nil
}

func bumpCatalog(ctx context.Context) {
	if err := cache.BumpVersion(ctx, cache.VersionCatalog); err != nil {
		logger.Warnw("catalog_cache_bump_failed", "error", err)
	}
}
