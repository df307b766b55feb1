// Package seed 导入默认菜单。
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/jaisdevansh/monu-bhiya/internal/logger"
	"github.com/jaisdevansh/monu-bhiya/internal/repository"
	"github.com/jaisdevansh/monu-bhiya/internal/service"

	"gopkg.in/yaml.v3"
)

//go:embed menu.yml
var defaultMenu []byte

// Menu 菜单文件结构
type Menu struct {
	Categories []MenuCategory `yaml:"categories"`
}

// MenuCategory 分类及其商品
type MenuCategory struct {
	Slug        string        `yaml:"slug"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	SortOrder   int           `yaml:"sort_order"`
	Products    []MenuProduct `yaml:"products"`
}

// MenuProduct 商品条目
type MenuProduct struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Image       string `yaml:"image"`
	Popular     bool   `yaml:"popular"`
	Hidden      bool   `yaml:"hidden"`
	Badge       string `yaml:"badge"`
}

// Result 导入统计
type Result struct {
	CategoriesCreated int
	ProductsCreated   int
	Skipped           int
}

// LoadMenu 读取菜单文件，path 为空时使用内置菜单
func LoadMenu(path string) (*Menu, error) {
	raw := defaultMenu
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read menu file: %w", err)
		}
		raw = data
	}
	var menu Menu
	if err := yaml.Unmarshal(raw, &menu); err != nil {
		return nil, fmt.Errorf("parse menu file: %w", err)
	}
	return &menu, nil
}

// Seeder 通过业务服务写入菜单，复用其校验规则
type Seeder struct {
	categoryRepo    repository.CategoryRepository
	productRepo     repository.ProductRepository
	categoryService *service.CategoryService
	productService  *service.ProductService
}

// NewSeeder 创建导入器
func NewSeeder(categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository) *Seeder {
	return &Seeder{
		categoryRepo:    categoryRepo,
		productRepo:     productRepo,
		categoryService: service.NewCategoryService(categoryRepo),
		productService:  service.NewProductService(productRepo, categoryRepo),
	}
}

// Apply 导入菜单，已存在的分类（按 slug）与商品（按分类内名称）跳过
func (s *Seeder) Apply(ctx context.Context, menu *Menu) (Result, error) {
	var result Result
	if menu == nil {
		return result, nil
	}
	for _, item := range menu.Categories {
		category, err := s.categoryRepo.GetBySlug(strings.TrimSpace(item.Slug))
		if err != nil {
			return result, err
		}
		if category == nil {
			category, err = s.categoryService.Create(ctx, service.CategoryInput{
				Slug:        item.Slug,
				Name:        item.Name,
				Description: item.Description,
				SortOrder:   item.SortOrder,
			})
			if err != nil {
				return result, fmt.Errorf("category %s: %w", item.Slug, err)
			}
			result.CategoriesCreated++
			logger.Infow("seed_category_created", "slug", category.Slug)
		} else {
			result.Skipped++
		}

		for index, product := range item.Products {
			exists, err := s.productExists(category.ID, product.Name)
			if err != nil {
				return result, err
			}
			if exists {
				result.Skipped++
				continue
			}
			categoryID := category.ID
			created, err := s.productService.Create(ctx, service.ProductInput{
				CategoryID:  &categoryID,
				Name:        product.Name,
				Description: product.Description,
				Price:       product.Price,
				Image:       product.Image,
				IsPopular:   product.Popular,
				IsAvailable: !product.Hidden,
				BadgeText:   product.Badge,
				SortOrder:   index + 1,
			})
			if err != nil {
				return result, fmt.Errorf("product %s: %w", product.Name, err)
			}
			result.ProductsCreated++
			logger.Infow("seed_product_created", "product_id", created.ID, "name", created.Name)
		}
	}
	return result, nil
}

func (s *Seeder) productExists(categoryID uint, name string) (bool, error) {
	name = strings.TrimSpace(name)
	products, _, err := s.productRepo.List(repository.ProductListFilter{
		Page:       1,
		PageSize:   100,
		CategoryID: &categoryID,
		Search:     name,
	})
	if err != nil {
		return false, err
	}
	for _, product := range products {
		if strings.EqualFold(product.Name, name) {
			return true, nil
		}
	}
	return false, nil
}
