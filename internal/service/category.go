package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kuechenzettel/backend/internal/models"
)

// CategoryService handles category operations
type CategoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryService instance
func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

// CreateCategory creates a category. Names are unique.
func (s *CategoryService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrInvalidInput
	}

	var existing models.Category
	err := s.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(trimmed)).
		First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateCategory
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &PersistenceError{Op: "create category", Err: err}
	}

	category := models.Category{Name: trimmed}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, &PersistenceError{Op: "create category", Err: err}
	}
	return &category, nil
}

// GetCategory retrieves a category by ID
func (s *CategoryService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &PersistenceError{Op: "get category", Err: err}
	}
	return &category, nil
}

// ListCategories lists all categories ordered by name
func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, &PersistenceError{Op: "list categories", Err: err}
	}
	return categories, nil
}

// UpdateCategory renames a category
func (s *CategoryService) UpdateCategory(ctx context.Context, id uuid.UUID, name string) (*models.Category, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrInvalidInput
	}

	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(category).Update("name", trimmed).Error; err != nil {
		return nil, &PersistenceError{Op: "update category", Err: err}
	}
	return category, nil
}
