package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"quiz-sitting/internal/domain"
	"quiz-sitting/internal/repository/models"
	"quiz-sitting/internal/util"

	"github.com/jmoiron/sqlx"
)

// CategoryDatabaseAdapter implements domain.CategoryRepository using sqlx.DB
type CategoryDatabaseAdapter struct {
	db *sqlx.DB
}

// NewCategoryDatabaseAdapter creates a new instance of CategoryDatabaseAdapter
func NewCategoryDatabaseAdapter(db *sqlx.DB) domain.CategoryRepository {
	return &CategoryDatabaseAdapter{db: db}
}

func toDomainCategory(m *models.Category) *domain.Category {
	return &domain.Category{ID: m.ID, Name: m.Name, CreatedAt: m.CreatedAt}
}

func toDomainSubCategory(m *models.SubCategory) *domain.SubCategory {
	return &domain.SubCategory{
		ID:         m.ID,
		Name:       m.Name,
		CategoryID: util.NullInt64ToPtr(m.CategoryID),
		CreatedAt:  m.CreatedAt,
	}
}

// GetAllCategories implements domain.CategoryRepository
func (a *CategoryDatabaseAdapter) GetAllCategories(ctx context.Context) ([]*domain.Category, error) {
	var rows []models.Category
	query := `SELECT id "id", category "category", created_at "created_at" FROM categories ORDER BY category`
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to get all categories: %w", err)
	}

	categories := make([]*domain.Category, 0, len(rows))
	for i := range rows {
		categories = append(categories, toDomainCategory(&rows[i]))
	}
	return categories, nil
}

// GetCategoryByName implements domain.CategoryRepository
func (a *CategoryDatabaseAdapter) GetCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	var row models.Category
	query := a.db.Rebind(`SELECT id "id", category "category", created_at "created_at" FROM categories WHERE category = ?`)
	if err := GetExecutor(ctx, a.db).GetContext(ctx, &row, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get category %s: %w", name, err)
	}
	return toDomainCategory(&row), nil
}

// SaveCategory implements domain.CategoryRepository
func (a *CategoryDatabaseAdapter) SaveCategory(ctx context.Context, category *domain.Category) error {
	exec := GetExecutor(ctx, a.db)
	id, err := nextID(ctx, a.db, exec, "categories_seq")
	if err != nil {
		return err
	}

	query := a.db.Rebind(`INSERT INTO categories (id, category, created_at) VALUES (?, ?, ?)`)
	if _, err := exec.ExecContext(ctx, query, id, category.Name, category.CreatedAt); err != nil {
		return fmt.Errorf("failed to save category %s: %w", category.Name, err)
	}
	category.ID = id
	return nil
}

// GetSubCategories implements domain.CategoryRepository
func (a *CategoryDatabaseAdapter) GetSubCategories(ctx context.Context, categoryID int64) ([]*domain.SubCategory, error) {
	var rows []models.SubCategory
	query := a.db.Rebind(`SELECT id "id", sub_category "sub_category", category_id "category_id", created_at "created_at"
		FROM sub_categories WHERE category_id = ? ORDER BY sub_category`)
	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, query, categoryID); err != nil {
		return nil, fmt.Errorf("failed to get subcategories for category %d: %w", categoryID, err)
	}

	subCategories := make([]*domain.SubCategory, 0, len(rows))
	for i := range rows {
		subCategories = append(subCategories, toDomainSubCategory(&rows[i]))
	}
	return subCategories, nil
}

// GetSubCategoryByName implements domain.CategoryRepository
func (a *CategoryDatabaseAdapter) GetSubCategoryByName(ctx context.Context, name string) (*domain.SubCategory, error) {
	var row models.SubCategory
	query := a.db.Rebind(`SELECT id "id", sub_category "sub_category", category_id "category_id", created_at "created_at"
		FROM sub_categories WHERE sub_category = ?`)
	if err := GetExecutor(ctx, a.db).GetContext(ctx, &row, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subcategory %s: %w", name, err)
	}
	return toDomainSubCategory(&row), nil
}

// SaveSubCategory implements domain.CategoryRepository
func (a *CategoryDatabaseAdapter) SaveSubCategory(ctx context.Context, subCategory *domain.SubCategory) error {
	exec := GetExecutor(ctx, a.db)
	id, err := nextID(ctx, a.db, exec, "sub_categories_seq")
	if err != nil {
		return err
	}

	query := a.db.Rebind(`INSERT INTO sub_categories (id, sub_category, category_id, created_at) VALUES (?, ?, ?, ?)`)
	_, err = exec.ExecContext(ctx, query,
		id,
		subCategory.Name,
		util.Int64PtrToNullInt64(subCategory.CategoryID),
		subCategory.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save subcategory %s: %w", subCategory.Name, err)
	}
	subCategory.ID = id
	return nil
}
