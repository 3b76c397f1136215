package repositories

import (
	"fmt"

	"yamdb/internal/apperrors"
	"yamdb/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

// List returns categories whose name contains search, ordered by name.
func (r *GORMCategoryRepository) List(search string, page Page) ([]models.Category, int64, error) {
	query := r.db.Model(&models.Category{})
	if search != "" {
		query = query.Where("LOWER(name) LIKE ?", containsPattern(search))
	}
	query = query.Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}
	var categories []models.Category
	if err := query.Scopes(page.scope).Order("name").Find(&categories).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, total, nil
}

// GetBySlug retrieves a single category by its slug.
func (r *GORMCategoryRepository) GetBySlug(slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.First(&category, "slug = ?", slug).Error; err != nil {
		return nil, translate(err, "category %s", slug)
	}
	return &category, nil
}

// Create creates a new category in the database.
func (r *GORMCategoryRepository) Create(category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	if err := r.db.Create(category).Error; err != nil {
		return translate(err, "failed to create category %s", category.Slug)
	}
	return nil
}

// Delete removes a category; its titles keep existing without a category.
func (r *GORMCategoryRepository) Delete(slug string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, "slug = ?", slug).Error; err != nil {
			return translate(err, "category %s", slug)
		}
		if err := tx.Model(&models.Title{}).Where("category_id = ?", category.ID).Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach titles from category %s: %w", slug, err)
		}
		if err := tx.Delete(&category).Error; err != nil {
			return fmt.Errorf("failed to delete category %s: %w", slug, err)
		}
		return nil
	})
}

// GORMGenreRepository is a GORM implementation of GenreRepository.
type GORMGenreRepository struct {
	db *gorm.DB
}

// NewGORMGenreRepository creates a new instance of GORMGenreRepository.
func NewGORMGenreRepository(db *gorm.DB) *GORMGenreRepository {
	return &GORMGenreRepository{db: db}
}

// List returns genres whose name contains search, ordered by name.
func (r *GORMGenreRepository) List(search string, page Page) ([]models.Genre, int64, error) {
	query := r.db.Model(&models.Genre{})
	if search != "" {
		query = query.Where("LOWER(name) LIKE ?", containsPattern(search))
	}
	query = query.Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count genres: %w", err)
	}
	var genres []models.Genre
	if err := query.Scopes(page.scope).Order("name").Find(&genres).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list genres: %w", err)
	}
	return genres, total, nil
}

// GetBySlug retrieves a single genre by its slug.
func (r *GORMGenreRepository) GetBySlug(slug string) (*models.Genre, error) {
	var genre models.Genre
	if err := r.db.First(&genre, "slug = ?", slug).Error; err != nil {
		return nil, translate(err, "genre %s", slug)
	}
	return &genre, nil
}

// GetBySlugs resolves every slug, failing with apperrors.ErrNotFound if any is unknown.
func (r *GORMGenreRepository) GetBySlugs(slugs []string) ([]models.Genre, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	var genres []models.Genre
	if err := r.db.Where("slug IN ?", slugs).Order("name").Find(&genres).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve genres: %w", err)
	}
	found := make(map[string]bool, len(genres))
	for _, g := range genres {
		found[g.Slug] = true
	}
	for _, s := range slugs {
		if !found[s] {
			return nil, fmt.Errorf("genre %s: %w", s, apperrors.ErrNotFound)
		}
	}
	return genres, nil
}

// Create creates a new genre in the database.
func (r *GORMGenreRepository) Create(genre *models.Genre) error {
	if genre.ID == "" {
		genre.ID = uuid.New().String()
	}
	if err := r.db.Create(genre).Error; err != nil {
		return translate(err, "failed to create genre %s", genre.Slug)
	}
	return nil
}

// Delete removes a genre and unlinks it from its titles.
func (r *GORMGenreRepository) Delete(slug string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var genre models.Genre
		if err := tx.First(&genre, "slug = ?", slug).Error; err != nil {
			return translate(err, "genre %s", slug)
		}
		if err := tx.Exec("DELETE FROM title_genres WHERE genre_id = ?", genre.ID).Error; err != nil {
			return fmt.Errorf("failed to unlink genre %s: %w", slug, err)
		}
		if err := tx.Delete(&genre).Error; err != nil {
			return fmt.Errorf("failed to delete genre %s: %w", slug, err)
		}
		return nil
	})
}
