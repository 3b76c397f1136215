package repositories

import (
	"fmt"
	"strings"

	"yamdb/internal/apperrors"
	"yamdb/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// withRating adds the mean review score as the "rating" column. Single reads
// and listings both go through it, so null handling and precision never differ.
func withRating(db *gorm.DB) *gorm.DB {
	return db.Select("titles.*, CAST(AVG(reviews.score) AS DOUBLE PRECISION) AS rating").
		Joins("LEFT JOIN reviews ON reviews.title_id = titles.id").
		Group("titles.id")
}

func genresByName(db *gorm.DB) *gorm.DB {
	return db.Order("genres.name")
}

func (f TitleFilter) scope(db *gorm.DB) *gorm.DB {
	if f.Genre != "" {
		db = db.Where("titles.id IN (SELECT tg.title_id FROM title_genres tg JOIN genres g ON g.id = tg.genre_id WHERE g.slug = ?)", f.Genre)
	}
	if f.Category != "" {
		db = db.Where("titles.category_id IN (SELECT id FROM categories WHERE slug = ?)", f.Category)
	}
	if name := strings.TrimSpace(f.Name); name != "" {
		db = db.Where("LOWER(titles.name) LIKE ?", containsPattern(name))
	}
	if f.Year != 0 {
		db = db.Where("titles.year = ?", f.Year)
	}
	return db
}

// GORMTitleRepository is a GORM implementation of TitleRepository.
type GORMTitleRepository struct {
	db *gorm.DB
}

// NewGORMTitleRepository creates a new instance of GORMTitleRepository.
func NewGORMTitleRepository(db *gorm.DB) *GORMTitleRepository {
	return &GORMTitleRepository{
		db: db,
	}
}

func (r *GORMTitleRepository) read() *gorm.DB {
	return r.db.Model(&models.Title{}).
		Scopes(withRating).
		Preload("Category").
		Preload("Genres", genresByName)
}

// List retrieves the titles matching filter, ordered by name.
func (r *GORMTitleRepository) List(filter TitleFilter, page Page) ([]models.Title, int64, error) {
	var total int64
	if err := r.db.Model(&models.Title{}).Scopes(filter.scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count titles: %w", err)
	}

	var titles []models.Title
	if err := r.read().Scopes(filter.scope, page.scope).Order("titles.name").Find(&titles).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list titles: %w", err)
	}
	return titles, total, nil
}

// GetByID retrieves a single title by its ID.
func (r *GORMTitleRepository) GetByID(id string) (*models.Title, error) {
	var title models.Title
	if err := r.read().Where("titles.id = ?", id).Take(&title).Error; err != nil {
		return nil, translate(err, "title with ID %s", id)
	}
	return &title, nil
}

// Create inserts the title and links its genres. Category and genres must
// already exist.
func (r *GORMTitleRepository) Create(title *models.Title) error {
	if title.ID == "" {
		title.ID = uuid.New().String()
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(title).Error; err != nil {
			return translate(err, "failed to create title")
		}
		if len(title.Genres) > 0 {
			if err := tx.Model(title).Association("Genres").Append(title.Genres); err != nil {
				return fmt.Errorf("failed to link genres to title %s: %w", title.ID, err)
			}
		}
		return nil
	})
}

// Update overwrites the title's columns and replaces its genre set.
func (r *GORMTitleRepository) Update(title *models.Title) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Title{ID: title.ID}).Updates(map[string]any{
			"name":        title.Name,
			"year":        title.Year,
			"description": title.Description,
			"category_id": title.CategoryID,
		})
		if res.Error != nil {
			return fmt.Errorf("failed to update title %s: %w", title.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("title with ID %s: %w", title.ID, apperrors.ErrNotFound)
		}
		genres := tx.Model(&models.Title{ID: title.ID}).Association("Genres")
		var err error
		if len(title.Genres) == 0 {
			err = genres.Clear()
		} else {
			err = genres.Replace(title.Genres)
		}
		if err != nil {
			return fmt.Errorf("failed to replace genres of title %s: %w", title.ID, err)
		}
		return nil
	})
}

// Delete removes a title together with its reviews, their comments and its
// genre links.
func (r *GORMTitleRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id IN (SELECT id FROM reviews WHERE title_id = ?)", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments of title %s: %w", id, err)
		}
		if err := tx.Where("title_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return fmt.Errorf("failed to delete reviews of title %s: %w", id, err)
		}
		if err := tx.Exec("DELETE FROM title_genres WHERE title_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to unlink genres of title %s: %w", id, err)
		}
		res := tx.Delete(&models.Title{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete title: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("title with ID %s: %w", id, apperrors.ErrNotFound)
		}
		return nil
	})
}
