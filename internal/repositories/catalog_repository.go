package repositories

import "yamdb/internal/models"

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	List(search string, page Page) ([]models.Category, int64, error)
	GetBySlug(slug string) (*models.Category, error)
	Create(category *models.Category) error
	Delete(slug string) error
}

// GenreRepository defines the interface for genre data access.
type GenreRepository interface {
	List(search string, page Page) ([]models.Genre, int64, error)
	GetBySlug(slug string) (*models.Genre, error)
	GetBySlugs(slugs []string) ([]models.Genre, error)
	Create(genre *models.Genre) error
	Delete(slug string) error
}

// TitleFilter narrows a title listing. Zero fields are ignored.
type TitleFilter struct {
	Genre    string // genre slug
	Category string // category slug
	Name     string // case-insensitive substring
	Year     int
}

// TitleRepository defines the interface for title data access. Every read
// returns titles with Rating populated.
type TitleRepository interface {
	List(filter TitleFilter, page Page) ([]models.Title, int64, error)
	GetByID(id string) (*models.Title, error)
	Create(title *models.Title) error
	Update(title *models.Title) error
	Delete(id string) error
}
