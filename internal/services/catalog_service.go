package services

import (
	"errors"
	"fmt"
	"strings"

	"yamdb/internal/apperrors"
	"yamdb/internal/models"
	"yamdb/internal/policy"
	"yamdb/internal/repositories"
	"yamdb/internal/validation"
)

// GroupInput is the payload for creating a category or a genre.
type GroupInput struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,max=50,slug"`
}

// TitleInput is the payload for creating a title. Category and Genre hold slugs.
type TitleInput struct {
	Name        string   `json:"name" validate:"required,max=256"`
	Year        int      `json:"year" validate:"required,pastyear"`
	Description *string  `json:"description"`
	Category    string   `json:"category" validate:"omitempty,slug"`
	Genre       []string `json:"genre" validate:"dive,slug"`
}

// TitlePatch is a partial title edit. Nil fields are left unchanged; an empty
// Category string detaches the category.
type TitlePatch struct {
	Name        *string   `json:"name" validate:"omitempty,max=256"`
	Year        *int      `json:"year" validate:"omitempty,pastyear"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Genre       *[]string `json:"genre" validate:"omitempty,dive,slug"`
}

// CatalogService manages categories, genres and titles. Reads are public,
// writes are reserved to admins.
type CatalogService struct {
	categoryRepo repositories.CategoryRepository
	genreRepo    repositories.GenreRepository
	titleRepo    repositories.TitleRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(categoryRepo repositories.CategoryRepository, genreRepo repositories.GenreRepository, titleRepo repositories.TitleRepository) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		titleRepo:    titleRepo,
	}
}

func (s *CatalogService) ListCategories(search string, page repositories.Page) ([]models.Category, int64, error) {
	return s.categoryRepo.List(strings.TrimSpace(search), page)
}

func (s *CatalogService) CreateCategory(actor *models.User, req GroupInput) (*models.Category, error) {
	if err := authorize(write(policy.Catalog, actor, false)); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	category := &models.Category{Name: req.Name, Slug: req.Slug}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) DeleteCategory(actor *models.User, slug string) error {
	if err := authorize(write(policy.Catalog, actor, false)); err != nil {
		return err
	}
	return s.categoryRepo.Delete(slug)
}

func (s *CatalogService) ListGenres(search string, page repositories.Page) ([]models.Genre, int64, error) {
	return s.genreRepo.List(strings.TrimSpace(search), page)
}

func (s *CatalogService) CreateGenre(actor *models.User, req GroupInput) (*models.Genre, error) {
	if err := authorize(write(policy.Catalog, actor, false)); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	genre := &models.Genre{Name: req.Name, Slug: req.Slug}
	if err := s.genreRepo.Create(genre); err != nil {
		return nil, err
	}
	return genre, nil
}

func (s *CatalogService) DeleteGenre(actor *models.User, slug string) error {
	if err := authorize(write(policy.Catalog, actor, false)); err != nil {
		return err
	}
	return s.genreRepo.Delete(slug)
}

// ListTitles returns the titles matching filter, each with its rating.
func (s *CatalogService) ListTitles(filter repositories.TitleFilter, page repositories.Page) ([]models.Title, int64, error) {
	return s.titleRepo.List(filter, page)
}

// GetTitle returns a title with its rating.
func (s *CatalogService) GetTitle(id string) (*models.Title, error) {
	return s.titleRepo.GetByID(id)
}

// CreateTitle validates req, resolves its slugs and stores the title.
func (s *CatalogService) CreateTitle(actor *models.User, req TitleInput) (*models.Title, error) {
	if err := authorize(write(policy.Catalog, actor, false)); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	title := &models.Title{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
	}
	if err := s.resolveCategory(title, req.Category); err != nil {
		return nil, err
	}
	if err := s.resolveGenres(title, req.Genre); err != nil {
		return nil, err
	}
	if err := s.titleRepo.Create(title); err != nil {
		return nil, err
	}
	return s.titleRepo.GetByID(title.ID)
}

// UpdateTitle applies a partial edit and returns the stored result.
func (s *CatalogService) UpdateTitle(actor *models.User, id string, patch TitlePatch) (*models.Title, error) {
	if err := authorize(write(policy.Catalog, actor, false)); err != nil {
		return nil, err
	}
	if err := validation.Struct(patch); err != nil {
		return nil, err
	}

	title, err := s.titleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		title.Name = *patch.Name
	}
	if patch.Year != nil {
		title.Year = *patch.Year
	}
	if patch.Description != nil {
		title.Description = patch.Description
	}
	if patch.Category != nil {
		if err := s.resolveCategory(title, *patch.Category); err != nil {
			return nil, err
		}
	}
	if patch.Genre != nil {
		if err := s.resolveGenres(title, *patch.Genre); err != nil {
			return nil, err
		}
	}
	if err := s.titleRepo.Update(title); err != nil {
		return nil, err
	}
	return s.titleRepo.GetByID(id)
}

// DeleteTitle removes a title with its reviews and their comments.
func (s *CatalogService) DeleteTitle(actor *models.User, id string) error {
	if err := authorize(write(policy.Catalog, actor, false)); err != nil {
		return err
	}
	return s.titleRepo.Delete(id)
}

func (s *CatalogService) resolveCategory(title *models.Title, slug string) error {
	if slug == "" {
		title.Category = nil
		title.CategoryID = nil
		return nil
	}
	if !validation.ValidSlug(slug) {
		return apperrors.NewValidationError("category", "slug may contain only latin letters, digits, hyphens and underscores")
	}
	category, err := s.categoryRepo.GetBySlug(slug)
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NewValidationError("category", fmt.Sprintf("category %q does not exist", slug))
	}
	if err != nil {
		return err
	}
	title.Category = category
	title.CategoryID = &category.ID
	return nil
}

func (s *CatalogService) resolveGenres(title *models.Title, slugs []string) error {
	if len(slugs) == 0 {
		title.Genres = nil
		return nil
	}
	genres, err := s.genreRepo.GetBySlugs(slugs)
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NewValidationError("genre", "unknown genre slug")
	}
	if err != nil {
		return err
	}
	title.Genres = genres
	return nil
}
