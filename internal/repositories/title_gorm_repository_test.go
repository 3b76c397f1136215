package repositories_test

import (
	"testing"

	"yamdb/internal/apperrors"
	"yamdb/internal/database"
	"yamdb/internal/models"
	"yamdb/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type catalogFixture struct {
	db      *gorm.DB
	titles  *repositories.GORMTitleRepository
	reviews *repositories.GORMReviewRepository
	users   *repositories.GORMUserRepository
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	db := database.OpenTest(t)
	return &catalogFixture{
		db:      db,
		titles:  repositories.NewGORMTitleRepository(db),
		reviews: repositories.NewGORMReviewRepository(db),
		users:   repositories.NewGORMUserRepository(db),
	}
}

func (f *catalogFixture) review(t *testing.T, titleID, username string, score int) *models.Review {
	t.Helper()
	author := &models.User{Username: username, Email: username + "@x.com"}
	require.NoError(t, f.users.Create(author))
	review := &models.Review{TitleID: titleID, AuthorID: author.ID, Text: "t", Score: score}
	require.NoError(t, f.reviews.Create(review))
	return review
}

func TestGORMTitleRepository_Rating(t *testing.T) {
	f := newCatalogFixture(t)
	rated := &models.Title{Name: "Rated", Year: 1999}
	unrated := &models.Title{Name: "Unrated", Year: 1999}
	require.NoError(t, f.titles.Create(rated))
	require.NoError(t, f.titles.Create(unrated))
	f.review(t, rated.ID, "a", 4)
	f.review(t, rated.ID, "b", 8)

	got, err := f.titles.GetByID(rated.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	assert.InDelta(t, 6.0, *got.Rating, 1e-9)

	got, err = f.titles.GetByID(unrated.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Rating)

	list, total, err := f.titles.List(repositories.TitleFilter{}, repositories.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].Rating)
	assert.InDelta(t, 6.0, *list[0].Rating, 1e-9)
	assert.Nil(t, list[1].Rating)
}

func TestGORMTitleRepository_GenresAndDelete(t *testing.T) {
	f := newCatalogFixture(t)
	genres := repositories.NewGORMGenreRepository(f.db)
	drama := &models.Genre{Name: "Drama", Slug: "drama"}
	comedy := &models.Genre{Name: "Comedy", Slug: "comedy"}
	require.NoError(t, genres.Create(drama))
	require.NoError(t, genres.Create(comedy))

	_, err := genres.GetBySlugs([]string{"drama", "western"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	title := &models.Title{Name: "Both", Year: 2000, Genres: []models.Genre{*drama, *comedy}}
	require.NoError(t, f.titles.Create(title))

	got, err := f.titles.GetByID(title.ID)
	require.NoError(t, err)
	require.Len(t, got.Genres, 2)
	assert.Equal(t, "Comedy", got.Genres[0].Name)

	got.Genres = nil
	require.NoError(t, f.titles.Update(got))
	got, err = f.titles.GetByID(title.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Genres)

	f.review(t, title.ID, "a", 5)
	require.NoError(t, f.titles.Delete(title.ID))
	_, err = f.titles.GetByID(title.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, f.titles.Delete(title.ID), apperrors.ErrNotFound)

	var links int64
	require.NoError(t, f.db.Table("title_genres").Count(&links).Error)
	assert.Zero(t, links)
}

func TestGORMReviewRepository_UniquePerAuthor(t *testing.T) {
	f := newCatalogFixture(t)
	title := &models.Title{Name: "T", Year: 2000}
	require.NoError(t, f.titles.Create(title))
	first := f.review(t, title.ID, "a", 5)

	dup := &models.Review{TitleID: title.ID, AuthorID: first.AuthorID, Text: "again", Score: 6}
	assert.ErrorIs(t, f.reviews.Create(dup), apperrors.ErrConflict)

	_, err := f.reviews.GetForTitle("other-title", first.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	got, err := f.reviews.GetForTitle(title.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.AuthorName())
}
