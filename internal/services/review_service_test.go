package services_test

import (
	"sync"
	"testing"

	"yamdb/internal/apperrors"
	"yamdb/internal/models"
	"yamdb/internal/policy"
	"yamdb/internal/repositories"
	"yamdb/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewService_RatingIsMeanInBothReadPaths(t *testing.T) {
	e := newEnv(t)
	admin := e.user(t, "root", policy.RoleAdmin)
	rated := e.title(t, admin, "Rated")
	unrated := e.title(t, admin, "Unrated")

	for i, score := range []int{4, 8} {
		author := e.user(t, []string{"alice", "bob"}[i], policy.RoleUser)
		_, err := e.reviews.CreateReview(author, rated.ID, services.ReviewInput{Text: "ok", Score: score})
		require.NoError(t, err)
	}

	single, err := e.catalog.GetTitle(rated.ID)
	require.NoError(t, err)
	require.NotNil(t, single.Rating)
	assert.InDelta(t, 6.0, *single.Rating, 1e-9)

	empty, err := e.catalog.GetTitle(unrated.ID)
	require.NoError(t, err)
	assert.Nil(t, empty.Rating)

	titles, _, err := e.catalog.ListTitles(repositories.TitleFilter{}, repositories.Page{})
	require.NoError(t, err)
	require.Len(t, titles, 2)
	byName := map[string]models.Title{}
	for _, title := range titles {
		byName[title.Name] = title
	}
	require.NotNil(t, byName["Rated"].Rating)
	assert.InDelta(t, 6.0, *byName["Rated"].Rating, 1e-9)
	assert.Nil(t, byName["Unrated"].Rating)
}

func TestReviewService_RatingIsUnrounded(t *testing.T) {
	e := newEnv(t)
	admin := e.user(t, "root", policy.RoleAdmin)
	title := e.title(t, admin, "Odd")

	for i, score := range []int{1, 2, 2} {
		author := e.user(t, []string{"a", "b", "c"}[i], policy.RoleUser)
		_, err := e.reviews.CreateReview(author, title.ID, services.ReviewInput{Text: "ok", Score: score})
		require.NoError(t, err)
	}

	got, err := e.catalog.GetTitle(title.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	assert.InDelta(t, 5.0/3.0, *got.Rating, 1e-9)
}

func TestReviewService_ScoreBoundaries(t *testing.T) {
	e := newEnv(t)
	admin := e.user(t, "root", policy.RoleAdmin)
	title := e.title(t, admin, "Bounds")

	for i, score := range []int{0, 11, -1} {
		author := e.user(t, []string{"x0", "x11", "xneg"}[i], policy.RoleUser)
		_, err := e.reviews.CreateReview(author, title.ID, services.ReviewInput{Text: "t", Score: score})
		var verr *apperrors.ValidationError
		require.ErrorAs(t, err, &verr, "score %d", score)
		assert.Contains(t, verr.Fields, "score")
	}
	for i, score := range []int{1, 10} {
		author := e.user(t, []string{"y1", "y10"}[i], policy.RoleUser)
		_, err := e.reviews.CreateReview(author, title.ID, services.ReviewInput{Text: "t", Score: score})
		assert.NoError(t, err, "score %d", score)
	}
}

func TestReviewService_OneReviewPerAuthor(t *testing.T) {
	e := newEnv(t)
	admin := e.user(t, "root", policy.RoleAdmin)
	alice := e.user(t, "alice", policy.RoleUser)
	first := e.title(t, admin, "First")
	second := e.title(t, admin, "Second")

	_, err := e.reviews.CreateReview(alice, first.ID, services.ReviewInput{Text: "good", Score: 7})
	require.NoError(t, err)

	_, err = e.reviews.CreateReview(alice, first.ID, services.ReviewInput{Text: "again", Score: 3})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = e.reviews.CreateReview(alice, second.ID, services.ReviewInput{Text: "other title", Score: 3})
	assert.NoError(t, err)
}

func TestReviewService_ConcurrentDuplicateReviews(t *testing.T) {
	e := newEnv(t)
	admin := e.user(t, "root", policy.RoleAdmin)
	alice := e.user(t, "alice", policy.RoleUser)
	title := e.title(t, admin, "Race")

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.reviews.CreateReview(alice, title.ID, services.ReviewInput{Text: "mine", Score: 5})
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, apperrors.ErrConflict):
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, conflicts)
}

func TestReviewService_UnknownTitle(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice", policy.RoleUser)

	_, err := e.reviews.CreateReview(alice, "missing", services.ReviewInput{Text: "t", Score: 5})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, _, err = e.reviews.ListReviews("missing", repositories.Page{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReviewService_AnonymousWritesNeedAuthentication(t *testing.T) {
	e := newEnv(t)
	admin := e.user(t, "root", policy.RoleAdmin)
	title := e.title(t, admin, "T")

	_, err := e.reviews.CreateReview(nil, title.ID, services.ReviewInput{Text: "t", Score: 5})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	assert.ErrorIs(t, e.reviews.DeleteReview(nil, title.ID, "any"), apperrors.ErrUnauthenticated)

	_, err = e.reviews.CreateComment(nil, title.ID, "any", services.CommentInput{Text: "hi"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestReviewService_Ownership(t *testing.T) {
	e := newEnv(t)
	admin := e.user(t, "root", policy.RoleAdmin)
	author := e.user(t, "author", policy.RoleUser)
	stranger := e.user(t, "stranger", policy.RoleUser)
	moderator := e.user(t, "mod", policy.RoleModerator)
	title := e.title(t, admin, "Owned")

	review, err := e.reviews.CreateReview(author, title.ID, services.ReviewInput{Text: "mine", Score: 6})
	require.NoError(t, err)

	text := "hijacked"
	_, err = e.reviews.UpdateReview(stranger, title.ID, review.ID, services.ReviewPatch{Text: &text})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.ErrorIs(t, e.reviews.DeleteReview(stranger, title.ID, review.ID), apperrors.ErrForbidden)

	score := 9
	updated, err := e.reviews.UpdateReview(author, title.ID, review.ID, services.ReviewPatch{Score: &score})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Score)
	assert.Equal(t, "mine", updated.Text)

	bad := 11
	_, err = e.reviews.UpdateReview(author, title.ID, review.ID, services.ReviewPatch{Score: &bad})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "score")

	moderated := "edited by moderator"
	_, err = e.reviews.UpdateReview(moderator, title.ID, review.ID, services.ReviewPatch{Text: &moderated})
	assert.NoError(t, err)

	comment, err := e.reviews.CreateComment(stranger, title.ID, review.ID, services.CommentInput{Text: "nice"})
	require.NoError(t, err)
	_, err = e.reviews.UpdateComment(author, title.ID, review.ID, comment.ID, services.CommentInput{Text: "edited"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = e.reviews.UpdateComment(stranger, title.ID, review.ID, comment.ID, services.CommentInput{Text: "edited"})
	assert.NoError(t, err)
	assert.NoError(t, e.reviews.DeleteComment(admin, title.ID, review.ID, comment.ID))

	assert.NoError(t, e.reviews.DeleteReview(moderator, title.ID, review.ID))
	_, err = e.reviews.GetReview(title.ID, review.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReviewService_CrossReference(t *testing.T) {
	e := newEnv(t)
	admin := e.user(t, "root", policy.RoleAdmin)
	alice := e.user(t, "alice", policy.RoleUser)
	t1 := e.title(t, admin, "T1")
	t2 := e.title(t, admin, "T2")

	r2, err := e.reviews.CreateReview(alice, t2.ID, services.ReviewInput{Text: "on t2", Score: 5})
	require.NoError(t, err)

	_, err = e.reviews.CreateComment(alice, t1.ID, r2.ID, services.CommentInput{Text: "wrong path"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = e.reviews.GetReview(t1.ID, r2.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, _, err = e.reviews.ListComments(t1.ID, r2.ID, repositories.Page{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Even the author is told the review is missing, not that the request is forbidden.
	assert.ErrorIs(t, e.reviews.DeleteReview(alice, t1.ID, r2.ID), apperrors.ErrNotFound)

	comment, err := e.reviews.CreateComment(alice, t2.ID, r2.ID, services.CommentInput{Text: "right path"})
	require.NoError(t, err)
	_, err = e.reviews.GetComment(t1.ID, r2.ID, comment.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReviewService_TitleDeleteCascades(t *testing.T) {
	e := newEnv(t)
	admin := e.user(t, "root", policy.RoleAdmin)
	alice := e.user(t, "alice", policy.RoleUser)
	title := e.title(t, admin, "Doomed")

	review, err := e.reviews.CreateReview(alice, title.ID, services.ReviewInput{Text: "t", Score: 5})
	require.NoError(t, err)
	_, err = e.reviews.CreateComment(alice, title.ID, review.ID, services.CommentInput{Text: "c"})
	require.NoError(t, err)

	require.NoError(t, e.catalog.DeleteTitle(admin, title.ID))

	var reviews, comments int64
	require.NoError(t, e.db.Model(&models.Review{}).Count(&reviews).Error)
	require.NoError(t, e.db.Model(&models.Comment{}).Count(&comments).Error)
	assert.Zero(t, reviews)
	assert.Zero(t, comments)
}

func TestReviewService_ListsInPublicationOrder(t *testing.T) {
	e := newEnv(t)
	admin := e.user(t, "root", policy.RoleAdmin)
	title := e.title(t, admin, "Busy")

	for _, name := range []string{"u1", "u2", "u3"} {
		_, err := e.reviews.CreateReview(e.user(t, name, policy.RoleUser), title.ID, services.ReviewInput{Text: name, Score: 5})
		require.NoError(t, err)
	}

	reviews, total, err := e.reviews.ListReviews(title.ID, repositories.Page{Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, reviews, 2)
	assert.Equal(t, "u1", reviews[0].AuthorName())
}
