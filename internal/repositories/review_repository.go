package repositories

import "yamdb/internal/models"

// ReviewRepository defines the interface for review data access. Reads load
// the review author.
type ReviewRepository interface {
	ListByTitle(titleID string, page Page) ([]models.Review, int64, error)
	// GetForTitle fails with apperrors.ErrNotFound when the review does not
	// exist or belongs to another title.
	GetForTitle(titleID, reviewID string) (*models.Review, error)
	// Create fails with apperrors.ErrConflict when the author already reviewed the title.
	Create(review *models.Review) error
	Update(review *models.Review) error
	Delete(id string) error
}

// CommentRepository defines the interface for comment data access. Reads load
// the comment author.
type CommentRepository interface {
	ListByReview(reviewID string, page Page) ([]models.Comment, int64, error)
	GetForReview(reviewID, commentID string) (*models.Comment, error)
	Create(comment *models.Comment) error
	Update(comment *models.Comment) error
	Delete(id string) error
}
