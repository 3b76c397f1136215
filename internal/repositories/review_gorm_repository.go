package repositories

import (
	"fmt"

	"yamdb/internal/apperrors"
	"yamdb/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{db: db}
}

// ListByTitle returns the reviews of a title, oldest first.
func (r *GORMReviewRepository) ListByTitle(titleID string, page Page) ([]models.Review, int64, error) {
	query := r.db.Model(&models.Review{}).Where("title_id = ?", titleID).Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews of title %s: %w", titleID, err)
	}
	var reviews []models.Review
	if err := query.Scopes(page.scope).Preload("Author").Order("pub_date, id").Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews of title %s: %w", titleID, err)
	}
	return reviews, total, nil
}

// GetForTitle retrieves a review only if it belongs to titleID.
func (r *GORMReviewRepository) GetForTitle(titleID, reviewID string) (*models.Review, error) {
	var review models.Review
	err := r.db.Preload("Author").
		Where("id = ? AND title_id = ?", reviewID, titleID).
		Take(&review).Error
	if err != nil {
		return nil, translate(err, "review %s of title %s", reviewID, titleID)
	}
	return &review, nil
}

// Create inserts a review. The (author, title) unique index decides between
// concurrent duplicates; the loser gets apperrors.ErrConflict.
func (r *GORMReviewRepository) Create(review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	if err := r.db.Omit(clause.Associations).Create(review).Error; err != nil {
		return translate(err, "failed to create review")
	}
	return nil
}

// Update writes the text and score of a review.
func (r *GORMReviewRepository) Update(review *models.Review) error {
	res := r.db.Model(&models.Review{ID: review.ID}).Updates(map[string]any{
		"text":  review.Text,
		"score": review.Score,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update review %s: %w", review.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("review %s: %w", review.ID, apperrors.ErrNotFound)
	}
	return nil
}

// Delete removes a review and its comments.
func (r *GORMReviewRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments of review %s: %w", id, err)
		}
		res := tx.Delete(&models.Review{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete review %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("review %s: %w", id, apperrors.ErrNotFound)
		}
		return nil
	})
}

// GORMCommentRepository is a GORM implementation of CommentRepository.
type GORMCommentRepository struct {
	db *gorm.DB
}

// NewGORMCommentRepository creates a new instance of GORMCommentRepository.
func NewGORMCommentRepository(db *gorm.DB) *GORMCommentRepository {
	return &GORMCommentRepository{db: db}
}

// ListByReview returns the comments of a review, oldest first.
func (r *GORMCommentRepository) ListByReview(reviewID string, page Page) ([]models.Comment, int64, error) {
	query := r.db.Model(&models.Comment{}).Where("review_id = ?", reviewID).Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count comments of review %s: %w", reviewID, err)
	}
	var comments []models.Comment
	if err := query.Scopes(page.scope).Preload("Author").Order("pub_date, id").Find(&comments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list comments of review %s: %w", reviewID, err)
	}
	return comments, total, nil
}

// GetForReview retrieves a comment only if it belongs to reviewID.
func (r *GORMCommentRepository) GetForReview(reviewID, commentID string) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.Preload("Author").
		Where("id = ? AND review_id = ?", commentID, reviewID).
		Take(&comment).Error
	if err != nil {
		return nil, translate(err, "comment %s of review %s", commentID, reviewID)
	}
	return &comment, nil
}

// Create inserts a comment.
func (r *GORMCommentRepository) Create(comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	if err := r.db.Omit(clause.Associations).Create(comment).Error; err != nil {
		return translate(err, "failed to create comment")
	}
	return nil
}

// Update writes the text of a comment.
func (r *GORMCommentRepository) Update(comment *models.Comment) error {
	res := r.db.Model(&models.Comment{ID: comment.ID}).Update("text", comment.Text)
	if res.Error != nil {
		return fmt.Errorf("failed to update comment %s: %w", comment.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("comment %s: %w", comment.ID, apperrors.ErrNotFound)
	}
	return nil
}

// Delete removes a comment.
func (r *GORMCommentRepository) Delete(id string) error {
	res := r.db.Delete(&models.Comment{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete comment %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("comment %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
