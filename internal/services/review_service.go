package services

import (
	"yamdb/internal/apperrors"
	"yamdb/internal/models"
	"yamdb/internal/policy"
	"yamdb/internal/repositories"
	"yamdb/internal/validation"
)

const (
	MinScore = 1
	MaxScore = 10
)

// ReviewInput is the payload for creating a review.
type ReviewInput struct {
	Text  string `json:"text" validate:"required"`
	Score int    `json:"score"`
}

// ReviewPatch is a partial review edit.
type ReviewPatch struct {
	Text  *string `json:"text" validate:"omitempty,min=1"`
	Score *int    `json:"score"`
}

// CommentInput is the payload for creating or editing a comment.
type CommentInput struct {
	Text string `json:"text" validate:"required"`
}

// ReviewService manages reviews and their comments. Every operation resolves
// the review under the title named by the caller first, so a review reached
// through the wrong title is reported as missing.
type ReviewService struct {
	titleRepo   repositories.TitleRepository
	reviewRepo  repositories.ReviewRepository
	commentRepo repositories.CommentRepository
}

// NewReviewService creates a new ReviewService.
func NewReviewService(titleRepo repositories.TitleRepository, reviewRepo repositories.ReviewRepository, commentRepo repositories.CommentRepository) *ReviewService {
	return &ReviewService{
		titleRepo:   titleRepo,
		reviewRepo:  reviewRepo,
		commentRepo: commentRepo,
	}
}

func checkScore(score int) error {
	if score < MinScore || score > MaxScore {
		return apperrors.NewValidationError("score", "must be an integer between 1 and 10")
	}
	return nil
}

// ListReviews returns the reviews of a title, oldest first.
func (s *ReviewService) ListReviews(titleID string, page repositories.Page) ([]models.Review, int64, error) {
	if _, err := s.titleRepo.GetByID(titleID); err != nil {
		return nil, 0, err
	}
	return s.reviewRepo.ListByTitle(titleID, page)
}

func (s *ReviewService) GetReview(titleID, reviewID string) (*models.Review, error) {
	return s.reviewRepo.GetForTitle(titleID, reviewID)
}

// CreateReview stores the actor's review of a title. A second review of the
// same title by the same author fails with apperrors.ErrConflict.
func (s *ReviewService) CreateReview(actor *models.User, titleID string, req ReviewInput) (*models.Review, error) {
	if err := authorize(write(policy.Content, actor, true)); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if err := checkScore(req.Score); err != nil {
		return nil, err
	}
	if _, err := s.titleRepo.GetByID(titleID); err != nil {
		return nil, err
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: actor.ID,
		Author:   actor,
		Text:     req.Text,
		Score:    req.Score,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		return nil, err
	}
	return review, nil
}

// UpdateReview edits a review. Only its author, moderators and admins may.
func (s *ReviewService) UpdateReview(actor *models.User, titleID, reviewID string, patch ReviewPatch) (*models.Review, error) {
	review, err := s.editableReview(actor, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(patch); err != nil {
		return nil, err
	}
	if patch.Score != nil {
		if err := checkScore(*patch.Score); err != nil {
			return nil, err
		}
		review.Score = *patch.Score
	}
	if patch.Text != nil {
		review.Text = *patch.Text
	}
	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}
	return review, nil
}

// DeleteReview removes a review and its comments.
func (s *ReviewService) DeleteReview(actor *models.User, titleID, reviewID string) error {
	review, err := s.editableReview(actor, titleID, reviewID)
	if err != nil {
		return err
	}
	return s.reviewRepo.Delete(review.ID)
}

// editableReview rejects anonymous callers before touching storage, then
// checks ownership against the stored review.
func (s *ReviewService) editableReview(actor *models.User, titleID, reviewID string) (*models.Review, error) {
	if err := authorize(write(policy.Content, actor, true)); err != nil {
		return nil, err
	}
	review, err := s.reviewRepo.GetForTitle(titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := authorize(write(policy.Content, actor, owns(actor, review.AuthorID))); err != nil {
		return nil, err
	}
	return review, nil
}

// ListComments returns the comments of a review, oldest first.
func (s *ReviewService) ListComments(titleID, reviewID string, page repositories.Page) ([]models.Comment, int64, error) {
	if _, err := s.reviewRepo.GetForTitle(titleID, reviewID); err != nil {
		return nil, 0, err
	}
	return s.commentRepo.ListByReview(reviewID, page)
}

func (s *ReviewService) GetComment(titleID, reviewID, commentID string) (*models.Comment, error) {
	if _, err := s.reviewRepo.GetForTitle(titleID, reviewID); err != nil {
		return nil, err
	}
	return s.commentRepo.GetForReview(reviewID, commentID)
}

// CreateComment attaches a comment to a review. The review must belong to
// titleID, otherwise apperrors.ErrNotFound is returned.
func (s *ReviewService) CreateComment(actor *models.User, titleID, reviewID string, req CommentInput) (*models.Comment, error) {
	if err := authorize(write(policy.Content, actor, true)); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.reviewRepo.GetForTitle(titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ReviewID: reviewID,
		AuthorID: actor.ID,
		Author:   actor,
		Text:     req.Text,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *ReviewService) UpdateComment(actor *models.User, titleID, reviewID, commentID string, req CommentInput) (*models.Comment, error) {
	comment, err := s.editableComment(actor, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	comment.Text = req.Text
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *ReviewService) DeleteComment(actor *models.User, titleID, reviewID, commentID string) error {
	comment, err := s.editableComment(actor, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	return s.commentRepo.Delete(comment.ID)
}

func (s *ReviewService) editableComment(actor *models.User, titleID, reviewID, commentID string) (*models.Comment, error) {
	if err := authorize(write(policy.Content, actor, true)); err != nil {
		return nil, err
	}
	if _, err := s.reviewRepo.GetForTitle(titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetForReview(reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := authorize(write(policy.Content, actor, owns(actor, comment.AuthorID))); err != nil {
		return nil, err
	}
	return comment, nil
}
