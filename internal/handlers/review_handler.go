package handlers

import (
	"time"

	"yamdb/internal/middleware"
	"yamdb/internal/models"
	"yamdb/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ReviewResponse is the public view of a review; the author is shown by username.
type ReviewResponse struct {
	ID      string    `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

// CommentResponse is the public view of a comment.
type CommentResponse struct {
	ID      string    `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`
}

func toReviewResponse(r *models.Review) ReviewResponse {
	return ReviewResponse{ID: r.ID, Text: r.Text, Author: r.AuthorName(), Score: r.Score, PubDate: r.PubDate}
}

func toCommentResponse(c *models.Comment) CommentResponse {
	return CommentResponse{ID: c.ID, Text: c.Text, Author: c.AuthorName(), PubDate: c.PubDate}
}

// ReviewHandler serves reviews and their comments, nested under titles.
type ReviewHandler struct {
	service *services.ReviewService
	pager   pager
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service *services.ReviewService, pageSize int) *ReviewHandler {
	return &ReviewHandler{service: service, pager: pager{defaultLimit: pageSize}}
}

// RegisterRoutes registers the review and comment routes with the Fiber app.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router) {
	reviews := router.Group("/titles/:title_id/reviews")
	reviews.Get("/", h.HandleListReviews)
	reviews.Post("/", h.HandleCreateReview)
	reviews.Get("/:review_id", h.HandleGetReview)
	reviews.Patch("/:review_id", h.HandleUpdateReview)
	reviews.Delete("/:review_id", h.HandleDeleteReview)

	comments := reviews.Group("/:review_id/comments")
	comments.Get("/", h.HandleListComments)
	comments.Post("/", h.HandleCreateComment)
	comments.Get("/:comment_id", h.HandleGetComment)
	comments.Patch("/:comment_id", h.HandleUpdateComment)
	comments.Delete("/:comment_id", h.HandleDeleteComment)
}

func (h *ReviewHandler) HandleListReviews(c *fiber.Ctx) error {
	page, err := h.pager.page(c)
	if err != nil {
		return respondError(c, err)
	}
	reviews, total, err := h.service.ListReviews(c.Params("title_id"), page)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, toReviewResponse(&reviews[i]))
	}
	return list(c, out, total)
}

func (h *ReviewHandler) HandleGetReview(c *fiber.Ctx) error {
	review, err := h.service.GetReview(c.Params("title_id"), c.Params("review_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toReviewResponse(review))
}

// HandleCreateReview posts the caller's review. A second review of the same
// title by the same user is rejected with 400.
func (h *ReviewHandler) HandleCreateReview(c *fiber.Ctx) error {
	var req services.ReviewInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	review, err := h.service.CreateReview(middleware.CurrentUser(c), c.Params("title_id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toReviewResponse(review))
}

func (h *ReviewHandler) HandleUpdateReview(c *fiber.Ctx) error {
	var req services.ReviewPatch
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	review, err := h.service.UpdateReview(middleware.CurrentUser(c), c.Params("title_id"), c.Params("review_id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toReviewResponse(review))
}

func (h *ReviewHandler) HandleDeleteReview(c *fiber.Ctx) error {
	if err := h.service.DeleteReview(middleware.CurrentUser(c), c.Params("title_id"), c.Params("review_id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ReviewHandler) HandleListComments(c *fiber.Ctx) error {
	page, err := h.pager.page(c)
	if err != nil {
		return respondError(c, err)
	}
	comments, total, err := h.service.ListComments(c.Params("title_id"), c.Params("review_id"), page)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, toCommentResponse(&comments[i]))
	}
	return list(c, out, total)
}

func (h *ReviewHandler) HandleGetComment(c *fiber.Ctx) error {
	comment, err := h.service.GetComment(c.Params("title_id"), c.Params("review_id"), c.Params("comment_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toCommentResponse(comment))
}

// HandleCreateComment replies to a review. The review must belong to the
// title in the path, otherwise the response is 404.
func (h *ReviewHandler) HandleCreateComment(c *fiber.Ctx) error {
	var req services.CommentInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	comment, err := h.service.CreateComment(middleware.CurrentUser(c), c.Params("title_id"), c.Params("review_id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toCommentResponse(comment))
}

func (h *ReviewHandler) HandleUpdateComment(c *fiber.Ctx) error {
	var req services.CommentInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	comment, err := h.service.UpdateComment(middleware.CurrentUser(c), c.Params("title_id"), c.Params("review_id"), c.Params("comment_id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toCommentResponse(comment))
}

func (h *ReviewHandler) HandleDeleteComment(c *fiber.Ctx) error {
	err := h.service.DeleteComment(middleware.CurrentUser(c), c.Params("title_id"), c.Params("review_id"), c.Params("comment_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
