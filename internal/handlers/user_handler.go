package handlers

import (
	"yamdb/internal/middleware"
	"yamdb/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler serves account profiles.
type UserHandler struct {
	service *services.UserService
	pager   pager
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService, pageSize int) *UserHandler {
	return &UserHandler{service: service, pager: pager{defaultLimit: pageSize}}
}

// RegisterRoutes registers the user routes. "/me" is matched before
// "/:username", so the reserved name never reaches the lookup.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	users := router.Group("/users", middleware.RequireAuth())
	users.Get("/", h.HandleList)
	users.Post("/", h.HandleCreate)
	users.Get("/me", h.HandleGetMe)
	users.Patch("/me", h.HandleUpdateMe)
	users.Get("/:username", h.HandleGet)
	users.Patch("/:username", h.HandleUpdate)
}

// HandleList lists accounts, optionally filtered by ?search= on username.
func (h *UserHandler) HandleList(c *fiber.Ctx) error {
	page, err := h.pager.page(c)
	if err != nil {
		return respondError(c, err)
	}
	users, total, err := h.service.List(middleware.CurrentUser(c), c.Query("search"), page)
	if err != nil {
		return respondError(c, err)
	}
	return list(c, users, total)
}

func (h *UserHandler) HandleCreate(c *fiber.Ctx) error {
	var req services.UserCreate
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	user, err := h.service.Create(middleware.CurrentUser(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *UserHandler) HandleGetMe(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentUser(c))
}

func (h *UserHandler) HandleUpdateMe(c *fiber.Ctx) error {
	return h.update(c, middleware.CurrentUser(c).Username)
}

func (h *UserHandler) HandleGet(c *fiber.Ctx) error {
	user, err := h.service.Get(middleware.CurrentUser(c), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

func (h *UserHandler) HandleUpdate(c *fiber.Ctx) error {
	return h.update(c, c.Params("username"))
}

func (h *UserHandler) update(c *fiber.Ctx, username string) error {
	var req services.ProfileUpdate
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	user, err := h.service.Update(middleware.CurrentUser(c), username, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
