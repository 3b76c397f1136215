package handlers

import (
	"strconv"

	"yamdb/internal/apperrors"
	"yamdb/internal/middleware"
	"yamdb/internal/repositories"
	"yamdb/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves categories, genres and titles.
type CatalogHandler struct {
	service *services.CatalogService
	pager   pager
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService, pageSize int) *CatalogHandler {
	return &CatalogHandler{service: service, pager: pager{defaultLimit: pageSize}}
}

// RegisterRoutes registers the catalog routes with the Fiber app.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	categories := router.Group("/categories")
	categories.Get("/", h.HandleListCategories)
	categories.Post("/", h.HandleCreateCategory)
	categories.Delete("/:slug", h.HandleDeleteCategory)

	genres := router.Group("/genres")
	genres.Get("/", h.HandleListGenres)
	genres.Post("/", h.HandleCreateGenre)
	genres.Delete("/:slug", h.HandleDeleteGenre)

	titles := router.Group("/titles")
	titles.Get("/", h.HandleListTitles)
	titles.Post("/", h.HandleCreateTitle)
	titles.Get("/:title_id", h.HandleGetTitle)
	titles.Patch("/:title_id", h.HandleUpdateTitle)
	titles.Delete("/:title_id", h.HandleDeleteTitle)
}

func (h *CatalogHandler) HandleListCategories(c *fiber.Ctx) error {
	page, err := h.pager.page(c)
	if err != nil {
		return respondError(c, err)
	}
	categories, total, err := h.service.ListCategories(c.Query("search"), page)
	if err != nil {
		return respondError(c, err)
	}
	return list(c, categories, total)
}

func (h *CatalogHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var req services.GroupInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	category, err := h.service.CreateCategory(middleware.CurrentUser(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *CatalogHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	if err := h.service.DeleteCategory(middleware.CurrentUser(c), c.Params("slug")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CatalogHandler) HandleListGenres(c *fiber.Ctx) error {
	page, err := h.pager.page(c)
	if err != nil {
		return respondError(c, err)
	}
	genres, total, err := h.service.ListGenres(c.Query("search"), page)
	if err != nil {
		return respondError(c, err)
	}
	return list(c, genres, total)
}

func (h *CatalogHandler) HandleCreateGenre(c *fiber.Ctx) error {
	var req services.GroupInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	genre, err := h.service.CreateGenre(middleware.CurrentUser(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(genre)
}

func (h *CatalogHandler) HandleDeleteGenre(c *fiber.Ctx) error {
	if err := h.service.DeleteGenre(middleware.CurrentUser(c), c.Params("slug")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleListTitles lists titles filtered by ?genre=, ?category=, ?name= and ?year=.
func (h *CatalogHandler) HandleListTitles(c *fiber.Ctx) error {
	page, err := h.pager.page(c)
	if err != nil {
		return respondError(c, err)
	}
	filter := repositories.TitleFilter{
		Genre:    c.Query("genre"),
		Category: c.Query("category"),
		Name:     c.Query("name"),
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return respondError(c, apperrors.NewValidationError("year", "must be an integer"))
		}
		filter.Year = year
	}

	titles, total, err := h.service.ListTitles(filter, page)
	if err != nil {
		return respondError(c, err)
	}
	return list(c, titles, total)
}

func (h *CatalogHandler) HandleGetTitle(c *fiber.Ctx) error {
	title, err := h.service.GetTitle(c.Params("title_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(title)
}

func (h *CatalogHandler) HandleCreateTitle(c *fiber.Ctx) error {
	var req services.TitleInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	title, err := h.service.CreateTitle(middleware.CurrentUser(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(title)
}

func (h *CatalogHandler) HandleUpdateTitle(c *fiber.Ctx) error {
	var req services.TitlePatch
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	title, err := h.service.UpdateTitle(middleware.CurrentUser(c), c.Params("title_id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(title)
}

func (h *CatalogHandler) HandleDeleteTitle(c *fiber.Ctx) error {
	if err := h.service.DeleteTitle(middleware.CurrentUser(c), c.Params("title_id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
