package handler

import (
	"errors"
	"net/http"
	"strconv"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/middleware"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type TitleHandler struct {
	svc      service.TitleService
	pageSize int
}

func NewTitleHandler(svc service.TitleService, pageSize int) *TitleHandler {
	return &TitleHandler{svc: svc, pageSize: pageSize}
}

// RegisterRoutes registers title routes on the /titles group; the review
// and comment handlers nest under the same group.
func (h *TitleHandler) RegisterRoutes(titles *gin.RouterGroup, authMW gin.HandlerFunc) {
	titles.GET("", h.List)
	titles.GET("/:title_id", h.Get)
	titles.POST("", authMW, middleware.RequireAdmin(), h.Create)
	titles.PATCH("/:title_id", authMW, middleware.RequireAdmin(), h.Update)
	titles.DELETE("/:title_id", authMW, middleware.RequireAdmin(), h.Delete)
}

// List retrieves titles filtered by category/genre slug, name substring and year
// GET /api/v1/titles?category=&genre=&name=&year=&page=
func (h *TitleHandler) List(c *gin.Context) {
	page, pageSize := dto.PageParams(c, h.pageSize)

	filter := repository.TitleFilter{
		CategorySlug: c.Query("category"),
		GenreSlug:    c.Query("genre"),
		Name:         c.Query("name"),
	}
	if yearStr := c.Query("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
			return
		}
		filter.Year = &year
	}

	titles, total, err := h.svc.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list titles"})
		return
	}

	results := make([]dto.TitleResponse, 0, len(titles))
	for i := range titles {
		results = append(results, *dto.FromModelToTitleResponse(&titles[i].Title, titles[i].Rating))
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(c, total, page, pageSize, results))
}

// Get retrieves a single title with its computed rating
// GET /api/v1/titles/:title_id
func (h *TitleHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("title_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid title ID"})
		return
	}

	title, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondTitleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromModelToTitleResponse(&title.Title, title.Rating))
}

// Create adds a title; category and genres are referenced by slug
// POST /api/v1/titles
func (h *TitleHandler) Create(c *gin.Context) {
	var req dto.CreateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := service.TitleInput{
		Name:        &req.Name,
		Year:        &req.Year,
		Description: req.Description,
		Category:    req.Category,
	}
	if req.Genre != nil {
		in.Genre = &req.Genre
	}

	title, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		respondTitleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromModelToTitleResponse(&title.Title, title.Rating))
}

// Update partially updates a title; slugs in, nested objects out
// PATCH /api/v1/titles/:title_id
func (h *TitleHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("title_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid title ID"})
		return
	}

	var req dto.UpdateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	title, err := h.svc.Update(c.Request.Context(), id, service.TitleInput{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		Category:    req.Category,
		Genre:       req.Genre,
	})
	if err != nil {
		respondTitleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromModelToTitleResponse(&title.Title, title.Rating))
}

// Delete removes a title and cascades to its reviews and their comments
// DELETE /api/v1/titles/:title_id
func (h *TitleHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("title_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid title ID"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondTitleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func respondTitleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTitleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCategoryNotFound), errors.Is(err, service.ErrGenreNotFound):
		// an unresolvable slug in the write payload is a validation error
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "title operation failed"})
	}
}
