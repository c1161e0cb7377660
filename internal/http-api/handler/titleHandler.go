package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type TitleHandler struct {
	svc service.TitleService
}

func NewTitleHandler(svc service.TitleService) *TitleHandler {
	return &TitleHandler{svc: svc}
}

func (h *TitleHandler) RegisterRoutes(rg *gin.RouterGroup, optionalAuth, requireAuth, requireCatalogWrite gin.HandlerFunc) {
	rg.GET("/", optionalAuth, h.List)
	rg.GET("/:title_id", optionalAuth, h.Get)

	// Admin-only routes
	rg.POST("/", requireAuth, requireCatalogWrite, h.Create)
	rg.PATCH("/:title_id", requireAuth, requireCatalogWrite, h.Update)
	rg.DELETE("/:title_id", requireAuth, requireCatalogWrite, h.Delete)
}

// List handles GET /titles with combinable filters: category and genre by
// slug, name substring, exact year.
func (h *TitleHandler) List(c *gin.Context) {
	var filter repository.TitleFilter
	filter.CategorySlug = strings.TrimSpace(c.Query("category"))
	filter.GenreSlug = strings.TrimSpace(c.Query("genre"))
	filter.Name = strings.TrimSpace(c.Query("name"))

	if yearStr := strings.TrimSpace(c.Query("year")); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year parameter"})
			return
		}
		filter.Year = &year
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	page, pageSize := parsePagination(c)
	resp, err := h.svc.List(ctx, filter, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TitleHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "title_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	resp, err := h.svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrTitleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "title not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TitleHandler) Create(c *gin.Context) {
	var in dto.CreateTitleDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	resp, err := h.svc.Create(ctx, in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category slug"})
		case errors.Is(err, service.ErrGenreNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown genre slug"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *TitleHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "title_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var in dto.UpdateTitleDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	resp, err := h.svc.Update(ctx, id, in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTitleNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "title not found"})
		case errors.Is(err, service.ErrCategoryNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category slug"})
		case errors.Is(err, service.ErrGenreNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown genre slug"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TitleHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "title_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.svc.Delete(ctx, id); err != nil {
		if errors.Is(err, service.ErrTitleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "title not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
