package dto

import (
	"time"

	"reviewhub/internal/http-api/models"
)

// CreateTitleDTO for creating a title. Category and genres are referenced
// by slug; unknown slugs fail the request.
type CreateTitleDTO struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        int      `json:"year" binding:"required"`
	Description string   `json:"description"`
	Category    *string  `json:"category" binding:"omitempty,max=50"`
	Genres      []string `json:"genres" binding:"omitempty,dive,max=50"`
}

// UpdateTitleDTO for partial title updates
type UpdateTitleDTO struct {
	Name        *string   `json:"name" binding:"omitempty,max=256"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Category    *string   `json:"category" binding:"omitempty,max=50"`
	Genres      *[]string `json:"genres" binding:"omitempty,dive,max=50"`
}

// TitleResponse for returning title information. Rating is the computed
// mean of review scores; null when the title has no reviews.
type TitleResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Year        int               `json:"year"`
	Rating      *float64          `json:"rating"`
	Description string            `json:"description"`
	Category    *CategoryResponse `json:"category"`
	Genres      []GenreResponse   `json:"genres"`
	CreatedAt   time.Time         `json:"created_at"`
}

// FromModelToTitleResponse converts a Title model plus its computed rating
// to a TitleResponse DTO
func FromModelToTitleResponse(t *models.Title, rating *float64) *TitleResponse {
	resp := &TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      rating,
		Description: t.Description,
		Genres:      make([]GenreResponse, 0, len(t.Genres)),
		CreatedAt:   t.CreatedAt,
	}
	if t.Category != nil {
		c := CategoryFromModel(*t.Category)
		resp.Category = &c
	}
	for _, g := range t.Genres {
		resp.Genres = append(resp.Genres, GenreFromModel(g))
	}
	return resp
}

// PaginatedTitleResponse for returning paginated titles
type PaginatedTitleResponse struct {
	Data       []TitleResponse `json:"data"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}

// NewPaginatedTitleResponse creates a paginated title response
func NewPaginatedTitleResponse(data []TitleResponse, total, page, pageSize int) *PaginatedTitleResponse {
	return &PaginatedTitleResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages(total, pageSize),
	}
}
