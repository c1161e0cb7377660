package dto

import "reviewhub/internal/http-api/models"

// CreateGenreDTO for creating a genre
type CreateGenreDTO struct {
	Slug string `json:"slug" binding:"required,max=50"`
	Name string `json:"name" binding:"required,max=256"`
}

// GenreResponse for returning genre information
type GenreResponse struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// GenreFromModel converts a Genre model to GenreResponse DTO
func GenreFromModel(g models.Genre) GenreResponse {
	return GenreResponse{Slug: g.Slug, Name: g.Name}
}

// PaginatedGenreResponse for returning paginated genres
type PaginatedGenreResponse struct {
	Data       []GenreResponse `json:"data"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}

// NewPaginatedGenreResponse creates a paginated genre response
func NewPaginatedGenreResponse(data []GenreResponse, total, page, pageSize int) *PaginatedGenreResponse {
	return &PaginatedGenreResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages(total, pageSize),
	}
}
