package dto

import "reviewhub/internal/http-api/models"

// CreateCategoryDTO for creating a category
type CreateCategoryDTO struct {
	Slug        string `json:"slug" binding:"required,max=50"`
	Name        string `json:"name" binding:"required,max=256"`
	Description string `json:"description"`
}

// CategoryResponse for returning category information
type CategoryResponse struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CategoryFromModel converts a Category model to CategoryResponse DTO
func CategoryFromModel(c models.Category) CategoryResponse {
	return CategoryResponse{Slug: c.Slug, Name: c.Name, Description: c.Description}
}

// PaginatedCategoryResponse for returning paginated categories
type PaginatedCategoryResponse struct {
	Data       []CategoryResponse `json:"data"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	Total      int                `json:"total"`
	TotalPages int                `json:"total_pages"`
}

// NewPaginatedCategoryResponse creates a paginated category response
func NewPaginatedCategoryResponse(data []CategoryResponse, total, page, pageSize int) *PaginatedCategoryResponse {
	return &PaginatedCategoryResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages(total, pageSize),
	}
}
