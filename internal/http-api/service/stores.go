package service

import (
	"context"

	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
)

// Catalog store interfaces, satisfied by the gorm repositories. Services
// depend on these rather than the concrete types so tests can substitute
// mocks.

type TitleStore interface {
	GetAll(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Title, error)
	Create(ctx context.Context, t *models.Title) error
	Update(ctx context.Context, t *models.Title) error
	Delete(ctx context.Context, id int64) error
}

type CategoryStore interface {
	GetAll(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, slug string) error
}

type GenreStore interface {
	GetAll(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error)
	GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error)
	Create(ctx context.Context, g *models.Genre) error
	Delete(ctx context.Context, slug string) error
}
