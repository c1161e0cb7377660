package service

import (
	"context"
	"errors"
	"strings"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"

	"gorm.io/gorm"
)

type GenreService interface {
	List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedGenreResponse, error)
	Create(ctx context.Context, req dto.CreateGenreDTO) (*dto.GenreResponse, error)
	Delete(ctx context.Context, slug string) error
}

type genreService struct {
	repo GenreStore
}

func NewGenreService(r GenreStore) GenreService {
	return &genreService{repo: r}
}

func (s *genreService) List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedGenreResponse, error) {
	list, total, err := s.repo.GetAll(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.GenreResponse, 0, len(list))
	for _, g := range list {
		responses = append(responses, dto.GenreFromModel(g))
	}
	return dto.NewPaginatedGenreResponse(responses, int(total), page, pageSize), nil
}

func (s *genreService) Create(ctx context.Context, req dto.CreateGenreDTO) (*dto.GenreResponse, error) {
	genre := models.Genre{
		Slug: strings.TrimSpace(req.Slug),
		Name: strings.TrimSpace(req.Name),
	}
	if genre.Slug == "" || genre.Name == "" {
		return nil, errors.New("genre slug and name required")
	}

	if err := s.repo.Create(ctx, &genre); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}

	resp := dto.GenreFromModel(genre)
	return &resp, nil
}

func (s *genreService) Delete(ctx context.Context, slug string) error {
	if err := s.repo.Delete(ctx, slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGenreNotFound
		}
		return err
	}
	return nil
}
