package service

import (
	"context"
	"errors"
	"time"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"

	"gorm.io/gorm"
)

type TitleService interface {
	List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) (*dto.PaginatedTitleResponse, error)
	Get(ctx context.Context, id int64) (*dto.TitleResponse, error)
	Create(ctx context.Context, req dto.CreateTitleDTO) (*dto.TitleResponse, error)
	Update(ctx context.Context, id int64, req dto.UpdateTitleDTO) (*dto.TitleResponse, error)
	Delete(ctx context.Context, id int64) error
}

type titleService struct {
	titleRepo    TitleStore
	categoryRepo CategoryStore
	genreRepo    GenreStore
	reviewRepo   repository.ReviewRepository
	now          func() time.Time
}

func NewTitleService(
	titleRepo TitleStore,
	categoryRepo CategoryStore,
	genreRepo GenreStore,
	reviewRepo repository.ReviewRepository,
) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		reviewRepo:   reviewRepo,
		now:          time.Now,
	}
}

// List returns titles matching the filter, each with its rating computed
// from current review scores in a single grouped query.
func (s *titleService) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) (*dto.PaginatedTitleResponse, error) {
	titles, total, err := s.titleRepo.GetAll(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(titles))
	for _, t := range titles {
		ids = append(ids, t.ID)
	}
	averages, err := s.reviewRepo.AverageScoresByTitles(ids)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TitleResponse, 0, len(titles))
	for i := range titles {
		var rating *float64
		if avg, ok := averages[titles[i].ID]; ok {
			rating = &avg
		}
		responses = append(responses, *dto.FromModelToTitleResponse(&titles[i], rating))
	}

	return dto.NewPaginatedTitleResponse(responses, int(total), page, pageSize), nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	rating, err := s.reviewRepo.AverageScoreByTitle(id)
	if err != nil {
		return nil, err
	}

	return dto.FromModelToTitleResponse(title, rating), nil
}

func (s *titleService) Create(ctx context.Context, req dto.CreateTitleDTO) (*dto.TitleResponse, error) {
	if err := models.ValidateYear(req.Year, s.now()); err != nil {
		return nil, err
	}

	title := &models.Title{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
	}

	if req.Category != nil {
		category, err := s.categoryRepo.GetBySlug(ctx, *req.Category)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		title.CategoryID = &category.Slug
		title.Category = category
	}

	if len(req.Genres) > 0 {
		genres, err := s.genreRepo.GetBySlugs(ctx, req.Genres)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrGenreNotFound
			}
			return nil, err
		}
		title.Genres = genres
	}

	if err := s.titleRepo.Create(ctx, title); err != nil {
		return nil, err
	}

	return dto.FromModelToTitleResponse(title, nil), nil
}

func (s *titleService) Update(ctx context.Context, id int64, req dto.UpdateTitleDTO) (*dto.TitleResponse, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		title.Name = *req.Name
	}
	if req.Year != nil {
		if err := models.ValidateYear(*req.Year, s.now()); err != nil {
			return nil, err
		}
		title.Year = *req.Year
	}
	if req.Description != nil {
		title.Description = *req.Description
	}
	if req.Category != nil {
		category, err := s.categoryRepo.GetBySlug(ctx, *req.Category)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		title.CategoryID = &category.Slug
		title.Category = category
	}
	if req.Genres != nil {
		genres, err := s.genreRepo.GetBySlugs(ctx, *req.Genres)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrGenreNotFound
			}
			return nil, err
		}
		title.Genres = genres
	}

	if err := s.titleRepo.Update(ctx, title); err != nil {
		return nil, err
	}

	rating, err := s.reviewRepo.AverageScoreByTitle(id)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToTitleResponse(title, rating), nil
}

func (s *titleService) Delete(ctx context.Context, id int64) error {
	if err := s.titleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTitleNotFound
		}
		return err
	}
	return nil
}
