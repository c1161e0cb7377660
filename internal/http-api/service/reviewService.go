package service

import (
	"context"
	"errors"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/permission"
	"reviewhub/internal/http-api/repository"

	"gorm.io/gorm"
)

type ReviewService interface {
	EnsureTitle(ctx context.Context, titleID int64) error
	ListByTitle(ctx context.Context, titleID int64, page, pageSize int) (*dto.PaginatedReviewResponse, error)
	Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error)
	Create(ctx context.Context, titleID int64, actor *models.User, req dto.CreateReviewDTO) (*dto.ReviewResponse, error)
	Update(ctx context.Context, titleID, reviewID int64, actor *models.User, req dto.UpdateReviewDTO) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, titleID, reviewID int64, actor *models.User) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  TitleStore
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo TitleStore) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		titleRepo:  titleRepo,
	}
}

// EnsureTitle resolves the parent title. Handlers call it before binding
// the request body so a missing parent is a 404, not a validation error.
func (s *reviewService) EnsureTitle(ctx context.Context, titleID int64) error {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTitleNotFound
		}
		return err
	}
	return nil
}

func (s *reviewService) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) (*dto.PaginatedReviewResponse, error) {
	if err := s.EnsureTitle(ctx, titleID); err != nil {
		return nil, err
	}

	reviews, total, err := s.reviewRepo.GetByTitle(titleID, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		responses = append(responses, *dto.FromModelToReviewResponse(&reviews[i]))
	}
	return dto.NewPaginatedReviewResponse(responses, int(total), page, pageSize), nil
}

// getScoped fetches a review and verifies it belongs to the path's title.
// A review reached through the wrong title is treated as absent.
func (s *reviewService) getScoped(titleID, reviewID int64) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	if review.TitleID != titleID {
		return nil, ErrReviewNotFound
	}
	return review, nil
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	review, err := s.getScoped(titleID, reviewID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

// Create inserts the actor's review for a title. The one-review-per-author
// invariant is the unique index's job: concurrent duplicates resolve to
// exactly one winner, the loser gets ErrDuplicateReview.
func (s *reviewService) Create(ctx context.Context, titleID int64, actor *models.User, req dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	review := &models.Review{
		TitleID:  titleID,
		AuthorID: actor.ID,
		Text:     req.Text,
		Score:    req.Score,
	}

	if err := s.reviewRepo.Create(review); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrDuplicateReview
		}
		return nil, err
	}

	// Reload with author data
	review, err := s.reviewRepo.GetByID(review.ID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

func (s *reviewService) Update(ctx context.Context, titleID, reviewID int64, actor *models.User, req dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	review, err := s.getScoped(titleID, reviewID)
	if err != nil {
		return nil, err
	}

	if !permission.CanActOnObject(actor, permission.ActionUpdate, review) {
		return nil, ErrForbidden
	}

	if req.Text != nil {
		review.Text = *req.Text
	}
	if req.Score != nil {
		review.Score = *req.Score
	}

	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

func (s *reviewService) Delete(ctx context.Context, titleID, reviewID int64, actor *models.User) error {
	review, err := s.getScoped(titleID, reviewID)
	if err != nil {
		return err
	}

	if !permission.CanActOnObject(actor, permission.ActionDelete, review) {
		return ErrForbidden
	}

	return s.reviewRepo.Delete(review.ID)
}
