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

type CommentService interface {
	EnsureReview(ctx context.Context, titleID, reviewID int64) error
	ListByReview(ctx context.Context, titleID, reviewID int64, page, pageSize int) (*dto.PaginatedCommentResponse, error)
	Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error)
	Create(ctx context.Context, titleID, reviewID int64, actor *models.User, req dto.CreateCommentDTO) (*dto.CommentResponse, error)
	Update(ctx context.Context, titleID, reviewID, commentID int64, actor *models.User, req dto.UpdateCommentDTO) (*dto.CommentResponse, error)
	Delete(ctx context.Context, titleID, reviewID, commentID int64, actor *models.User) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
}

func NewCommentService(commentRepo repository.CommentRepository, reviewRepo repository.ReviewRepository) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		reviewRepo:  reviewRepo,
	}
}

// EnsureReview resolves the parent review and confirms it belongs to the
// title in the path. A review under a different title is treated as absent,
// so comments can never be reached through the wrong title.
func (s *commentService) EnsureReview(ctx context.Context, titleID, reviewID int64) error {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}
	if review.TitleID != titleID {
		return ErrReviewNotFound
	}
	return nil
}

func (s *commentService) ListByReview(ctx context.Context, titleID, reviewID int64, page, pageSize int) (*dto.PaginatedCommentResponse, error) {
	if err := s.EnsureReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comments, total, err := s.commentRepo.GetByReview(reviewID, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		responses = append(responses, *dto.FromModelToCommentResponse(&comments[i]))
	}
	return dto.NewPaginatedCommentResponse(responses, int(total), page, pageSize), nil
}

func (s *commentService) getScoped(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	if err := s.EnsureReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if comment.ReviewID != reviewID {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}

func (s *commentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error) {
	comment, err := s.getScoped(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) Create(ctx context.Context, titleID, reviewID int64, actor *models.User, req dto.CreateCommentDTO) (*dto.CommentResponse, error) {
	if err := s.EnsureReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ReviewID: reviewID,
		AuthorID: actor.ID,
		Text:     req.Text,
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	// Reload with author data
	comment, err := s.commentRepo.GetByID(comment.ID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) Update(ctx context.Context, titleID, reviewID, commentID int64, actor *models.User, req dto.UpdateCommentDTO) (*dto.CommentResponse, error) {
	comment, err := s.getScoped(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	if !permission.CanActOnObject(actor, permission.ActionUpdate, comment) {
		return nil, ErrForbidden
	}

	comment.Text = req.Text
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) Delete(ctx context.Context, titleID, reviewID, commentID int64, actor *models.User) error {
	comment, err := s.getScoped(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}

	if !permission.CanActOnObject(actor, permission.ActionDelete, comment) {
		return ErrForbidden
	}

	return s.commentRepo.Delete(comment.ID)
}
