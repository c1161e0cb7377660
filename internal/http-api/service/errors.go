package service

import "errors"

// Shared error taxonomy. Handlers translate these into status codes:
// not-found errors to 404, conflicts and validation failures to 400,
// ErrForbidden to 403.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrTitleNotFound    = errors.New("title not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrGenreNotFound    = errors.New("genre not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrCommentNotFound  = errors.New("comment not found")

	ErrSlugTaken       = errors.New("slug already in use")
	ErrDuplicateReview = errors.New("you can only leave one review per title")

	ErrForbidden = errors.New("you don't have permission to perform this action")
)
