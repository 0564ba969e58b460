package ports

import (
	"context"

	"github.com/yamdb/yamdb-api/internal/core/domain"
)

// ReviewRepository persists reviews. A second review of the same title by
// the same author fails with domain.ErrDuplicate. Reads resolve the author's
// current username.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) (*domain.Review, error)
	FindByID(ctx context.Context, titleID, id int64) (*domain.Review, error)
	List(ctx context.Context, titleID int64, page domain.PageRequest) ([]*domain.Review, int64, error)
	Update(ctx context.Context, id int64, text *string, score *int) (*domain.Review, error)
	Delete(ctx context.Context, id int64) error
	// DeleteByTitle and DeleteByAuthor return the ids of the removed reviews.
	DeleteByTitle(ctx context.Context, titleID int64) ([]int64, error)
	DeleteByAuthor(ctx context.Context, authorID int64) ([]int64, error)
}

// CommentRepository persists comments on reviews.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	FindByID(ctx context.Context, reviewID, id int64) (*domain.Comment, error)
	List(ctx context.Context, reviewID int64, page domain.PageRequest) ([]*domain.Comment, int64, error)
	Update(ctx context.Context, id int64, text string) (*domain.Comment, error)
	Delete(ctx context.Context, id int64) error
	DeleteByReviews(ctx context.Context, reviewIDs []int64) error
	DeleteByAuthor(ctx context.Context, authorID int64) error
}

// ReviewInput carries writable review fields. Nil fields are untouched on update.
type ReviewInput struct {
	Text  *string
	Score *int
}

// ReviewService manages reviews and their comments. Writes take the caller's
// identity and HTTP method so object-level permission can be checked once the
// target is loaded.
type ReviewService interface {
	ListReviews(ctx context.Context, titleID int64, page domain.PageRequest) ([]*domain.Review, int64, error)
	GetReview(ctx context.Context, titleID, id int64) (*domain.Review, error)
	CreateReview(ctx context.Context, actor *domain.User, titleID int64, in ReviewInput) (*domain.Review, error)
	UpdateReview(ctx context.Context, actor *domain.User, method string, titleID, id int64, in ReviewInput) (*domain.Review, error)
	DeleteReview(ctx context.Context, actor *domain.User, method string, titleID, id int64) error

	ListComments(ctx context.Context, titleID, reviewID int64, page domain.PageRequest) ([]*domain.Comment, int64, error)
	GetComment(ctx context.Context, titleID, reviewID, id int64) (*domain.Comment, error)
	CreateComment(ctx context.Context, actor *domain.User, titleID, reviewID int64, text string) (*domain.Comment, error)
	UpdateComment(ctx context.Context, actor *domain.User, method string, titleID, reviewID, id int64, text string) (*domain.Comment, error)
	DeleteComment(ctx context.Context, actor *domain.User, method string, titleID, reviewID, id int64) error
}
