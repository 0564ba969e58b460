package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yamdb/yamdb-api/internal/metrics"
	"github.com/yamdb/yamdb-api/internal/core/domain"
	"github.com/yamdb/yamdb-api/internal/core/permission"
	"github.com/yamdb/yamdb-api/internal/core/ports"
)

const msgAlreadyReviewed = "you have already reviewed this title"

// ReviewService manages reviews and comments. Writes on an existing object
// are authorised against the loaded object.
type ReviewService struct {
	titles   ports.TitleRepository
	reviews  ports.ReviewRepository
	comments ports.CommentRepository
	policy   permission.Policy
	log      zerolog.Logger
	now      func() time.Time
}

func NewReviewService(
	titles ports.TitleRepository,
	reviews ports.ReviewRepository,
	comments ports.CommentRepository,
	log zerolog.Logger,
) *ReviewService {
	return &ReviewService{
		titles:   titles,
		reviews:  reviews,
		comments: comments,
		policy:   permission.AdminModeratorAuthorOrReadOnly,
		log:      log,
		now:      time.Now,
	}
}

func (s *ReviewService) authorize(actor *domain.User, method string, obj permission.Owned) error {
	if err := permission.CheckObject(s.policy, actor, method, obj); err != nil {
		metrics.PermissionDeniedTotal.WithLabelValues(s.policy.Name(), "object").Inc()
		return err
	}
	return nil
}

func (s *ReviewService) ListReviews(ctx context.Context, titleID int64, page domain.PageRequest) ([]*domain.Review, int64, error) {
	if _, err := s.titles.FindByID(ctx, titleID); err != nil {
		return nil, 0, err
	}
	reviews, total, err := s.reviews.List(ctx, titleID, page.Normalize())
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, total, nil
}

func (s *ReviewService) GetReview(ctx context.Context, titleID, id int64) (*domain.Review, error) {
	if _, err := s.titles.FindByID(ctx, titleID); err != nil {
		return nil, err
	}
	return s.reviews.FindByID(ctx, titleID, id)
}

func (s *ReviewService) CreateReview(ctx context.Context, actor *domain.User, titleID int64, in ports.ReviewInput) (*domain.Review, error) {
	if err := permission.Check(s.policy, actor, http.MethodPost); err != nil {
		return nil, err
	}
	if _, err := s.titles.FindByID(ctx, titleID); err != nil {
		return nil, err
	}

	fields := domain.FieldErrors{}
	if in.Text == nil || strings.TrimSpace(*in.Text) == "" {
		fields.Add("text", "this field is required")
	}
	if in.Score == nil {
		fields.Add("score", "this field is required")
	} else {
		checkScore(*in.Score, fields)
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}

	review, err := s.reviews.Create(ctx, &domain.Review{
		TitleID:  titleID,
		AuthorID: actor.ID,
		Author:   actor.Username,
		Text:     *in.Text,
		Score:    *in.Score,
		PubDate:  s.now().UTC(),
	})
	if errors.Is(err, domain.ErrDuplicate) {
		return nil, domain.NewValidationError("non_field_errors", msgAlreadyReviewed)
	}
	if err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.log.Info().Int64("title_id", titleID).Int64("review_id", review.ID).Str("author", actor.Username).Msg("review created")
	return review, nil
}

func (s *ReviewService) UpdateReview(ctx context.Context, actor *domain.User, method string, titleID, id int64, in ports.ReviewInput) (*domain.Review, error) {
	if err := permission.Check(s.policy, actor, method); err != nil {
		return nil, err
	}
	review, err := s.GetReview(ctx, titleID, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, method, review); err != nil {
		return nil, err
	}

	fields := domain.FieldErrors{}
	if in.Text != nil && strings.TrimSpace(*in.Text) == "" {
		fields.Add("text", "this field may not be blank")
	}
	if in.Score != nil {
		checkScore(*in.Score, fields)
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}
	if in.Text == nil && in.Score == nil {
		return review, nil
	}

	return s.reviews.Update(ctx, id, in.Text, in.Score)
}

func (s *ReviewService) DeleteReview(ctx context.Context, actor *domain.User, method string, titleID, id int64) error {
	if err := permission.Check(s.policy, actor, method); err != nil {
		return err
	}
	review, err := s.GetReview(ctx, titleID, id)
	if err != nil {
		return err
	}
	if err := s.authorize(actor, method, review); err != nil {
		return err
	}

	if err := s.comments.DeleteByReviews(ctx, []int64{id}); err != nil {
		return fmt.Errorf("delete review %d: comments: %w", id, err)
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().Int64("review_id", id).Str("by", actor.Username).Msg("review deleted")
	return nil
}

func checkScore(score int, fields domain.FieldErrors) {
	if score < domain.MinScore || score > domain.MaxScore {
		fields.Add("score", fmt.Sprintf("ensure this value is between %d and %d", domain.MinScore, domain.MaxScore))
	}
}

// ── Comments ──────────────────────────────────────────────────────────────────

func (s *ReviewService) ListComments(ctx context.Context, titleID, reviewID int64, page domain.PageRequest) ([]*domain.Comment, int64, error) {
	if _, err := s.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	comments, total, err := s.comments.List(ctx, reviewID, page.Normalize())
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	return comments, total, nil
}

func (s *ReviewService) GetComment(ctx context.Context, titleID, reviewID, id int64) (*domain.Comment, error) {
	if _, err := s.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	return s.comments.FindByID(ctx, reviewID, id)
}

func (s *ReviewService) CreateComment(ctx context.Context, actor *domain.User, titleID, reviewID int64, text string) (*domain.Comment, error) {
	if err := permission.Check(s.policy, actor, http.MethodPost); err != nil {
		return nil, err
	}
	if _, err := s.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.NewValidationError("text", "this field is required")
	}

	comment, err := s.comments.Create(ctx, &domain.Comment{
		ReviewID: reviewID,
		AuthorID: actor.ID,
		Author:   actor.Username,
		Text:     text,
		PubDate:  s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

func (s *ReviewService) UpdateComment(ctx context.Context, actor *domain.User, method string, titleID, reviewID, id int64, text string) (*domain.Comment, error) {
	if err := permission.Check(s.policy, actor, method); err != nil {
		return nil, err
	}
	comment, err := s.GetComment(ctx, titleID, reviewID, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, method, comment); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.NewValidationError("text", "this field may not be blank")
	}
	return s.comments.Update(ctx, id, text)
}

func (s *ReviewService) DeleteComment(ctx context.Context, actor *domain.User, method string, titleID, reviewID, id int64) error {
	if err := permission.Check(s.policy, actor, method); err != nil {
		return err
	}
	comment, err := s.GetComment(ctx, titleID, reviewID, id)
	if err != nil {
		return err
	}
	if err := s.authorize(actor, method, comment); err != nil {
		return err
	}
	return s.comments.Delete(ctx, id)
}
