package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yamdb/yamdb-api/internal/core/domain"
	"github.com/yamdb/yamdb-api/internal/core/ports"
)

type TitleService struct {
	titles     ports.TitleRepository
	categories ports.TaxonomyRepository
	genres     ports.TaxonomyRepository
	reviews    ports.ReviewRepository
	comments   ports.CommentRepository
	log        zerolog.Logger
	now        func() time.Time
}

func NewTitleService(
	titles ports.TitleRepository,
	categories ports.TaxonomyRepository,
	genres ports.TaxonomyRepository,
	reviews ports.ReviewRepository,
	comments ports.CommentRepository,
	log zerolog.Logger,
) *TitleService {
	return &TitleService{
		titles:     titles,
		categories: categories,
		genres:     genres,
		reviews:    reviews,
		comments:   comments,
		log:        log,
		now:        time.Now,
	}
}

func (s *TitleService) List(ctx context.Context, filter domain.TitleFilter, page domain.PageRequest) ([]*domain.Title, int64, error) {
	titles, total, err := s.titles.List(ctx, filter, page.Normalize())
	if err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}
	return titles, total, nil
}

func (s *TitleService) Get(ctx context.Context, id int64) (*domain.Title, error) {
	return s.titles.FindByID(ctx, id)
}

func (s *TitleService) Create(ctx context.Context, in domain.TitleInput) (*domain.Title, error) {
	fields := domain.FieldErrors{}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		fields.Add("name", "this field is required")
	}
	if in.Year == nil {
		fields.Add("year", "this field is required")
	}
	if in.Category == nil || *in.Category == "" {
		fields.Add("category", "this field is required")
	}
	if len(in.Genres) == 0 {
		fields.Add("genre", "this field is required")
	}
	if err := s.check(ctx, in, fields); err != nil {
		return nil, err
	}

	title := &domain.Title{
		Name:     *in.Name,
		Year:     *in.Year,
		Category: &domain.Category{Slug: *in.Category},
	}
	if in.Description != nil {
		title.Description = *in.Description
	}
	for _, slug := range in.Genres {
		title.Genres = append(title.Genres, domain.Genre{Slug: slug})
	}

	created, err := s.titles.Create(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("create title: %w", err)
	}
	s.log.Info().Int64("title_id", created.ID).Str("name", created.Name).Msg("title created")
	return created, nil
}

func (s *TitleService) Update(ctx context.Context, id int64, in domain.TitleInput) (*domain.Title, error) {
	fields := domain.FieldErrors{}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		fields.Add("name", "this field may not be blank")
	}
	if err := s.check(ctx, in, fields); err != nil {
		return nil, err
	}
	return s.titles.Update(ctx, id, in)
}

// check validates the year and resolves category and genre slugs, adding to
// fields. It returns a ValidationError when fields is non-empty.
func (s *TitleService) check(ctx context.Context, in domain.TitleInput, fields domain.FieldErrors) error {
	if in.Year != nil && *in.Year > s.now().Year() {
		fields.Add("year", "year cannot be in the future")
	}

	if in.Category != nil && *in.Category != "" {
		_, err := s.categories.FindBySlug(ctx, *in.Category)
		switch {
		case domain.IsNotFound(err):
			fields.Add("category", fmt.Sprintf("object with slug=%s does not exist", *in.Category))
		case err != nil:
			return fmt.Errorf("resolve category: %w", err)
		}
	}

	if len(in.Genres) > 0 {
		found, err := s.genres.FindBySlugs(ctx, in.Genres)
		if err != nil {
			return fmt.Errorf("resolve genres: %w", err)
		}
		known := make(map[string]bool, len(found))
		for _, g := range found {
			known[g.Slug] = true
		}
		for _, slug := range in.Genres {
			if !known[slug] {
				fields.Add("genre", fmt.Sprintf("object with slug=%s does not exist", slug))
			}
		}
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// Delete removes a title with its reviews and their comments.
func (s *TitleService) Delete(ctx context.Context, id int64) error {
	if _, err := s.titles.FindByID(ctx, id); err != nil {
		return err
	}

	reviewIDs, err := s.reviews.DeleteByTitle(ctx, id)
	if err != nil {
		return fmt.Errorf("delete title %d: reviews: %w", id, err)
	}
	if err := s.comments.DeleteByReviews(ctx, reviewIDs); err != nil {
		return fmt.Errorf("delete title %d: comments: %w", id, err)
	}
	if err := s.titles.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().Int64("title_id", id).Int("reviews", len(reviewIDs)).Msg("title deleted")
	return nil
}
