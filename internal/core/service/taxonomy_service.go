package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yamdb/yamdb-api/internal/core/domain"
	"github.com/yamdb/yamdb-api/internal/core/ports"
)

// TaxonomyService manages categories or genres. Deleting an entry detaches
// it from every title.
type TaxonomyService struct {
	kind   string
	repo   ports.TaxonomyRepository
	detach func(ctx context.Context, slug string) error
	log    zerolog.Logger
}

func NewCategoryService(repo ports.TaxonomyRepository, titles ports.TitleRepository, log zerolog.Logger) *TaxonomyService {
	return &TaxonomyService{kind: "category", repo: repo, detach: titles.ClearCategory, log: log}
}

func NewGenreService(repo ports.TaxonomyRepository, titles ports.TitleRepository, log zerolog.Logger) *TaxonomyService {
	return &TaxonomyService{kind: "genre", repo: repo, detach: titles.PullGenre, log: log}
}

func (s *TaxonomyService) List(ctx context.Context, search string, page domain.PageRequest) ([]domain.Taxon, int64, error) {
	items, total, err := s.repo.List(ctx, search, page.Normalize())
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", s.kind, err)
	}
	return items, total, nil
}

func (s *TaxonomyService) Create(ctx context.Context, taxon domain.Taxon) (*domain.Taxon, error) {
	if taxon.Name == "" {
		return nil, domain.NewValidationError("name", "this field is required")
	}
	if taxon.Slug == "" {
		return nil, domain.NewValidationError("slug", "this field is required")
	}

	err := s.repo.Create(ctx, taxon)
	if errors.Is(err, domain.ErrDuplicate) {
		return nil, domain.NewValidationError("slug", fmt.Sprintf("%s with this slug already exists", s.kind))
	}
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", s.kind, err)
	}

	s.log.Info().Str(s.kind, taxon.Slug).Msg(s.kind + " created")
	return &taxon, nil
}

func (s *TaxonomyService) Delete(ctx context.Context, slug string) error {
	if _, err := s.repo.FindBySlug(ctx, slug); err != nil {
		return err
	}
	if err := s.detach(ctx, slug); err != nil {
		return fmt.Errorf("delete %s %s: detach titles: %w", s.kind, slug, err)
	}
	if err := s.repo.Delete(ctx, slug); err != nil {
		return err
	}

	s.log.Info().Str(s.kind, slug).Msg(s.kind + " deleted")
	return nil
}
