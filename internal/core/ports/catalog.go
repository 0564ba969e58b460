package ports

import (
	"context"

	"github.com/yamdb/yamdb-api/internal/core/domain"
)

// TaxonomyRepository persists categories or genres. A duplicate slug fails
// with domain.ErrDuplicate.
type TaxonomyRepository interface {
	Create(ctx context.Context, taxon domain.Taxon) error
	FindBySlug(ctx context.Context, slug string) (*domain.Taxon, error)
	FindBySlugs(ctx context.Context, slugs []string) ([]domain.Taxon, error)
	List(ctx context.Context, search string, page domain.PageRequest) ([]domain.Taxon, int64, error)
	Delete(ctx context.Context, slug string) error
}

// TitleRepository persists titles. Category and genres are stored by slug
// and resolved on read; Rating is aggregated from reviews on read.
type TitleRepository interface {
	Create(ctx context.Context, title *domain.Title) (*domain.Title, error)
	FindByID(ctx context.Context, id int64) (*domain.Title, error)
	List(ctx context.Context, filter domain.TitleFilter, page domain.PageRequest) ([]*domain.Title, int64, error)
	Update(ctx context.Context, id int64, in domain.TitleInput) (*domain.Title, error)
	Delete(ctx context.Context, id int64) error
	ClearCategory(ctx context.Context, slug string) error
	PullGenre(ctx context.Context, slug string) error
}

// TaxonomyService manages one taxonomy (categories or genres).
type TaxonomyService interface {
	List(ctx context.Context, search string, page domain.PageRequest) ([]domain.Taxon, int64, error)
	Create(ctx context.Context, taxon domain.Taxon) (*domain.Taxon, error)
	Delete(ctx context.Context, slug string) error
}

// TitleService manages titles.
type TitleService interface {
	List(ctx context.Context, filter domain.TitleFilter, page domain.PageRequest) ([]*domain.Title, int64, error)
	Get(ctx context.Context, id int64) (*domain.Title, error)
	Create(ctx context.Context, in domain.TitleInput) (*domain.Title, error)
	Update(ctx context.Context, id int64, in domain.TitleInput) (*domain.Title, error)
	Delete(ctx context.Context, id int64) error
}
