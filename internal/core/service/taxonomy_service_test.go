package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/yamdb/yamdb-api/internal/core/domain"
)

func TestTaxonomyService_Create(t *testing.T) {
	repo := newStubTaxonomyRepo(domain.ErrCategoryNotFound)
	svc := NewCategoryService(repo, newStubTitleRepo(), zerolog.Nop())
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.Taxon{Name: "Movie", Slug: "movie"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.Slug != "movie" {
		t.Fatalf("unexpected taxon: %+v", created)
	}

	_, err = svc.Create(ctx, domain.Taxon{Name: "Film", Slug: "movie"})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError on duplicate slug, got %v", err)
	}
	if _, ok := ve.Fields["slug"]; !ok {
		t.Fatalf("expected slug field, got %v", ve.Fields)
	}
}

func TestTaxonomyService_Create_RequiresFields(t *testing.T) {
	svc := NewGenreService(newStubTaxonomyRepo(domain.ErrGenreNotFound), newStubTitleRepo(), zerolog.Nop())

	_, err := svc.Create(context.Background(), domain.Taxon{Slug: "drama"})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestTaxonomyService_DeleteCategory_ClearsTitles(t *testing.T) {
	ctx := context.Background()
	repo := newStubTaxonomyRepo(domain.ErrCategoryNotFound, domain.Taxon{Name: "Movie", Slug: "movie"})
	titles := newStubTitleRepo()
	title, _ := titles.Create(ctx, &domain.Title{Name: "Heat", Year: 1995, Category: &domain.Category{Slug: "movie"}})
	svc := NewCategoryService(repo, titles, zerolog.Nop())

	if err := svc.Delete(ctx, "movie"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	got, _ := titles.FindByID(ctx, title.ID)
	if got.Category != nil {
		t.Fatalf("expected category to be cleared, got %+v", got.Category)
	}
	if err := svc.Delete(ctx, "movie"); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestTaxonomyService_DeleteGenre_PullsFromTitles(t *testing.T) {
	ctx := context.Background()
	repo := newStubTaxonomyRepo(domain.ErrGenreNotFound,
		domain.Taxon{Name: "Drama", Slug: "drama"},
		domain.Taxon{Name: "Crime", Slug: "crime"},
	)
	titles := newStubTitleRepo()
	title, _ := titles.Create(ctx, &domain.Title{
		Name:   "Heat",
		Genres: []domain.Genre{{Slug: "drama"}, {Slug: "crime"}},
	})
	svc := NewGenreService(repo, titles, zerolog.Nop())

	if err := svc.Delete(ctx, "drama"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	got, _ := titles.FindByID(ctx, title.ID)
	if len(got.Genres) != 1 || got.Genres[0].Slug != "crime" {
		t.Fatalf("unexpected genres: %+v", got.Genres)
	}
}

func TestTaxonomyService_List_Search(t *testing.T) {
	repo := newStubTaxonomyRepo(domain.ErrGenreNotFound,
		domain.Taxon{Name: "Drama", Slug: "drama"},
		domain.Taxon{Name: "Melodrama", Slug: "melodrama"},
		domain.Taxon{Name: "Crime", Slug: "crime"},
	)
	svc := NewGenreService(repo, newStubTitleRepo(), zerolog.Nop())

	items, total, err := svc.List(context.Background(), "drama", domain.PageRequest{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 matches, got %d (%v)", total, items)
	}
}
