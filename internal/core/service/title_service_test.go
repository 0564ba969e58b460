package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/yamdb/yamdb-api/internal/core/domain"
)

type titleFixture struct {
	svc      *TitleService
	titles   *stubTitleRepo
	reviews  *stubReviewRepo
	comments *stubCommentRepo
}

func newTitleFixture() *titleFixture {
	f := &titleFixture{
		titles:   newStubTitleRepo(),
		reviews:  newStubReviewRepo(),
		comments: newStubCommentRepo(),
	}
	categories := newStubTaxonomyRepo(domain.ErrCategoryNotFound, domain.Taxon{Name: "Movie", Slug: "movie"})
	genres := newStubTaxonomyRepo(domain.ErrGenreNotFound,
		domain.Taxon{Name: "Drama", Slug: "drama"},
		domain.Taxon{Name: "Crime", Slug: "crime"},
	)
	f.svc = NewTitleService(f.titles, categories, genres, f.reviews, f.comments, zerolog.Nop())
	f.svc.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	return f
}

func validTitleInput() domain.TitleInput {
	return domain.TitleInput{
		Name:     strPtr("Heat"),
		Year:     intPtr(1995),
		Category: strPtr("movie"),
		Genres:   []string{"drama", "crime"},
	}
}

func TestTitleService_Create(t *testing.T) {
	f := newTitleFixture()

	title, err := f.svc.Create(context.Background(), validTitleInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if title.ID == 0 || title.Category.Slug != "movie" || len(title.Genres) != 2 {
		t.Fatalf("unexpected title: %+v", title)
	}
}

func TestTitleService_Create_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*domain.TitleInput)
		field  string
	}{
		{"missing name", func(in *domain.TitleInput) { in.Name = nil }, "name"},
		{"future year", func(in *domain.TitleInput) { in.Year = intPtr(2027) }, "year"},
		{"unknown category", func(in *domain.TitleInput) { in.Category = strPtr("opera") }, "category"},
		{"unknown genre", func(in *domain.TitleInput) { in.Genres = []string{"drama", "noir"} }, "genre"},
		{"no genres", func(in *domain.TitleInput) { in.Genres = nil }, "genre"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newTitleFixture()
			in := validTitleInput()
			tc.mutate(&in)

			_, err := f.svc.Create(context.Background(), in)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := ve.Fields[tc.field]; !ok {
				t.Fatalf("expected %s field, got %v", tc.field, ve.Fields)
			}
		})
	}
}

func TestTitleService_Update_Partial(t *testing.T) {
	f := newTitleFixture()
	ctx := context.Background()
	title, _ := f.svc.Create(ctx, validTitleInput())

	updated, err := f.svc.Update(ctx, title.ID, domain.TitleInput{Description: strPtr("LA crime saga")})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Description != "LA crime saga" || updated.Name != "Heat" || len(updated.Genres) != 2 {
		t.Fatalf("unexpected title: %+v", updated)
	}
}

func TestTitleService_Update_NotFound(t *testing.T) {
	f := newTitleFixture()

	_, err := f.svc.Update(context.Background(), 42, domain.TitleInput{Name: strPtr("x")})
	if !errors.Is(err, domain.ErrTitleNotFound) {
		t.Fatalf("expected ErrTitleNotFound, got %v", err)
	}
}

func TestTitleService_Delete_Cascades(t *testing.T) {
	f := newTitleFixture()
	ctx := context.Background()
	heat, _ := f.svc.Create(ctx, validTitleInput())
	other, _ := f.svc.Create(ctx, validTitleInput())

	r1, _ := f.reviews.Create(ctx, &domain.Review{TitleID: heat.ID, AuthorID: 1, Score: 8})
	r2, _ := f.reviews.Create(ctx, &domain.Review{TitleID: other.ID, AuthorID: 1, Score: 6})
	f.comments.Create(ctx, &domain.Comment{ReviewID: r1.ID, AuthorID: 2})
	f.comments.Create(ctx, &domain.Comment{ReviewID: r2.ID, AuthorID: 2})

	if err := f.svc.Delete(ctx, heat.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := f.svc.Get(ctx, heat.ID); !errors.Is(err, domain.ErrTitleNotFound) {
		t.Fatalf("title still present")
	}
	if len(f.reviews.reviews) != 1 || len(f.comments.comments) != 1 {
		t.Fatalf("expected other title's review and comment to remain, got %d/%d",
			len(f.reviews.reviews), len(f.comments.comments))
	}
}
