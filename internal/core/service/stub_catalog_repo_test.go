package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/yamdb/yamdb-api/internal/core/domain"
)

func paginate[T any](items []T, page domain.PageRequest) []T {
	page = page.Normalize()
	skip := int(page.Skip())
	if skip >= len(items) {
		return []T{}
	}
	end := skip + page.Size
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}

// ── Taxonomy ──────────────────────────────────────────────────────────────────

type stubTaxonomyRepo struct {
	mu       sync.Mutex
	items    map[string]domain.Taxon
	notFound error
}

func newStubTaxonomyRepo(notFound error, seed ...domain.Taxon) *stubTaxonomyRepo {
	r := &stubTaxonomyRepo{items: make(map[string]domain.Taxon), notFound: notFound}
	for _, t := range seed {
		r.items[t.Slug] = t
	}
	return r
}

func (r *stubTaxonomyRepo) Create(_ context.Context, taxon domain.Taxon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[taxon.Slug]; ok {
		return domain.ErrDuplicate
	}
	r.items[taxon.Slug] = taxon
	return nil
}

func (r *stubTaxonomyRepo) FindBySlug(_ context.Context, slug string) (*domain.Taxon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[slug]
	if !ok {
		return nil, r.notFound
	}
	return &t, nil
}

func (r *stubTaxonomyRepo) FindBySlugs(_ context.Context, slugs []string) ([]domain.Taxon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Taxon
	for _, slug := range slugs {
		if t, ok := r.items[slug]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *stubTaxonomyRepo) List(_ context.Context, search string, page domain.PageRequest) ([]domain.Taxon, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Taxon
	for _, t := range r.items {
		if search == "" || strings.Contains(strings.ToLower(t.Name), strings.ToLower(search)) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, page), int64(len(out)), nil
}

func (r *stubTaxonomyRepo) Delete(_ context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[slug]; !ok {
		return r.notFound
	}
	delete(r.items, slug)
	return nil
}

// ── Titles ────────────────────────────────────────────────────────────────────

type stubTitleRepo struct {
	mu     sync.Mutex
	titles map[int64]*domain.Title
	nextID int64
}

func newStubTitleRepo() *stubTitleRepo {
	return &stubTitleRepo{titles: make(map[int64]*domain.Title)}
}

func cloneTitle(t *domain.Title) *domain.Title {
	clone := *t
	if t.Category != nil {
		c := *t.Category
		clone.Category = &c
	}
	clone.Genres = append([]domain.Genre(nil), t.Genres...)
	return &clone
}

func (r *stubTitleRepo) Create(_ context.Context, title *domain.Title) (*domain.Title, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := cloneTitle(title)
	stored.ID = r.nextID
	r.titles[stored.ID] = stored
	return cloneTitle(stored), nil
}

func (r *stubTitleRepo) FindByID(_ context.Context, id int64) (*domain.Title, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.titles[id]
	if !ok {
		return nil, domain.ErrTitleNotFound
	}
	return cloneTitle(t), nil
}

func (r *stubTitleRepo) List(_ context.Context, filter domain.TitleFilter, page domain.PageRequest) ([]*domain.Title, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Title
	for _, t := range r.titles {
		if filter.Year != 0 && t.Year != filter.Year {
			continue
		}
		if filter.Name != "" && !strings.Contains(t.Name, filter.Name) {
			continue
		}
		out = append(out, cloneTitle(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, page), int64(len(out)), nil
}

func (r *stubTitleRepo) Update(_ context.Context, id int64, in domain.TitleInput) (*domain.Title, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.titles[id]
	if !ok {
		return nil, domain.ErrTitleNotFound
	}
	if in.Name != nil {
		t.Name = *in.Name
	}
	if in.Year != nil {
		t.Year = *in.Year
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Category != nil {
		t.Category = &domain.Category{Slug: *in.Category}
	}
	if in.Genres != nil {
		t.Genres = nil
		for _, slug := range in.Genres {
			t.Genres = append(t.Genres, domain.Genre{Slug: slug})
		}
	}
	return cloneTitle(t), nil
}

func (r *stubTitleRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.titles[id]; !ok {
		return domain.ErrTitleNotFound
	}
	delete(r.titles, id)
	return nil
}

func (r *stubTitleRepo) ClearCategory(_ context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.titles {
		if t.Category != nil && t.Category.Slug == slug {
			t.Category = nil
		}
	}
	return nil
}

func (r *stubTitleRepo) PullGenre(_ context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.titles {
		kept := t.Genres[:0]
		for _, g := range t.Genres {
			if g.Slug != slug {
				kept = append(kept, g)
			}
		}
		t.Genres = kept
	}
	return nil
}

// ── Reviews ───────────────────────────────────────────────────────────────────

type stubReviewRepo struct {
	mu      sync.Mutex
	reviews map[int64]*domain.Review
	nextID  int64
}

func newStubReviewRepo() *stubReviewRepo {
	return &stubReviewRepo{reviews: make(map[int64]*domain.Review)}
}

func (r *stubReviewRepo) Create(_ context.Context, review *domain.Review) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reviews {
		if existing.TitleID == review.TitleID && existing.AuthorID == review.AuthorID {
			return nil, domain.ErrDuplicate
		}
	}
	r.nextID++
	stored := *review
	stored.ID = r.nextID
	r.reviews[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *stubReviewRepo) FindByID(_ context.Context, titleID, id int64) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	review, ok := r.reviews[id]
	if !ok || review.TitleID != titleID {
		return nil, domain.ErrReviewNotFound
	}
	out := *review
	return &out, nil
}

func (r *stubReviewRepo) List(_ context.Context, titleID int64, page domain.PageRequest) ([]*domain.Review, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Review
	for _, review := range r.reviews {
		if review.TitleID == titleID {
			clone := *review
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, page), int64(len(out)), nil
}

func (r *stubReviewRepo) Update(_ context.Context, id int64, text *string, score *int) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	review, ok := r.reviews[id]
	if !ok {
		return nil, domain.ErrReviewNotFound
	}
	if text != nil {
		review.Text = *text
	}
	if score != nil {
		review.Score = *score
	}
	out := *review
	return &out, nil
}

func (r *stubReviewRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[id]; !ok {
		return domain.ErrReviewNotFound
	}
	delete(r.reviews, id)
	return nil
}

func (r *stubReviewRepo) deleteWhere(match func(*domain.Review) bool) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int64
	for id, review := range r.reviews {
		if match(review) {
			ids = append(ids, id)
			delete(r.reviews, id)
		}
	}
	return ids
}

func (r *stubReviewRepo) DeleteByTitle(_ context.Context, titleID int64) ([]int64, error) {
	return r.deleteWhere(func(rv *domain.Review) bool { return rv.TitleID == titleID }), nil
}

func (r *stubReviewRepo) DeleteByAuthor(_ context.Context, authorID int64) ([]int64, error) {
	return r.deleteWhere(func(rv *domain.Review) bool { return rv.AuthorID == authorID }), nil
}

// ── Comments ──────────────────────────────────────────────────────────────────

type stubCommentRepo struct {
	mu       sync.Mutex
	comments map[int64]*domain.Comment
	nextID   int64
}

func newStubCommentRepo() *stubCommentRepo {
	return &stubCommentRepo{comments: make(map[int64]*domain.Comment)}
}

func (r *stubCommentRepo) Create(_ context.Context, comment *domain.Comment) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := *comment
	stored.ID = r.nextID
	r.comments[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *stubCommentRepo) FindByID(_ context.Context, reviewID, id int64) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok || c.ReviewID != reviewID {
		return nil, domain.ErrCommentNotFound
	}
	out := *c
	return &out, nil
}

func (r *stubCommentRepo) List(_ context.Context, reviewID int64, page domain.PageRequest) ([]*domain.Comment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Comment
	for _, c := range r.comments {
		if c.ReviewID == reviewID {
			clone := *c
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, page), int64(len(out)), nil
}

func (r *stubCommentRepo) Update(_ context.Context, id int64, text string) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, domain.ErrCommentNotFound
	}
	c.Text = text
	out := *c
	return &out, nil
}

func (r *stubCommentRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return domain.ErrCommentNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r *stubCommentRepo) DeleteByReviews(_ context.Context, reviewIDs []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	drop := make(map[int64]bool, len(reviewIDs))
	for _, id := range reviewIDs {
		drop[id] = true
	}
	for id, c := range r.comments {
		if drop[c.ReviewID] {
			delete(r.comments, id)
		}
	}
	return nil
}

func (r *stubCommentRepo) DeleteByAuthor(_ context.Context, authorID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.comments {
		if c.AuthorID == authorID {
			delete(r.comments, id)
		}
	}
	return nil
}
