// Package loader imports the CSV fixtures shipped with the platform into the
// store, keeping the ids found in the files.
package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yamdb/yamdb-api/internal/core/domain"
)

type UserStore interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

type TaxonomyStore interface {
	Create(ctx context.Context, taxon domain.Taxon) error
}

type TitleStore interface {
	Create(ctx context.Context, title *domain.Title) (*domain.Title, error)
	AddGenre(ctx context.Context, id int64, slug string) error
}

type ReviewStore interface {
	Create(ctx context.Context, review *domain.Review) (*domain.Review, error)
}

type CommentStore interface {
	Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
}

// Stores groups the write side of every repository the loader fills.
type Stores struct {
	Users      UserStore
	Categories TaxonomyStore
	Genres     TaxonomyStore
	Titles     TitleStore
	Reviews    ReviewStore
	Comments   CommentStore
}

// FileStats summarises one imported file.
type FileStats struct {
	File    string
	Loaded  int
	Skipped int
	Missing bool
}

// Loader imports fixtures in dependency order. Rows rejected as duplicates
// are skipped; any other failure aborts the run.
type Loader struct {
	stores Stores
	log    zerolog.Logger
	now    func() time.Time

	// CSV ids of taxonomies mapped to slugs, which is how titles reference them.
	categories map[int64]string
	genres     map[int64]string
}

func New(stores Stores, log zerolog.Logger) *Loader {
	return &Loader{
		stores:     stores,
		log:        log,
		now:        time.Now,
		categories: map[int64]string{},
		genres:     map[int64]string{},
	}
}

type step struct {
	file string
	load func(ctx context.Context, r row) error
}

func (l *Loader) steps() []step {
	return []step{
		{"users.csv", l.loadUser},
		{"category.csv", l.taxon(l.stores.Categories, l.categories)},
		{"genre.csv", l.taxon(l.stores.Genres, l.genres)},
		{"titles.csv", l.loadTitle},
		{"genre_title.csv", l.loadGenreTitle},
		{"review.csv", l.loadReview},
		{"comments.csv", l.loadComment},
	}
}

// Run imports every fixture found in dir.
func (l *Loader) Run(ctx context.Context, dir string) ([]FileStats, error) {
	var stats []FileStats
	for _, s := range l.steps() {
		st, err := l.runFile(ctx, dir, s)
		if err != nil {
			return stats, err
		}
		stats = append(stats, st)
		l.log.Info().
			Str("file", st.File).
			Int("loaded", st.Loaded).
			Int("skipped", st.Skipped).
			Bool("missing", st.Missing).
			Msg("fixture processed")
	}
	return stats, nil
}

func (l *Loader) runFile(ctx context.Context, dir string, s step) (FileStats, error) {
	st := FileStats{File: s.file}

	f, err := os.Open(filepath.Join(dir, s.file))
	if errors.Is(err, fs.ErrNotExist) {
		l.log.Warn().Str("file", s.file).Msg("fixture not found, skipping")
		st.Missing = true
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("open %s: %w", s.file, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("%s: read header: %w", s.file, err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}

	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return st, nil
		}
		if err != nil {
			return st, fmt.Errorf("%s:%d: %w", s.file, line, err)
		}

		err = s.load(ctx, row{columns: columns, values: record})
		switch {
		case err == nil:
			st.Loaded++
		case errors.Is(err, domain.ErrDuplicate):
			st.Skipped++
			l.log.Warn().Str("file", s.file).Int("line", line).Msg("record already exists, skipping")
		default:
			return st, fmt.Errorf("%s:%d: %w", s.file, line, err)
		}
	}
}

func (l *Loader) loadUser(ctx context.Context, r row) error {
	id, err := r.id("id")
	if err != nil {
		return err
	}
	username, err := domain.ValidateUsername(r.str("username"))
	if err != nil {
		return err
	}
	role := r.str("role")
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return fmt.Errorf("unknown role %q", role)
	}
	_, err = l.stores.Users.Create(ctx, &domain.User{
		ID:         id,
		Username:   username,
		Email:      r.str("email"),
		Role:       role,
		Bio:        r.str("bio"),
		FirstName:  r.str("first_name"),
		LastName:   r.str("last_name"),
		DateJoined: l.now().UTC(),
	})
	return err
}

func (l *Loader) taxon(store TaxonomyStore, slugs map[int64]string) func(context.Context, row) error {
	return func(ctx context.Context, r row) error {
		id, err := r.id("id")
		if err != nil {
			return err
		}
		taxon := domain.Taxon{Name: r.str("name"), Slug: r.str("slug")}
		// Recorded before the insert so titles resolve it on a re-run too.
		slugs[id] = taxon.Slug
		return store.Create(ctx, taxon)
	}
}

func (l *Loader) loadTitle(ctx context.Context, r row) error {
	id, err := r.id("id")
	if err != nil {
		return err
	}
	year, err := r.integer("year")
	if err != nil {
		return err
	}
	title := &domain.Title{
		ID:          id,
		Name:        r.str("name"),
		Year:        int(year),
		Description: r.str("description"),
	}
	if r.str("category") != "" {
		categoryID, err := r.id("category")
		if err != nil {
			return err
		}
		slug, ok := l.categories[categoryID]
		if !ok {
			return fmt.Errorf("category %d: %w", categoryID, domain.ErrCategoryNotFound)
		}
		title.Category = &domain.Category{Slug: slug}
	}
	_, err = l.stores.Titles.Create(ctx, title)
	return err
}

func (l *Loader) loadGenreTitle(ctx context.Context, r row) error {
	titleID, err := r.id("title_id")
	if err != nil {
		return err
	}
	genreID, err := r.id("genre_id")
	if err != nil {
		return err
	}
	slug, ok := l.genres[genreID]
	if !ok {
		return fmt.Errorf("genre %d: %w", genreID, domain.ErrGenreNotFound)
	}
	return l.stores.Titles.AddGenre(ctx, titleID, slug)
}

func (l *Loader) loadReview(ctx context.Context, r row) error {
	id, err := r.id("id")
	if err != nil {
		return err
	}
	titleID, err := r.id("title_id")
	if err != nil {
		return err
	}
	authorID, err := r.id("author")
	if err != nil {
		return err
	}
	score, err := r.integer("score")
	if err != nil {
		return err
	}
	if score < domain.MinScore || score > domain.MaxScore {
		return fmt.Errorf("score %d out of range", score)
	}
	pub, err := r.timestamp("pub_date", l.now)
	if err != nil {
		return err
	}
	_, err = l.stores.Reviews.Create(ctx, &domain.Review{
		ID:       id,
		TitleID:  titleID,
		AuthorID: authorID,
		Text:     r.str("text"),
		Score:    int(score),
		PubDate:  pub,
	})
	return err
}

func (l *Loader) loadComment(ctx context.Context, r row) error {
	id, err := r.id("id")
	if err != nil {
		return err
	}
	reviewID, err := r.id("review_id")
	if err != nil {
		return err
	}
	authorID, err := r.id("author")
	if err != nil {
		return err
	}
	pub, err := r.timestamp("pub_date", l.now)
	if err != nil {
		return err
	}
	_, err = l.stores.Comments.Create(ctx, &domain.Comment{
		ID:       id,
		ReviewID: reviewID,
		AuthorID: authorID,
		Text:     r.str("text"),
		PubDate:  pub,
	})
	return err
}

// row is one CSV record addressed by column name.
type row struct {
	columns map[string]int
	values  []string
}

func (r row) str(name string) string {
	i, ok := r.columns[name]
	if !ok || i >= len(r.values) {
		return ""
	}
	return strings.TrimSpace(r.values[i])
}

func (r row) integer(name string) (int64, error) {
	v, err := strconv.ParseInt(r.str(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", name, err)
	}
	return v, nil
}

func (r row) id(name string) (int64, error) {
	v, err := r.integer(name)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("column %s: id must be positive, got %d", name, v)
	}
	return v, nil
}

// timestamp parses an RFC 3339 timestamp; an empty cell yields now.
func (r row) timestamp(name string, now func() time.Time) (time.Time, error) {
	raw := r.str(name)
	if raw == "" {
		return now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("column %s: %w", name, err)
	}
	return t.UTC(), nil
}
