package mongo

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yamdb/yamdb-api/internal/core/domain"
)

// TaxonomyRepository stores categories or genres, one collection each.
type TaxonomyRepository struct {
	col      *mongo.Collection
	notFound error
}

func NewCategoryRepository(db *mongo.Database) *TaxonomyRepository {
	return &TaxonomyRepository{col: db.Collection(collectionCategories), notFound: domain.ErrCategoryNotFound}
}

func NewGenreRepository(db *mongo.Database) *TaxonomyRepository {
	return &TaxonomyRepository{col: db.Collection(collectionGenres), notFound: domain.ErrGenreNotFound}
}

func (r *TaxonomyRepository) Create(ctx context.Context, taxon domain.Taxon) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, taxon); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert %s: %w", r.col.Name(), err)
	}
	return nil
}

func (r *TaxonomyRepository) FindBySlug(ctx context.Context, slug string) (*domain.Taxon, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var taxon domain.Taxon
	if err := r.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&taxon); err != nil {
		if notFound(err) {
			return nil, r.notFound
		}
		return nil, fmt.Errorf("find %s: %w", r.col.Name(), err)
	}
	return &taxon, nil
}

// FindBySlugs returns the entries that exist among slugs, in no particular order.
func (r *TaxonomyRepository) FindBySlugs(ctx context.Context, slugs []string) ([]domain.Taxon, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"slug": bson.M{"$in": slugs}})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", r.col.Name(), err)
	}
	var out []domain.Taxon
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.col.Name(), err)
	}
	return out, nil
}

// List orders by name; search matches a name substring, case-insensitively.
func (r *TaxonomyRepository) List(ctx context.Context, search string, page domain.PageRequest) ([]domain.Taxon, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if search != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.col.Name(), err)
	}
	cur, err := r.col.Find(ctx, filter, findOpts(page.Skip(), page.Normalize().Size, bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.col.Name(), err)
	}
	out := []domain.Taxon{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", r.col.Name(), err)
	}
	return out, total, nil
}

func (r *TaxonomyRepository) Delete(ctx context.Context, slug string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"slug": slug})
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.col.Name(), err)
	}
	if res.DeletedCount == 0 {
		return r.notFound
	}
	return nil
}
