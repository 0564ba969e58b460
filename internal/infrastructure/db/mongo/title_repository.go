package mongo

import (
	"context"
	"fmt"
	"math"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yamdb/yamdb-api/internal/core/domain"
)

// TitleRepository stores titles with category and genres referenced by slug.
// Reads resolve the slugs and aggregate the rating from reviews.
type TitleRepository struct {
	col  *mongo.Collection
	seqs *Sequences
}

func NewTitleRepository(db *mongo.Database, seqs *Sequences) *TitleRepository {
	return &TitleRepository{col: db.Collection(collectionTitles), seqs: seqs}
}

type titleDoc struct {
	ID          int64    `bson:"_id"`
	Name        string   `bson:"name"`
	Year        int      `bson:"year"`
	Description string   `bson:"description"`
	Category    *string  `bson:"category"`
	Genres      []string `bson:"genres"`
}

type titleView struct {
	titleDoc     `bson:",inline"`
	CategoryDocs []domain.Taxon `bson:"category_docs"`
	GenreDocs    []domain.Taxon `bson:"genre_docs"`
	Rating       *float64       `bson:"rating"`
}

func (v *titleView) toDomain() *domain.Title {
	t := &domain.Title{
		ID:          v.ID,
		Name:        v.Name,
		Year:        v.Year,
		Description: v.Description,
		Genres:      []domain.Genre{},
	}
	if len(v.CategoryDocs) > 0 {
		c := v.CategoryDocs[0]
		t.Category = &c
	}

	bySlug := make(map[string]domain.Genre, len(v.GenreDocs))
	for _, g := range v.GenreDocs {
		bySlug[g.Slug] = g
	}
	for _, slug := range v.Genres {
		if g, ok := bySlug[slug]; ok {
			t.Genres = append(t.Genres, g)
		}
	}

	if v.Rating != nil {
		rating := int(math.Round(*v.Rating))
		t.Rating = &rating
	}
	return t
}

func stage(name string, value any) bson.D {
	return bson.D{{Key: name, Value: value}}
}

// readPipeline matches titles, pages them by id and joins category, genres
// and the mean review score.
func readPipeline(match bson.M, skip int64, limit int) mongo.Pipeline {
	p := mongo.Pipeline{
		stage("$match", match),
		stage("$sort", bson.D{{Key: "_id", Value: 1}}),
	}
	if limit > 0 {
		p = append(p, stage("$skip", skip), stage("$limit", limit))
	}
	return append(p,
		stage("$lookup", bson.D{
			{Key: "from", Value: collectionCategories},
			{Key: "localField", Value: "category"},
			{Key: "foreignField", Value: "slug"},
			{Key: "as", Value: "category_docs"},
		}),
		stage("$lookup", bson.D{
			{Key: "from", Value: collectionGenres},
			{Key: "localField", Value: "genres"},
			{Key: "foreignField", Value: "slug"},
			{Key: "as", Value: "genre_docs"},
		}),
		stage("$lookup", bson.D{
			{Key: "from", Value: collectionReviews},
			{Key: "let", Value: bson.D{{Key: "tid", Value: "$_id"}}},
			{Key: "pipeline", Value: mongo.Pipeline{
				stage("$match", bson.M{"$expr": bson.M{"$eq": bson.A{"$title_id", "$$tid"}}}),
				stage("$project", bson.M{"score": 1}),
			}},
			{Key: "as", Value: "scores"},
		}),
		stage("$addFields", bson.M{"rating": bson.M{"$avg": "$scores.score"}}),
		stage("$project", bson.M{"scores": 0}),
	)
}

func (r *TitleRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]*domain.Title, error) {
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate titles: %w", err)
	}
	var views []titleView
	if err := cur.All(ctx, &views); err != nil {
		return nil, fmt.Errorf("decode titles: %w", err)
	}
	out := make([]*domain.Title, 0, len(views))
	for i := range views {
		out = append(out, views[i].toDomain())
	}
	return out, nil
}

// Create inserts a title. A zero ID is assigned from the titles sequence.
func (r *TitleRepository) Create(ctx context.Context, title *domain.Title) (*domain.Title, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	id, err := r.seqs.assign(ctx, collectionTitles, title.ID)
	if err != nil {
		return nil, err
	}

	doc := titleDoc{
		ID:          id,
		Name:        title.Name,
		Year:        title.Year,
		Description: title.Description,
		Genres:      make([]string, 0, len(title.Genres)),
	}
	if title.Category != nil {
		slug := title.Category.Slug
		doc.Category = &slug
	}
	for _, g := range title.Genres {
		doc.Genres = append(doc.Genres, g.Slug)
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("insert title: %w", err)
	}
	return r.FindByID(ctx, id)
}

func (r *TitleRepository) FindByID(ctx context.Context, id int64) (*domain.Title, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	titles, err := r.aggregate(ctx, readPipeline(bson.M{"_id": id}, 0, 0))
	if err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		return nil, domain.ErrTitleNotFound
	}
	return titles[0], nil
}

func titleFilter(f domain.TitleFilter) bson.M {
	match := bson.M{}
	if f.Category != "" {
		match["category"] = f.Category
	}
	if f.Genre != "" {
		match["genres"] = f.Genre
	}
	if f.Name != "" {
		match["name"] = bson.M{"$regex": regexp.QuoteMeta(f.Name), "$options": "i"}
	}
	if f.Year != 0 {
		match["year"] = f.Year
	}
	return match
}

func (r *TitleRepository) List(ctx context.Context, filter domain.TitleFilter, page domain.PageRequest) ([]*domain.Title, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	match := titleFilter(filter)
	total, err := r.col.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}
	titles, err := r.aggregate(ctx, readPipeline(match, page.Skip(), page.Normalize().Size))
	if err != nil {
		return nil, 0, err
	}
	return titles, total, nil
}

func (r *TitleRepository) Update(ctx context.Context, id int64, in domain.TitleInput) (*domain.Title, error) {
	set := bson.M{}
	if in.Name != nil {
		set["name"] = *in.Name
	}
	if in.Year != nil {
		set["year"] = *in.Year
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.Category != nil {
		set["category"] = *in.Category
	}
	if in.Genres != nil {
		set["genres"] = in.Genres
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	if err := r.updateOne(ctx, id, bson.M{"$set": set}); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// AddGenre attaches a genre slug to a title, ignoring repeats.
func (r *TitleRepository) AddGenre(ctx context.Context, id int64, slug string) error {
	return r.updateOne(ctx, id, bson.M{"$addToSet": bson.M{"genres": slug}})
}

func (r *TitleRepository) updateOne(ctx context.Context, id int64, update bson.M) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("update title: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTitleNotFound
	}
	return nil
}

func (r *TitleRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete title: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTitleNotFound
	}
	return nil
}

func (r *TitleRepository) ClearCategory(ctx context.Context, slug string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.col.UpdateMany(ctx, bson.M{"category": slug}, bson.M{"$set": bson.M{"category": nil}})
	if err != nil {
		return fmt.Errorf("clear category %s: %w", slug, err)
	}
	return nil
}

func (r *TitleRepository) PullGenre(ctx context.Context, slug string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.col.UpdateMany(ctx, bson.M{"genres": slug}, bson.M{"$pull": bson.M{"genres": slug}})
	if err != nil {
		return fmt.Errorf("pull genre %s: %w", slug, err)
	}
	return nil
}
