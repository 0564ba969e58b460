package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yamdb/yamdb-api/internal/core/domain"
)

// authorStages resolve author_id to the author's current username.
func authorStages() []bson.D {
	return []bson.D{
		stage("$lookup", bson.D{
			{Key: "from", Value: collectionUsers},
			{Key: "localField", Value: "author_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "author_docs"},
		}),
		stage("$addFields", bson.M{"author": bson.M{"$arrayElemAt": bson.A{"$author_docs.username", 0}}}),
		stage("$project", bson.M{"author_docs": 0}),
	}
}

func pagedAuthorPipeline(match bson.M, skip int64, limit int) mongo.Pipeline {
	p := mongo.Pipeline{
		stage("$match", match),
		stage("$sort", bson.D{{Key: "pub_date", Value: 1}, {Key: "_id", Value: 1}}),
	}
	if limit > 0 {
		p = append(p, stage("$skip", skip), stage("$limit", limit))
	}
	return append(p, authorStages()...)
}

// idsOf returns the _id of every document matching filter.
func idsOf(ctx context.Context, col *mongo.Collection, filter bson.M) ([]int64, error) {
	cur, err := col.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	var docs []struct {
		ID int64 `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// ReviewRepository stores reviews; (title_id, author_id) is unique.
type ReviewRepository struct {
	col  *mongo.Collection
	seqs *Sequences
}

func NewReviewRepository(db *mongo.Database, seqs *Sequences) *ReviewRepository {
	return &ReviewRepository{col: db.Collection(collectionReviews), seqs: seqs}
}

type reviewDoc struct {
	ID       int64     `bson:"_id"`
	TitleID  int64     `bson:"title_id"`
	AuthorID int64     `bson:"author_id"`
	Author   string    `bson:"author,omitempty"`
	Text     string    `bson:"text"`
	Score    int       `bson:"score"`
	PubDate  time.Time `bson:"pub_date"`
}

func (d *reviewDoc) toDomain() *domain.Review {
	return &domain.Review{
		ID:       d.ID,
		TitleID:  d.TitleID,
		AuthorID: d.AuthorID,
		Author:   d.Author,
		Text:     d.Text,
		Score:    d.Score,
		PubDate:  d.PubDate.UTC(),
	}
}

func (r *ReviewRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]*domain.Review, error) {
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate reviews: %w", err)
	}
	var docs []reviewDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	out := make([]*domain.Review, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

// Create inserts a review. A zero ID is assigned from the reviews sequence.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	id, err := r.seqs.assign(ctx, collectionReviews, review.ID)
	if err != nil {
		return nil, err
	}
	doc := reviewDoc{
		ID:       id,
		TitleID:  review.TitleID,
		AuthorID: review.AuthorID,
		Text:     review.Text,
		Score:    review.Score,
		PubDate:  review.PubDate.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("insert review: %w", err)
	}

	doc.Author = review.Author
	return doc.toDomain(), nil
}

func (r *ReviewRepository) FindByID(ctx context.Context, titleID, id int64) (*domain.Review, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	reviews, err := r.aggregate(ctx, pagedAuthorPipeline(bson.M{"_id": id, "title_id": titleID}, 0, 0))
	if err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return nil, domain.ErrReviewNotFound
	}
	return reviews[0], nil
}

func (r *ReviewRepository) List(ctx context.Context, titleID int64, page domain.PageRequest) ([]*domain.Review, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	match := bson.M{"title_id": titleID}
	total, err := r.col.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}
	reviews, err := r.aggregate(ctx, pagedAuthorPipeline(match, page.Skip(), page.Normalize().Size))
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *ReviewRepository) Update(ctx context.Context, id int64, text *string, score *int) (*domain.Review, error) {
	set := bson.M{}
	if text != nil {
		set["text"] = *text
	}
	if score != nil {
		set["score"] = *score
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var doc reviewDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if notFound(err) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("find review: %w", err)
	}
	if len(set) > 0 {
		res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
		if err != nil {
			return nil, fmt.Errorf("update review: %w", err)
		}
		if res.MatchedCount == 0 {
			return nil, domain.ErrReviewNotFound
		}
	}
	return r.FindByID(ctx, doc.TitleID, id)
}

func (r *ReviewRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepository) deleteMany(ctx context.Context, filter bson.M) ([]int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	ids, err := idsOf(ctx, r.col, filter)
	if err != nil {
		return nil, fmt.Errorf("collect reviews: %w", err)
	}
	if len(ids) == 0 {
		return ids, nil
	}
	if _, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return nil, fmt.Errorf("delete reviews: %w", err)
	}
	return ids, nil
}

func (r *ReviewRepository) DeleteByTitle(ctx context.Context, titleID int64) ([]int64, error) {
	return r.deleteMany(ctx, bson.M{"title_id": titleID})
}

func (r *ReviewRepository) DeleteByAuthor(ctx context.Context, authorID int64) ([]int64, error) {
	return r.deleteMany(ctx, bson.M{"author_id": authorID})
}
