package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yamdb/yamdb-api/internal/core/domain"
)

type CommentRepository struct {
	col  *mongo.Collection
	seqs *Sequences
}

func NewCommentRepository(db *mongo.Database, seqs *Sequences) *CommentRepository {
	return &CommentRepository{col: db.Collection(collectionComments), seqs: seqs}
}

type commentDoc struct {
	ID       int64     `bson:"_id"`
	ReviewID int64     `bson:"review_id"`
	AuthorID int64     `bson:"author_id"`
	Author   string    `bson:"author,omitempty"`
	Text     string    `bson:"text"`
	PubDate  time.Time `bson:"pub_date"`
}

func (d *commentDoc) toDomain() *domain.Comment {
	return &domain.Comment{
		ID:       d.ID,
		ReviewID: d.ReviewID,
		AuthorID: d.AuthorID,
		Author:   d.Author,
		Text:     d.Text,
		PubDate:  d.PubDate.UTC(),
	}
}

func (r *CommentRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]*domain.Comment, error) {
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate comments: %w", err)
	}
	var docs []commentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	out := make([]*domain.Comment, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

// Create inserts a comment. A zero ID is assigned from the comments sequence.
func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	id, err := r.seqs.assign(ctx, collectionComments, comment.ID)
	if err != nil {
		return nil, err
	}
	doc := commentDoc{
		ID:       id,
		ReviewID: comment.ReviewID,
		AuthorID: comment.AuthorID,
		Text:     comment.Text,
		PubDate:  comment.PubDate.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	doc.Author = comment.Author
	return doc.toDomain(), nil
}

func (r *CommentRepository) FindByID(ctx context.Context, reviewID, id int64) (*domain.Comment, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	comments, err := r.aggregate(ctx, pagedAuthorPipeline(bson.M{"_id": id, "review_id": reviewID}, 0, 0))
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return nil, domain.ErrCommentNotFound
	}
	return comments[0], nil
}

func (r *CommentRepository) List(ctx context.Context, reviewID int64, page domain.PageRequest) ([]*domain.Comment, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	match := bson.M{"review_id": reviewID}
	total, err := r.col.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}
	comments, err := r.aggregate(ctx, pagedAuthorPipeline(match, page.Skip(), page.Normalize().Size))
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *CommentRepository) Update(ctx context.Context, id int64, text string) (*domain.Comment, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var doc commentDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"text": text}}).Decode(&doc)
	if err != nil {
		if notFound(err) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return r.FindByID(ctx, doc.ReviewID, id)
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

func (r *CommentRepository) DeleteByReviews(ctx context.Context, reviewIDs []int64) error {
	if len(reviewIDs) == 0 {
		return nil
	}
	return r.deleteMany(ctx, bson.M{"review_id": bson.M{"$in": reviewIDs}})
}

func (r *CommentRepository) DeleteByAuthor(ctx context.Context, authorID int64) error {
	return r.deleteMany(ctx, bson.M{"author_id": authorID})
}

func (r *CommentRepository) deleteMany(ctx context.Context, filter bson.M) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	return nil
}
