package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Sequences hands out monotonically increasing int64 ids per collection,
// backed by one counter document each.
type Sequences struct {
	col *mongo.Collection
}

func NewSequences(db *mongo.Database) *Sequences {
	return &Sequences{col: db.Collection(collectionCounters)}
}

type counter struct {
	Value int64 `bson:"value"`
}

// Next returns the next id for name, starting at 1.
func (s *Sequences) Next(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var c counter
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"value": 1}}, opts).Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return c.Value, nil
}

// AdvanceTo makes sure the next id handed out for name is greater than id.
func (s *Sequences) AdvanceTo(ctx context.Context, name string, id int64) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": name},
		bson.M{"$max": bson.M{"value": id}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("advance %s sequence: %w", name, err)
	}
	return nil
}

// assign returns id when set, advancing the sequence past it, or the next
// id from the sequence.
func (s *Sequences) assign(ctx context.Context, name string, id int64) (int64, error) {
	if id != 0 {
		return id, s.AdvanceTo(ctx, name, id)
	}
	return s.Next(ctx, name)
}
