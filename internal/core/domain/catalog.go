package domain

import "time"

// Taxon is a named, slug-addressed classification.
type Taxon struct {
	Name string `json:"name" bson:"name"`
	Slug string `json:"slug" bson:"slug"`
}

// Category groups titles by kind of work (film, book, music...). A title has
// at most one category.
type Category = Taxon

// Genre is a many-to-many classification of titles.
type Genre = Taxon

// Title is a reviewed work.
type Title struct {
	ID          int64
	Name        string
	Year        int
	Description string
	Category    *Category
	Genres      []Genre
	// Rating is the rounded mean review score; nil when nothing was reviewed.
	Rating *int
}

// TitleInput carries the writable title fields. Genre and category are
// referenced by slug. Nil fields (and a nil Genres slice) are left untouched
// on update.
type TitleInput struct {
	Name        *string
	Year        *int
	Description *string
	Category    *string
	Genres      []string
}

// TitleFilter narrows a title listing.
type TitleFilter struct {
	Category string
	Genre    string
	Name     string
	Year     int
}

// Review is a scored opinion about a title. A user reviews a title at most once.
type Review struct {
	ID       int64
	TitleID  int64
	AuthorID int64
	Author   string
	Text     string
	Score    int
	PubDate  time.Time
}

// OwnerID implements permission.Owned.
func (r *Review) OwnerID() int64 { return r.AuthorID }

// Comment is attached to a review.
type Comment struct {
	ID       int64
	ReviewID int64
	AuthorID int64
	Author   string
	Text     string
	PubDate  time.Time
}

// OwnerID implements permission.Owned.
func (c *Comment) OwnerID() int64 { return c.AuthorID }

const (
	MinScore = 1
	MaxScore = 10
)
