package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Movie is a single listing stored in MongoDB. PostedBy holds the owning
// user's id and is set once at creation, never reassigned.
type Movie struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	Year        int                `bson:"year"`
	Genres      []string           `bson:"genres"`
	Rating      float64            `bson:"rating"`
	PosterURL   string             `bson:"poster_url,omitempty"`
	PosterKey   string             `bson:"poster_key,omitempty"`
	PostedBy    string             `bson:"posted_by"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`

	// PostedByName is the owner's username, resolved at read time for
	// display. Not persisted.
	PostedByName string `bson:"-"`
}

// HexID returns the movie id in its canonical string form. Value receiver so
// templates can call it on slice elements.
func (m Movie) HexID() string {
	return m.ID.Hex()
}
