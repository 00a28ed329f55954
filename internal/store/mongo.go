package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/movie-listings/internal/models"
)

// MongoStore handles movie CRUD in MongoDB.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("movies")}
}

// Insert stores a new movie and returns its id in hex form.
func (s *MongoStore) Insert(ctx context.Context, movie *models.Movie) (string, error) {
	now := time.Now()
	movie.CreatedAt = now
	movie.UpdatedAt = now
	res, err := s.col.InsertOne(ctx, movie)
	if err != nil {
		return "", fmt.Errorf("mongo insert: %w", err)
	}
	oid := res.InsertedID.(primitive.ObjectID)
	movie.ID = oid
	return oid.Hex(), nil
}

// List returns all movies, most recently created first.
func (s *MongoStore) List(ctx context.Context) ([]models.Movie, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	defer cur.Close(ctx)

	var movies []models.Movie
	if err := cur.All(ctx, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (*models.Movie, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var movie models.Movie
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&movie)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find one: %w", err)
	}
	return &movie, nil
}

// Update replaces the editable fields of a movie. posted_by and created_at
// are deliberately not part of the $set.
func (s *MongoStore) Update(ctx context.Context, id string, movie *models.Movie) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"name":        movie.Name,
		"description": movie.Description,
		"year":        movie.Year,
		"genres":      movie.Genres,
		"rating":      movie.Rating,
		"poster_url":  movie.PosterURL,
		"poster_key":  movie.PosterKey,
		"updated_at":  time.Now(),
	}})
	if err != nil {
		return fmt.Errorf("mongo update: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	_, err = s.col.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
