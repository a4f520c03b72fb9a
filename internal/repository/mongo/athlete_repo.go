package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"spartan/trainer/internal/domain"
	"spartan/trainer/internal/repository"
)

const athleteCollectionName = "athletes"

// mongoAthleteRepository implements the repository.AthleteRepository interface using MongoDB.
type mongoAthleteRepository struct {
	collection *mongo.Collection
}

// NewMongoAthleteRepository creates a new instance of mongoAthleteRepository.
// It expects a connected *mongo.Database instance.
func NewMongoAthleteRepository(db *mongo.Database) repository.AthleteRepository {
	return &mongoAthleteRepository{
		collection: db.Collection(athleteCollectionName),
	}
}

// Create inserts a new athlete profile.
func (r *mongoAthleteRepository) Create(ctx context.Context, athlete *domain.Athlete) (primitive.ObjectID, error) {
	if athlete.Name == "" {
		return primitive.NilObjectID, errors.New("athlete name is required")
	}

	athlete.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	athlete.CreatedAt = now
	athlete.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, athlete)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, errors.New("athlete with this email already exists")
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves an athlete by their MongoDB ObjectID.
func (r *mongoAthleteRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Athlete, error) {
	var athlete domain.Athlete
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&athlete)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &athlete, nil
}

// Update overwrites the mutable profile fields (thresholds, availability, goal).
func (r *mongoAthleteRepository) Update(ctx context.Context, athlete *domain.Athlete) error {
	if athlete.ID == primitive.NilObjectID {
		return errors.New("athlete ID is required for update")
	}
	athlete.UpdatedAt = time.Now().UTC()

	filter := bson.M{"_id": athlete.ID}
	set := bson.M{
		"name":                      athlete.Name,
		"threshold_pace_sec_per_km": athlete.ThresholdPaceSecPerKm,
		"threshold_hr_bpm":          athlete.ThresholdHrBpm,
		"availability":              athlete.Availability,
		"goal":                      athlete.Goal,
		"updatedAt":                 athlete.UpdatedAt,
	}
	update := bson.M{"$set": set}
	// An empty email must stay absent, the unique index on it is sparse.
	if athlete.Email == "" {
		update["$unset"] = bson.M{"email": ""}
	} else {
		set["email"] = athlete.Email
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureAthleteIndexes creates necessary indexes for the athletes collection.
func EnsureAthleteIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true), // email is optional
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
