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

const exportJobCollectionName = "export_jobs"

// mongoExportJobRepository implements repository.ExportJobRepository
type mongoExportJobRepository struct {
	collection *mongo.Collection
}

// NewMongoExportJobRepository creates a new ExportJob repository backed by MongoDB.
func NewMongoExportJobRepository(db *mongo.Database) repository.ExportJobRepository {
	return &mongoExportJobRepository{
		collection: db.Collection(exportJobCollectionName),
	}
}

// Create records a rendered export.
func (r *mongoExportJobRepository) Create(ctx context.Context, job *domain.ExportJob) (primitive.ObjectID, error) {
	if job.AthleteID == primitive.NilObjectID || job.PlanID == primitive.NilObjectID || job.ExportType == "" {
		return primitive.NilObjectID, errors.New("export job requires athleteId, planId and exportType")
	}

	job.ID = primitive.NewObjectID()
	job.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, job)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves an export job by its ID.
func (r *mongoExportJobRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExportJob, error) {
	var job domain.ExportJob
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&job)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// GetByAthleteID lists an athlete's exports, newest first.
func (r *mongoExportJobRepository) GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.ExportJob, error) {
	jobs := []domain.ExportJob{}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"athleteId": athleteID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// EnsureExportJobIndexes creates necessary indexes for the export_jobs collection.
func EnsureExportJobIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "athleteId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "planId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
