package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/errgroup"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI.
// It returns the mongo.Client which can be used to access databases and collections.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary node; a successful Connect does not mean the server answers.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection concurrently and
// returns the first failure.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return wrapIndexErr(athleteCollectionName, EnsureAthleteIndexes(ctx, db.Collection(athleteCollectionName)))
	})
	g.Go(func() error {
		return wrapIndexErr(trainingPlanCollectionName, EnsureTrainingPlanIndexes(ctx, db.Collection(trainingPlanCollectionName)))
	})
	g.Go(func() error {
		return wrapIndexErr(sessionCollectionName, EnsureSessionIndexes(ctx, db))
	})
	g.Go(func() error {
		return wrapIndexErr(exportJobCollectionName, EnsureExportJobIndexes(ctx, db.Collection(exportJobCollectionName)))
	})
	return g.Wait()
}

func wrapIndexErr(collection string, err error) error {
	if err != nil {
		return fmt.Errorf("create indexes for %s: %w", collection, err)
	}
	return nil
}
