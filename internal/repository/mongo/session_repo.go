// internal/repository/mongo/session_repo.go
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"spartan/trainer/internal/domain"
	"spartan/trainer/internal/repository"
)

const (
	sessionCollectionName = "sessions"
	stepCollectionName    = "session_steps"
)

// mongoSessionRepository implements repository.SessionRepository. Steps are
// kept in their own collection and joined on read.
type mongoSessionRepository struct {
	sessions *mongo.Collection
	steps    *mongo.Collection
}

// NewMongoSessionRepository creates a new Session repository.
func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		sessions: db.Collection(sessionCollectionName),
		steps:    db.Collection(stepCollectionName),
	}
}

// ReplaceForPlan removes the plan's sessions and steps, then inserts the new
// ones. It is not transactional; callers serialize regeneration per plan.
func (r *mongoSessionRepository) ReplaceForPlan(ctx context.Context, planID primitive.ObjectID, sessions []domain.Session) (int, error) {
	if planID == primitive.NilObjectID {
		return 0, repository.ErrInvalidInput
	}

	// 1. Collect existing session IDs so their steps can be removed too
	ids, err := r.sessionIDsForPlan(ctx, planID)
	if err != nil {
		return 0, err
	}

	// 2. Delete old steps, then old sessions
	if len(ids) > 0 {
		if _, err := r.steps.DeleteMany(ctx, bson.M{"session_id": bson.M{"$in": ids}}); err != nil {
			return 0, fmt.Errorf("delete steps: %w", err)
		}
	}
	if _, err := r.sessions.DeleteMany(ctx, bson.M{"plan_id": planID}); err != nil {
		return 0, fmt.Errorf("delete sessions: %w", err)
	}
	if len(sessions) == 0 {
		return 0, nil
	}

	// 3. Insert new sessions and their steps
	now := time.Now().UTC()
	sessionDocs := make([]interface{}, 0, len(sessions))
	var stepDocs []interface{}
	for i := range sessions {
		s := &sessions[i]
		s.ID = primitive.NewObjectID()
		s.PlanID = planID
		s.CreatedAt, s.UpdatedAt = &now, &now
		sessionDocs = append(sessionDocs, s)
		for j := range s.Steps {
			st := &s.Steps[j]
			st.ID = primitive.NewObjectID()
			st.SessionID = s.ID
			stepDocs = append(stepDocs, st)
		}
	}

	if _, err := r.sessions.InsertMany(ctx, sessionDocs); err != nil {
		return 0, fmt.Errorf("insert sessions: %w", err)
	}
	if len(stepDocs) > 0 {
		if _, err := r.steps.InsertMany(ctx, stepDocs); err != nil {
			return 0, fmt.Errorf("insert steps: %w", err)
		}
	}
	return len(sessions), nil
}

func (r *mongoSessionRepository) sessionIDsForPlan(ctx context.Context, planID primitive.ObjectID) ([]primitive.ObjectID, error) {
	findOptions := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.sessions.Find(ctx, bson.M{"plan_id": planID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

// GetByPlanID retrieves the plan's sessions in date order, steps attached.
func (r *mongoSessionRepository) GetByPlanID(ctx context.Context, planID primitive.ObjectID, from, to string) ([]domain.Session, error) {
	filter := bson.M{"plan_id": planID}
	dateRange := bson.M{}
	if from != "" {
		dateRange["$gte"] = from
	}
	if to != "" {
		dateRange["$lte"] = to
	}
	if len(dateRange) > 0 {
		filter["session_date"] = dateRange
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "session_date", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.sessions.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	sessions := []domain.Session{}
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	if err := r.attachSteps(ctx, sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetByID retrieves a single session with its steps.
func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	var session domain.Session
	err := r.sessions.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	one := []domain.Session{session}
	if err := r.attachSteps(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// attachSteps loads the steps of all given sessions in one query.
func (r *mongoSessionRepository) attachSteps(ctx context.Context, sessions []domain.Session) error {
	if len(sessions) == 0 {
		return nil
	}
	ids := make([]primitive.ObjectID, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.ID)
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "session_id", Value: 1}, {Key: "step_order", Value: 1}})
	cursor, err := r.steps.Find(ctx, bson.M{"session_id": bson.M{"$in": ids}}, findOptions)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var steps []domain.Step
	if err = cursor.All(ctx, &steps); err != nil {
		return err
	}
	bySession := make(map[primitive.ObjectID][]domain.Step, len(sessions))
	for _, st := range steps {
		bySession[st.SessionID] = append(bySession[st.SessionID], st)
	}
	for i := range sessions {
		sessions[i].Steps = bySession[sessions[i].ID]
		if sessions[i].Steps == nil {
			sessions[i].Steps = []domain.Step{}
		}
	}
	return nil
}

// EnsureSessionIndexes creates indexes for sessions and session_steps.
func EnsureSessionIndexes(ctx context.Context, db *mongo.Database) error {
	sessionIndexes := []mongo.IndexModel{
		{
			// Range queries per plan, ordered by date
			Keys:    bson.D{{Key: "plan_id", Value: 1}, {Key: "session_date", Value: 1}},
			Options: options.Index(),
		},
	}
	if _, err := db.Collection(sessionCollectionName).Indexes().CreateMany(ctx, sessionIndexes); err != nil {
		return err
	}
	stepIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "step_order", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := db.Collection(stepCollectionName).Indexes().CreateMany(ctx, stepIndexes)
	return err
}
