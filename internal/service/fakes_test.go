package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"spartan/trainer/internal/domain"
	"spartan/trainer/internal/repository"
)

// In-memory repositories shared by the service tests.

type memAthletes struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]domain.Athlete
}

func newMemAthletes() *memAthletes {
	return &memAthletes{byID: make(map[primitive.ObjectID]domain.Athlete)}
}

func (m *memAthletes) Create(_ context.Context, a *domain.Athlete) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = primitive.NewObjectID()
	m.byID[a.ID] = *a
	return a.ID, nil
}

func (m *memAthletes) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Athlete, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (m *memAthletes) Update(_ context.Context, a *domain.Athlete) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[a.ID]; !ok {
		return repository.ErrNotFound
	}
	m.byID[a.ID] = *a
	return nil
}

type memPlans struct {
	mu      sync.Mutex
	byID    map[primitive.ObjectID]domain.TrainingPlan
	creates int
}

func newMemPlans() *memPlans {
	return &memPlans{byID: make(map[primitive.ObjectID]domain.TrainingPlan)}
}

func (m *memPlans) Create(_ context.Context, p *domain.TrainingPlan) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = primitive.NewObjectID()
	m.byID[p.ID] = *p
	m.creates++
	return p.ID, nil
}

func (m *memPlans) GetByID(_ context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *memPlans) GetByAthleteID(_ context.Context, athleteID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.TrainingPlan
	for _, p := range m.byID {
		if p.AthleteID == athleteID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPlans) GetActiveByAthleteID(_ context.Context, athleteID primitive.ObjectID) (*domain.TrainingPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byID {
		if p.AthleteID == athleteID && p.Status == domain.PlanActive {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memPlans) UpdateDates(_ context.Context, id primitive.ObjectID, start, end string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.StartDate, p.EndDate = start, end
	m.byID[id] = p
	return nil
}

type memSessions struct {
	mu     sync.Mutex
	byPlan map[primitive.ObjectID][]domain.Session
}

func newMemSessions() *memSessions {
	return &memSessions{byPlan: make(map[primitive.ObjectID][]domain.Session)}
}

func (m *memSessions) ReplaceForPlan(_ context.Context, planID primitive.ObjectID, sessions []domain.Session) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]domain.Session, len(sessions))
	for i, s := range sessions {
		s.ID = primitive.NewObjectID()
		s.PlanID = planID
		s.Steps = slices.Clone(s.Steps)
		for j := range s.Steps {
			s.Steps[j].ID = primitive.NewObjectID()
			s.Steps[j].SessionID = s.ID
		}
		stored[i] = s
	}
	m.byPlan[planID] = stored
	return len(stored), nil
}

func (m *memSessions) GetByPlanID(_ context.Context, planID primitive.ObjectID, from, to string) ([]domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Session
	for _, s := range m.byPlan[planID] {
		if from != "" && s.SessionDate < from {
			continue
		}
		if to != "" && s.SessionDate > to {
			continue
		}
		out = append(out, s)
	}
	slices.SortStableFunc(out, func(a, b domain.Session) int { return strings.Compare(a.SessionDate, b.SessionDate) })
	return out, nil
}

func (m *memSessions) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ss := range m.byPlan {
		for _, s := range ss {
			if s.ID == id {
				return &s, nil
			}
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memSessions) count(planID primitive.ObjectID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byPlan[planID])
}

type memJobs struct {
	mu        sync.Mutex
	byID      map[primitive.ObjectID]domain.ExportJob
	createErr error
}

func newMemJobs() *memJobs {
	return &memJobs{byID: make(map[primitive.ObjectID]domain.ExportJob)}
}

func (m *memJobs) Create(_ context.Context, j *domain.ExportJob) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return primitive.NilObjectID, m.createErr
	}
	j.ID = primitive.NewObjectID()
	m.byID[j.ID] = *j
	return j.ID, nil
}

func (m *memJobs) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ExportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &j, nil
}

func (m *memJobs) GetByAthleteID(_ context.Context, athleteID primitive.ObjectID) ([]domain.ExportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ExportJob
	for _, j := range m.byID {
		if j.AthleteID == athleteID {
			out = append(out, j)
		}
	}
	return out, nil
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (m *memStorage) PutObject(_ context.Context, key, _ string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[key] = body
	return nil
}

func (m *memStorage) GeneratePresignedDownloadURL(_ context.Context, key string, expires time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return "", errors.New("no such key")
	}
	return "https://storage.test/" + key + "?expires=" + expires.String(), nil
}

func (m *memStorage) DeleteObject(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func fixedClock(date string) func() time.Time {
	t, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t.Add(9 * time.Hour) }
}
