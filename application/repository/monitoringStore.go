package repository

import (
	"context"
	"errors"
	"time"

	"invigil.io/entities"
	"invigil.io/infrastructure/database/repository/mongo"
)

var ErrSessionNotFound = errors.New("exam session not found")

const maxAlertPage int64 = 100

// MonitoringStore persists alerts, their evidence records and browser telemetry.
type MonitoringStore struct {
	alerts    *mongo.MongoRepository[entities.Alert]
	logs      *mongo.MongoRepository[entities.MonitoringLog]
	movements *mongo.MongoRepository[entities.MouseMovement]
	snapshots *mongo.MongoRepository[entities.ViolationSnapshot]
}

func NewMonitoringStore() *MonitoringStore {
	return &MonitoringStore{
		alerts:    AlertRepo(),
		logs:      MonitoringLogRepo(),
		movements: MouseMovementRepo(),
		snapshots: ViolationSnapshotRepo(),
	}
}

func (s *MonitoringStore) SaveAlert(ctx context.Context, alert entities.Alert) (*entities.Alert, error) {
	return s.alerts.CreateOne(ctx, alert)
}

func (s *MonitoringStore) SaveSnapshot(ctx context.Context, snapshot entities.ViolationSnapshot) error {
	_, err := s.snapshots.CreateOne(ctx, snapshot)
	return err
}

func (s *MonitoringStore) SaveLog(ctx context.Context, log entities.MonitoringLog) error {
	_, err := s.logs.CreateOne(ctx, log)
	return err
}

func (s *MonitoringStore) SaveMouseMovement(ctx context.Context, movement entities.MouseMovement) error {
	_, err := s.movements.CreateOne(ctx, movement)
	return err
}

// ListAlerts returns the newest alerts matching the given user and/or session.
func (s *MonitoringStore) ListAlerts(_ context.Context, userID string, sessionID string, limit int64) ([]entities.Alert, error) {
	filter := map[string]interface{}{}
	if userID != "" {
		filter["userID"] = userID
	}
	if sessionID != "" {
		filter["sessionID"] = sessionID
	}
	if limit <= 0 || limit > maxAlertPage {
		limit = maxAlertPage
	}
	alerts, err := s.alerts.FindMany(filter, mongo.FindOptions{
		Sort:  map[string]interface{}{"timestamp": -1},
		Limit: &limit,
	})
	if err != nil {
		return nil, err
	}
	return *alerts, nil
}

// SessionStore keeps exam sessions.
type SessionStore struct {
	sessions *mongo.MongoRepository[entities.ExamSession]
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: ExamSessionRepo()}
}

func (s *SessionStore) CreateSession(ctx context.Context, session entities.ExamSession) (*entities.ExamSession, error) {
	return s.sessions.CreateOne(ctx, session)
}

// FetchActiveSession returns the session when it exists and has not expired.
func (s *SessionStore) FetchActiveSession(_ context.Context, id string) (*entities.ExamSession, error) {
	session, err := s.sessions.FindOneByFilter(map[string]interface{}{"id": id})
	if err != nil {
		return nil, err
	}
	if session == nil || (!session.ExpiresAt.IsZero() && session.ExpiresAt.Before(time.Now())) {
		return nil, ErrSessionNotFound
	}
	return session, nil
}
