package monitoring

import (
	"context"

	"invigil.io/entities"
)

// CandidateSource reads the enrolled candidates the signature index is built from.
type CandidateSource interface {
	FetchUser(ctx context.Context, id string) (*entities.Candidate, error)
	FetchCompletedUsers(ctx context.Context) ([]entities.Candidate, error)
	FetchFrames(ctx context.Context, userID string) ([]entities.UserFrame, error)
}

type AlertStore interface {
	SaveAlert(ctx context.Context, alert entities.Alert) (*entities.Alert, error)
	SaveSnapshot(ctx context.Context, snapshot entities.ViolationSnapshot) error
	SaveLog(ctx context.Context, log entities.MonitoringLog) error
	SaveMouseMovement(ctx context.Context, movement entities.MouseMovement) error
}

// SnapshotStore uploads evidence images and returns where they can be fetched from.
type SnapshotStore interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// Notifier hands critical alerts to the proctor notification pipeline.
type Notifier interface {
	NotifyCritical(ctx context.Context, alert entities.Alert) error
}

// Cooldown reports whether an alert of category may be raised for scope now. A true result
// starts a new window.
type Cooldown interface {
	Acquire(ctx context.Context, scope string, category string) bool
}

// Counter returns the post increment value of key.
type Counter interface {
	Next(ctx context.Context, key string) int64
}

// Subscriber delivers published payloads on channel to handler until ctx ends.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string, handler func(payload string)) error
}
