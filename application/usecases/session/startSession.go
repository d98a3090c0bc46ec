package session_usecases

import (
	"context"
	"time"

	"invigil.io/application/utils"
	"invigil.io/entities"
	"invigil.io/infrastructure/auth"
	"invigil.io/infrastructure/logger"
	"invigil.io/infrastructure/useragent"
)

type CandidateLookup interface {
	FetchUser(ctx context.Context, id string) (*entities.Candidate, error)
}

type SessionCreator interface {
	CreateSession(ctx context.Context, session entities.ExamSession) (*entities.ExamSession, error)
}

// Locator resolves a client address. A nil location means the address is unknown.
type Locator interface {
	LookUp(ipAddress string) (*entities.SessionLocation, error)
}

type SessionUseCases struct {
	Candidates CandidateLookup
	Sessions   SessionCreator
	Locations  Locator
	Tokens     *auth.SessionTokens
	TTL        time.Duration
	Now        func() time.Time
}

type StartedSession struct {
	Session   *entities.ExamSession `json:"session"`
	Token     *string               `json:"token,omitempty"`
	ExpiresAt time.Time             `json:"expiresAt"`
}

// StartSession opens an exam session for a registered candidate. A token is issued only when a
// signing key is configured.
func (uc *SessionUseCases) StartSession(ctx context.Context, userID string, agent *useragent.UserAgent, clientIP string) (*StartedSession, error) {
	candidate, err := uc.Candidates.FetchUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, ErrUserNotFound
	}
	now := time.Now()
	if uc.Now != nil {
		now = uc.Now()
	}
	session := entities.ExamSession{
		ID:        utils.GenerateUULDString(),
		UserID:    userID,
		StartedAt: now,
		ExpiresAt: now.Add(uc.TTL),
		ClientIP:  clientIP,
	}
	if agent != nil {
		session.UserAgent = entities.SessionUserAgent{
			Name:    agent.Name,
			Version: agent.Version,
			OS:      agent.OS,
			Device:  agent.Device,
		}
	}
	if uc.Locations != nil && clientIP != "" {
		location, err := uc.Locations.LookUp(clientIP)
		if err != nil {
			logger.Warning("could not resolve session location", logger.LoggerOptions{
				Key:  "ip",
				Data: clientIP,
			}, logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
		}
		session.Location = location
	}
	saved, err := uc.Sessions.CreateSession(ctx, session)
	if err != nil {
		return nil, err
	}
	result := &StartedSession{Session: saved, ExpiresAt: saved.ExpiresAt}
	if uc.Tokens.Enabled() {
		token, expiresAt, err := uc.Tokens.Issue(userID, saved.ID, now)
		if err != nil {
			logger.Error("could not issue session token", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
			return nil, err
		}
		result.Token = &token
		result.ExpiresAt = expiresAt
	}
	logger.Info("exam session started", logger.LoggerOptions{
		Key:  "sessionID",
		Data: saved.ID,
	}, logger.LoggerOptions{
		Key:  "userID",
		Data: userID,
	})
	return result, nil
}
