package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"invigil.io/infrastructure/logger"
)

var (
	ErrInvalidToken = errors.New("invalid token used")
	ErrTokenExpired = errors.New("session token has expired")
	ErrNoSigningKey = errors.New("session signing key not configured")
)

const issuer = "invigil"

// SessionClaims ties a token to one candidate's exam session.
type SessionClaims struct {
	UserID    string `json:"uid"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type SessionTokens struct {
	SigningKey []byte
	TTL        time.Duration
}

func NewSessionTokens(signingKey string, ttl time.Duration) *SessionTokens {
	return &SessionTokens{SigningKey: []byte(signingKey), TTL: ttl}
}

// Enabled reports whether routes should insist on a session token.
func (st *SessionTokens) Enabled() bool {
	return st != nil && len(st.SigningKey) > 0
}

func (st *SessionTokens) Issue(userID string, sessionID string, issuedAt time.Time) (string, time.Time, error) {
	if !st.Enabled() {
		return "", time.Time{}, ErrNoSigningKey
	}
	expiresAt := issuedAt.Add(st.TTL)
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}).SignedString(st.SigningKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

func (st *SessionTokens) Decode(tokenString string) (*SessionClaims, error) {
	if !st.Enabled() {
		return nil, ErrNoSigningKey
	}
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return st.SigningKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		logger.Warning("error decoding session token", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
