package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	tokens := NewSessionTokens("secret", time.Hour)
	issuedAt := time.Now().Truncate(time.Second)

	token, expiresAt, err := tokens.Issue("u1", "s1", issuedAt)
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(time.Hour), expiresAt)

	claims, err := tokens.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "s1", claims.SessionID)
	assert.Equal(t, "invigil", claims.Issuer)
}

func TestSessionTokenRejections(t *testing.T) {
	tokens := NewSessionTokens("secret", time.Hour)

	expired, _, err := tokens.Issue("u1", "s1", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = tokens.Decode(expired)
	assert.ErrorIs(t, err, ErrTokenExpired)

	forged, _, err := NewSessionTokens("other", time.Hour).Issue("u1", "s1", time.Now())
	require.NoError(t, err)
	_, err = tokens.Decode(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{UserID: "u1", SessionID: "s1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Decode(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.Decode("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionTokensDisabled(t *testing.T) {
	tokens := NewSessionTokens("", time.Hour)
	assert.False(t, tokens.Enabled())
	_, _, err := tokens.Issue("u1", "s1", time.Now())
	assert.ErrorIs(t, err, ErrNoSigningKey)
	var missing *SessionTokens
	assert.False(t, missing.Enabled())
}
