package middlewares

import (
	"context"
	"errors"
	"strings"

	apperrors "invigil.io/application/appErrors"
	"invigil.io/application/constants"
	"invigil.io/application/interfaces"
	"invigil.io/application/repository"
	"invigil.io/entities"
	"invigil.io/infrastructure/auth"
)

type ActiveSessions interface {
	FetchActiveSession(ctx context.Context, id string) (*entities.ExamSession, error)
}

// SessionAuthMiddleware checks the bearer session token when token checks are enabled. The claims
// are stored as UserID and SessionID for controllers to compare against the payload.
func SessionAuthMiddleware(ctx *interfaces.ApplicationContext[any], tokens *auth.SessionTokens, sessions ActiveSessions) (*interfaces.ApplicationContext[any], bool) {
	if !tokens.Enabled() {
		return ctx, true
	}
	header := ctx.GetHeader("Authorization")
	if header == nil || !strings.HasPrefix(*header, "Bearer ") {
		apperrors.AuthenticationError(ctx.Ctx, "Missing session token", nil)
		return nil, false
	}
	claims, err := tokens.Decode(strings.TrimPrefix(*header, "Bearer "))
	if errors.Is(err, auth.ErrTokenExpired) {
		apperrors.AuthenticationError(ctx.Ctx, "Your exam session has expired", &constants.SESSION_TOKEN_EXPIRED)
		return nil, false
	}
	if err != nil {
		apperrors.AuthenticationError(ctx.Ctx, "Invalid session token", nil)
		return nil, false
	}
	if sessions != nil {
		_, err = sessions.FetchActiveSession(ctx.Context(), claims.SessionID)
		if errors.Is(err, repository.ErrSessionNotFound) {
			apperrors.AuthenticationError(ctx.Ctx, "Your exam session has expired", &constants.SESSION_TOKEN_EXPIRED)
			return nil, false
		}
		if err != nil {
			apperrors.FatalServerError(ctx.Ctx, err)
			return nil, false
		}
	}
	ctx.SetContextData("UserID", claims.UserID)
	ctx.SetContextData("SessionID", claims.SessionID)
	return ctx, true
}
