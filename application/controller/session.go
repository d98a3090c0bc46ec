package controller

import (
	"errors"
	"net/http"

	apperrors "invigil.io/application/appErrors"
	"invigil.io/application/constants"
	"invigil.io/application/controller/dto"
	"invigil.io/application/interfaces"
	session_usecases "invigil.io/application/usecases/session"
	"invigil.io/infrastructure/useragent"
	"invigil.io/infrastructure/validator"
	server_response "invigil.io/infrastructure/serverResponse"
)

func StartSession(ctx *interfaces.ApplicationContext[dto.StartSessionDTO]) {
	if valiedationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body); valiedationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, valiedationErr)
		return
	}
	agent, _ := ctx.GetContextData("AgentDetails").(*useragent.UserAgent)
	started, err := Services.Sessions.StartSession(ctx.Context(), ctx.Body.UserID, agent, ctx.ClientIP)
	if errors.Is(err, session_usecases.ErrUserNotFound) {
		apperrors.NotFoundError(ctx.Ctx, err.Error())
		return
	}
	if err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusCreated, "Exam session started", started, nil, nil)
}

// sessionIdentity resolves the candidate and session a request acts for. With token claims, empty
// payload ids are taken from the claims and differing ones are rejected. Without claims the payload
// is used as sent.
func sessionIdentity[T any](ctx *interfaces.ApplicationContext[T], userID string, sessionID string) (string, string, bool) {
	claimedUser := ctx.GetStringContextData("UserID")
	claimedSession := ctx.GetStringContextData("SessionID")
	if claimedUser == "" && claimedSession == "" {
		return userID, sessionID, true
	}
	if (userID != "" && userID != claimedUser) || (sessionID != "" && sessionID != claimedSession) {
		apperrors.AuthenticationError(ctx.Ctx, "Session token does not match this request", &constants.SESSION_TOKEN_MISMATCH)
		return "", "", false
	}
	return claimedUser, claimedSession, true
}
