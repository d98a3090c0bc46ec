package controller

import (
	"errors"
	"net/http"

	apperrors "invigil.io/application/appErrors"
	"invigil.io/application/constants"
	"invigil.io/application/controller/dto"
	"invigil.io/application/interfaces"
	registration_usecases "invigil.io/application/usecases/registration"
	"invigil.io/infrastructure/validator"
	server_response "invigil.io/infrastructure/serverResponse"
)

func registrationError(ctx any, err error) {
	switch {
	case errors.Is(err, registration_usecases.ErrUserNotFound):
		apperrors.NotFoundError(ctx, err.Error())
	case errors.Is(err, registration_usecases.ErrVideoTooSmall):
		apperrors.ClientError(ctx, err.Error(), nil, nil, &constants.VIDEO_TOO_SMALL)
	case errors.Is(err, registration_usecases.ErrMissingVideoFields),
		errors.Is(err, registration_usecases.ErrVideoFormat),
		errors.Is(err, registration_usecases.ErrVideoEncoding),
		errors.Is(err, registration_usecases.ErrMissingUserID),
		errors.Is(err, registration_usecases.ErrMissingUserIDBody):
		apperrors.ClientError(ctx, err.Error(), nil, nil, nil)
	default:
		apperrors.FatalServerError(ctx, err)
	}
}

func RegisterCandidate(ctx *interfaces.ApplicationContext[dto.RegisterCandidateDTO]) {
	if valiedationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body); valiedationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, valiedationErr)
		return
	}
	candidate, err := Services.Registration.Register(ctx.Context(), ctx.Body)
	if err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusCreated, "Registration successful", map[string]any{
		"user_id": candidate.ID,
	}, nil, nil)
}

func SaveVideo(ctx *interfaces.ApplicationContext[dto.SaveVideoDTO]) {
	err := Services.Registration.SaveVideo(ctx.Context(), ctx.Body.UserID, ctx.Body.VideoData)
	if err != nil {
		registrationError(ctx.Ctx, err)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusAccepted, "Video saved, processing started", map[string]any{
		"status": "processing",
	}, nil, nil)
}

func ProcessingStatus(ctx *interfaces.ApplicationContext[any]) {
	status, err := Services.Registration.ProcessingStatus(ctx.Context(), ctx.Param["user_id"])
	if err != nil {
		registrationError(ctx.Ctx, err)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "Processing status fetched", status, nil, nil)
}

func SkipProcessing(ctx *interfaces.ApplicationContext[dto.SkipProcessingDTO]) {
	if err := Services.Registration.SkipProcessing(ctx.Context(), ctx.Body.UserID); err != nil {
		registrationError(ctx.Ctx, err)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "Processing skipped", nil, nil, nil)
}

func FetchCandidate(ctx *interfaces.ApplicationContext[any]) {
	view, err := Services.Registration.Candidate(ctx.Context(), ctx.Param["id"])
	if err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "Candidate fetched", view, nil, nil)
}
