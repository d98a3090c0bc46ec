package apperrors

import (
	"fmt"
	"net/http"

	"invigil.io/infrastructure/logger"
	server_response "invigil.io/infrastructure/serverResponse"
)

func NotFoundError(ctx interface{}, message string) {
	server_response.Responder.Respond(ctx, http.StatusNotFound, message, nil, nil, nil)
}

func ValidationFailedError(ctx interface{}, errMessages *[]error) {
	server_response.Responder.Respond(ctx, http.StatusUnprocessableEntity, "Payload validation failed 🙄", nil, *errMessages, nil)
}

func AuthenticationError(ctx interface{}, message string, responseCode *uint) {
	server_response.Responder.Respond(ctx, http.StatusUnauthorized, message, nil, nil, responseCode)
}

func ExternalDependencyError(ctx interface{}, serviceName string, statusCode string, err error) {
	logger.Error(err.Error(), logger.LoggerOptions{
		Key:  fmt.Sprintf("error with %s. status code %s", serviceName, statusCode),
		Data: err,
	})
	server_response.Responder.Respond(ctx, http.StatusServiceUnavailable,
		"Our service is temporarily down 😢. Our team is working to fix it. Please check back later.", nil, nil, nil)
}

func ErrorProcessingPayload(ctx interface{}) {
	server_response.Responder.Respond(ctx, http.StatusBadRequest, "Abnormal payload passed 🤨", nil, nil, nil)
}

func FatalServerError(ctx interface{}, err error) {
	logger.Error("fatal server error", logger.LoggerOptions{Key: "error", Data: err})
	server_response.Responder.Respond(ctx, http.StatusInternalServerError,
		"Our service is temporarily down 😢. Our team is working to fix it. Please check back later.", nil, nil, nil)
}

func TooManyRequests(ctx interface{}) {
	server_response.Responder.Respond(ctx, http.StatusTooManyRequests, "Slow down a bit 🐢", nil, nil, nil)
}

// ClientError carries an optional body so the browser can read the failed status it should show.
func ClientError(ctx interface{}, msg string, body any, errs []error, responseCode *uint) {
	server_response.Responder.Respond(ctx, http.StatusBadRequest, msg, body, errs, responseCode)
}
