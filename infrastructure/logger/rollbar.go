package logger

import (
	"errors"
	"fmt"

	"github.com/rollbar/rollbar-go"
)

type errorReporter interface {
	Report(msg string, payload []LoggerOptions)
	Close()
}

type noopReporter struct{}

func (noopReporter) Report(string, []LoggerOptions) {}
func (noopReporter) Close()                         {}

var ErrorReporter errorReporter = noopReporter{}

type rollbarReporter struct{}

func newRollbarReporter(token string, environment string) *rollbarReporter {
	if environment == "" {
		environment = "production"
	}
	rollbar.SetToken(token)
	rollbar.SetEnvironment(environment)
	rollbar.SetServerRoot("invigil.io")
	return &rollbarReporter{}
}

// Report forwards the error found under the "error" key, or the message itself, with the
// remaining options as custom data.
func (rollbarReporter) Report(msg string, payload []LoggerOptions) {
	extras := map[string]interface{}{}
	var reported error
	for _, option := range payload {
		if err, ok := option.Data.(error); ok && option.Key == "error" {
			reported = err
			continue
		}
		extras[option.Key] = fmt.Sprintf("%v", option.Data)
	}
	if reported == nil {
		reported = errors.New(msg)
	} else {
		extras["message"] = msg
	}
	rollbar.ErrorWithExtras(rollbar.ERR, reported, extras)
}

func (rollbarReporter) Close() {
	rollbar.Close()
}
