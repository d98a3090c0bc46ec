package interfaces

import (
	"context"
	"net/http"
)

// ApplicationContext carries a request through controllers without tying them to gin. Ctx is the
// framework context handed to the responder.
type ApplicationContext[T any] struct {
	Ctx        any
	Body       *T
	Keys       map[string]any
	Header     http.Header
	Param      map[string]string
	UserAgent  string
	DeviceName string
	ClientIP   string
}

func (ac *ApplicationContext[T]) GetHeader(key string) *string {
	if ac.Header == nil {
		return nil
	}
	value := ac.Header.Get(key)
	if value == "" {
		return nil
	}
	return &value
}

func (ac *ApplicationContext[T]) SetContextData(key string, value any) {
	if ac.Keys == nil {
		ac.Keys = map[string]any{}
	}
	ac.Keys[key] = value
}

func (ac *ApplicationContext[T]) GetContextData(key string) any {
	return ac.Keys[key]
}

func (ac *ApplicationContext[T]) GetStringContextData(key string) string {
	value, _ := ac.Keys[key].(string)
	return value
}

// Context returns the request context when the framework context provides one.
func (ac *ApplicationContext[T]) Context() context.Context {
	if c, ok := ac.Ctx.(context.Context); ok {
		return c
	}
	return context.Background()
}
