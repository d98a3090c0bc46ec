package session_usecases

import "errors"

var ErrUserNotFound = errors.New("User not found")
