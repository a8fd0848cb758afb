package user

import "errors"

// User errors
var (
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrInvalidPassword = errors.New("invalid email or password")
	ErrUserNotFound    = errors.New("user not found")
)
