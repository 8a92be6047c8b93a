package service

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("not signed in")
	ErrNoCachedList    = errors.New("no cached todo list")
	ErrRemote          = errors.New("remote store error")
	ErrAuthUnavailable = errors.New("authentication provider not configured")
)
