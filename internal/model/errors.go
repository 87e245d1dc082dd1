package model

import "errors"

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token related errors
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenExpired  = errors.New("token expired")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Shop records
	ErrClientNotFound    = errors.New("client not found")
	ErrVehicleNotFound   = errors.New("vehicle not found")
	ErrWorkOrderNotFound = errors.New("work order not found")
	ErrPlateConflict     = errors.New("plate number already registered")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
