package api

import (
	"errors"
	"fmt"
)

// Transport-level errors. Core errors come from package daos.
var (
	ErrInvalidJSON    = errors.New("invalid request body")
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnknownAction  = errors.New("invalid action specified")
)

// Codes for transport-level errors, reported next to the daos kinds.
const (
	CodeInvalidJSON     = "InvalidJSON"
	CodeInvalidRequest  = "InvalidRequest"
	CodeUnknownAction   = "UnknownAction"
	CodeRequestTooLarge = "RequestTooLarge"
)

// APIError represents a structured error response for the API.
// Code is the error kind, stable for client error handling.
// Message describes what went wrong.
// Hint provides actionable guidance to resolve the issue.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// InvalidRequestErr returns an error for a request missing a required field.
func InvalidRequestErr(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, msg)
}

// UnknownActionErr returns an error for an action outside the action table.
func UnknownActionErr(action string) error {
	return fmt.Errorf("%w: '%s'", ErrUnknownAction, action)
}
