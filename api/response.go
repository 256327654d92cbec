package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/joe-ervin05/tablestore/daos"
)

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// SuccessResponse is the envelope of a successful action.
type SuccessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ErrorResponse is the envelope of a failed action.
type ErrorResponse struct {
	Status string `json:"status"`
	APIError
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// RespErr writes a structured error response to the ResponseWriter.
func RespErr(w http.ResponseWriter, err error) {
	status, apiErr := BuildAPIError(err)
	respond(w, status, ErrorResponse{Status: StatusError, APIError: apiErr})
}

// BuildAPIError maps an error to an HTTP status code and structured APIError.
// Validation errors are 400, missing targets 404, duplicates 409, and
// backend or filesystem failures 500.
func BuildAPIError(err error) (int, APIError) {
	var maxErr *http.MaxBytesError

	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge, APIError{
			Code:    CodeRequestTooLarge,
			Message: err.Error(),
			Hint:    "Reduce the size of the request body or raise MAX_REQUEST_BODY.",
		}
	case errors.Is(err, ErrInvalidJSON):
		return http.StatusBadRequest, APIError{
			Code:    CodeInvalidJSON,
			Message: err.Error(),
			Hint:    `The body must be a JSON object: {"action": "...", "dbName": "...", "payload": {...}}.`,
		}
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, APIError{
			Code:    CodeInvalidRequest,
			Message: err.Error(),
		}
	case errors.Is(err, ErrUnknownAction):
		return http.StatusNotFound, APIError{
			Code:    CodeUnknownAction,
			Message: err.Error(),
			Hint:    "See the action list in the API documentation.",
		}
	}

	kind := daos.KindOf(err)
	apiErr := APIError{Code: kind, Message: err.Error()}

	switch kind {
	case daos.KindInvalidName:
		apiErr.Hint = "Database names may contain letters, digits, '_' and '-'. Table names must match ^[A-Za-z_][A-Za-z0-9_]*$."
		return http.StatusBadRequest, apiErr
	case daos.KindInvalidColumn:
		apiErr.Hint = "Each column needs a name and a type. Constraints may only contain letters, digits, '_' and spaces."
		return http.StatusBadRequest, apiErr
	case daos.KindInvalidOperator:
		apiErr.Hint = "Valid operators: =, !=, <>, <, >, <=, >=, LIKE, NOT LIKE, IN, NOT IN."
		return http.StatusBadRequest, apiErr
	case daos.KindInvalidValue:
		apiErr.Hint = "IN and NOT IN take a non-empty list. Every other operator takes a single value."
		return http.StatusBadRequest, apiErr
	case daos.KindEmptyInput:
		return http.StatusBadRequest, apiErr
	case daos.KindMissingWhere:
		apiErr.Hint = "Updates and deletes need at least one valid where condition."
		return http.StatusBadRequest, apiErr
	case daos.KindNotFound:
		return http.StatusNotFound, apiErr
	case daos.KindNotConnected:
		apiErr.Hint = "Pass the dbName of an existing database."
		return http.StatusNotFound, apiErr
	case daos.KindAlreadyExists:
		return http.StatusConflict, apiErr
	case daos.KindBackendError, daos.KindIOError:
		return http.StatusInternalServerError, apiErr
	}

	return http.StatusInternalServerError, APIError{
		Code:    daos.KindInternal,
		Message: "an unexpected error occurred: " + err.Error(),
	}
}
