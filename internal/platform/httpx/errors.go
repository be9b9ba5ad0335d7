// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// Problem types reported in the RFC7807 "type" member.
const (
	TypeNotFound     = "not_found"
	TypeConflict     = "conflict"
	TypeInvalidInput = "invalid_input"
	TypeUnauthorized = "unauthorized"
	TypeForbidden    = "forbidden"
	TypeStorage      = "storage_error"
	TypeUnexpected   = "unexpected_error"
)

// Mapping lets feature packages register extra sentinel errors.
type Mapping struct {
	Err    error
	Status int
	Type   string
	Title  string
}

var domainMappings = []Mapping{
	{Err: shared.ErrNotFound, Status: http.StatusNotFound, Type: TypeNotFound, Title: "Not Found"},
	{Err: shared.ErrConflict, Status: http.StatusConflict, Type: TypeConflict, Title: "Conflict"},
	{Err: shared.ErrInvalidInput, Status: http.StatusBadRequest, Type: TypeInvalidInput, Title: "Invalid Input"},
	{Err: shared.ErrUnauthorized, Status: http.StatusUnauthorized, Type: TypeUnauthorized, Title: "Unauthorized"},
	{Err: shared.ErrInvalidCredentials, Status: http.StatusUnauthorized, Type: TypeUnauthorized, Title: "Unauthorized"},
	{Err: shared.ErrForbidden, Status: http.StatusForbidden, Type: TypeForbidden, Title: "Forbidden"},
}

// RespondError maps domain errors to HTTP responses using RFC7807.
// Extra mappings are consulted before the shared taxonomy.
func RespondError(w http.ResponseWriter, err error, extra ...Mapping) {
	for _, m := range append(extra, domainMappings...) {
		if errors.Is(err, m.Err) {
			Problem(w, m.Status, m.Type, m.Title, err.Error())
			return
		}
	}
	if errors.Is(err, shared.ErrStorage) {
		Problem(w, http.StatusInternalServerError, TypeStorage, "Storage Error", "")
		return
	}
	Problem(w, http.StatusInternalServerError, TypeUnexpected, "Internal Error", "")
}

// Fail logs server-side failures and writes the problem response.
func Fail(w http.ResponseWriter, logger *slog.Logger, msg string, err error, extra ...Mapping) {
	if logger != nil && !isClientError(err, extra) {
		logger.Error(msg, slog.Any("error", err))
	}
	RespondError(w, err, extra...)
}

func isClientError(err error, extra []Mapping) bool {
	for _, m := range append(extra, domainMappings...) {
		if errors.Is(err, m.Err) {
			return true
		}
	}
	return false
}
