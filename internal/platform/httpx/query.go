package httpx

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// PageFromQuery reads page and limit query parameters.
func PageFromQuery(r *http.Request) (shared.PageRequest, error) {
	page, err := optionalInt(r, "page")
	if err != nil {
		return shared.PageRequest{}, err
	}
	limit, err := optionalInt(r, "limit")
	if err != nil {
		return shared.PageRequest{}, err
	}
	if limit > shared.MaxLimit {
		return shared.PageRequest{}, fmt.Errorf("%w: limit must be at most %d", shared.ErrInvalidInput, shared.MaxLimit)
	}
	return shared.PageRequest{Page: page, Limit: limit}.Normalize(), nil
}

// QueryString returns a trimmed query parameter or nil when absent.
func QueryString(r *http.Request, key string) *string {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil
	}
	return &raw
}

// QueryStatus parses an optional status filter.
func QueryStatus(r *http.Request) (*shared.Status, error) {
	raw := QueryString(r, "status")
	if raw == nil {
		return nil, nil
	}
	status, err := shared.ParseStatus(*raw)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// QueryInt64 parses an optional integer query parameter.
func QueryInt64(r *http.Request, key string) (*int64, error) {
	raw := QueryString(r, key)
	if raw == nil {
		return nil, nil
	}
	v, err := strconv.ParseInt(*raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", shared.ErrInvalidInput, key)
	}
	return &v, nil
}

// QueryBool parses an optional boolean query parameter.
func QueryBool(r *http.Request, key string) (bool, error) {
	raw := QueryString(r, key)
	if raw == nil {
		return false, nil
	}
	v, err := strconv.ParseBool(*raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", shared.ErrInvalidInput, key)
	}
	return v, nil
}

// PathInt64 parses an integer chi URL parameter.
func PathInt64(r *http.Request, key string) (int64, error) {
	raw := chi.URLParam(r, key)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", shared.ErrInvalidInput, key)
	}
	return v, nil
}

func optionalInt(r *http.Request, key string) (int, error) {
	raw := QueryString(r, key)
	if raw == nil {
		return 0, nil
	}
	v, err := strconv.Atoi(*raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", shared.ErrInvalidInput, key)
	}
	return v, nil
}
