package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/zihgir1/BEVM/common"
)

var (
	// ErrBadRequest is returned when the provided HTTP request
	// is malformed.
	ErrBadRequest = errors.New("invalid request parameters")
	// ErrNotFound is returned when handling a request for an item that
	// does not exist.
	ErrNotFound = errors.New("item not found")
)

type ErrStorageError struct{ Err error }

func (e ErrStorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("storage error: %s", e.Err.Error())
	}
	// ErrStorageError shouldn't be constructed with a nil Err, but format it just in case.
	return "storage error: internal bug, incorrectly instantiated error object with nil"
}

func (e ErrStorageError) Unwrap() error {
	return e.Err
}

// HumanReadableError is the body of every error response.
type HumanReadableError struct {
	Msg string `json:"msg"`
}

func HttpCodeForError(err error) int {
	var storageErr ErrStorageError
	switch {
	case errors.Is(err, common.ErrUnknownProfile):
		return http.StatusNotFound
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.As(err, &storageErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// A simple error handler that renders any error as human-readable JSON to
// the HTTP response stream `w`.
func HumanReadableJsonErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("x-content-type-options", "nosniff")
	w.WriteHeader(HttpCodeForError(err))

	_ = json.NewEncoder(w).Encode(HumanReadableError{Msg: err.Error()})
}
