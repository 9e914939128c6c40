package graph

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNotFound covers resources the service cannot see. Whether that is a
	// true miss or an eventual-consistency lag is for the caller to decide.
	ErrNotFound = errors.New("not found")

	// ErrNotAvailable covers throttling, 5xx responses and network failures;
	// a retry is expected to succeed.
	ErrNotAvailable = errors.New("service not available")

	ErrPermissionDenied = errors.New("permission denied")

	// ErrConflict is returned when a resource with the same name already
	// exists. Find-or-create callers treat it as prior completion.
	ErrConflict = errors.New("already exists")

	// ErrAmbiguous is returned when a name lookup matches more than one
	// resource. Collisions are never resolved automatically.
	ErrAmbiguous = errors.New("ambiguous name match")
)

// statusError maps a Graph HTTP status to the error taxonomy.
func statusError(op string, status int, body string) error {
	var kind error
	switch {
	case status == http.StatusNotFound:
		kind = ErrNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = ErrPermissionDenied
	case status == http.StatusConflict:
		kind = ErrConflict
	case status == http.StatusBadRequest && strings.Contains(body, "already exist"):
		// Graph reports a duplicate owner reference as a 400.
		kind = ErrConflict
	default:
		kind = ErrNotAvailable
	}
	return fmt.Errorf("%s: status %d: %s: %w", op, status, body, kind)
}

func IsNotFound(err error) bool         { return errors.Is(err, ErrNotFound) }
func IsNotAvailable(err error) bool     { return errors.Is(err, ErrNotAvailable) }
func IsPermissionDenied(err error) bool { return errors.Is(err, ErrPermissionDenied) }
func IsConflict(err error) bool         { return errors.Is(err, ErrConflict) }
func IsAmbiguous(err error) bool        { return errors.Is(err, ErrAmbiguous) }
