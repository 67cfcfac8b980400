// ABOUTME: Error taxonomy for record fetching
// ABOUTME: Distinguishes not-found, external-id rejection, and transient failures
package fetch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound means the backend reports no such record. Legitimate: the
// record may have moved workspaces or been deleted.
var ErrNotFound = errors.New("record not found")

// ErrExternalID means the id matches the pattern of identifiers sourced from
// an external, non-authoritative system and must not drive primary
// navigation.
var ErrExternalID = errors.New("external identifier rejected")

// TransientError wraps a network error or non-2xx response eligible for a
// bounded retry. Status is 0 for transport-level failures.
type TransientError struct {
	Status int
	Body   string
	Err    error
}

func (e *TransientError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transient fetch failure: status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("transient fetch failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsExternalID reports whether id matches a known external-source pattern:
// an "ext-" or "cs-" prefix, or a 20+ character all-digit string (enrichment
// vendor ids).
func IsExternalID(id string) bool {
	if strings.HasPrefix(id, "ext-") || strings.HasPrefix(id, "cs-") {
		return true
	}
	if len(id) >= 20 {
		for i := 0; i < len(id); i++ {
			if id[i] < '0' || id[i] > '9' {
				return false
			}
		}
		return true
	}
	return false
}
