// ABOUTME: URL slug encoding and decoding for record routes
// ABOUTME: Maps "<display-name>-<id>" path segments to the trailing record id
package slug

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSlug is returned when a slug carries no usable record id.
var ErrInvalidSlug = errors.New("invalid slug")

// Decode extracts the trailing opaque id from a slug of the form
// "<display-name>-<id>". Display names may themselves contain hyphens, so
// only the last segment is taken. Fails when the extracted token is empty or
// the literals "undefined"/"null", both of which mean a slug was built before
// the record id was known, and must surface rather than trigger a bogus fetch.
func Decode(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty slug", ErrInvalidSlug)
	}

	id := s
	if i := strings.LastIndex(s, "-"); i >= 0 {
		id = s[i+1:]
	}

	if id == "" || id == "undefined" || id == "null" {
		return "", fmt.Errorf("%w: %q", ErrInvalidSlug, s)
	}
	return id, nil
}

// Build produces the canonical slug for a record: the URL-safe display name
// followed by the id. The name fragment is lower-cased with runs of
// non-alphanumerics collapsed to single hyphens.
func Build(displayName, id string) string {
	name := sanitize(displayName)
	if name == "" {
		return id
	}
	return name + "-" + id
}

func sanitize(s string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
