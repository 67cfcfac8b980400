// ABOUTME: Tests for slug decoding and canonical slug construction
// ABOUTME: Covers hyphenated names, invalid trailing tokens, and round trips
package slug

import (
	"errors"
	"testing"
)

func TestDecodeTakesTrailingSegment(t *testing.T) {
	tests := []struct {
		slug string
		want string
	}{
		{"john-doe-abc123", "abc123"},
		{"acme-north-america-inc-rec42", "rec42"},
		{"plain", "plain"}, // no hyphen at all: the whole token is the id
		{"x-1", "1"},
	}

	for _, tt := range tests {
		got, err := Decode(tt.slug)
		if err != nil {
			t.Errorf("Decode(%q) error: %v", tt.slug, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Decode(%q) = %q, want %q", tt.slug, got, tt.want)
		}
	}
}

func TestDecodeRejectsInvalidIDs(t *testing.T) {
	for _, s := range []string{"", "   ", "john-doe-undefined", "acme-null", "trailing-"} {
		if _, err := Decode(s); !errors.Is(err, ErrInvalidSlug) {
			t.Errorf("Decode(%q): expected ErrInvalidSlug, got %v", s, err)
		}
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{"John Doe", "abc123", "john-doe-abc123"},
		{"Acme, Inc. (North America)", "rec42", "acme-inc-north-america-rec42"},
		{"", "rec42", "rec42"},
		{"---", "rec42", "rec42"},
	}

	for _, tt := range tests {
		if got := Build(tt.name, tt.id); got != tt.want {
			t.Errorf("Build(%q, %q) = %q, want %q", tt.name, tt.id, got, tt.want)
		}
	}
}

func TestBuildDecodeRoundTrip(t *testing.T) {
	slug := Build("Grace Hopper-Jones", "p_991")
	id, err := Decode(slug)
	if err != nil {
		t.Fatalf("Decode(%q) error: %v", slug, err)
	}
	if id != "p_991" {
		t.Errorf("round trip id = %q, want p_991", id)
	}
}
