// ABOUTME: Rank parsing and comparison for default working-set ordering
// ABOUTME: Handles numeric ranks and two-part alphanumeric ranks like "2B"
package models

import (
	"strconv"
	"strings"
)

// parsedRank is the decomposed form of a rank: a primary numeric group and a
// secondary letter position (A=1, B=2, ...). Letter 0 means no letter part.
type parsedRank struct {
	group  int
	letter int
}

// parseRank decomposes "12" or "2B" style ranks. ok is false for anything
// else (empty, non-numeric prefix, multi-letter suffix).
func parseRank(s string) (parsedRank, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return parsedRank{}, false
	}

	digits := 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return parsedRank{}, false
	}

	group, err := strconv.Atoi(s[:digits])
	if err != nil {
		return parsedRank{}, false
	}

	rest := strings.ToUpper(s[digits:])
	switch {
	case rest == "":
		return parsedRank{group: group}, true
	case len(rest) == 1 && rest[0] >= 'A' && rest[0] <= 'Z':
		return parsedRank{group: group, letter: int(rest[0]-'A') + 1}, true
	}
	return parsedRank{}, false
}

// CompareRanks orders two rank strings: numeric group first, then letter
// position, so "1A" < "1B" < "2A". Unparsable ranks sort after parsable
// ones, among themselves by raw string. Empty ranks sort last.
func CompareRanks(a, b string) int {
	pa, okA := parseRank(a)
	pb, okB := parseRank(b)

	switch {
	case okA && okB:
		if pa.group != pb.group {
			return pa.group - pb.group
		}
		return pa.letter - pb.letter
	case okA:
		return -1
	case okB:
		return 1
	}

	// Neither parses: empties last, otherwise lexical.
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}
	return strings.Compare(a, b)
}

func formatRankNumber(n float64) string {
	if n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
