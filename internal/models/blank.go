package models

import "strings"

// blankValues are the strings a knowledge source uses for "I don't know".
var blankValues = map[string]struct{}{
	"":        {},
	"unknown": {},
	"none":    {},
	"null":    {},
	"nil":     {},
	"n/a":     {},
}

// IsBlankString reports whether s carries no information.
func IsBlankString(s string) bool {
	_, ok := blankValues[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// IsBlankOptional reports whether an optional string is absent or blank.
func IsBlankOptional(s *string) bool {
	return s == nil || IsBlankString(*s)
}

// IsBlankList reports whether a list is absent or empty. A list holding
// placeholder entries is still an answer.
func IsBlankList[T any](list []T) bool {
	return len(list) == 0
}

// MissingValue is written to table cells that have no value, such as the
// protagonist columns of a book with fewer protagonists than the table holds.
const MissingValue = "N/A"
