package models

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
)

var idPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// NewID returns a 24 hex character identifier, the format every
// primary key in the API uses.
func NewID() string {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// IsValidID reports whether s looks like a well-formed identifier.
// Handlers check this before hitting the database.
func IsValidID(s string) bool {
	return idPattern.MatchString(s)
}
