package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoryValidate(t *testing.T) {
	ok := &Story{Title: "How I reported a hazard", Content: "It got fixed in a week."}
	assert.Empty(t, ok.Validate())

	empty := &Story{}
	errs := empty.Validate()
	assert.Contains(t, errs, "Title is required")
	assert.Contains(t, errs, "Content is required")

	long := &Story{
		Title:   strings.Repeat("t", 101),
		Content: strings.Repeat("c", 5001),
	}
	errs = long.Validate()
	assert.Contains(t, errs, "Title cannot exceed 100 characters")
	assert.Contains(t, errs, "Content cannot exceed 5000 characters")

	// limits count characters, not bytes
	multibyte := &Story{Title: strings.Repeat("ü", 100), Content: strings.Repeat("こ", 5000)}
	assert.Empty(t, multibyte.Validate())
}
