package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		assert.True(t, IsValidID(id))
		assert.False(t, seen[id], "ids must not repeat")
		seen[id] = true
	}
}

func TestIsValidID(t *testing.T) {
	assert.True(t, IsValidID("507f1f77bcf86cd799439011"))
	assert.True(t, IsValidID("ABCDEF0123456789abcdef01"))

	assert.False(t, IsValidID(""))
	assert.False(t, IsValidID("507f1f77bcf86cd79943901"))   // 23 chars
	assert.False(t, IsValidID("507f1f77bcf86cd7994390111")) // 25 chars
	assert.False(t, IsValidID("507f1f77bcf86cd79943901g"))  // non-hex
	assert.False(t, IsValidID("stats"))
}
