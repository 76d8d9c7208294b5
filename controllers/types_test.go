package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(1, 10, 25)
	assert.Equal(t, 1, p.CurrentPage)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, int64(25), p.TotalItems)
	assert.True(t, p.HasNext)
	assert.False(t, p.HasPrev)

	p = NewPagination(3, 10, 25)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p = NewPagination(1, 10, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)

	// an exact multiple does not add a trailing empty page
	p = NewPagination(2, 10, 20)
	assert.Equal(t, 2, p.TotalPages)
	assert.False(t, p.HasNext)
}
