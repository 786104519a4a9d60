package service

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageService(t *testing.T) {
	fsys := fstest.MapFS{
		"pages/about.md":       {Data: []byte("---\ntitle: About PlateShare\nsummary: Less waste.\n---\n\nHello **neighbours**.\n")},
		"pages/food-safety.md": {Data: []byte("Keep it cool.\n")},
		"secret.md":            {Data: []byte("nope")},
	}
	s := NewPageService(fsys, false)

	page, err := s.Page("about")
	require.NoError(t, err)
	assert.Equal(t, "About PlateShare", page.Title)
	assert.Equal(t, "Less waste.", page.Summary)
	assert.Contains(t, string(page.Content), "<strong>neighbours</strong>")

	page, err = s.Page("food-safety")
	require.NoError(t, err)
	assert.Equal(t, "Food Safety", page.Title)

	_, err = s.Page("missing")
	assert.ErrorIs(t, err, ErrPageNotFound)

	_, err = s.Page("../secret")
	assert.ErrorIs(t, err, ErrPageNotFound)
}
