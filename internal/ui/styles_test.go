package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatScore(t *testing.T) {
	assert.Contains(t, FormatScore(0.4567, "semantic"), "45.7% match")
	assert.Contains(t, FormatScore(0.4567, "relaxed"), "45.7% match")
	assert.Contains(t, FormatScore(0.6, "keyword"), "keyword 0.6")
}

func TestFormatTier(t *testing.T) {
	assert.Contains(t, FormatTier("semantic"), "[semantic]")
	assert.Contains(t, FormatTier("keyword"), "[keyword]")
}
