package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateMatches(t *testing.T) {
	assert.True(t, RateMatches(30, 30))
	assert.True(t, RateMatches(30, 29.97))
	assert.True(t, RateMatches(24, 23.98))
	assert.True(t, RateMatches(60, 59.94))
	assert.True(t, RateMatches(25, 25.05))

	assert.False(t, RateMatches(30, 25))
	assert.False(t, RateMatches(23.98, 24.5)) // fuzzing only applies to nominal requests
	assert.False(t, RateMatches(24, 25))
}

func TestMatch(t *testing.T) {
	supported := []Mode{
		{1920, 1080, 29.97},
		{1920, 1080, 59.94},
		{1280, 720, 59.94},
	}

	m, ok := Match(supported, Mode{1920, 1080, 30})
	assert.True(t, ok)
	assert.Equal(t, 29.97, m.FrameRate)

	m, ok = Match(supported, Mode{1280, 720, 60})
	assert.True(t, ok)
	assert.Equal(t, Mode{1280, 720, 59.94}, m)

	_, ok = Match(supported, Mode{1280, 720, 30})
	assert.False(t, ok)

	_, ok = Match(supported, Mode{640, 480, 30})
	assert.False(t, ok)
}
