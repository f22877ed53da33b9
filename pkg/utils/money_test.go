package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 3.33, Round2(100.0/30))
	assert.Equal(t, 0.3, Round2(0.1+0.2))
	assert.Equal(t, 150.0, Round2(1000*0.15))
	assert.Equal(t, 850.0, Round2(1000.0-150.0))
	assert.Equal(t, -3.33, Round2(-100.0/30))
	assert.Equal(t, 0.0, Round2(0))
}

func TestRound2StepWise(t *testing.T) {
	// The booking math rounds after every step. 1700/month over 7 days:
	// per-step rounding gives 56.67*7 = 396.69, while rounding once at
	// the end would give 396.67.
	daily := Round2(1700.0 / 30)
	assert.Equal(t, 56.67, daily)
	assert.Equal(t, 396.69, Round2(7*daily))
	assert.Equal(t, 396.67, Round2(7*1700.0/30))
}
