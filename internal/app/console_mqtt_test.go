package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrintLimiterThrottlesPerTopic(t *testing.T) {
	l := newPrintLimiter(500 * time.Millisecond)
	base := time.Unix(0, 0)

	assert.True(t, l.allow("pose", base))
	assert.False(t, l.allow("pose", base.Add(100*time.Millisecond)))
	assert.False(t, l.allow("pose", base.Add(499*time.Millisecond)))
	assert.True(t, l.allow("pose", base.Add(500*time.Millisecond)))

	// Topics are limited independently.
	assert.True(t, l.allow("pose/predicted", base.Add(100*time.Millisecond)))
}

func TestPrintLimiterZeroIntervalPassesEverything(t *testing.T) {
	l := newPrintLimiter(0)
	now := time.Unix(0, 0)
	for i := 0; i < 5; i++ {
		assert.True(t, l.allow("pose", now))
	}
}
