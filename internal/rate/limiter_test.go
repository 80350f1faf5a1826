package rate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestAllowWithinWindow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	l := NewMemory().WithClock(clock.now)
	rule := PerMinute(2)

	ok, _ := l.Allow("like:1.2.3.4", rule)
	assert.True(t, ok)
	ok, _ = l.Allow("like:1.2.3.4", rule)
	assert.True(t, ok)

	ok, retry := l.Allow("like:1.2.3.4", rule)
	assert.False(t, ok)
	assert.Equal(t, time.Minute, retry)

	ok, _ = l.Allow("like:5.6.7.8", rule)
	assert.True(t, ok, "keys are independent")

	clock.advance(30 * time.Second)
	_, retry = l.Allow("like:1.2.3.4", rule)
	assert.Equal(t, 30*time.Second, retry)

	clock.advance(30 * time.Second)
	ok, _ = l.Allow("like:1.2.3.4", rule)
	assert.True(t, ok, "window reset")
}

func TestZeroLimitDisables(t *testing.T) {
	l := NewMemory()
	for i := 0; i < 100; i++ {
		ok, _ := l.Allow("post:ip", Rule{})
		assert.True(t, ok)
	}
}

func TestSweepDropsExpiredWindows(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	l := NewMemory().WithClock(clock.now)

	l.Allow("a", PerMinute(1))
	l.Allow("b", PerMinute(1))
	assert.Equal(t, 2, l.size())

	clock.advance(2 * time.Minute)
	l.Allow("c", PerMinute(1))
	assert.Equal(t, 1, l.size())
}
