package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPLimiterAllowsBurstPerIP(t *testing.T) {
	l := newIPLimiter(2)

	assert.True(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.2"), "buckets are per ip")
}

func TestIPLimiterEvictsIdleEntries(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newIPLimiter(5)
	l.now = func() time.Time { return now }

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		l.allow(ip)
	}
	assert.Equal(t, 3, l.size())

	now = now.Add(limiterIdleTTL / 2)
	l.allow("10.0.0.3")

	now = now.Add(limiterIdleTTL / 2)
	l.allow("10.0.0.4")
	assert.Equal(t, 2, l.size(), "only recently seen ips survive a sweep")

	l.mu.Lock()
	_, kept := l.entries["10.0.0.3"]
	l.mu.Unlock()
	assert.True(t, kept)
}
