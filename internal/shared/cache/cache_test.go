package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSummaryCache_SetGetInvalidate(t *testing.T) {
	c := New(time.Minute, time.Minute)

	c.Set(1, 0, "accounts", 10)
	c.Set(1, 0, "budgets", 20)
	c.Set(2, 0, "accounts", 30)

	v, ok := Lookup[int](c, 1, "accounts")
	assert.True(t, ok)
	assert.Equal(t, 10, v)

	c.InvalidateUser(1)

	_, ok = c.Get(1, "accounts")
	assert.False(t, ok)
	_, ok = c.Get(1, "budgets")
	assert.False(t, ok)

	v, ok = Lookup[int](c, 2, "accounts")
	assert.True(t, ok, "other users must keep their entries")
	assert.Equal(t, 30, v)
}

func TestSummaryCache_PrefixIsExact(t *testing.T) {
	c := New(time.Minute, time.Minute)
	c.Set(1, 0, "x", 1)
	c.Set(11, 0, "x", 11)

	c.InvalidateUser(1)

	_, ok := c.Get(11, "x")
	assert.True(t, ok, "user 11 must not be invalidated by user 1")
}

func TestSummaryCache_TypeMismatchIsMiss(t *testing.T) {
	c := New(time.Minute, time.Minute)
	c.Set(1, 0, "x", "string")

	_, ok := Lookup[int](c, 1, "x")
	assert.False(t, ok)
}

func TestSummaryCache_NilIsNoop(t *testing.T) {
	var c *SummaryCache

	assert.False(t, c.Set(1, 0, "x", 1))
	c.InvalidateUser(1)
	assert.Zero(t, c.Version(1))
	_, ok := c.Get(1, "x")
	assert.False(t, ok)
}

func TestSummaryCache_StaleSetIsDropped(t *testing.T) {
	c := New(time.Minute, time.Minute)

	// A reader starts building the value, then a write invalidates the user
	// before the reader stores its result.
	version := c.Version(1)
	c.InvalidateUser(1)

	assert.False(t, c.Set(1, version, "dashboard", "stale"))
	_, ok := c.Get(1, "dashboard")
	assert.False(t, ok)

	assert.True(t, c.Set(1, c.Version(1), "dashboard", "fresh"))
	v, ok := Lookup[string](c, 1, "dashboard")
	assert.True(t, ok)
	assert.Equal(t, "fresh", v)
}

func TestSummaryCache_VersionIsPerUser(t *testing.T) {
	c := New(time.Minute, time.Minute)
	v2 := c.Version(2)

	c.InvalidateUser(1)

	assert.Equal(t, v2, c.Version(2))
	assert.True(t, c.Set(2, v2, "x", 1))
}
