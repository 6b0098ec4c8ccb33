package oddsapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLCache_SetGet(t *testing.T) {
	c := newTTLCache[int](time.Minute)

	_, ok := c.get("k")
	assert.False(t, ok)

	c.set("k", 42)
	v, ok := c.get("k")
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestTTLCache_Expiry(t *testing.T) {
	c := newTTLCache[string](10 * time.Millisecond)
	c.set("k", "value")

	v, ok := c.get("k")
	assert.True(t, ok)
	assert.Equal(t, "value", v)

	time.Sleep(25 * time.Millisecond)

	_, ok = c.get("k")
	assert.False(t, ok)
}

func TestTTLCache_Clear(t *testing.T) {
	c := newTTLCache[[]string](time.Minute)
	c.set("a", []string{"x"})
	c.set("b", []string{"y"})

	c.clear()

	_, ok := c.get("a")
	assert.False(t, ok)
	_, ok = c.get("b")
	assert.False(t, ok)
}
