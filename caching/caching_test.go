package caching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHit(t *testing.T) {
	c := NewCache()
	require.NoError(t, c.Init())
	defer c.Flush()

	for i := 1; i <= 3; i++ {
		n, err := c.Hit("login:10.0.0.1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
	n, err := c.Hit("login:10.0.0.2", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	c.Reset("login:10.0.0.1")
	n, err = c.Hit("login:10.0.0.1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestHitWindowExpires(t *testing.T) {
	c := NewCache()
	require.NoError(t, c.Init())
	defer c.Flush()

	_, err := c.Hit("k", 20*time.Millisecond)
	require.NoError(t, err)
	time.Sleep(40 * time.Millisecond)

	n, err := c.Hit("k", 20*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
