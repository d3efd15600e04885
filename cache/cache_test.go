package cache

import (
	"context"
	"testing"

	"edutrack/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutAddressIsNoop(t *testing.T) {
	c, closeFn, err := New(context.Background(), "")
	require.NoError(t, err)
	require.NoError(t, closeFn())

	_, isNoop := c.(Noop)
	assert.True(t, isNoop)

	c.Set(context.Background(), &models.Training{Name: "Network Fundamentals"})
	_, ok := c.Get(context.Background(), 1)
	assert.False(t, ok)
}

func TestNewFailsOnUnreachableRedis(t *testing.T) {
	_, _, err := New(context.Background(), "127.0.0.1:1")
	assert.Error(t, err)
}
