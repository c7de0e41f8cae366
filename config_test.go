package redispoll

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:6379", config.Addr)
	assert.False(t, config.RESP3)
	assert.Zero(t, config.Timeout)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("REDISPOLL_ADDR", "cache.internal:6380")
	t.Setenv("REDISPOLL_PASSWORD", "hunter2")
	t.Setenv("REDISPOLL_TIMEOUT", "2s")
	t.Setenv("REDISPOLL_RESP3", "true")
	t.Setenv("REDISPOLL_MEMORY_LIMIT", "4096")

	config, err := LoadConfig(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "cache.internal:6380", config.Addr)
	assert.Equal(t, "hunter2", config.Password)
	assert.Equal(t, 2*time.Second, config.Timeout)
	assert.True(t, config.RESP3)
	assert.Equal(t, 4096, config.MemoryLimit)
}

func TestConfig_MemoryDefaults(t *testing.T) {
	memory := Config{}.memory()
	assert.Equal(t, DefaultMemoryParameters(), memory)

	custom := Config{BufferSize: 1024, MemoryLimit: 2048}.memory()
	assert.Equal(t, 1024, custom.BufferSize)
	assert.Equal(t, DefaultMemoryParameters().FrameCapacity, custom.FrameCapacity)
	assert.Equal(t, 2048, custom.MemoryLimit)
}

func TestConfig_Credentials(t *testing.T) {
	assert.Nil(t, Config{}.credentials())
	assert.Nil(t, Config{Username: "app"}.credentials())

	passwordOnly := Config{Password: "s"}.credentials()
	require.NotNil(t, passwordOnly)
	assert.Empty(t, passwordOnly.Username)

	acl := Config{Username: "app", Password: "s"}.credentials()
	require.NotNil(t, acl)
	assert.Equal(t, "app", acl.Username)
}
