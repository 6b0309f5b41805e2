package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/conduit-identity/config"
	"github.com/oksasatya/conduit-identity/pkg/helpers"
)

func TestBuildMemory(t *testing.T) {
	cfg := &config.Config{StorageDriver: config.StorageMemory, JWTSecret: "s", PasswordHasher: "sha256"}
	c, err := Build(context.Background(), cfg, helpers.NewDiscardLogger())
	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.Tokens)
	assert.NotNil(t, c.UserService)
	assert.Empty(t, c.UserService.Sinks)
}

func TestBuildRejectsUnknownSettings(t *testing.T) {
	_, err := Build(context.Background(), &config.Config{StorageDriver: "mongo"}, helpers.NewDiscardLogger())
	assert.Error(t, err)

	_, err = Build(context.Background(), &config.Config{StorageDriver: config.StorageMemory, PasswordHasher: "md5"}, helpers.NewDiscardLogger())
	assert.Error(t, err)
}

func TestIndexInlineOnlyWithoutQueue(t *testing.T) {
	withES := &config.Config{ElasticsearchAddrs: "http://localhost:9200"}
	assert.True(t, indexInline(withES, false))
	assert.False(t, indexInline(withES, true), "events worker owns the projection when events are queued")
	assert.False(t, indexInline(&config.Config{}, false))
}
