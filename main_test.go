package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/harperreed/dealdesk/config"
	"github.com/harperreed/dealdesk/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func badgerConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Backend = config.BackendBadger
	cfg.KVDir = filepath.Join(t.TempDir(), "kv")
	return cfg
}

func TestRunClosesBackendOnFailure(t *testing.T) {
	cfg := badgerConfig(t)

	err := run(context.Background(), cfg, zap.NewNop(), "contacts", []string{"get", "999"})
	require.Error(t, err)

	// Badger holds a directory lock until the store is closed.
	store, err := kv.Open(cfg.KVDir)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func TestRunClosesBackendOnSuccess(t *testing.T) {
	cfg := badgerConfig(t)

	require.NoError(t, run(context.Background(), cfg, zap.NewNop(), "companies", []string{"add", "--name", "Acme"}))
	require.NoError(t, run(context.Background(), cfg, zap.NewNop(), "companies", []string{"list"}))

	store, err := kv.Open(cfg.KVDir)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func TestRunRoutingMistakesAreUsageErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = config.BackendMemory

	for _, tc := range []struct {
		command string
		args    []string
	}{
		{"nope", nil},
		{"contacts", nil},
		{"contacts", []string{"frobnicate"}},
		{"graph", []string{"org"}},
	} {
		err := run(context.Background(), cfg, zap.NewNop(), tc.command, tc.args)
		var usage usageError
		assert.True(t, errors.As(err, &usage), "%s %v: %v", tc.command, tc.args, err)
	}
}
