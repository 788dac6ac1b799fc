package store

import (
	"context"
	"encoding/hex"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/crudapp/internal/db"
)

func TestSigningSecretGeneratesAndPersists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, err := SigningSecret(ctx, database)
	require.NoError(t, err)
	raw, err := hex.DecodeString(first)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	second, err := SigningSecret(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSigningSecretSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	ctx := context.Background()

	open := func() string {
		database, err := db.Open(path)
		require.NoError(t, err)
		defer database.Close()
		require.NoError(t, db.Migrate(ctx, database))

		secret, err := SigningSecret(ctx, database)
		require.NoError(t, err)
		return secret
	}

	assert.Equal(t, open(), open())
}

func TestSigningSecretConcurrentFirstUse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	ctx := context.Background()

	database, err := db.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.Migrate(ctx, database))

	const n = 8
	secrets := make([]string, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			secrets[i], errs[i] = SigningSecret(ctx, database)
		}()
	}
	wg.Wait()

	for i := range n {
		require.NoError(t, errs[i])
		assert.Equal(t, secrets[0], secrets[i])
	}
}
