package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edumaster/core"
	"github.com/trezcool/edumaster/storage"
	inmemstore "github.com/trezcool/edumaster/storage/inmem"
	redisstore "github.com/trezcool/edumaster/storage/redis"
	sqlitestore "github.com/trezcool/edumaster/storage/sqlite"
)

func testStorageContract(t *testing.T, store core.Storage) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "cart")
	assert.Equal(t, core.ErrKeyNotFound, err)

	require.NoError(t, store.Set(ctx, "cart", `[{"id":"L1"}]`))
	got, err := store.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"L1"}]`, got)

	// overwritten wholesale
	require.NoError(t, store.Set(ctx, "cart", `[]`))
	got, err = store.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, `[]`, got)

	// keys are independent
	require.NoError(t, store.Set(ctx, "token", "abc"))
	require.NoError(t, store.Delete(ctx, "token"))
	_, err = store.Get(ctx, "token")
	assert.Equal(t, core.ErrKeyNotFound, err)
	got, err = store.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, `[]`, got)

	// deleting a missing key is a no-op
	assert.NoError(t, store.Delete(ctx, "missing"))
}

func TestInmemStore(t *testing.T) {
	testStorageContract(t, inmemstore.New())
}

func TestSqliteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.db")
	store, err := sqlitestore.Open(path)
	require.NoError(t, err)
	testStorageContract(t, store)
	require.NoError(t, store.Close())

	// values survive a reopen
	store, err = sqlitestore.Open(path)
	require.NoError(t, err)
	defer store.Close()
	got, err := store.Get(context.Background(), "cart")
	require.NoError(t, err)
	assert.Equal(t, `[]`, got)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("EDUMASTER_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("EDUMASTER_TEST_REDIS_ADDR not set")
	}
	store, err := redisstore.Open(context.Background(), redisstore.Options{Addr: addr, Prefix: "edumaster-test:"})
	require.NoError(t, err)
	defer store.Close()
	for _, key := range []string{"cart", "token"} { // left over by a previous run
		require.NoError(t, store.Delete(context.Background(), key))
	}
	testStorageContract(t, store)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	conf := &core.Config{}

	conf.Storage.Driver = "memory"
	store, err := storage.Open(ctx, conf)
	require.NoError(t, err)
	assert.IsType(t, &inmemstore.Store{}, store)

	conf.Storage.Driver = "sqlite"
	conf.Storage.Path = filepath.Join(t.TempDir(), "storage.db")
	store, err = storage.Open(ctx, conf)
	require.NoError(t, err)
	assert.IsType(t, &sqlitestore.Store{}, store)
	require.NoError(t, store.Close())

	conf.Storage.Driver = "floppy"
	_, err = storage.Open(ctx, conf)
	assert.EqualError(t, err, `unknown storage driver "floppy"`)
}
