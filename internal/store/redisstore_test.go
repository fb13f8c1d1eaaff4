package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/config"
)

func newRedisTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	st := NewRedisStore(config.StorageConfig{
		RedisAddr:      mr.Addr(),
		RedisKeyPrefix: "test",
	}, zap.NewNop())
	t.Cleanup(st.Close)
	return st, mr
}

func TestRedisStoreLoadMissingCollection(t *testing.T) {
	st, _ := newRedisTestStore(t)

	snap, err := st.Load(context.Background(), CollectionTickets)
	require.NoError(t, err)
	assert.Nil(t, snap.Data)
	assert.Equal(t, int64(0), snap.Version)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	st, _ := newRedisTestStore(t)
	ctx := context.Background()

	doc := []byte(`{"tickets":[],"counter":3}`)
	require.NoError(t, st.Save(ctx, CollectionTickets, doc, 0))

	snap, err := st.Load(ctx, CollectionTickets)
	require.NoError(t, err)
	assert.Equal(t, doc, snap.Data)
	assert.Equal(t, int64(1), snap.Version)

	doc2 := []byte(`{"tickets":[],"counter":4}`)
	require.NoError(t, st.Save(ctx, CollectionTickets, doc2, 1))

	snap, err = st.Load(ctx, CollectionTickets)
	require.NoError(t, err)
	assert.Equal(t, doc2, snap.Data)
	assert.Equal(t, int64(2), snap.Version)
}

func TestRedisStoreVersionConflict(t *testing.T) {
	st, _ := newRedisTestStore(t)
	ctx := context.Background()

	// Stale token against an empty collection.
	err := st.Save(ctx, CollectionRatings, []byte(`{}`), 3)
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, st.Save(ctx, CollectionRatings, []byte(`{"ratings":[]}`), 0))

	err = st.Save(ctx, CollectionRatings, []byte(`{"ratings":[{}]}`), 0)
	assert.ErrorIs(t, err, ErrConflict)

	snap, err := st.Load(ctx, CollectionRatings)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"ratings":[]}`), snap.Data)
	assert.Equal(t, int64(1), snap.Version)
}

func TestRedisStoreSaveRefusesOverwriteAfterConcurrentWrite(t *testing.T) {
	st, _ := newRedisTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, CollectionTickets, []byte(`{"counter":1}`), 0))
	snap, err := st.Load(ctx, CollectionTickets)
	require.NoError(t, err)

	// Another writer commits between this writer's load and save.
	require.NoError(t, st.Save(ctx, CollectionTickets, []byte(`{"counter":2}`), snap.Version))

	err = st.Save(ctx, CollectionTickets, []byte(`{"counter":99}`), snap.Version)
	assert.ErrorIs(t, err, ErrConflict)

	current, err := st.Load(ctx, CollectionTickets)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"counter":2}`), current.Data)
}

func TestRedisStoreLoadRejectsCorruptVersion(t *testing.T) {
	st, mr := newRedisTestStore(t)

	require.NoError(t, mr.Set("test:"+CollectionTickets, `{}`))
	require.NoError(t, mr.Set("test:"+CollectionTickets+":version", "not-a-number"))

	_, err := st.Load(context.Background(), CollectionTickets)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRedisStorePing(t *testing.T) {
	st, mr := newRedisTestStore(t)

	assert.NoError(t, st.Ping(context.Background()))

	mr.Close()
	assert.ErrorIs(t, st.Ping(context.Background()), ErrUnavailable)
}
