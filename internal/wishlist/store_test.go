package wishlist

import (
	"context"
	"errors"
	"sync"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/infra/localstore"
	"storefront/internal/repository/repotest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newManager(t *testing.T) (*Manager, *repotest.DocStore, *localstore.LevelDBStore) {
	t.Helper()
	docs := repotest.NewDocStore()
	local, err := localstore.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = local.Close() })
	return NewManager(NewTieredBackend(docs, local, zaptest.NewLogger(t))), docs, local
}

func snap(id int64) model.ProductSnapshot {
	return model.ProductSnapshot{ID: id, Name: "x", Price: decimal.NewFromInt(1)}
}

func TestWishlist_AddTwiceKeepsOne(t *testing.T) {
	m, docs, _ := newManager(t)
	ctx := context.Background()
	s := m.Get(ctx, 1)

	assert.True(t, s.Add(ctx, snap(10)))
	assert.False(t, s.Add(ctx, snap(10)))

	assert.Len(t, s.Items(), 1)
	assert.Equal(t, 1, docs.Len(Collection))
	assert.Equal(t, TierRemote, s.Source())
}

func TestWishlist_RemoveAndContains(t *testing.T) {
	m, docs, _ := newManager(t)
	ctx := context.Background()
	s := m.Get(ctx, 1)
	s.Add(ctx, snap(10))
	s.Add(ctx, snap(11))

	assert.True(t, s.Remove(ctx, 10))
	assert.False(t, s.Remove(ctx, 10))
	assert.False(t, s.Contains(10))
	assert.True(t, s.Contains(11))
	assert.Equal(t, 1, docs.Len(Collection))
}

func TestWishlist_FallsBackToLocalOnWriteFailure(t *testing.T) {
	m, docs, local := newManager(t)
	ctx := context.Background()
	s := m.Get(ctx, 5)

	docs.Fail(errors.New("remote down"))
	s.Add(ctx, snap(1))
	s.Add(ctx, snap(2))

	assert.Equal(t, TierLocal, s.Source())
	var saved []model.WishlistItem
	found, err := localstore.GetJSON(local, LocalKey(5), &saved)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, saved, 2)
}

func TestWishlist_LoadFallsBackToLocal(t *testing.T) {
	docs := repotest.NewDocStore()
	local, err := localstore.OpenMemory()
	require.NoError(t, err)
	defer local.Close()
	require.NoError(t, localstore.PutJSON(local, LocalKey(3), []model.WishlistItem{{Product: snap(7)}}))

	docs.Fail(errors.New("remote down"))
	m := NewManager(NewTieredBackend(docs, local, zaptest.NewLogger(t)))
	s := m.Get(context.Background(), 3)

	assert.Equal(t, TierLocal, s.Source())
	assert.True(t, s.Contains(7))
}

func TestWishlist_RemoteRecoveryDoesNotMergeLocal(t *testing.T) {
	docs := repotest.NewDocStore()
	local, err := localstore.OpenMemory()
	require.NoError(t, err)
	defer local.Close()
	require.NoError(t, localstore.PutJSON(local, LocalKey(3), []model.WishlistItem{{Product: snap(7)}}))

	m := NewManager(NewTieredBackend(docs, local, zaptest.NewLogger(t)))
	s := m.Get(context.Background(), 3)

	assert.Equal(t, TierRemote, s.Source())
	assert.Empty(t, s.Items())
	assert.Equal(t, 0, docs.Len(Collection))
}

func TestWishlist_ConcurrentAddRemoveMatchesRemote(t *testing.T) {
	ctx := context.Background()

	for round := 0; round < 50; round++ {
		m, docs, _ := newManager(t)
		s := m.Get(ctx, 1)
		s.Add(ctx, snap(10))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Remove(ctx, 10)
		}()
		go func() {
			defer wg.Done()
			s.Add(ctx, snap(10))
		}()
		wg.Wait()

		_, err := docs.Get(ctx, Collection, DocID(1, 10))
		assert.Equal(t, s.Contains(10), err == nil, "round %d", round)
	}
}
