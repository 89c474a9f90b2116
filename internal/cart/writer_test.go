package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestAsyncWriter_PersistsInOrder(t *testing.T) {
	docs := repotest.NewDocStore()
	w := NewAsyncWriter(docs, zaptest.NewLogger(t), 16, time.Second)
	s := NewStore(7, nil, w)

	s.Add(product(1, 10), 1)
	s.SetQuantity(1, 4)
	s.Add(product(2, 3), 2)
	s.Remove(2)
	w.Close()

	raw, err := docs.Get(context.Background(), Collection, DocID(7, 1))
	require.NoError(t, err)

	var it model.CartItem
	require.NoError(t, json.Unmarshal(raw, &it))
	assert.Equal(t, int64(4), it.Quantity)
	assert.Equal(t, 1, docs.Len(Collection))
}

func TestAsyncWriter_FailureIsNotSurfaced(t *testing.T) {
	docs := repotest.NewDocStore()
	docs.Fail(errors.New("remote down"))
	w := NewAsyncWriter(docs, zaptest.NewLogger(t), 4, time.Second)
	s := NewStore(1, nil, w)

	item := s.Add(product(1, 10), 2)
	w.Close()

	//メモリ上は成功扱い
	assert.Equal(t, int64(2), item.Quantity)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 0, docs.Puts)
}

func TestAsyncWriter_ClearStopsOnFirstFailure(t *testing.T) {
	docs := repotest.NewDocStore()
	w := NewAsyncWriter(docs, zaptest.NewLogger(t), 16, time.Second)
	s := NewStore(1, nil, w)
	s.Add(product(1, 1), 1)
	s.Add(product(2, 1), 1)
	s.Add(product(3, 1), 1)

	docs.FailDeletesAfter(1)
	s.Clear()
	w.Close()

	//メモリは空、リモートは一部残る
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 2, docs.Len(Collection))
}

func TestAsyncWriter_WriteAfterCloseIsDropped(t *testing.T) {
	docs := repotest.NewDocStore()
	w := NewAsyncWriter(docs, zaptest.NewLogger(t), 1, 0)
	w.Close()

	w.PutItem(1, model.CartItem{Product: product(1, 1), Quantity: 1})
	w.Close()
	assert.Equal(t, 0, docs.Puts)
}

func TestManager_LoadsFromRemote(t *testing.T) {
	docs := repotest.NewDocStore()
	ctx := context.Background()
	for _, it := range []model.CartItem{
		{Product: product(2, 5), Quantity: 1},
		{Product: product(1, 10), Quantity: 2},
	} {
		b, _ := json.Marshal(it)
		require.NoError(t, docs.Put(ctx, Collection, DocID(3, it.Product.ID), b))
	}
	//他ユーザーの明細は読まない
	b, _ := json.Marshal(model.CartItem{Product: product(9, 1), Quantity: 1})
	require.NoError(t, docs.Put(ctx, Collection, DocID(33, 9), b))

	log := zaptest.NewLogger(t)
	w := NewAsyncWriter(docs, log, 4, time.Second)
	defer w.Close()
	m := NewManager(docs, w, log)

	s := m.Get(ctx, 3)
	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].Product.ID)
	assert.Equal(t, int64(3), s.TotalItems())
	assert.Same(t, s, m.Get(ctx, 3))
}

func TestManager_LoadFailureYieldsEmptyCart(t *testing.T) {
	docs := repotest.NewDocStore()
	docs.Fail(errors.New("remote down"))
	log := zaptest.NewLogger(t)
	m := NewManager(docs, &recordWriter{}, log)

	s := m.Get(context.Background(), 1)
	assert.Equal(t, 0, s.Len())

	m.Forget(1)
	assert.NotSame(t, s, m.Get(context.Background(), 1))
}

func TestAsyncWriter_ConcurrentAddsKeepLastQuantity(t *testing.T) {
	const workers = 50

	for round := 0; round < 20; round++ {
		docs := repotest.NewDocStore()
		w := NewAsyncWriter(docs, zaptest.NewLogger(t), 8, time.Second)
		s := NewStore(7, nil, w)

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.Add(product(1, 10), 1)
			}()
		}
		wg.Wait()
		w.Close()

		raw, err := docs.Get(context.Background(), Collection, DocID(7, 1))
		require.NoError(t, err)
		var it model.CartItem
		require.NoError(t, json.Unmarshal(raw, &it))

		mem, _ := s.Get(1)
		require.Equal(t, int64(workers), mem.Quantity)
		require.Equal(t, mem.Quantity, it.Quantity, "round %d", round)
	}
}
