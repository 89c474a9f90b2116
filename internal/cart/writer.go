package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"

	"go.uber.org/zap"
)

// リモートのコレクション名
const Collection = "carts"

// DocID はユーザー×商品のドキュメントID
func DocID(userID int64, productID int64) string {
	return fmt.Sprintf("%d_%d", userID, productID)
}

func docPrefix(userID int64) string {
	return fmt.Sprintf("%d_", userID)
}

type jobKind int

const (
	jobPut jobKind = iota
	jobDelete
	jobDeleteMany
)

type job struct {
	kind       jobKind
	userID     int64
	item       model.CartItem
	productIDs []int64
}

// AsyncWriter は書き込みを1本のキューで順番に流す。
// 失敗はログに出すだけで、呼び出し元には返さない・再試行もしない。
type AsyncWriter struct {
	docs    repository.DocumentStore
	log     *zap.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	jobs   chan job
	done   chan struct{}
}

func NewAsyncWriter(docs repository.DocumentStore, log *zap.Logger, buffer int, timeout time.Duration) *AsyncWriter {
	if buffer < 1 {
		buffer = 1
	}
	w := &AsyncWriter{
		docs:    docs,
		log:     log,
		timeout: timeout,
		jobs:    make(chan job, buffer),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *AsyncWriter) PutItem(userID int64, item model.CartItem) {
	w.enqueue(job{kind: jobPut, userID: userID, item: item})
}

func (w *AsyncWriter) DeleteItem(userID int64, productID int64) {
	w.enqueue(job{kind: jobDelete, userID: userID, productIDs: []int64{productID}})
}

func (w *AsyncWriter) DeleteItems(userID int64, productIDs []int64) {
	ids := make([]int64, len(productIDs))
	copy(ids, productIDs)
	w.enqueue(job{kind: jobDeleteMany, userID: userID, productIDs: ids})
}

// Close はキューに残った書き込みを流し切ってから止める。
func (w *AsyncWriter) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	close(w.jobs)
	w.mu.Unlock()

	<-w.done
}

func (w *AsyncWriter) enqueue(j job) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		w.log.Warn("cart write dropped: writer closed", zap.Int64("user_id", j.userID))
		return
	}
	w.jobs <- j
}

func (w *AsyncWriter) run() {
	defer close(w.done)
	for j := range w.jobs {
		w.handle(j)
	}
}

func (w *AsyncWriter) handle(j job) {
	ctx, cancel := w.ctx()
	defer cancel()

	switch j.kind {
	case jobPut:
		data, err := json.Marshal(j.item)
		if err != nil {
			w.log.Error("cart item marshal failed", zap.Error(err))
			return
		}
		if err := w.docs.Put(ctx, Collection, DocID(j.userID, j.item.Product.ID), data); err != nil {
			w.log.Error("cart item persist failed",
				zap.Int64("user_id", j.userID),
				zap.Int64("product_id", j.item.Product.ID),
				zap.Error(err))
		}

	case jobDelete:
		w.deleteOne(ctx, j.userID, j.productIDs[0])

	case jobDeleteMany:
		//1件ずつ順番に削除。途中で失敗したら残りはリモートに残る
		for i, id := range j.productIDs {
			if !w.deleteOne(ctx, j.userID, id) {
				w.log.Warn("cart clear stopped",
					zap.Int64("user_id", j.userID),
					zap.Int("remaining", len(j.productIDs)-i))
				return
			}
		}
	}
}

func (w *AsyncWriter) deleteOne(ctx context.Context, userID int64, productID int64) bool {
	err := w.docs.Delete(ctx, Collection, DocID(userID, productID))
	if err != nil && err != repository.ErrNotFound {
		w.log.Error("cart item delete failed",
			zap.Int64("user_id", userID),
			zap.Int64("product_id", productID),
			zap.Error(err))
		return false
	}
	return true
}

func (w *AsyncWriter) ctx() (context.Context, context.CancelFunc) {
	if w.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), w.timeout)
}
