package wishlist

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"storefront/internal/domain/model"
	"storefront/internal/infra/localstore"
	"storefront/internal/repository"

	"go.uber.org/zap"
)

const Collection = "wishlists"

type Tier string

const (
	TierRemote Tier = "remote"
	TierLocal  Tier = "local"
)

func DocID(userID int64, productID int64) string {
	return fmt.Sprintf("%d_%d", userID, productID)
}

// LocalKey はローカルに丸ごと保存するキー
func LocalKey(userID int64) string {
	return fmt.Sprintf("wishlist:%d", userID)
}

// TieredBackend はリモートに読み書きし、失敗したらローカルへ切り替える。
// ローカルの内容をリモートへ戻すことはしない。
type TieredBackend struct {
	remote repository.DocumentStore
	local  repository.LocalStore
	log    *zap.Logger
}

func NewTieredBackend(remote repository.DocumentStore, local repository.LocalStore, log *zap.Logger) *TieredBackend {
	return &TieredBackend{remote: remote, local: local, log: log}
}

func (b *TieredBackend) Load(ctx context.Context, userID int64) ([]model.WishlistItem, Tier) {
	docs, err := b.remote.List(ctx, Collection, fmt.Sprintf("%d_", userID))
	if err == nil {
		items := make([]model.WishlistItem, 0, len(docs))
		for id, raw := range docs {
			var it model.WishlistItem
			if err := json.Unmarshal(raw, &it); err != nil {
				b.log.Warn("wishlist document skipped", zap.String("doc_id", id), zap.Error(err))
				continue
			}
			items = append(items, it)
		}
		sort.Slice(items, func(i, j int) bool { return items[i].Product.ID < items[j].Product.ID })
		return items, TierRemote
	}

	b.log.Warn("wishlist remote load failed, using local", zap.Int64("user_id", userID), zap.Error(err))
	var items []model.WishlistItem
	if _, err := localstore.GetJSON(b.local, LocalKey(userID), &items); err != nil {
		b.log.Error("wishlist local load failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, TierLocal
	}
	return items, TierLocal
}

func (b *TieredBackend) Added(ctx context.Context, userID int64, item model.WishlistItem, all []model.WishlistItem) Tier {
	data, err := json.Marshal(item)
	if err == nil {
		err = b.remote.Put(ctx, Collection, DocID(userID, item.Product.ID), data)
	}
	if err == nil {
		return TierRemote
	}
	b.log.Warn("wishlist remote write failed, using local", zap.Int64("user_id", userID), zap.Error(err))
	return b.saveLocal(userID, all)
}

func (b *TieredBackend) Removed(ctx context.Context, userID int64, productID int64, all []model.WishlistItem) Tier {
	err := b.remote.Delete(ctx, Collection, DocID(userID, productID))
	if err == nil || err == repository.ErrNotFound {
		return TierRemote
	}
	b.log.Warn("wishlist remote delete failed, using local", zap.Int64("user_id", userID), zap.Error(err))
	return b.saveLocal(userID, all)
}

func (b *TieredBackend) saveLocal(userID int64, all []model.WishlistItem) Tier {
	if err := localstore.PutJSON(b.local, LocalKey(userID), all); err != nil {
		b.log.Error("wishlist local write failed", zap.Int64("user_id", userID), zap.Error(err))
	}
	return TierLocal
}
