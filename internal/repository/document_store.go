package repository

import (
	"context"
	"encoding/json"
)

// リモートのドキュメントストア。collection + id で読み書き・削除する。
// スキーマ検証はしない。後勝ち。
type DocumentStore interface {
	Get(ctx context.Context, collection string, id string) (json.RawMessage, error)
	Put(ctx context.Context, collection string, id string, data json.RawMessage) error
	Delete(ctx context.Context, collection string, id string) error
	// idPrefixで前方一致した全件を返す（key: id）
	List(ctx context.Context, collection string, idPrefix string) (map[string]json.RawMessage, error)
}
