package repository

// サーバー側のローカルKV。値は丸ごと読み書きする（部分更新なし）。
type LocalStore interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
}
