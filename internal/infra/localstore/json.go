package localstore

import (
	"encoding/json"
	"errors"

	"storefront/internal/repository"
)

// GetJSON は値をJSONとして読む。キーが無ければ found=false。
func GetJSON(s repository.LocalStore, key string, v any) (bool, error) {
	b, err := s.Get(key)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, err
	}
	return true, nil
}

// PutJSON は値を丸ごとJSONで書く。
func PutJSON(s repository.LocalStore, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Put(key, b)
}
