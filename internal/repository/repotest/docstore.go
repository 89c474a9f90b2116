// Package repotest はテスト用のリポジトリ実装。
package repotest

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"storefront/internal/repository"
)

// DocStore はメモリ上の DocumentStore。Fail をセットすると全操作がそのエラーを返す。
type DocStore struct {
	mu   sync.Mutex
	data map[string]map[string]json.RawMessage
	err  error

	failDeleteAfter int
	deletes         int

	Puts    int
	Deletes int
}

func NewDocStore() *DocStore {
	return &DocStore{data: make(map[string]map[string]json.RawMessage)}
}

func (s *DocStore) Fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// FailDeletesAfter は削除がn件成功した後の削除を失敗させる（0なら無効）
func (s *DocStore) FailDeletesAfter(n int) {
	s.mu.Lock()
	s.failDeleteAfter = n
	s.deletes = 0
	s.mu.Unlock()
}

func (s *DocStore) Get(ctx context.Context, collection string, id string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	v, ok := s.data[collection][id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return v, nil
}

func (s *DocStore) Put(ctx context.Context, collection string, id string, data json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.data[collection] == nil {
		s.data[collection] = make(map[string]json.RawMessage)
	}
	cp := make(json.RawMessage, len(data))
	copy(cp, data)
	s.data[collection][id] = cp
	s.Puts++
	return nil
}

func (s *DocStore) Delete(ctx context.Context, collection string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.failDeleteAfter > 0 && s.deletes >= s.failDeleteAfter {
		return errDeleteFailed
	}
	if _, ok := s.data[collection][id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.data[collection], id)
	s.deletes++
	s.Deletes++
	return nil
}

func (s *DocStore) List(ctx context.Context, collection string, idPrefix string) (map[string]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string]json.RawMessage)
	for id, v := range s.data[collection] {
		if strings.HasPrefix(id, idPrefix) {
			out[id] = v
		}
	}
	return out, nil
}

// Len はコレクション内の件数
func (s *DocStore) Len(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data[collection])
}

type deleteError struct{}

func (deleteError) Error() string { return "delete failed" }

var errDeleteFailed error = deleteError{}
