// Package promotion は一度だけ出すプロモーション通知のタイマーを扱う。
package promotion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/infra/localstore"
	"storefront/internal/repository"

	"go.uber.org/zap"
)

// Notifier は発火時の通知先
type Notifier interface {
	Notify(ctx context.Context, userID int64, title string, body string)
}

// Timer は止められるタイマー
type Timer interface {
	Stop() bool
}

// AfterFunc は time.AfterFunc と同じ形（テストで差し替える）
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ShownKey は表示済みIDの集合を保存するキー
func ShownKey(userID int64) string {
	return fmt.Sprintf("promotions:shown:%d", userID)
}

// Scheduler はユーザーのセッションごとにタイマーを張る。
// 表示済み集合はローカルにだけ保存する（プロセスをまたいだ排他はしない）。
type Scheduler struct {
	catalog  []model.Promotion
	local    repository.LocalStore
	notifier Notifier
	log      *zap.Logger
	after    AfterFunc

	mu       sync.Mutex
	sessions map[int64]map[string]Timer
	// 表示済み集合の読み書きを直列化
	shownMu sync.Mutex
	closed  bool
	// 実行中の発火（Close はこれを待つ）
	inflight sync.WaitGroup
}

func NewScheduler(catalog []model.Promotion, local repository.LocalStore, notifier Notifier, log *zap.Logger) *Scheduler {
	return &Scheduler{
		catalog:  catalog,
		local:    local,
		notifier: notifier,
		log:      log,
		after:    realAfterFunc,
		sessions: make(map[int64]map[string]Timer),
	}
}

// WithAfterFunc はタイマー生成を差し替える
func (s *Scheduler) WithAfterFunc(f AfterFunc) *Scheduler {
	s.after = f
	return s
}

// Schedule は未表示かつこのセッションで未登録のものだけタイマーを張る。
// 張ったプロモーションIDを返す。
func (s *Scheduler) Schedule(ctx context.Context, userID int64) []string {
	shown := s.shownSet(userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	timers, ok := s.sessions[userID]
	if !ok {
		timers = make(map[string]Timer)
		s.sessions[userID] = timers
	}

	scheduled := make([]string, 0)
	for _, p := range s.catalog {
		if shown[p.ID] {
			continue
		}
		if _, ok := timers[p.ID]; ok {
			continue
		}
		promo := p
		timers[p.ID] = s.after(p.Delay, func() { s.fire(userID, promo) })
		scheduled = append(scheduled, p.ID)
	}
	return scheduled
}

// Pending はこのセッションで発火待ちのID（発火済みは含めない）
func (s *Scheduler) Pending(userID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.sessions[userID]))
	for _, p := range s.catalog {
		t, ok := s.sessions[userID][p.ID]
		if !ok {
			continue
		}
		if _, fired := t.(firedTimer); fired {
			continue
		}
		out = append(out, p.ID)
	}
	return out
}

// Stop はユーザーのタイマーを全部止める（セッション終了）。
func (s *Scheduler) Stop(userID int64) {
	s.mu.Lock()
	timers := s.sessions[userID]
	delete(s.sessions, userID)
	s.mu.Unlock()

	for _, t := range timers {
		t.Stop()
	}
}

// Close は全タイマーを止め、以降の Schedule を無視する。
// 実行中の発火は表示済みの保存まで終わるのを待つ。
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	sessions := s.sessions
	s.sessions = make(map[int64]map[string]Timer)
	s.mu.Unlock()

	for _, timers := range sessions {
		for _, t := range timers {
			t.Stop()
		}
	}
	s.inflight.Wait()
}

func (s *Scheduler) fire(userID int64, p model.Promotion) {
	s.mu.Lock()
	timers, ok := s.sessions[userID]
	if !ok || s.closed {
		s.mu.Unlock()
		return
	}
	//発火したものはセッションに残す（同じセッションで再登録しない）
	timers[p.ID] = firedTimer{}
	s.inflight.Add(1)
	s.mu.Unlock()
	defer s.inflight.Done()

	s.notifier.Notify(context.Background(), userID, p.Title, p.Body)
	s.markShown(userID, p.ID)
}

func (s *Scheduler) shownSet(userID int64) map[string]bool {
	s.shownMu.Lock()
	defer s.shownMu.Unlock()

	var ids []string
	if _, err := localstore.GetJSON(s.local, ShownKey(userID), &ids); err != nil {
		s.log.Warn("promotion shown-set read failed", zap.Int64("user_id", userID), zap.Error(err))
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func (s *Scheduler) markShown(userID int64, id string) {
	s.shownMu.Lock()
	defer s.shownMu.Unlock()

	var ids []string
	if _, err := localstore.GetJSON(s.local, ShownKey(userID), &ids); err != nil {
		s.log.Warn("promotion shown-set read failed", zap.Int64("user_id", userID), zap.Error(err))
	}
	for _, x := range ids {
		if x == id {
			return
		}
	}
	ids = append(ids, id)
	if err := localstore.PutJSON(s.local, ShownKey(userID), ids); err != nil {
		s.log.Error("promotion shown-set write failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}

type firedTimer struct{}

func (firedTimer) Stop() bool { return false }
