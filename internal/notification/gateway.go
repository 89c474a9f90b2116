// Package notification はプッシュ通知の許可管理と配信、アプリ内トーストを扱う。
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"

	"go.uber.org/zap"
)

const PermissionCollection = "notification_permissions"

// 1ユーザーあたり保持するトースト数
const maxToasts = 50

var ErrInvalidPermission = errors.New("invalid permission")

// Publisher はプラットフォーム通知をブローカーへ流す。
type Publisher interface {
	Publish(ctx context.Context, key []byte, value []byte) error
}

// プラットフォームへ送るメッセージ
type Message struct {
	UserID int64     `json:"user_id"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sent_at"`
}

type Gateway struct {
	docs repository.DocumentStore
	pub  Publisher
	log  *zap.Logger
	now  func() time.Time

	mu     sync.Mutex
	toasts map[int64][]model.Toast
}

func NewGateway(docs repository.DocumentStore, pub Publisher, log *zap.Logger) *Gateway {
	return &Gateway{
		docs:   docs,
		pub:    pub,
		log:    log,
		now:    time.Now,
		toasts: make(map[int64][]model.Toast),
	}
}

type permissionDoc struct {
	Permission model.NotificationPermission `json:"permission"`
	DecidedAt  time.Time                    `json:"decided_at"`
}

// RequestPermission はユーザーの許可/拒否を保存する。保存失敗はログのみ。
func (g *Gateway) RequestPermission(ctx context.Context, userID int64, decision model.NotificationPermission) (model.NotificationPermission, error) {
	if decision != model.PermissionGranted && decision != model.PermissionDenied {
		return model.PermissionDefault, ErrInvalidPermission
	}

	data, _ := json.Marshal(permissionDoc{Permission: decision, DecidedAt: g.now()})
	if err := g.docs.Put(ctx, PermissionCollection, strconv.FormatInt(userID, 10), data); err != nil {
		g.log.Error("notification permission persist failed", zap.Int64("user_id", userID), zap.Error(err))
	}
	return decision, nil
}

// Permission は未決定なら default を返す。
func (g *Gateway) Permission(ctx context.Context, userID int64) model.NotificationPermission {
	raw, err := g.docs.Get(ctx, PermissionCollection, strconv.FormatInt(userID, 10))
	if errors.Is(err, repository.ErrNotFound) {
		return model.PermissionDefault
	}
	if err != nil {
		g.log.Warn("notification permission read failed", zap.Int64("user_id", userID), zap.Error(err))
		return model.PermissionDefault
	}

	var doc permissionDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return model.PermissionDefault
	}
	return doc.Permission
}

// Notify は許可済みならプラットフォーム通知を送り、必ずトーストも出す。
func (g *Gateway) Notify(ctx context.Context, userID int64, title string, body string) {
	if g.Permission(ctx, userID) == model.PermissionGranted {
		msg, _ := json.Marshal(Message{UserID: userID, Title: title, Body: body, SentAt: g.now()})
		if err := g.pub.Publish(ctx, []byte(strconv.FormatInt(userID, 10)), msg); err != nil {
			g.log.Error("notification publish failed", zap.Int64("user_id", userID), zap.Error(err))
		}
	}

	g.Toast(userID, model.ToastInfo, title)
}

func (g *Gateway) Toast(userID int64, level model.ToastLevel, message string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	list := append(g.toasts[userID], model.Toast{
		UserID:    userID,
		Level:     level,
		Message:   message,
		CreatedAt: g.now(),
	})
	if len(list) > maxToasts {
		list = list[len(list)-maxToasts:]
	}
	g.toasts[userID] = list
}

func (g *Gateway) Toasts(userID int64) []model.Toast {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]model.Toast, len(g.toasts[userID]))
	copy(out, g.toasts[userID])
	return out
}

func (g *Gateway) ClearToasts(userID int64) {
	g.mu.Lock()
	delete(g.toasts, userID)
	g.mu.Unlock()
}

// LogPublisher はブローカー未設定時に使う。ログに出すだけ。
type LogPublisher struct {
	Log *zap.Logger
}

func (p LogPublisher) Publish(ctx context.Context, key []byte, value []byte) error {
	p.Log.Info("notification (no broker)", zap.ByteString("key", key), zap.ByteString("value", value))
	return nil
}
