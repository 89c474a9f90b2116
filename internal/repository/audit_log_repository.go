package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

// 管理操作ログの絞り込み。nilの項目は条件にしない。
type AuditLogFilter struct {
	ActorUserID  *int64
	Action       *model.AuditAction
	ResourceType *model.AuditResourceType
	ResourceID   *int64
	Since        *time.Time
	Limit        int
	Offset       int
}

// 在庫・ロール・強制ログアウト・削除の記録先。追記のみ。
type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
