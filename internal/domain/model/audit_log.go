package model

import "time"

// 在庫更新、ロール変更など管理者の操作
type AuditAction string

const (
	AuditActionUpdateStock   AuditAction = "UPDATE_STOCK"
	AuditActionUpdateRole    AuditAction = "UPDATE_ROLE"
	AuditActionForceLogout   AuditAction = "FORCE_LOGOUT"
	AuditActionDeleteMedia   AuditAction = "DELETE_MEDIA"
	AuditActionDeleteProduct AuditAction = "DELETE_PRODUCT"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceProduct AuditResourceType = "product"
	AuditResourceUser    AuditResourceType = "user"
	AuditResourceVideo   AuditResourceType = "video"
	AuditResourceBanner  AuditResourceType = "banner"
)

// 監査ログ。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorUserID  int64             `gorm:"not null;index" json:"actor_user_id"`
	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   int64             `gorm:"not null;index" json:"resource_id"`
	BeforeJSON   string            `gorm:"type:text" json:"before_json"`
	AfterJSON    string            `gorm:"type:text" json:"after_json"`
	CreatedAt    time.Time         `gorm:"not null;index" json:"created_at"`
}
