package model

import (
	"encoding/json"
	"time"
)

// リモートのドキュメントストア1件（collection + id がキー）
type Document struct {
	Collection string          `gorm:"primaryKey;type:varchar(64)" json:"collection"`
	ID         string          `gorm:"primaryKey;type:varchar(255)" json:"id"`
	Data       json.RawMessage `gorm:"type:jsonb;not null" json:"data"`
	UpdatedAt  time.Time       `gorm:"not null" json:"updated_at"`
}
