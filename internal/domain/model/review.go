package model

import "time"

// 商品レビュー（追記のみ）
type Review struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64     `gorm:"not null;index" json:"product_id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	Author    string    `gorm:"type:varchar(255);not null" json:"author"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	PhotoURLs []string  `gorm:"type:jsonb;serializer:json" json:"photo_urls,omitempty"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"date"`
}
