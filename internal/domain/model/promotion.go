package model

import "time"

// 一度だけ表示するプロモーション通知
type Promotion struct {
	ID    string        `json:"id"`
	Title string        `json:"title"`
	Body  string        `json:"body"`
	Delay time.Duration `json:"delay"`
}
