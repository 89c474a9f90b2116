package repository

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// documents テーブルを使ったドキュメントストア
type DocumentGormStore struct {
	db *gorm.DB
}

func NewDocumentGormStore(db *gorm.DB) *DocumentGormStore {
	return &DocumentGormStore{db: db}
}

func (s *DocumentGormStore) Get(ctx context.Context, collection string, id string) (json.RawMessage, error) {
	var d model.Document
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&d).Error
	if err != nil {
		return nil, translate(err)
	}
	return d.Data, nil
}

// Put は後勝ちで上書きする
func (s *DocumentGormStore) Put(ctx context.Context, collection string, id string, data json.RawMessage) error {
	d := model.Document{
		Collection: collection,
		ID:         id,
		Data:       data,
		UpdatedAt:  time.Now(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&d).Error
}

func (s *DocumentGormStore) Delete(ctx context.Context, collection string, id string) error {
	res := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&model.Document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *DocumentGormStore) List(ctx context.Context, collection string, idPrefix string) (map[string]json.RawMessage, error) {
	q := s.db.WithContext(ctx).Where("collection = ?", collection)
	if idPrefix != "" {
		q = q.Where("id LIKE ?", escapeLike(idPrefix)+"%")
	}

	var docs []model.Document
	if err := q.Order("id asc").Find(&docs).Error; err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(docs))
	for _, d := range docs {
		out[d.ID] = d.Data
	}
	return out, nil
}

// LIKEのワイルドカードを無効化
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
