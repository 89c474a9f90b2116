package repository

import (
	"context"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

func (r *auditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	return translate(r.db.WithContext(ctx).Create(&log).Error)
}

// List は新しい順
func (r *auditLogGormRepository) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	err := r.db.WithContext(ctx).
		Scopes(auditConditions(filter), auditPage(filter.Limit, filter.Offset)).
		Order("created_at DESC, id DESC").
		Find(&logs).Error
	if err != nil {
		return nil, translate(err)
	}
	return logs, nil
}

// ゼロ値の項目はgormが条件から外す
func auditConditions(f repo.AuditLogFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		var cond model.AuditLog
		if f.ActorUserID != nil {
			cond.ActorUserID = *f.ActorUserID
		}
		if f.Action != nil {
			cond.Action = *f.Action
		}
		if f.ResourceType != nil {
			cond.ResourceType = *f.ResourceType
		}
		if f.ResourceID != nil {
			cond.ResourceID = *f.ResourceID
		}
		db = db.Where(&cond)
		if f.Since != nil {
			db = db.Where("created_at >= ?", *f.Since)
		}
		return db
	}
}

func auditPage(limit int, offset int) func(*gorm.DB) *gorm.DB {
	if limit <= 0 || limit > maxAuditLimit {
		limit = defaultAuditLimit
	}
	if offset < 0 {
		offset = 0
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Limit(limit).Offset(offset)
	}
}
