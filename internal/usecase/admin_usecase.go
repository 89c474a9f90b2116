package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// 管理者用：ユーザー管理と監査ログ
type AdminUsecase struct {
	users repo.UserRepository
	audit repo.AuditLogRepository
	tx    repo.TransactionManager
}

func NewAdminUsecase(
	users repo.UserRepository,
	audit repo.AuditLogRepository,
	tx repo.TransactionManager,
) *AdminUsecase {
	return &AdminUsecase{users: users, audit: audit, tx: tx}
}

type AdminUserListOutput struct {
	Items []UserDTO `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

func (u *AdminUsecase) ListUsers(ctx context.Context, page int, limit int) (AdminUserListOutput, error) {
	if page < 1 {
		return AdminUserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return AdminUserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	users, total, err := u.users.List(ctx, page, limit)
	if err != nil {
		return AdminUserListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	items := make([]UserDTO, 0, len(users))
	for i := range users {
		items = append(items, toUserDTO(&users[i]))
	}
	return AdminUserListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// UpdateRole はロール変更。自分自身は変更できない。
func (u *AdminUsecase) UpdateRole(ctx context.Context, adminUserID int64, targetUserID int64, role string) (UserDTO, error) {
	if targetUserID <= 0 {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	r := model.Role(strings.ToUpper(strings.TrimSpace(role)))
	if !r.Valid() {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "invalid role")
	}
	if adminUserID == targetUserID {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "cannot change own role")
	}

	var out UserDTO
	err := u.tx.WithinTx(ctx, func(tr repo.TxRepos) error {
		user, err := tr.Users().FindByID(ctx, targetUserID)
		if err != nil {
			return err
		}
		if user == nil {
			return repo.ErrNotFound
		}
		before := user.Role

		user.Role = r
		user.UpdatedAt = time.Now()
		if err := tr.Users().Update(ctx, user); err != nil {
			return err
		}
		//ロールが変わったら古いトークンを無効化
		if before != r {
			if err := tr.Users().IncrementTokenVersion(ctx, targetUserID); err != nil {
				return err
			}
			user.TokenVersion++
		}

		out = toUserDTO(user)
		return tr.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminUserID,
			Action:       model.AuditActionUpdateRole,
			ResourceType: model.AuditResourceUser,
			ResourceID:   targetUserID,
			BeforeJSON:   fmt.Sprintf(`{"role":%q}`, before),
			AfterJSON:    fmt.Sprintf(`{"role":%q}`, r),
			CreatedAt:    time.Now(),
		})
	})
	if errors.Is(err, repo.ErrNotFound) {
		return UserDTO{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return out, nil
}

// SetActive は停止/再開。停止したら既存トークンも無効化する。
func (u *AdminUsecase) SetActive(ctx context.Context, adminUserID int64, targetUserID int64, active bool) (UserDTO, error) {
	if targetUserID <= 0 {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	if adminUserID == targetUserID && !active {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "cannot deactivate yourself")
	}

	user, err := u.users.FindByID(ctx, targetUserID)
	if err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if user == nil {
		return UserDTO{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	user.IsActive = active
	user.UpdatedAt = time.Now()
	if err := u.users.Update(ctx, user); err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !active {
		if err := u.users.IncrementTokenVersion(ctx, targetUserID); err != nil {
			return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		user.TokenVersion++
	}
	return toUserDTO(user), nil
}

type ForceLogoutResponse struct {
	UserID          int64 `json:"user_id"`
	NewTokenVersion int   `json:"new_token_version"`
}

// ForceLogout は token_version を上げて既存JWTを全て無効化する
func (u *AdminUsecase) ForceLogout(ctx context.Context, adminUserID int64, targetUserID int64) (ForceLogoutResponse, error) {
	if targetUserID <= 0 {
		return ForceLogoutResponse{}, NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var out ForceLogoutResponse
	err := u.tx.WithinTx(ctx, func(tr repo.TxRepos) error {
		if err := tr.Users().IncrementTokenVersion(ctx, targetUserID); err != nil {
			return err
		}
		//更新後を取得してnew_token_versionを返す
		user, err := tr.Users().FindByID(ctx, targetUserID)
		if err != nil {
			return err
		}
		if user == nil {
			return repo.ErrNotFound
		}
		out = ForceLogoutResponse{UserID: user.ID, NewTokenVersion: user.TokenVersion}

		return tr.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminUserID,
			Action:       model.AuditActionForceLogout,
			ResourceType: model.AuditResourceUser,
			ResourceID:   targetUserID,
			AfterJSON:    fmt.Sprintf(`{"token_version":%d}`, user.TokenVersion),
			CreatedAt:    time.Now(),
		})
	})
	if errors.Is(err, repo.ErrNotFound) {
		return ForceLogoutResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ForceLogoutResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return out, nil
}

type AuditLogQuery struct {
	ActorUserID  int64
	Action       string
	ResourceType string
	ResourceID   int64
	Limit        int
	Offset       int
}

func (u *AdminUsecase) ListAuditLogs(ctx context.Context, q AuditLogQuery) ([]model.AuditLog, error) {
	filter := repo.AuditLogFilter{Limit: q.Limit, Offset: q.Offset}
	if q.ActorUserID > 0 {
		filter.ActorUserID = &q.ActorUserID
	}
	if q.ResourceID > 0 {
		filter.ResourceID = &q.ResourceID
	}
	if q.Action != "" {
		a := model.AuditAction(q.Action)
		filter.Action = &a
	}
	if q.ResourceType != "" {
		rt := model.AuditResourceType(q.ResourceType)
		filter.ResourceType = &rt
	}
	logs, err := u.audit.List(ctx, filter)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return logs, nil
}
