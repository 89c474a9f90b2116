package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/notification"
)

type NotificationUsecase struct {
	gateway *notification.Gateway
}

func NewNotificationUsecase(gateway *notification.Gateway) *NotificationUsecase {
	return &NotificationUsecase{gateway: gateway}
}

type PermissionResponse struct {
	Permission model.NotificationPermission `json:"permission"`
}

func (u *NotificationUsecase) Permission(ctx context.Context, userID int64) (PermissionResponse, error) {
	if userID <= 0 {
		return PermissionResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return PermissionResponse{Permission: u.gateway.Permission(ctx, userID)}, nil
}

// RequestPermission は granted / denied を記録する
func (u *NotificationUsecase) RequestPermission(ctx context.Context, userID int64, decision string) (PermissionResponse, error) {
	if userID <= 0 {
		return PermissionResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	p, err := u.gateway.RequestPermission(ctx, userID, model.NotificationPermission(strings.ToLower(strings.TrimSpace(decision))))
	if errors.Is(err, notification.ErrInvalidPermission) {
		return PermissionResponse{}, NewHTTPError(http.StatusBadRequest, "invalid permission")
	}
	if err != nil {
		return PermissionResponse{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return PermissionResponse{Permission: p}, nil
}

func (u *NotificationUsecase) Toasts(userID int64) ([]model.Toast, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return u.gateway.Toasts(userID), nil
}

func (u *NotificationUsecase) ClearToasts(userID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	u.gateway.ClearToasts(userID)
	return nil
}
