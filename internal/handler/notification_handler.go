package handler

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 通知の許可、トースト、プロモーション
type NotificationHandler struct {
	uc      *usecase.NotificationUsecase
	session *usecase.SessionUsecase
}

func NewNotificationHandler(uc *usecase.NotificationUsecase, session *usecase.SessionUsecase) *NotificationHandler {
	return &NotificationHandler{uc: uc, session: session}
}

type PermissionRequest struct {
	Permission string `json:"permission"`
}

type PendingPromotionsResponse struct {
	Pending []string `json:"pending"`
}

func (h *NotificationHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/notifications")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.GET("/permission", h.permission)
	g.PUT("/permission", h.requestPermission)
	g.GET("/toasts", h.toasts)
	g.DELETE("/toasts", h.clearToasts)

	p := e.Group("/promotions")
	p.Use(middleware.AuthJWT(cfg))
	p.Use(middleware.TokenVersionGuard(userRepo))

	p.POST("/schedule", h.schedule)
	p.GET("/pending", h.pending)
}

func (h *NotificationHandler) permission(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Permission(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *NotificationHandler) requestPermission(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req PermissionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.RequestPermission(c.Request().Context(), userID, req.Permission)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *NotificationHandler) toasts(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Toasts(userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *NotificationHandler) clearToasts(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.ClearToasts(userID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ログインし直さずにタイマーを張り直す（再起動後など）
func (h *NotificationHandler) schedule(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.session.Start(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *NotificationHandler) pending(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	return c.JSON(http.StatusOK, PendingPromotionsResponse{Pending: h.session.Pending(userID)})
}
