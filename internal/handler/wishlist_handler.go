package handler

import (
	"storefront/internal/config"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /wishlist。レスポンスのsourceでremote/localどちらの結果かわかる
type WishlistHandler struct {
	uc *usecase.WishlistUsecase
}

func NewWishlistHandler(uc *usecase.WishlistUsecase) *WishlistHandler {
	return &WishlistHandler{uc: uc}
}

type AddWishlistRequest struct {
	ProductID int64 `json:"product_id"`
}

func (h *WishlistHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/wishlist", authGuards(cfg, userRepo)...)

	g.GET("", asUser(h.get))
	g.POST("/items", asUser(h.add))
	g.DELETE("/items/:product_id", asUser(h.remove))
}

func (h *WishlistHandler) get(c echo.Context, userID int64) (usecase.WishlistResponse, error) {
	return h.uc.Get(c.Request().Context(), userID)
}

func (h *WishlistHandler) add(c echo.Context, userID int64) (usecase.WishlistResponse, error) {
	var req AddWishlistRequest
	if err := bindBody(c, &req); err != nil {
		return usecase.WishlistResponse{}, err
	}
	return h.uc.Add(c.Request().Context(), userID, req.ProductID)
}

func (h *WishlistHandler) remove(c echo.Context, userID int64) (usecase.WishlistResponse, error) {
	productID, err := int64Param(c, "product_id")
	if err != nil {
		return usecase.WishlistResponse{}, err
	}
	return h.uc.Remove(c.Request().Context(), userID, productID)
}
