package handler

import (
	"storefront/internal/config"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cart。どの操作も更新後のカート（行と合計）を返す
type CartHandler struct {
	uc *usecase.CartUsecase
}

func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartRequest struct {
	ProductID int64 `json:"product_id"`
	// 省略時は1
	Quantity int64 `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/cart", authGuards(cfg, userRepo)...)

	g.GET("", asUser(h.get))
	g.DELETE("", asUser(h.clear))
	g.POST("/items", asUser(h.add))
	g.PATCH("/items/:product_id", asUser(h.setQuantity))
	g.DELETE("/items/:product_id", asUser(h.remove))
}

func (h *CartHandler) get(c echo.Context, userID int64) (usecase.CartResponse, error) {
	return h.uc.GetCart(c.Request().Context(), userID)
}

func (h *CartHandler) clear(c echo.Context, userID int64) (usecase.CartResponse, error) {
	return h.uc.Clear(c.Request().Context(), userID)
}

func (h *CartHandler) add(c echo.Context, userID int64) (usecase.CartResponse, error) {
	var req AddCartRequest
	if err := bindBody(c, &req); err != nil {
		return usecase.CartResponse{}, err
	}
	return h.uc.AddItem(c.Request().Context(), userID, usecase.AddCartInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
}

func (h *CartHandler) setQuantity(c echo.Context, userID int64) (usecase.CartResponse, error) {
	productID, err := int64Param(c, "product_id")
	if err != nil {
		return usecase.CartResponse{}, err
	}
	var req UpdateCartItemRequest
	if err := bindBody(c, &req); err != nil {
		return usecase.CartResponse{}, err
	}
	return h.uc.UpdateQuantity(c.Request().Context(), userID, productID, req.Quantity)
}

func (h *CartHandler) remove(c echo.Context, userID int64) (usecase.CartResponse, error) {
	productID, err := int64Param(c, "product_id")
	if err != nil {
		return usecase.CartResponse{}, err
	}
	return h.uc.RemoveItem(c.Request().Context(), userID, productID)
}
