package handler

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// 商品の作成・更新の入力
type ProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Category    string          `json:"category"`
	Stock       int64           `json:"stock"`
	IsActive    bool            `json:"is_active"`
}

func (r ProductRequest) input() usecase.AdminProductInput {
	return usecase.AdminProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		Category:    r.Category,
		Stock:       r.Stock,
		IsActive:    r.IsActive,
	}
}

type InventoryUpdateRequest struct {
	Stock int64 `json:"stock"`
}

// 商品CMS（ADMINのみ）
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/admin/products", adminGuards(cfg, userRepo)...)

	g.POST("", h.create)
	g.PUT("/:id", asUser(h.update))
	g.DELETE("/:id", asUser(h.delete))
	g.PATCH("/:id/stock", asUser(h.setStock))
}

// 作成だけ201
func (h *AdminProductHandler) create(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	var req ProductRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, err)
	}

	p, err := h.uc.AdminCreateProduct(c.Request().Context(), adminID, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *AdminProductHandler) update(c echo.Context, adminID int64) (SuccessResponse, error) {
	id, err := int64Param(c, "id")
	if err != nil {
		return SuccessResponse{}, err
	}
	var req ProductRequest
	if err := bindBody(c, &req); err != nil {
		return SuccessResponse{}, err
	}
	if err := h.uc.AdminUpdateProduct(c.Request().Context(), adminID, id, req.input()); err != nil {
		return SuccessResponse{}, err
	}
	return SuccessResponse{Message: "updated"}, nil
}

func (h *AdminProductHandler) delete(c echo.Context, adminID int64) (SuccessResponse, error) {
	id, err := int64Param(c, "id")
	if err != nil {
		return SuccessResponse{}, err
	}
	if err := h.uc.AdminDeleteProduct(c.Request().Context(), adminID, id); err != nil {
		return SuccessResponse{}, err
	}
	return SuccessResponse{Message: "deleted"}, nil
}

func (h *AdminProductHandler) setStock(c echo.Context, adminID int64) (SuccessResponse, error) {
	id, err := int64Param(c, "id")
	if err != nil {
		return SuccessResponse{}, err
	}
	var req InventoryUpdateRequest
	if err := bindBody(c, &req); err != nil {
		return SuccessResponse{}, err
	}
	if err := h.uc.AdminUpdateInventory(c.Request().Context(), adminID, id, req.Stock); err != nil {
		return SuccessResponse{}, err
	}
	return SuccessResponse{Message: "stock updated"}, nil
}
