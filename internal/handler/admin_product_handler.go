package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ProductCreateRequest は作成/更新の共通入力。
type ProductCreateRequest struct {
	ENName        string  `json:"e_name"`
	ARName        string  `json:"ar_name"`
	ENDescription string  `json:"e_description"`
	ARDescription string  `json:"ar_description"`
	RegularPrice  float64 `json:"regular_price"`
	SalePrice     float64 `json:"sale_price"`
	Images        string  `json:"images"`
	Stock         int64   `json:"stock"`
	IsActive      bool    `json:"is_active"`
}

// /admin/products
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// adminを登録（X-API-Keyガード）
func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin")
	admin.Use(middleware.AdminAPIKey(cfg))

	admin.POST("/products", h.createProduct)
	admin.PUT("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateProduct(c.Request().Context(), toCreateInput(req))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.UpdateProduct(c.Request().Context(), id, toCreateInput(req)); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.DeleteProduct(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func toCreateInput(req ProductCreateRequest) usecase.CreateProductInput {
	return usecase.CreateProductInput{
		ENName:        req.ENName,
		ARName:        req.ARName,
		ENDescription: req.ENDescription,
		ARDescription: req.ARDescription,
		RegularPrice:  req.RegularPrice,
		SalePrice:     req.SalePrice,
		Images:        req.Images,
		Stock:         req.Stock,
		IsActive:      req.IsActive,
	}
}
