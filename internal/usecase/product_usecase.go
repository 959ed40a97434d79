package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

type ProductUsecase struct {
	productRepo repo.ProductRepository
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page     int
	Limit    int
	Q        string
	MinPrice *float64
	MaxPrice *float64
	Sort     string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}
	if in.MinPrice != nil && *in.MinPrice < 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid min_price")
	}
	if in.MaxPrice != nil && *in.MaxPrice < 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid max_price")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid price range")
	}

	switch in.Sort {
	case "", "new", "price_asc", "price_desc":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	items, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        in.Q,
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Sort:     in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

// 公開中の商品詳細。非公開はnot found扱い。
func (u *ProductUsecase) GetPublicProduct(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	return p, nil
}

// POST /admin/productsの入力DTO
type CreateProductInput struct {
	ENName        string
	ARName        string
	ENDescription string
	ARDescription string
	RegularPrice  float64
	SalePrice     float64
	Images        string
	Stock         int64
	IsActive      bool
}

func (u *ProductUsecase) CreateProduct(ctx context.Context, in CreateProductInput) (model.Product, error) {
	if strings.TrimSpace(in.ENName) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "e_name is required")
	}
	if in.RegularPrice <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid regular_price")
	}
	if in.SalePrice < 0 || in.SalePrice > in.RegularPrice {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid sale_price")
	}
	if in.Stock < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid stock")
	}

	created, err := u.productRepo.Create(ctx, model.Product{
		ENName:        strings.TrimSpace(in.ENName),
		ARName:        strings.TrimSpace(in.ARName),
		ENDescription: in.ENDescription,
		ARDescription: in.ARDescription,
		RegularPrice:  in.RegularPrice,
		SalePrice:     in.SalePrice,
		Images:        in.Images,
		Stock:         in.Stock,
		IsActive:      in.IsActive,
	})
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

// PUT /admin/products/:id
func (u *ProductUsecase) UpdateProduct(ctx context.Context, productID int64, in CreateProductInput) error {
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if strings.TrimSpace(in.ENName) == "" {
		return NewHTTPError(http.StatusBadRequest, "e_name is required")
	}
	if in.RegularPrice <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid regular_price")
	}
	if in.SalePrice < 0 || in.SalePrice > in.RegularPrice {
		return NewHTTPError(http.StatusBadRequest, "invalid sale_price")
	}
	if in.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid stock")
	}

	err := u.productRepo.Update(ctx, model.Product{
		ID:            productID,
		ENName:        strings.TrimSpace(in.ENName),
		ARName:        strings.TrimSpace(in.ARName),
		ENDescription: in.ENDescription,
		ARDescription: in.ARDescription,
		RegularPrice:  in.RegularPrice,
		SalePrice:     in.SalePrice,
		Images:        in.Images,
		Stock:         in.Stock,
		IsActive:      in.IsActive,
	})
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// DELETE /admin/products/:id
func (u *ProductUsecase) DeleteProduct(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.productRepo.SoftDelete(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
