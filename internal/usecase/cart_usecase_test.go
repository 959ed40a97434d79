package usecase_test

import (
	"context"
	"strings"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) GetOrCreateBySessionID(ctx context.Context, sessionID string) (model.Cart, error) {
	args := m.Called(ctx, sessionID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindBySessionID(ctx context.Context, sessionID string) (model.Cart, error) {
	args := m.Called(ctx, sessionID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) Clear(ctx context.Context, cartID int64) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) UpsertByCartAndProduct(ctx context.Context, cartID int64, addQty int64, snapshot model.CartItem) error {
	args := m.Called(ctx, cartID, addQty, snapshot)
	return args.Error(0)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	args := m.Called(ctx, cartItemID, qty)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByID(ctx context.Context, cartItemID int64) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

func (m *CartItemRepoMock) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	args := m.Called(ctx, cartItemID)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) IsOwnedBySession(ctx context.Context, cartItemID int64, sessionID string) (bool, error) {
	args := m.Called(ctx, cartItemID, sessionID)
	return args.Bool(0), args.Error(1)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	panic("not used in CartUsecase tests")
}

func (m *ProductRepoMock) FindByID(ctx context.Context, productID int64) (model.Product, error) {
	args := m.Called(ctx, productID)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	panic("not used in CartUsecase tests")
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	panic("not used in CartUsecase tests")
}

func (m *ProductRepoMock) SoftDelete(ctx context.Context, productID int64) error {
	panic("not used in CartUsecase tests")
}

func assertErrContains(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error containing %q, got %q", want, err.Error())
	}
}

func newCartUsecase(cartRepo *CartRepoMock, itemRepo *CartItemRepoMock, productRepo *ProductRepoMock) *usecase.CartUsecase {
	return usecase.NewCartUsecase(cartRepo, itemRepo, productRepo, 10, 0.05)
}

// =====================
// GetOrCreate / Add
// =====================

func TestCartUsecase_GetOrCreateCart_EmptySession(t *testing.T) {
	uc := newCartUsecase(new(CartRepoMock), new(CartItemRepoMock), new(ProductRepoMock))

	_, err := uc.GetOrCreateCart(context.Background(), "")
	assertErrContains(t, err, "session_id is required")
}

func TestCartUsecase_GetOrCreateCart_EmptyCart(t *testing.T) {
	cartRepo := new(CartRepoMock)
	itemRepo := new(CartItemRepoMock)
	uc := newCartUsecase(cartRepo, itemRepo, new(ProductRepoMock))

	cartRepo.On("GetOrCreateBySessionID", mock.Anything, "guest_1").
		Return(model.Cart{ID: 9, SessionID: "guest_1"}, nil)
	itemRepo.On("ListByCartID", mock.Anything, int64(9)).Return([]model.CartItem{}, nil)

	out, err := uc.GetOrCreateCart(context.Background(), "guest_1")

	assert.NoError(t, err)
	assert.Equal(t, int64(9), out.ID)
	assert.Equal(t, "guest_1", out.SessionID)
	assert.Empty(t, out.Items)
}

func TestCartUsecase_AddToCart_InvalidInputs(t *testing.T) {
	uc := newCartUsecase(new(CartRepoMock), new(CartItemRepoMock), new(ProductRepoMock))

	_, err := uc.AddToCart(context.Background(), "guest_1", usecase.AddCartInput{ProductID: 0, Quantity: 1})
	assertErrContains(t, err, "invalid product_id")

	_, err = uc.AddToCart(context.Background(), "guest_1", usecase.AddCartInput{ProductID: 1, Quantity: 0})
	assertErrContains(t, err, "invalid quantity")
}

func TestCartUsecase_AddToCart_InactiveProduct(t *testing.T) {
	cartRepo := new(CartRepoMock)
	itemRepo := new(CartItemRepoMock)
	productRepo := new(ProductRepoMock)
	uc := newCartUsecase(cartRepo, itemRepo, productRepo)

	cartRepo.On("GetOrCreateBySessionID", mock.Anything, "guest_1").
		Return(model.Cart{ID: 9}, nil)
	productRepo.On("FindByID", mock.Anything, int64(42)).
		Return(model.Product{ID: 42, Stock: 5, IsActive: false}, nil)

	_, err := uc.AddToCart(context.Background(), "guest_1", usecase.AddCartInput{ProductID: 42, Quantity: 1})
	assertErrContains(t, err, "invalid")
}

func TestCartUsecase_AddToCart_CumulativeStockExceeded(t *testing.T) {
	cartRepo := new(CartRepoMock)
	itemRepo := new(CartItemRepoMock)
	productRepo := new(ProductRepoMock)
	uc := newCartUsecase(cartRepo, itemRepo, productRepo)

	cartRepo.On("GetOrCreateBySessionID", mock.Anything, "guest_1").
		Return(model.Cart{ID: 9}, nil)
	productRepo.On("FindByID", mock.Anything, int64(42)).
		Return(model.Product{ID: 42, ENName: "Beans", RegularPrice: 100, Stock: 5, IsActive: true}, nil)
	//既存4個＋追加2個 > 在庫5
	itemRepo.On("ListByCartID", mock.Anything, int64(9)).
		Return([]model.CartItem{{ID: 1, CartID: 9, ProductID: 42, Quantity: 4}}, nil)

	_, err := uc.AddToCart(context.Background(), "guest_1", usecase.AddCartInput{ProductID: 42, Quantity: 2})

	assertErrContains(t, err, "stock exceeded")
	itemRepo.AssertNotCalled(t, "UpsertByCartAndProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_AddToCart_UpsertsSnapshot(t *testing.T) {
	cartRepo := new(CartRepoMock)
	itemRepo := new(CartItemRepoMock)
	productRepo := new(ProductRepoMock)
	uc := newCartUsecase(cartRepo, itemRepo, productRepo)

	p := model.Product{ID: 42, ENName: "Beans", ARName: "فول", Images: `["a.jpg"]`, RegularPrice: 100, SalePrice: 80, Stock: 5, IsActive: true}

	cartRepo.On("GetOrCreateBySessionID", mock.Anything, "guest_1").
		Return(model.Cart{ID: 9, SessionID: "guest_1"}, nil)
	productRepo.On("FindByID", mock.Anything, int64(42)).Return(p, nil)
	itemRepo.On("ListByCartID", mock.Anything, int64(9)).
		Return([]model.CartItem{}, nil).Once()

	wantSnap := model.CartItem{
		ProductID: 42, ENName: "Beans", ARName: "فول", Images: `["a.jpg"]`,
		RegularPrice: 100, SalePrice: 80, Stock: 5,
	}
	itemRepo.On("UpsertByCartAndProduct", mock.Anything, int64(9), int64(2), wantSnap).Return(nil)

	itemRepo.On("ListByCartID", mock.Anything, int64(9)).
		Return([]model.CartItem{{ID: 1, CartID: 9, ProductID: 42, ENName: "Beans", RegularPrice: 100, SalePrice: 80, Stock: 5, Quantity: 2}}, nil)

	out, err := uc.AddToCart(context.Background(), "guest_1", usecase.AddCartInput{ProductID: 42, Quantity: 2})

	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(2), out.Items[0].Quantity)
	itemRepo.AssertExpectations(t)
}

// =====================
// Update / Delete
// =====================

func TestCartUsecase_UpdateCartItem_NotOwned(t *testing.T) {
	cartRepo := new(CartRepoMock)
	itemRepo := new(CartItemRepoMock)
	uc := newCartUsecase(cartRepo, itemRepo, new(ProductRepoMock))

	itemRepo.On("IsOwnedBySession", mock.Anything, int64(7), "guest_1").Return(false, nil)

	_, err := uc.UpdateCartItem(context.Background(), "guest_1", 7, usecase.UpdateCartItemInput{Quantity: 2})
	assertErrContains(t, err, "not found")
}

func TestCartUsecase_UpdateCartItem_QuantityZeroRejected(t *testing.T) {
	uc := newCartUsecase(new(CartRepoMock), new(CartItemRepoMock), new(ProductRepoMock))

	//qty=0はこのAPIでは受けない（削除APIに回す決まり）
	_, err := uc.UpdateCartItem(context.Background(), "guest_1", 7, usecase.UpdateCartItemInput{Quantity: 0})
	assertErrContains(t, err, "invalid quantity")
}

func TestCartUsecase_UpdateCartItem_StockExceeded(t *testing.T) {
	cartRepo := new(CartRepoMock)
	itemRepo := new(CartItemRepoMock)
	productRepo := new(ProductRepoMock)
	uc := newCartUsecase(cartRepo, itemRepo, productRepo)

	itemRepo.On("IsOwnedBySession", mock.Anything, int64(7), "guest_1").Return(true, nil)
	itemRepo.On("FindByID", mock.Anything, int64(7)).
		Return(model.CartItem{ID: 7, CartID: 9, ProductID: 42, Quantity: 2}, nil)
	productRepo.On("FindByID", mock.Anything, int64(42)).
		Return(model.Product{ID: 42, Stock: 5, IsActive: true, RegularPrice: 100}, nil)

	_, err := uc.UpdateCartItem(context.Background(), "guest_1", 7, usecase.UpdateCartItemInput{Quantity: 6})

	assertErrContains(t, err, "stock exceeded")
	itemRepo.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_DeleteCartItem_OK(t *testing.T) {
	cartRepo := new(CartRepoMock)
	itemRepo := new(CartItemRepoMock)
	uc := newCartUsecase(cartRepo, itemRepo, new(ProductRepoMock))

	itemRepo.On("IsOwnedBySession", mock.Anything, int64(7), "guest_1").Return(true, nil)
	itemRepo.On("DeleteByID", mock.Anything, int64(7)).Return(nil)
	cartRepo.On("FindBySessionID", mock.Anything, "guest_1").Return(model.Cart{ID: 9, SessionID: "guest_1"}, nil)
	itemRepo.On("ListByCartID", mock.Anything, int64(9)).Return([]model.CartItem{}, nil)

	out, err := uc.DeleteCartItem(context.Background(), "guest_1", 7)

	assert.NoError(t, err)
	assert.Empty(t, out.Items)
}

// =====================
// Total / Clear
// =====================

func TestCartUsecase_GetCartTotal_Breakdown(t *testing.T) {
	cartRepo := new(CartRepoMock)
	itemRepo := new(CartItemRepoMock)
	uc := newCartUsecase(cartRepo, itemRepo, new(ProductRepoMock))

	cartRepo.On("FindBySessionID", mock.Anything, "guest_1").Return(model.Cart{ID: 9}, nil)
	itemRepo.On("ListByCartID", mock.Anything, int64(9)).Return([]model.CartItem{
		{ID: 1, RegularPrice: 100, SalePrice: 80, Quantity: 2}, // 160
		{ID: 2, RegularPrice: 50, Quantity: 1},                 // 50
	}, nil)

	out, err := uc.GetCartTotal(context.Background(), "guest_1")

	assert.NoError(t, err)
	assert.Equal(t, 210.0, out.Subtotal)
	assert.Equal(t, 10.0, out.DeliveryFee)
	assert.InDelta(t, 10.5, out.Tax, 1e-9) // 210×0.05
	assert.InDelta(t, 230.5, out.Total, 1e-9)
}

func TestCartUsecase_GetCartTotal_NoCartIsEmptyBreakdown(t *testing.T) {
	cartRepo := new(CartRepoMock)
	uc := newCartUsecase(cartRepo, new(CartItemRepoMock), new(ProductRepoMock))

	cartRepo.On("FindBySessionID", mock.Anything, "guest_1").Return(model.Cart{}, repo.ErrNotFound)

	out, err := uc.GetCartTotal(context.Background(), "guest_1")

	assert.NoError(t, err)
	assert.Equal(t, usecase.CartTotalResponse{}, out)
}

func TestCartUsecase_ClearCart_OK(t *testing.T) {
	cartRepo := new(CartRepoMock)
	uc := newCartUsecase(cartRepo, new(CartItemRepoMock), new(ProductRepoMock))

	cartRepo.On("FindBySessionID", mock.Anything, "guest_1").Return(model.Cart{ID: 9}, nil)
	cartRepo.On("Clear", mock.Anything, int64(9)).Return(nil)

	assert.NoError(t, uc.ClearCart(context.Background(), "guest_1"))
	cartRepo.AssertExpectations(t)
}

func TestCartUsecase_ClearCart_NoCartIsNoop(t *testing.T) {
	cartRepo := new(CartRepoMock)
	uc := newCartUsecase(cartRepo, new(CartItemRepoMock), new(ProductRepoMock))

	cartRepo.On("FindBySessionID", mock.Anything, "guest_1").Return(model.Cart{}, repo.ErrNotFound)

	assert.NoError(t, uc.ClearCart(context.Background(), "guest_1"))
	cartRepo.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}
