package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/stockrule"
)

// CartUsecase は /cart の業務ロジックです。
// カートはセッションIDで一意。明細は追加時点の商品スナップショットを持つ。
type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository

	deliveryFee float64
	taxRate     float64
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
	deliveryFee float64,
	taxRate float64,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		deliveryFee:  deliveryFee,
		taxRate:      taxRate,
	}
}

type CartItemResponse struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"product_id"`
	ENName       string    `json:"e_name"`
	ARName       string    `json:"ar_name"`
	Images       string    `json:"images"`
	RegularPrice float64   `json:"regular_price"`
	SalePrice    float64   `json:"sale_price"`
	Stock        int64     `json:"stock"`
	InStock      bool      `json:"in_stock"`
	Quantity     int64     `json:"quantity"`
	AddedAt      time.Time `json:"added_at"`
}

type CartResponse struct {
	ID        int64              `json:"id"`
	SessionID string             `json:"session_id"`
	CreatedAt time.Time          `json:"created_at"`
	Items     []CartItemResponse `json:"items"`
}

// GET /cart/totalの返却
type CartTotalResponse struct {
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"delivery_fee"`
	Tax         float64 `json:"tax"`
	Total       float64 `json:"total"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

type UpdateCartItemInput struct {
	Quantity int64
}

// GetOrCreateCart はカート取得（無ければ作って空を返す）。
func (u *CartUsecase) GetOrCreateCart(ctx context.Context, sessionID string) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "session_id is required")
	}

	cart, err := u.cartRepo.GetOrCreateBySessionID(ctx, sessionID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart)
}

// AddToCart はカートに追加（同一商品は数量加算）。
// 在庫超過はstockruleで判定して400を返す。
func (u *CartUsecase) AddToCart(ctx context.Context, sessionID string, in AddCartInput) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "session_id is required")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	// カート取得（無ければ作成）
	cart, err := u.cartRepo.GetOrCreateBySessionID(ctx, sessionID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 商品チェック（公開のみ）
	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}

	// 既存数量を調べる
	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var existingQty int64 = 0
	for _, it := range items {
		if it.ProductID == in.ProductID {
			existingQty = it.Quantity
			break
		}
	}

	if err := stockrule.CanAdd(p.InStock(), p.Stock, existingQty, in.Quantity); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	// Upsert（同一商品は加算）。スナップショットは追加時点の商品情報
	snapshot := model.CartItem{
		ProductID:    p.ID,
		ENName:       p.ENName,
		ARName:       p.ARName,
		Images:       p.Images,
		RegularPrice: p.RegularPrice,
		SalePrice:    p.SalePrice,
		Stock:        p.Stock,
	}
	if err := u.cartItemRepo.UpsertByCartAndProduct(ctx, cart.ID, in.Quantity, snapshot); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart)
}

// 数量変更（所有チェック＋在庫チェック）。qty=0は受け付けない（削除APIに回す）。
func (u *CartUsecase) UpdateCartItem(ctx context.Context, sessionID string, cartItemID int64, in UpdateCartItemInput) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "session_id is required")
	}
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	owned, err := u.cartItemRepo.IsOwnedBySession(ctx, cartItemID, sessionID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//商品の現在在庫でチェック
	p, err := u.productRepo.FindByID(ctx, item.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err := stockrule.CanUpdate(p.Stock, in.Quantity); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	if err := u.cartItemRepo.UpdateQuantity(ctx, cartItemID, in.Quantity); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	cart, err := u.cartRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.buildCartResponse(ctx, cart)
}

// 明細削除
func (u *CartUsecase) DeleteCartItem(ctx context.Context, sessionID string, cartItemID int64) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "session_id is required")
	}
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	owned, err := u.cartItemRepo.IsOwnedBySession(ctx, cartItemID, sessionID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	cart, err := u.cartRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.buildCartResponse(ctx, cart)
}

// GetCartTotal は合計の内訳（小計/配送料/税/総額）を返す。読み取り専用。
func (u *CartUsecase) GetCartTotal(ctx context.Context, sessionID string) (CartTotalResponse, error) {
	if sessionID == "" {
		return CartTotalResponse{}, NewHTTPError(http.StatusBadRequest, "session_id is required")
	}

	cart, err := u.cartRepo.FindBySessionID(ctx, sessionID)
	if err == repo.ErrNotFound {
		// カート未作成は空の内訳
		return CartTotalResponse{}, nil
	}
	if err != nil {
		return CartTotalResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartTotalResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var subtotal float64 = 0
	for _, it := range items {
		subtotal += it.UnitPrice() * float64(it.Quantity)
	}

	fee := u.deliveryFee
	if len(items) == 0 {
		fee = 0
	}
	tax := subtotal * u.taxRate

	return CartTotalResponse{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Tax:         tax,
		Total:       subtotal + fee + tax,
	}, nil
}

// ClearCart はカートの明細を全削除する。カート自体は残す。
func (u *CartUsecase) ClearCart(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return NewHTTPError(http.StatusBadRequest, "session_id is required")
	}

	cart, err := u.cartRepo.FindBySessionID(ctx, sessionID)
	if err == repo.ErrNotFound {
		// 無ければ消すものも無い
		return nil
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartRepo.Clear(ctx, cart.ID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// cartの明細をまとめてCartResponseを作る。
func (u *CartUsecase) buildCartResponse(ctx context.Context, cart model.Cart) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]CartItemResponse, 0, len(items))

	for _, it := range items {
		respItems = append(respItems, CartItemResponse{
			ID:           it.ID,
			ProductID:    it.ProductID,
			ENName:       it.ENName,
			ARName:       it.ARName,
			Images:       it.Images,
			RegularPrice: it.RegularPrice,
			SalePrice:    it.SalePrice,
			Stock:        it.Stock,
			InStock:      it.Stock > 0,
			Quantity:     it.Quantity,
			AddedAt:      it.AddedAt,
		})
	}

	return CartResponse{
		ID:        cart.ID,
		SessionID: cart.SessionID,
		CreatedAt: cart.CreatedAt,
		Items:     respItems,
	}, nil
}
