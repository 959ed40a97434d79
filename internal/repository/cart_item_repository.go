package repository

import (
	"context"

	"app/internal/domain/model"
)

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// 同一商品は数量加算。スナップショットは初回追加時点のものを保持
	UpsertByCartAndProduct(ctx context.Context, cartID int64, addQty int64, snapshot model.CartItem) error
	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error
	DeleteByID(ctx context.Context, cartItemID int64) error
	FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error)
	IsOwnedBySession(ctx context.Context, cartItemID int64, sessionID string) (bool, error)
}
