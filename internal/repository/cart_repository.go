package repository

import (
	"context"

	"app/internal/domain/model"
)

type CartRepository interface {
	GetOrCreateBySessionID(ctx context.Context, sessionID string) (model.Cart, error)
	FindBySessionID(ctx context.Context, sessionID string) (model.Cart, error)
	// 指定カートの明細を全削除
	Clear(ctx context.Context, cartID int64) error
}
