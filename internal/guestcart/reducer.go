// Package guestcart は未ログインセッション用のローカルカート。
// Reduceは純粋な状態遷移で、永続化はStore側の境界で行う。
package guestcart

import (
	"errors"
	"fmt"
	"time"

	"app/internal/domain/model"
	"app/internal/stockrule"
)

// 在庫・数量の不変条件に反した操作。状態は変更されない。
var ErrRejected = errors.New("rejected")

// Item はゲストカートの明細。商品スナップショット＋数量。
type Item struct {
	ProductID    int64     `json:"product_id"`
	ENName       string    `json:"e_name"`
	ARName       string    `json:"ar_name"`
	Images       string    `json:"images"`
	RegularPrice float64   `json:"regular_price"`
	SalePrice    float64   `json:"sale_price"`
	Stock        int64     `json:"stock"`
	CartQuantity int64     `json:"cart_quantity"`
	AddedAt      time.Time `json:"added_at"`
}

// UnitPriceはセール価格優先。どちらも無ければ0。
func (it Item) UnitPrice() float64 {
	if it.SalePrice > 0 {
		return it.SalePrice
	}
	return it.RegularPrice
}

type State struct {
	Items      []Item  `json:"items"`
	TotalItems int64   `json:"total_items"`
	TotalPrice float64 `json:"total_price"`
	IsOpen     bool    `json:"-"`
}

func Initial() State {
	return State{Items: []Item{}}
}

// Action はReduceへの入力。
type Action interface{ isAction() }

type AddToCart struct {
	Product  model.Product
	Quantity int64
	Now      time.Time
}

type RemoveFromCart struct {
	ProductID int64
}

type UpdateQuantity struct {
	ProductID int64
	Quantity  int64
}

type ClearCart struct{}
type ToggleCart struct{}
type OpenCart struct{}
type CloseCart struct{}

type LoadCart struct {
	State State
}

func (AddToCart) isAction()      {}
func (RemoveFromCart) isAction() {}
func (UpdateQuantity) isAction() {}
func (ClearCart) isAction()      {}
func (ToggleCart) isAction()     {}
func (OpenCart) isAction()       {}
func (CloseCart) isAction()      {}
func (LoadCart) isAction()       {}

// Reduce は状態遷移。拒否された操作はErrRejectedを返し状態は元のまま。
// 合計は毎回ゼロから再計算する（差分更新はドリフトのもと）。
func Reduce(s State, a Action) (State, error) {
	switch act := a.(type) {

	case AddToCart:
		var existing int64 = 0
		for _, it := range s.Items {
			if it.ProductID == act.Product.ID {
				existing = it.CartQuantity
				break
			}
		}

		if err := stockrule.CanAdd(act.Product.InStock(), act.Product.Stock, existing, act.Quantity); err != nil {
			return s, fmt.Errorf("%w: %v", ErrRejected, err)
		}

		next := cloneItems(s.Items)
		if existing > 0 {
			for i := range next {
				if next[i].ProductID == act.Product.ID {
					next[i].CartQuantity += act.Quantity
					break
				}
			}
		} else {
			now := act.Now
			if now.IsZero() {
				now = time.Now()
			}
			next = append(next, Item{
				ProductID:    act.Product.ID,
				ENName:       act.Product.ENName,
				ARName:       act.Product.ARName,
				Images:       act.Product.Images,
				RegularPrice: act.Product.RegularPrice,
				SalePrice:    act.Product.SalePrice,
				Stock:        act.Product.Stock,
				CartQuantity: act.Quantity,
				AddedAt:      now,
			})
		}
		s.Items = next
		return recompute(s), nil

	case RemoveFromCart:
		next := make([]Item, 0, len(s.Items))
		for _, it := range s.Items {
			if it.ProductID != act.ProductID {
				next = append(next, it)
			}
		}
		s.Items = next
		return recompute(s), nil

	case UpdateQuantity:
		// 0以下は削除に振り替える
		if act.Quantity <= 0 {
			return Reduce(s, RemoveFromCart{ProductID: act.ProductID})
		}

		idx := -1
		for i, it := range s.Items {
			if it.ProductID == act.ProductID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return s, fmt.Errorf("%w: product %d not in cart", ErrRejected, act.ProductID)
		}

		if err := stockrule.CanUpdate(s.Items[idx].Stock, act.Quantity); err != nil {
			return s, fmt.Errorf("%w: %v", ErrRejected, err)
		}

		next := cloneItems(s.Items)
		next[idx].CartQuantity = act.Quantity
		s.Items = next
		return recompute(s), nil

	case ClearCart:
		return Initial(), nil

	case ToggleCart:
		s.IsOpen = !s.IsOpen
		return s, nil

	case OpenCart:
		s.IsOpen = true
		return s, nil

	case CloseCart:
		s.IsOpen = false
		return s, nil

	case LoadCart:
		loaded := act.State
		loaded.IsOpen = s.IsOpen
		return recompute(loaded), nil
	}

	return s, nil
}

func cloneItems(items []Item) []Item {
	next := make([]Item, len(items))
	copy(next, items)
	return next
}

// 合計（点数・金額）をゼロから再計算する
func recompute(s State) State {
	var count int64 = 0
	var price float64 = 0
	for _, it := range s.Items {
		count += it.CartQuantity
		price += it.UnitPrice() * float64(it.CartQuantity)
	}
	s.TotalItems = count
	s.TotalPrice = price
	return s
}
