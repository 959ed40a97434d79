// Package stockrule は在庫まわりの判定を一箇所に集める。
// ゲストカートのreducerとサーバー側usecaseの両方がここを使う。
package stockrule

import "fmt"

// CanAddは「現数量existingに対してaddQtyを追加してよいか」を判定する。
// inStock=false、addQty<=0、追加後の累計がstock超過、のいずれも拒否。
func CanAdd(inStock bool, stock int64, existing int64, addQty int64) error {
	if !inStock {
		return fmt.Errorf("product is out of stock")
	}
	if addQty <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if existing+addQty > stock {
		return fmt.Errorf("stock exceeded: have %d, want %d", stock, existing+addQty)
	}
	return nil
}

// CanUpdateは数量の変更可否を判定する。qty<=0はここでは扱わない
// （呼び出し側が削除に振り替える決まり）。
func CanUpdate(stock int64, qty int64) error {
	if qty < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}
	if qty > stock {
		return fmt.Errorf("stock exceeded: have %d, want %d", stock, qty)
	}
	return nil
}
