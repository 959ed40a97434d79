package model

import "time"

// カートの明細。
// 追加時点の商品情報（名称/画像/価格/在庫上限）を必ずスナップショットで保存。
type CartItem struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID       int64     `gorm:"not null;index" json:"cart_id"`
	ProductID    int64     `gorm:"not null;index" json:"product_id"`
	ENName       string    `gorm:"type:varchar(255)" json:"e_name"`
	ARName       string    `gorm:"type:varchar(255)" json:"ar_name"`
	Images       string    `gorm:"type:text" json:"images"`
	RegularPrice float64   `gorm:"not null" json:"regular_price"`
	SalePrice    float64   `json:"sale_price"`
	Stock        int64     `gorm:"not null" json:"stock"`
	Quantity     int64     `gorm:"not null" json:"quantity"`
	AddedAt      time.Time `gorm:"not null" json:"added_at"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// UnitPriceはセール価格優先の実売価格。
func (it CartItem) UnitPrice() float64 {
	if it.SalePrice > 0 {
		return it.SalePrice
	}
	return it.RegularPrice
}
