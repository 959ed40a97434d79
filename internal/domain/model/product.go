package model

import (
	"time"

	"gorm.io/gorm"
)

// Productは二言語（英語/アラビア語）の商品。
// Imagesは1枚のパス、またはJSONエンコード済み配列の文字列が入る。
type Product struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ENName        string         `gorm:"type:varchar(255);not null" json:"e_name"`
	ARName        string         `gorm:"type:varchar(255)" json:"ar_name"`
	ENDescription string         `gorm:"type:text" json:"e_description"`
	ARDescription string         `gorm:"type:text" json:"ar_description"`
	RegularPrice  float64        `gorm:"not null" json:"regular_price"`
	SalePrice     float64        `json:"sale_price"` // 0ならセールなし
	Images        string         `gorm:"type:text" json:"images"`
	Stock         int64          `gorm:"not null" json:"stock"`
	IsActive      bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt     time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// InStockはstockから導出する（in_stockフラグとstockの不整合はstock側を正とする）。
func (p Product) InStock() bool {
	return p.Stock > 0
}

// EffectivePriceはセール価格優先の実売価格。
func (p Product) EffectivePrice() float64 {
	if p.SalePrice > 0 {
		return p.SalePrice
	}
	return p.RegularPrice
}
