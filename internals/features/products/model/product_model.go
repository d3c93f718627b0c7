package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product dipakai read-only oleh core pembayaran sebagai sumber harga & diskon.
// CRUD katalog dikelola di luar core ini.
type Product struct {
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey" json:"product_id"`

	ProductName     string  `gorm:"column:product_name;type:varchar(150);not null" json:"product_name"`
	ProductPriceUSD float64 `gorm:"column:product_price_usd;type:numeric(12,2);not null;check:product_price_usd >= 0" json:"product_price_usd"`

	// Persen 0..100; harga final = price × (1 − discount/100)
	ProductDiscount float64 `gorm:"column:product_discount;type:numeric(5,2);not null;default:0" json:"product_discount"`

	CreatedAt time.Time      `gorm:"column:product_created_at;autoCreateTime" json:"product_created_at"`
	UpdatedAt time.Time      `gorm:"column:product_updated_at;autoUpdateTime" json:"product_updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:product_deleted_at;index" json:"product_deleted_at,omitempty"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ProductID == uuid.Nil {
		p.ProductID = uuid.New()
	}
	return nil
}

// FinalPriceUSD harga setelah diskon, dibulatkan 2 desimal oleh pemanggil jika perlu
func (p *Product) FinalPriceUSD() float64 {
	return p.ProductPriceUSD * (1 - p.ProductDiscount/100)
}
