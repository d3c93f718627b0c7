package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItem = satu baris keranjang milik user (satu produk per baris)
type CartItem struct {
	CartItemID uuid.UUID `gorm:"column:cart_item_id;type:uuid;primaryKey" json:"cart_item_id"`

	CartItemUserID    uuid.UUID `gorm:"column:cart_item_user_id;type:uuid;not null;index" json:"cart_item_user_id"`
	CartItemProductID uuid.UUID `gorm:"column:cart_item_product_id;type:uuid;not null" json:"cart_item_product_id"`
	CartItemQuantity  int       `gorm:"column:cart_item_quantity;not null;check:cart_item_quantity > 0" json:"cart_item_quantity"`

	CreatedAt time.Time      `gorm:"column:cart_item_created_at;autoCreateTime" json:"cart_item_created_at"`
	UpdatedAt time.Time      `gorm:"column:cart_item_updated_at;autoUpdateTime" json:"cart_item_updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:cart_item_deleted_at;index" json:"cart_item_deleted_at,omitempty"`
}

func (CartItem) TableName() string { return "cart_items" }

func (ci *CartItem) BeforeCreate(tx *gorm.DB) error {
	if ci.CartItemID == uuid.Nil {
		ci.CartItemID = uuid.New()
	}
	return nil
}
