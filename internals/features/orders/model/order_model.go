package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* ===================== Constants ===================== */

const (
	OrderStatusCreated           = "created"
	OrderStatusPending           = "pending"
	OrderStatusProcessing        = "processing"
	OrderStatusPaidPendingReview = "paid_pending_review"
	OrderStatusShipping          = "shipping"
	OrderStatusDelivered         = "delivered"
	OrderStatusCancelled         = "cancelled"
)

/* ===================== Model ===================== */

type Order struct {
	OrderID uuid.UUID `gorm:"column:order_id;type:uuid;primaryKey" json:"order_id"`

	OrderUserID    uuid.UUID `gorm:"column:order_user_id;type:uuid;not null;index" json:"order_user_id"`
	OrderAddressID uuid.UUID `gorm:"column:order_address_id;type:uuid;not null" json:"order_address_id"`

	// Total dihitung sekali dari cart saat order dibuat; tidak pernah dihitung ulang
	OrderTotalUSD float64 `gorm:"column:order_total_usd;type:numeric(12,2);not null;check:order_total_usd >= 0" json:"order_total_usd"`

	OrderStatus string `gorm:"column:order_status;type:varchar(30);not null;default:'pending'" json:"order_status"`

	// Hanya terisi untuk alur setor tunai/kripto
	OrderDepositImageURL *string `gorm:"column:order_deposit_image_url;type:text" json:"order_deposit_image_url,omitempty"`

	OrderItems []OrderItem `gorm:"foreignKey:OrderItemOrderID;references:OrderID" json:"order_items,omitempty"`

	CreatedAt time.Time      `gorm:"column:order_created_at;autoCreateTime" json:"order_created_at"`
	UpdatedAt time.Time      `gorm:"column:order_updated_at;autoUpdateTime" json:"order_updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:order_deleted_at;index" json:"order_deleted_at,omitempty"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.OrderID == uuid.Nil {
		o.OrderID = uuid.New()
	}
	return nil
}

type OrderItem struct {
	OrderItemID      uuid.UUID `gorm:"column:order_item_id;type:uuid;primaryKey" json:"order_item_id"`
	OrderItemOrderID uuid.UUID `gorm:"column:order_item_order_id;type:uuid;not null;index" json:"order_item_order_id"`

	OrderItemProductID uuid.UUID `gorm:"column:order_item_product_id;type:uuid;not null" json:"order_item_product_id"`
	OrderItemQuantity  int       `gorm:"column:order_item_quantity;not null;check:order_item_quantity > 0" json:"order_item_quantity"`

	// Harga snapshot saat order dibuat (sudah termasuk diskon); perubahan katalog tidak berpengaruh
	OrderItemPriceUSD float64 `gorm:"column:order_item_price_usd;type:numeric(12,2);not null" json:"order_item_price_usd"`

	CreatedAt time.Time `gorm:"column:order_item_created_at;autoCreateTime" json:"order_item_created_at"`
}

func (OrderItem) TableName() string { return "order_items" }

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.OrderItemID == uuid.Nil {
		i.OrderItemID = uuid.New()
	}
	return nil
}

/* ===================== Helpers ===================== */

func (o *Order) IsTerminal() bool {
	return o.OrderStatus == OrderStatusDelivered || o.OrderStatus == OrderStatusCancelled
}

// IsAwaitingPayment true kalau order masih bisa dibayar / regenerate transaksi
func (o *Order) IsAwaitingPayment() bool {
	return o.OrderStatus == OrderStatusCreated || o.OrderStatus == OrderStatusPending
}

// StatusRank urutan maju status order; cancelled di luar urutan (jalur keluar admin)
func StatusRank(status string) int {
	switch status {
	case OrderStatusCreated:
		return 0
	case OrderStatusPending:
		return 1
	case OrderStatusPaidPendingReview:
		return 2
	case OrderStatusProcessing:
		return 3
	case OrderStatusShipping:
		return 4
	case OrderStatusDelivered:
		return 5
	default:
		return -1
	}
}
