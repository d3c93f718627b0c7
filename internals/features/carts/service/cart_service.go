package service

import (
	"context"
	"math"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	cartModel "tokoku_backend/internals/features/carts/model"
)

/* ===================== Tipe ===================== */

// CartLine = baris keranjang + snapshot harga produk saat dibaca.
// final_price = price × (1 − discount/100)
type CartLine struct {
	ProductID     uuid.UUID `json:"product_id"`
	ProductName   string    `json:"product_name"`
	Quantity      int       `json:"quantity"`
	UnitPriceUSD  float64   `json:"unit_price_usd"`
	Discount      float64   `json:"discount"`
	FinalPriceUSD float64   `json:"final_price_usd"`
	SubtotalUSD   float64   `json:"subtotal_usd"`
}

type CartSummary struct {
	TotalUSD float64    `json:"total_usd"`
	Lines    []CartLine `json:"lines"`
}

/* ===================== Read ===================== */

// GetCartSummary baca isi keranjang + hitung total.
// 400 "Keranjang belanja kosong" kalau tidak ada baris.
func GetCartSummary(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*CartSummary, error) {
	type row struct {
		ProductID   uuid.UUID `gorm:"column:cart_item_product_id"`
		ProductName string    `gorm:"column:product_name"`
		Quantity    int       `gorm:"column:cart_item_quantity"`
		PriceUSD    float64   `gorm:"column:product_price_usd"`
		Discount    float64   `gorm:"column:product_discount"`
	}

	var rows []row
	if err := db.WithContext(ctx).
		Table("cart_items").
		Select("cart_items.cart_item_product_id, products.product_name, cart_items.cart_item_quantity, products.product_price_usd, products.product_discount").
		Joins("JOIN products ON products.product_id = cart_items.cart_item_product_id AND products.product_deleted_at IS NULL").
		Where("cart_items.cart_item_user_id = ? AND cart_items.cart_item_deleted_at IS NULL", userID).
		Order("cart_items.cart_item_created_at ASC").
		Scan(&rows).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if len(rows) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Keranjang belanja kosong")
	}

	summary := &CartSummary{Lines: make([]CartLine, 0, len(rows))}
	for _, r := range rows {
		final := round2(r.PriceUSD * (1 - r.Discount/100))
		sub := round2(final * float64(r.Quantity))
		summary.Lines = append(summary.Lines, CartLine{
			ProductID:     r.ProductID,
			ProductName:   r.ProductName,
			Quantity:      r.Quantity,
			UnitPriceUSD:  r.PriceUSD,
			Discount:      r.Discount,
			FinalPriceUSD: final,
			SubtotalUSD:   sub,
		})
		summary.TotalUSD = round2(summary.TotalUSD + sub)
	}
	return summary, nil
}

/* ===================== Write ===================== */

// ClearCart hapus semua baris keranjang user (soft delete).
func ClearCart(ctx context.Context, db *gorm.DB, userID uuid.UUID) error {
	return db.WithContext(ctx).
		Where("cart_item_user_id = ?", userID).
		Delete(&cartModel.CartItem{}).Error
}

// UpsertItem tambah produk ke keranjang, atau update qty kalau sudah ada.
func UpsertItem(ctx context.Context, db *gorm.DB, userID, productID uuid.UUID, quantity int) (*cartModel.CartItem, error) {
	if quantity <= 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Jumlah barang harus lebih dari 0")
	}

	var existing cartModel.CartItem
	err := db.WithContext(ctx).
		Where("cart_item_user_id = ? AND cart_item_product_id = ?", userID, productID).
		First(&existing).Error
	if err == nil {
		existing.CartItemQuantity = quantity
		if err := db.WithContext(ctx).Save(&existing).Error; err != nil {
			return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	item := cartModel.CartItem{
		CartItemUserID:    userID,
		CartItemProductID: productID,
		CartItemQuantity:  quantity,
	}
	if err := db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return &item, nil
}

// RemoveItem hapus satu baris milik user
func RemoveItem(ctx context.Context, db *gorm.DB, userID, cartItemID uuid.UUID) error {
	res := db.WithContext(ctx).
		Where("cart_item_id = ? AND cart_item_user_id = ?", cartItemID, userID).
		Delete(&cartModel.CartItem{})
	if res.Error != nil {
		return fiber.NewError(fiber.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "Item keranjang tidak ditemukan")
	}
	return nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
