package service

import (
	"context"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	cartModel "tokoku_backend/internals/features/carts/model"
	productModel "tokoku_backend/internals/features/products/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&productModel.Product{}, &cartModel.CartItem{}))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price, discount float64) uuid.UUID {
	t.Helper()
	p := productModel.Product{ProductName: name, ProductPriceUSD: price, ProductDiscount: discount}
	require.NoError(t, db.Create(&p).Error)
	return p.ProductID
}

func TestGetCartSummaryTotals(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	userID := uuid.New()

	kopi := seedProduct(t, db, "Kopi Gayo", 20, 10)  // final 18
	gula := seedProduct(t, db, "Gula Aren", 4.50, 0) // final 4.50
	require.NoError(t, db.Create(&cartModel.CartItem{
		CartItemUserID: userID, CartItemProductID: kopi, CartItemQuantity: 2,
	}).Error)
	require.NoError(t, db.Create(&cartModel.CartItem{
		CartItemUserID: userID, CartItemProductID: gula, CartItemQuantity: 3,
	}).Error)

	summary, err := GetCartSummary(ctx, db, userID)
	require.NoError(t, err)
	require.Len(t, summary.Lines, 2)
	assert.InDelta(t, 49.5, summary.TotalUSD, 0.001) // 2×18 + 3×4.50

	assert.Equal(t, "Kopi Gayo", summary.Lines[0].ProductName)
	assert.InDelta(t, 18.0, summary.Lines[0].FinalPriceUSD, 0.001)
	assert.InDelta(t, 36.0, summary.Lines[0].SubtotalUSD, 0.001)
}

func TestGetCartSummaryEmpty(t *testing.T) {
	db := setupTestDB(t)

	_, err := GetCartSummary(context.Background(), db, uuid.New())
	require.Error(t, err)
	fe, ok := err.(*fiber.Error)
	require.True(t, ok)
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)
	assert.Equal(t, "Keranjang belanja kosong", fe.Message)
}

func TestGetCartSummarySkipsDeletedProduct(t *testing.T) {
	db := setupTestDB(t)
	userID := uuid.New()

	productID := seedProduct(t, db, "Produk Lama", 10, 0)
	require.NoError(t, db.Create(&cartModel.CartItem{
		CartItemUserID: userID, CartItemProductID: productID, CartItemQuantity: 1,
	}).Error)
	require.NoError(t, db.Delete(&productModel.Product{}, "product_id = ?", productID).Error)

	// Produk yang sudah dihapus dari katalog tidak ikut dihitung
	_, err := GetCartSummary(context.Background(), db, userID)
	require.Error(t, err)
}

func TestUpsertItemUpdatesQuantity(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	userID := uuid.New()
	productID := seedProduct(t, db, "Teh Melati", 3, 0)

	first, err := UpsertItem(ctx, db, userID, productID, 1)
	require.NoError(t, err)

	second, err := UpsertItem(ctx, db, userID, productID, 5)
	require.NoError(t, err)
	assert.Equal(t, first.CartItemID, second.CartItemID)
	assert.Equal(t, 5, second.CartItemQuantity)

	var count int64
	require.NoError(t, db.Model(&cartModel.CartItem{}).
		Where("cart_item_user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpsertItemRejectsNonPositiveQuantity(t *testing.T) {
	db := setupTestDB(t)

	_, err := UpsertItem(context.Background(), db, uuid.New(), uuid.New(), 0)
	require.Error(t, err)
}

func TestRemoveItemScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	userID := uuid.New()
	productID := seedProduct(t, db, "Madu", 7, 0)

	item, err := UpsertItem(ctx, db, userID, productID, 1)
	require.NoError(t, err)

	// User lain tidak bisa menghapus item ini
	err = RemoveItem(ctx, db, uuid.New(), item.CartItemID)
	require.Error(t, err)
	fe, ok := err.(*fiber.Error)
	require.True(t, ok)
	assert.Equal(t, fiber.StatusNotFound, fe.Code)

	require.NoError(t, RemoveItem(ctx, db, userID, item.CartItemID))
}
