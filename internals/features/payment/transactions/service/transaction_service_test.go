package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	addrModel "tokoku_backend/internals/features/addresses/model"
	cartModel "tokoku_backend/internals/features/carts/model"
	orderModel "tokoku_backend/internals/features/orders/model"
	orderService "tokoku_backend/internals/features/orders/service"
	"tokoku_backend/internals/features/payment/gateway"
	"tokoku_backend/internals/features/payment/transactions/dto"
	txModel "tokoku_backend/internals/features/payment/transactions/model"
	productModel "tokoku_backend/internals/features/products/model"
)

/* ===================== Fixtures ===================== */

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&productModel.Product{},
		&cartModel.CartItem{},
		&addrModel.Address{},
		&orderModel.Order{},
		&orderModel.OrderItem{},
		&txModel.PaymentTransaction{},
		&txModel.PaymentGatewayEvent{},
	))
	return db
}

// fakeGateway rekam panggilan dan balikin hasil yang sudah diset
type fakeGateway struct {
	initiateCalls int
	phoneCalls    int
	lastInitiate  gateway.InitiateRequest

	result   *gateway.InitiateResult
	err      error
	phoneRaw map[string]interface{}
}

func (f *fakeGateway) InitiatePayment(ctx context.Context, req gateway.InitiateRequest) (*gateway.InitiateResult, error) {
	f.initiateCalls++
	f.lastInitiate = req
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &gateway.InitiateResult{
		PaymentID:   "pay_fake_1",
		RedirectURL: "https://pay.example.com/r/fake",
		Raw:         map[string]interface{}{"id": "pay_fake_1"},
	}, nil
}

func (f *fakeGateway) ConfirmPayment(ctx context.Context, paymentID, clientTransactionID string) (*gateway.ConfirmResult, error) {
	return &gateway.ConfirmResult{StatusCode: 200, Status: gateway.StatusPending}, nil
}

func (f *fakeGateway) InitiatePhoneCharge(ctx context.Context, phoneNumber string, amountUSD float64, clientTransactionID string) (map[string]interface{}, error) {
	f.phoneCalls++
	if f.err != nil {
		return nil, f.err
	}
	if f.phoneRaw != nil {
		return f.phoneRaw, nil
	}
	return map[string]interface{}{"id": "chrg_phone_1", "phone": phoneNumber}, nil
}

func newTestStack(t *testing.T) (*gorm.DB, *fakeGateway, *TransactionService) {
	t.Helper()
	db := setupTestDB(t)
	fake := &fakeGateway{}
	registry := gateway.NewRegistry()
	registry.Register(txModel.ProviderOmise, fake)

	orders := orderService.NewOrderLinkService(db, nil)
	orders.LookupEmail = nil
	svc := NewTransactionService(db, registry, orders)
	return db, fake, svc
}

func seedCartAndAddress(t *testing.T, db *gorm.DB, userID uuid.UUID) uuid.UUID {
	t.Helper()
	product := productModel.Product{
		ProductName:     "Teh Melati 100g",
		ProductPriceUSD: 20,
		ProductDiscount: 10,
	}
	require.NoError(t, db.Create(&product).Error)
	require.NoError(t, db.Create(&cartModel.CartItem{
		CartItemUserID:    userID,
		CartItemProductID: product.ProductID,
		CartItemQuantity:  2,
	}).Error)

	addr := addrModel.Address{
		AddressUserID: userID,
		AddressLine:   "Jl. Kenanga No. 8",
		AddressCity:   "Jakarta",
	}
	require.NoError(t, db.Create(&addr).Error)
	return addr.AddressID
}

func fiberCode(t *testing.T, err error) int {
	t.Helper()
	fe, ok := err.(*fiber.Error)
	require.True(t, ok, "expected *fiber.Error, got %T: %v", err, err)
	return fe.Code
}

/* ===================== CreateTransaction ===================== */

func TestCreateTransactionFromCart(t *testing.T) {
	db, fake, svc := newTestStack(t)
	ctx := context.Background()

	userID := uuid.New()
	addressID := seedCartAndAddress(t, db, userID)

	resp, err := svc.CreateTransaction(ctx, userID, &dto.CreateTransactionRequest{
		ClientTransactionID: "TRX-create-1",
		Provider:            txModel.ProviderOmise,
		AddressID:           &addressID,
	})
	require.NoError(t, err)

	txn := resp.Transaction
	assert.Equal(t, txModel.TransactionStatusPending, txn.PaymentTransactionStatus)
	assert.InDelta(t, 36.0, txn.PaymentTransactionAmountUSD, 0.001)
	assert.Equal(t, "https://pay.example.com/r/fake", resp.RedirectURL)
	assert.Equal(t, "pay_fake_1", txn.PaymentTransactionGatewayData["payment_id"])

	// Gateway menerima nominal & id klien yang benar
	assert.Equal(t, 1, fake.initiateCalls)
	assert.Equal(t, "TRX-create-1", fake.lastInitiate.ClientTransactionID)
	assert.InDelta(t, 36.0, fake.lastInitiate.AmountUSD, 0.001)
	require.Len(t, fake.lastInitiate.Items, 1)
	assert.Equal(t, 2, fake.lastInitiate.Items[0].Qty)

	// Keranjang belum dikosongkan: itu terjadi saat order dibuat
	var cartCount int64
	require.NoError(t, db.Model(&cartModel.CartItem{}).
		Where("cart_item_user_id = ?", userID).Count(&cartCount).Error)
	assert.Equal(t, int64(1), cartCount)
}

func TestCreateTransactionEmptyCart(t *testing.T) {
	db, _, svc := newTestStack(t)

	userID := uuid.New()
	addr := addrModel.Address{
		AddressUserID: userID,
		AddressLine:   "Jl. Anggrek No. 1",
		AddressCity:   "Surabaya",
	}
	require.NoError(t, db.Create(&addr).Error)

	_, err := svc.CreateTransaction(context.Background(), userID, &dto.CreateTransactionRequest{
		ClientTransactionID: "TRX-empty",
		Provider:            txModel.ProviderOmise,
		AddressID:           &addr.AddressID,
	})
	require.Error(t, err)
	assert.Equal(t, fiber.StatusBadRequest, fiberCode(t, err))
	assert.Contains(t, err.Error(), "Keranjang belanja kosong")
}

func TestCreateTransactionIdempotentByClientID(t *testing.T) {
	db, fake, svc := newTestStack(t)
	ctx := context.Background()

	userID := uuid.New()
	addressID := seedCartAndAddress(t, db, userID)
	req := &dto.CreateTransactionRequest{
		ClientTransactionID: "TRX-same",
		Provider:            txModel.ProviderOmise,
		AddressID:           &addressID,
	}

	first, err := svc.CreateTransaction(ctx, userID, req)
	require.NoError(t, err)

	// Retry klien dengan id sama tidak boleh charge dua kali
	second, err := svc.CreateTransaction(ctx, userID, req)
	require.NoError(t, err)
	assert.Equal(t, first.Transaction.PaymentTransactionID, second.Transaction.PaymentTransactionID)
	assert.Equal(t, first.RedirectURL, second.RedirectURL)
	assert.Equal(t, 1, fake.initiateCalls)
}

func TestCreateTransactionUnregisteredProvider(t *testing.T) {
	_, _, svc := newTestStack(t)

	_, err := svc.CreateTransaction(context.Background(), uuid.New(), &dto.CreateTransactionRequest{
		ClientTransactionID: "TRX-cash",
		Provider:            txModel.ProviderCashDeposit,
	})
	require.Error(t, err)
	assert.Equal(t, fiber.StatusBadRequest, fiberCode(t, err))
}

func TestCreateTransactionNonDefaultProviderNeedsMethod(t *testing.T) {
	db, _, svc := newTestStack(t)
	svc.Gateways.Register(txModel.ProviderMidtrans, &fakeGateway{})

	userID := uuid.New()
	addressID := seedCartAndAddress(t, db, userID)

	_, err := svc.CreateTransaction(context.Background(), userID, &dto.CreateTransactionRequest{
		ClientTransactionID: "TRX-mid",
		Provider:            txModel.ProviderMidtrans,
		AddressID:           &addressID,
	})
	require.Error(t, err)
	assert.Equal(t, fiber.StatusBadRequest, fiberCode(t, err))
}

func TestCreateTransactionForExistingOrder(t *testing.T) {
	db, fake, svc := newTestStack(t)
	ctx := context.Background()

	userID := uuid.New()
	product := productModel.Product{ProductName: "Gula Aren", ProductPriceUSD: 5}
	require.NoError(t, db.Create(&product).Error)

	order := orderModel.Order{
		OrderUserID:    userID,
		OrderAddressID: uuid.New(),
		OrderTotalUSD:  15,
		OrderStatus:    orderModel.OrderStatusPending,
	}
	require.NoError(t, db.Create(&order).Error)
	require.NoError(t, db.Create(&orderModel.OrderItem{
		OrderItemOrderID:   order.OrderID,
		OrderItemProductID: product.ProductID,
		OrderItemQuantity:  3,
		OrderItemPriceUSD:  5,
	}).Error)

	resp, err := svc.CreateTransaction(ctx, userID, &dto.CreateTransactionRequest{
		ClientTransactionID: "TRX-retry",
		Provider:            txModel.ProviderOmise,
		OrderID:             &order.OrderID,
	})
	require.NoError(t, err)

	// Nominal dari total order yang tersimpan, bukan dari keranjang
	assert.InDelta(t, 15.0, resp.Transaction.PaymentTransactionAmountUSD, 0.001)
	require.NotNil(t, resp.Transaction.PaymentTransactionOrderID)
	assert.Equal(t, order.OrderID, *resp.Transaction.PaymentTransactionOrderID)
	require.Len(t, fake.lastInitiate.Items, 1)
	assert.Equal(t, "Gula Aren", fake.lastInitiate.Items[0].Name)
}

func TestCreateTransactionOrderNotPayable(t *testing.T) {
	db, _, svc := newTestStack(t)

	userID := uuid.New()
	order := orderModel.Order{
		OrderUserID:    userID,
		OrderAddressID: uuid.New(),
		OrderTotalUSD:  15,
		OrderStatus:    orderModel.OrderStatusDelivered,
	}
	require.NoError(t, db.Create(&order).Error)

	_, err := svc.CreateTransaction(context.Background(), userID, &dto.CreateTransactionRequest{
		ClientTransactionID: "TRX-late",
		Provider:            txModel.ProviderOmise,
		OrderID:             &order.OrderID,
	})
	require.Error(t, err)
	assert.Equal(t, fiber.StatusBadRequest, fiberCode(t, err))
}

func TestCreateTransactionGatewayErrorMapping(t *testing.T) {
	db, fake, svc := newTestStack(t)
	userID := uuid.New()
	addressID := seedCartAndAddress(t, db, userID)

	fake.err = gateway.ErrDuplicateClientTransactionID
	_, err := svc.CreateTransaction(context.Background(), userID, &dto.CreateTransactionRequest{
		ClientTransactionID: "TRX-dup",
		Provider:            txModel.ProviderOmise,
		AddressID:           &addressID,
	})
	require.Error(t, err)
	assert.Equal(t, fiber.StatusConflict, fiberCode(t, err))

	// Baris transaksi tetap dibuat (pending, tanpa data gateway)
	// supaya alur regenerate bisa memakainya ulang
	var stored txModel.PaymentTransaction
	require.NoError(t, db.First(&stored, "payment_transaction_client_id = ?", "TRX-dup").Error)
	assert.Equal(t, txModel.TransactionStatusPending, stored.PaymentTransactionStatus)
	assert.Empty(t, stored.PaymentTransactionGatewayData)

	fake.err = &gateway.GatewayError{Provider: "omise", Err: gateway.ErrGatewayAuth}
	_, err = svc.CreateTransaction(context.Background(), userID, &dto.CreateTransactionRequest{
		ClientTransactionID: "TRX-auth",
		Provider:            txModel.ProviderOmise,
		AddressID:           &addressID,
	})
	require.Error(t, err)
	assert.Equal(t, fiber.StatusBadGateway, fiberCode(t, err))
}

/* ===================== CreateTransactionAndOrder ===================== */

func TestCreateTransactionAndOrderFromCart(t *testing.T) {
	db, _, svc := newTestStack(t)
	ctx := context.Background()

	userID := uuid.New()
	addressID := seedCartAndAddress(t, db, userID)

	resp, err := svc.CreateTransactionAndOrder(ctx, userID, &dto.CreateTransactionRequest{
		ClientTransactionID: "TRX-checkout",
		Provider:            txModel.ProviderOmise,
		AddressID:           &addressID,
	})
	require.NoError(t, err)

	// Order langsung terbentuk, ikut di respons, dan terhubung dengan transaksi
	require.NotNil(t, resp.Order)
	require.NotNil(t, resp.Transaction.PaymentTransactionOrderID)
	assert.Equal(t, resp.Order.OrderID, *resp.Transaction.PaymentTransactionOrderID)
	var order orderModel.Order
	require.NoError(t, db.First(&order, "order_id = ?", *resp.Transaction.PaymentTransactionOrderID).Error)
	assert.InDelta(t, 36.0, order.OrderTotalUSD, 0.001)

	// Keranjang dikosongkan pada alur ini
	var cartCount int64
	require.NoError(t, db.Model(&cartModel.CartItem{}).
		Where("cart_item_user_id = ?", userID).Count(&cartCount).Error)
	assert.Zero(t, cartCount)
}

/* ===================== RegenerateForOrder ===================== */

func TestRegenerateForOrderReplacesPending(t *testing.T) {
	db, fake, svc := newTestStack(t)
	ctx := context.Background()

	userID := uuid.New()
	product := productModel.Product{ProductName: "Madu Hutan", ProductPriceUSD: 12}
	require.NoError(t, db.Create(&product).Error)
	order := orderModel.Order{
		OrderUserID:    userID,
		OrderAddressID: uuid.New(),
		OrderTotalUSD:  24,
		OrderStatus:    orderModel.OrderStatusPending,
	}
	require.NoError(t, db.Create(&order).Error)
	require.NoError(t, db.Create(&orderModel.OrderItem{
		OrderItemOrderID:   order.OrderID,
		OrderItemProductID: product.ProductID,
		OrderItemQuantity:  2,
		OrderItemPriceUSD:  12,
	}).Error)
	require.NoError(t, db.Create(&txModel.PaymentTransaction{
		PaymentTransactionClientID:  "TRX-old",
		PaymentTransactionUserID:    userID,
		PaymentTransactionOrderID:   &order.OrderID,
		PaymentTransactionAmountUSD: 24,
		PaymentTransactionStatus:    txModel.TransactionStatusPending,
		PaymentTransactionProvider:  txModel.ProviderOmise,
	}).Error)

	resp, err := svc.RegenerateForOrder(ctx, userID, &dto.RegenerateForOrderRequest{
		OrderID: order.OrderID,
	})
	require.NoError(t, err)

	// ID baru dibuat server dan bukan id lama
	newID := resp.Transaction.PaymentTransactionClientID
	assert.True(t, strings.HasPrefix(newID, "TRX-"))
	assert.NotEqual(t, "TRX-old", newID)
	assert.Equal(t, 1, fake.initiateCalls)

	// Transaksi pending lama sudah tidak terlihat
	var count int64
	require.NoError(t, db.Model(&txModel.PaymentTransaction{}).
		Where("payment_transaction_client_id = ?", "TRX-old").Count(&count).Error)
	assert.Zero(t, count)
}

func TestRegenerateForOrderWithoutOldTransactions(t *testing.T) {
	db, _, svc := newTestStack(t)

	userID := uuid.New()
	product := productModel.Product{ProductName: "Kopi Toraja", ProductPriceUSD: 9}
	require.NoError(t, db.Create(&product).Error)
	order := orderModel.Order{
		OrderUserID:    userID,
		OrderAddressID: uuid.New(),
		OrderTotalUSD:  9,
		OrderStatus:    orderModel.OrderStatusPending,
	}
	require.NoError(t, db.Create(&order).Error)
	require.NoError(t, db.Create(&orderModel.OrderItem{
		OrderItemOrderID:   order.OrderID,
		OrderItemProductID: product.ProductID,
		OrderItemQuantity:  1,
		OrderItemPriceUSD:  9,
	}).Error)

	// Nol baris terhapus bukan error
	resp, err := svc.RegenerateForOrder(context.Background(), userID, &dto.RegenerateForOrderRequest{
		OrderID: order.OrderID,
	})
	require.NoError(t, err)
	assert.Equal(t, txModel.TransactionStatusPending, resp.Transaction.PaymentTransactionStatus)
}

func TestRegenerateForOrderCheckoutPreferenceProvider(t *testing.T) {
	db, _, svc := newTestStack(t)
	ctx := context.Background()

	midtransFake := &fakeGateway{result: &gateway.InitiateResult{
		PreferenceID: "snap-token-1",
		InitPoint:    "https://app.sandbox.midtrans.com/snap/v4/redirection/snap-token-1",
		Raw:          map[string]interface{}{"token": "snap-token-1"},
	}}
	svc.Gateways.Register(txModel.ProviderMidtrans, midtransFake)

	userID := uuid.New()
	product := productModel.Product{ProductName: "Gula Semut", ProductPriceUSD: 7}
	require.NoError(t, db.Create(&product).Error)
	order := orderModel.Order{
		OrderUserID:    userID,
		OrderAddressID: uuid.New(),
		OrderTotalUSD:  14,
		OrderStatus:    orderModel.OrderStatusPending,
	}
	require.NoError(t, db.Create(&order).Error)
	require.NoError(t, db.Create(&orderModel.OrderItem{
		OrderItemOrderID:   order.OrderID,
		OrderItemProductID: product.ProductID,
		OrderItemQuantity:  2,
		OrderItemPriceUSD:  7,
	}).Error)
	require.NoError(t, db.Create(&txModel.PaymentTransaction{
		PaymentTransactionClientID:  "TRX-old-mid",
		PaymentTransactionUserID:    userID,
		PaymentTransactionOrderID:   &order.OrderID,
		PaymentTransactionAmountUSD: 14,
		PaymentTransactionStatus:    txModel.TransactionStatusPending,
		PaymentTransactionProvider:  txModel.ProviderMidtrans,
	}).Error)

	// Alur order tidak mewajibkan payment_method_id
	resp, err := svc.RegenerateForOrder(ctx, userID, &dto.RegenerateForOrderRequest{
		OrderID:  order.OrderID,
		Provider: txModel.ProviderMidtrans,
	})
	require.NoError(t, err)
	assert.Equal(t, txModel.ProviderMidtrans, resp.Transaction.PaymentTransactionProvider)
	assert.Equal(t, "snap-token-1", resp.PreferenceID)
	assert.NotEmpty(t, resp.InitPoint)
	assert.Equal(t, 1, midtransFake.initiateCalls)

	// Tepat satu transaksi pending tersisa untuk order ini, dan bukan yang lama
	var pending []txModel.PaymentTransaction
	require.NoError(t, db.
		Where("payment_transaction_order_id = ? AND payment_transaction_status = ?",
			order.OrderID, txModel.TransactionStatusPending).
		Find(&pending).Error)
	require.Len(t, pending, 1)
	assert.NotEqual(t, "TRX-old-mid", pending[0].PaymentTransactionClientID)
}

func TestRegenerateForOrderUnknownProviderKeepsPending(t *testing.T) {
	db, _, svc := newTestStack(t)

	userID := uuid.New()
	order := orderModel.Order{
		OrderUserID:    userID,
		OrderAddressID: uuid.New(),
		OrderTotalUSD:  20,
		OrderStatus:    orderModel.OrderStatusPending,
	}
	require.NoError(t, db.Create(&order).Error)
	require.NoError(t, db.Create(&txModel.PaymentTransaction{
		PaymentTransactionClientID:  "TRX-keep-pending",
		PaymentTransactionUserID:    userID,
		PaymentTransactionOrderID:   &order.OrderID,
		PaymentTransactionAmountUSD: 20,
		PaymentTransactionStatus:    txModel.TransactionStatusPending,
		PaymentTransactionProvider:  txModel.ProviderOmise,
	}).Error)

	_, err := svc.RegenerateForOrder(context.Background(), userID, &dto.RegenerateForOrderRequest{
		OrderID:  order.OrderID,
		Provider: txModel.ProviderCashDeposit,
	})
	require.Error(t, err)
	assert.Equal(t, fiber.StatusBadRequest, fiberCode(t, err))

	// Validasi gagal sebelum apa pun dihapus: transaksi lama masih ada
	var count int64
	require.NoError(t, db.Model(&txModel.PaymentTransaction{}).
		Where("payment_transaction_client_id = ?", "TRX-keep-pending").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

/* ===================== Phone charge ===================== */

func TestPhonePaymentServerCharge(t *testing.T) {
	db, fake, svc := newTestStack(t)

	userID := uuid.New()
	addressID := seedCartAndAddress(t, db, userID)

	txn, err := svc.PhonePayment(context.Background(), userID, &dto.PhonePaymentRequest{
		ClientTransactionID: "TRX-phone-1",
		PhoneNumber:         "+6281234567890",
		AddressID:           addressID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fake.phoneCalls)
	assert.Equal(t, txModel.ProviderOmise, txn.PaymentTransactionProvider)
	// Nominal diambil dari keranjang, alamat tersimpan untuk pembentukan order
	assert.InDelta(t, 36.0, txn.PaymentTransactionAmountUSD, 0.001)
	require.NotNil(t, txn.PaymentTransactionAddressID)
	assert.Equal(t, addressID, *txn.PaymentTransactionAddressID)
	assert.Equal(t, "chrg_phone_1", txn.PaymentTransactionGatewayData["id"])
}

func TestPhonePaymentClientSuppliedResult(t *testing.T) {
	db, fake, svc := newTestStack(t)

	userID := uuid.New()
	addressID := seedCartAndAddress(t, db, userID)

	txn, err := svc.PhonePayment(context.Background(), userID, &dto.PhonePaymentRequest{
		ClientTransactionID: "TRX-phone-2",
		PhoneNumber:         "+6281234567890",
		AddressID:           addressID,
		GatewayResult:       map[string]interface{}{"id": "chrg_client_1"},
	})
	require.NoError(t, err)
	// Server tidak charge ulang kalau klien sudah bawa hasilnya
	assert.Zero(t, fake.phoneCalls)
	assert.Equal(t, "chrg_client_1", txn.PaymentTransactionGatewayData["id"])
}

func TestPhonePaymentUnknownAddress(t *testing.T) {
	_, fake, svc := newTestStack(t)

	_, err := svc.PhonePayment(context.Background(), uuid.New(), &dto.PhonePaymentRequest{
		ClientTransactionID: "TRX-phone-3",
		PhoneNumber:         "+6281234567890",
		AddressID:           uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, fiber.StatusNotFound, fiberCode(t, err))
	assert.Zero(t, fake.phoneCalls)
}

/* ===================== Pending list & delete ===================== */

func TestGetUserPendingPaymentsNewestFirst(t *testing.T) {
	db, _, svc := newTestStack(t)
	userID := uuid.New()

	older := txModel.PaymentTransaction{
		PaymentTransactionClientID:  "TRX-a",
		PaymentTransactionUserID:    userID,
		PaymentTransactionAmountUSD: 1,
		PaymentTransactionStatus:    txModel.TransactionStatusPending,
		PaymentTransactionProvider:  txModel.ProviderOmise,
	}
	require.NoError(t, db.Create(&older).Error)
	require.NoError(t, db.Model(&older).
		Update("payment_transaction_created_at", time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)).Error)

	newer := txModel.PaymentTransaction{
		PaymentTransactionClientID:  "TRX-b",
		PaymentTransactionUserID:    userID,
		PaymentTransactionAmountUSD: 2,
		PaymentTransactionStatus:    txModel.TransactionStatusPending,
		PaymentTransactionProvider:  txModel.ProviderOmise,
	}
	require.NoError(t, db.Create(&newer).Error)

	completed := txModel.PaymentTransaction{
		PaymentTransactionClientID:  "TRX-done",
		PaymentTransactionUserID:    userID,
		PaymentTransactionAmountUSD: 3,
		PaymentTransactionStatus:    txModel.TransactionStatusCompleted,
		PaymentTransactionProvider:  txModel.ProviderOmise,
	}
	require.NoError(t, db.Create(&completed).Error)

	list, err := svc.GetUserPendingPayments(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "TRX-b", list[0].PaymentTransactionClientID)
	assert.Equal(t, "TRX-a", list[1].PaymentTransactionClientID)
}

func TestDeleteUserPendingPayment(t *testing.T) {
	db, _, svc := newTestStack(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, db.Create(&txModel.PaymentTransaction{
		PaymentTransactionClientID:  "TRX-del",
		PaymentTransactionUserID:    userID,
		PaymentTransactionAmountUSD: 5,
		PaymentTransactionStatus:    txModel.TransactionStatusPending,
		PaymentTransactionProvider:  txModel.ProviderOmise,
	}).Error)

	require.NoError(t, svc.DeleteUserPendingPayment(ctx, userID, "TRX-del"))

	// Sudah terhapus / bukan pending → 404
	err := svc.DeleteUserPendingPayment(ctx, userID, "TRX-del")
	require.Error(t, err)
	assert.Equal(t, fiber.StatusNotFound, fiberCode(t, err))
}

func TestDeleteUserPendingPaymentCompletedRefused(t *testing.T) {
	db, _, svc := newTestStack(t)
	userID := uuid.New()

	require.NoError(t, db.Create(&txModel.PaymentTransaction{
		PaymentTransactionClientID:  "TRX-keep",
		PaymentTransactionUserID:    userID,
		PaymentTransactionAmountUSD: 5,
		PaymentTransactionStatus:    txModel.TransactionStatusCompleted,
		PaymentTransactionProvider:  txModel.ProviderOmise,
	}).Error)

	err := svc.DeleteUserPendingPayment(context.Background(), userID, "TRX-keep")
	require.Error(t, err)
	assert.Equal(t, fiber.StatusNotFound, fiberCode(t, err))
}

func TestGetPublicByClientTransactionID(t *testing.T) {
	db, _, svc := newTestStack(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&txModel.PaymentTransaction{
		PaymentTransactionClientID:  "TRX-public",
		PaymentTransactionUserID:    uuid.New(),
		PaymentTransactionAmountUSD: 12,
		PaymentTransactionStatus:    txModel.TransactionStatusPending,
		PaymentTransactionProvider:  txModel.ProviderOmise,
	}).Error)

	// Tanpa user id: dipakai halaman redirect-return
	txn, err := svc.GetPublicByClientTransactionID(ctx, "TRX-public")
	require.NoError(t, err)
	assert.Equal(t, "TRX-public", txn.PaymentTransactionClientID)

	_, err = svc.GetPublicByClientTransactionID(ctx, "TRX-missing")
	require.Error(t, err)
	assert.Equal(t, fiber.StatusNotFound, fiberCode(t, err))
}
