package service

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	cartService "tokoku_backend/internals/features/carts/service"
	"tokoku_backend/internals/features/notifications"
	orderModel "tokoku_backend/internals/features/orders/model"
	txModel "tokoku_backend/internals/features/payment/transactions/model"
)

/* =======================================================
   ORDER LINK SERVICE
   Menjembatani payment_transactions ↔ orders:
   buat order dari transaksi, sinkron status bayar → status order.
======================================================= */

type OrderLinkService struct {
	DB     *gorm.DB
	Mailer notifications.Mailer

	// LookupEmail cari alamat email penerima notifikasi.
	// Boleh nil; notifikasi dilewati kalau tidak ada.
	LookupEmail func(ctx context.Context, userID uuid.UUID) (string, error)
}

func NewOrderLinkService(db *gorm.DB, mailer notifications.Mailer) *OrderLinkService {
	return &OrderLinkService{
		DB:     db,
		Mailer: mailer,
		LookupEmail: func(ctx context.Context, userID uuid.UUID) (string, error) {
			var email string
			err := db.WithContext(ctx).
				Table("users").
				Select("user_email").
				Where("user_id = ?", userID).
				Scan(&email).Error
			return email, err
		},
	}
}

/* ===================== Create ===================== */

// CreateOrderFromTransaction buat order dari keranjang user pemilik transaksi,
// lalu simpan order_id balik ke transaksi.
// Idempoten: kalau transaksi sudah punya order, order lama dikembalikan apa adanya.
func (s *OrderLinkService) CreateOrderFromTransaction(ctx context.Context, clientTransactionID string) (*orderModel.Order, error) {
	var txn txModel.PaymentTransaction
	if err := s.DB.WithContext(ctx).
		Where("payment_transaction_client_id = ?", clientTransactionID).
		First(&txn).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Transaksi tidak ditemukan")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	// Sudah pernah dibuat → kembalikan yang lama
	if txn.PaymentTransactionOrderID != nil {
		var existing orderModel.Order
		if err := s.DB.WithContext(ctx).
			Preload("OrderItems").
			First(&existing, "order_id = ?", *txn.PaymentTransactionOrderID).Error; err != nil {
			return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return &existing, nil
	}

	if txn.PaymentTransactionAddressID == nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Transaksi tidak memiliki alamat pengiriman")
	}

	summary, err := cartService.GetCartSummary(ctx, s.DB, txn.PaymentTransactionUserID)
	if err != nil {
		return nil, err
	}

	order := orderModel.Order{
		OrderUserID:    txn.PaymentTransactionUserID,
		OrderAddressID: *txn.PaymentTransactionAddressID,
		OrderTotalUSD:  summary.TotalUSD,
		OrderStatus:    orderModel.OrderStatusPending,
	}

	if err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for _, line := range summary.Lines {
			item := orderModel.OrderItem{
				OrderItemOrderID:   order.OrderID,
				OrderItemProductID: line.ProductID,
				OrderItemQuantity:  line.Quantity,
				OrderItemPriceUSD:  line.FinalPriceUSD,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		if err := cartService.ClearCart(ctx, tx, txn.PaymentTransactionUserID); err != nil {
			return err
		}
		return tx.Model(&txModel.PaymentTransaction{}).
			Where("payment_transaction_id = ?", txn.PaymentTransactionID).
			Update("payment_transaction_order_id", order.OrderID).Error
	}); err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return &order, nil
}

/* ===================== Update ===================== */

// UpdatePaymentStatus set status transaksi + sinkron status order saat completed.
// Transisi ke status yang sama = no-op (aman dipanggil ulang dari webhook & poll);
// transaksi completed tidak bisa ditimpa status lain.
func (s *OrderLinkService) UpdatePaymentStatus(ctx context.Context, clientTransactionID, newStatus string, gatewayData map[string]interface{}) (*txModel.PaymentTransaction, error) {
	var txn txModel.PaymentTransaction
	if err := s.DB.WithContext(ctx).
		Where("payment_transaction_client_id = ?", clientTransactionID).
		First(&txn).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Transaksi tidak ditemukan")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if txn.PaymentTransactionStatus == newStatus {
		return &txn, nil
	}

	// Completed lengket: sudah lunas tidak bisa diturunkan ke status lain
	if txn.PaymentTransactionStatus == txModel.TransactionStatusCompleted {
		return &txn, nil
	}

	if newStatus == txModel.TransactionStatusCompleted && txn.PaymentTransactionOrderID == nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Transaksi belum terhubung dengan pesanan")
	}

	updates := map[string]interface{}{
		"payment_transaction_status": newStatus,
	}
	if gatewayData != nil {
		// Data lama diganti respons gateway terbaru; nil = pertahankan yang ada
		updates["payment_transaction_gateway_data"] = datatypes.JSONMap(gatewayData)
	}
	if err := s.DB.WithContext(ctx).Model(&txn).Updates(updates).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	txn.PaymentTransactionStatus = newStatus

	if newStatus == txModel.TransactionStatusCompleted {
		next := orderStatusForProvider(txn.PaymentTransactionProvider)
		if _, err := s.UpdateOrderStatus(ctx, *txn.PaymentTransactionOrderID, next); err != nil {
			return nil, err
		}
	}

	return &txn, nil
}

// UpdateOrderStatus set status order + notifikasi email best-effort.
// Status yang tidak berubah tidak memicu email ulang.
func (s *OrderLinkService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus string) (*orderModel.Order, error) {
	var order orderModel.Order
	if err := s.DB.WithContext(ctx).First(&order, "order_id = ?", orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Pesanan tidak ditemukan")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if order.OrderStatus == newStatus {
		return &order, nil
	}

	// Status hanya boleh maju; cancelled jalur keluar dari status non-terminal
	if order.IsTerminal() {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Pesanan sudah selesai, statusnya tidak bisa diubah")
	}
	if newStatus != orderModel.OrderStatusCancelled &&
		orderModel.StatusRank(newStatus) <= orderModel.StatusRank(order.OrderStatus) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Status pesanan tidak bisa mundur")
	}

	if err := s.DB.WithContext(ctx).Model(&order).
		Update("order_status", newStatus).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	order.OrderStatus = newStatus

	s.notifyStatusChange(ctx, &order)
	return &order, nil
}

// notifyStatusChange best-effort: gagal kirim hanya dicatat di log
func (s *OrderLinkService) notifyStatusChange(ctx context.Context, order *orderModel.Order) {
	if s.Mailer == nil || s.LookupEmail == nil {
		return
	}
	email, err := s.LookupEmail(ctx, order.OrderUserID)
	if err != nil || email == "" {
		log.Printf("⚠️ Email user %s tidak ditemukan, notifikasi dilewati", order.OrderUserID)
		return
	}
	if err := s.Mailer.SendOrderStatusUpdate(email, order); err != nil {
		log.Printf("❌ Gagal kirim email notifikasi order %s: %v", order.OrderID, err)
	}
}

/* ===================== Read ===================== */

// ListUserOrders semua order milik user, terbaru dahulu
func (s *OrderLinkService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]orderModel.Order, error) {
	var orders []orderModel.Order
	if err := s.DB.WithContext(ctx).
		Preload("OrderItems").
		Where("order_user_id = ?", userID).
		Order("order_created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return orders, nil
}

func (s *OrderLinkService) GetUserOrder(ctx context.Context, userID, orderID uuid.UUID) (*orderModel.Order, error) {
	var order orderModel.Order
	err := s.DB.WithContext(ctx).
		Preload("OrderItems").
		Where("order_id = ? AND order_user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Pesanan tidak ditemukan")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return &order, nil
}

/* ===================== Helpers ===================== */

// orderStatusForProvider: pembayaran gateway langsung diproses,
// setor manual menunggu verifikasi admin
func orderStatusForProvider(provider string) string {
	switch provider {
	case txModel.ProviderOmise, txModel.ProviderMidtrans:
		return orderModel.OrderStatusProcessing
	default:
		return orderModel.OrderStatusPaidPendingReview
	}
}
