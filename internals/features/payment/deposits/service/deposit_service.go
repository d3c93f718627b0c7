package service

import (
	"context"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	addrService "tokoku_backend/internals/features/addresses/service"
	cartService "tokoku_backend/internals/features/carts/service"
	orderModel "tokoku_backend/internals/features/orders/model"
	orderService "tokoku_backend/internals/features/orders/service"
	txModel "tokoku_backend/internals/features/payment/transactions/model"
)

/* =======================================================
   DEPOSIT SERVICE
   Setor manual (tunai / kripto): user unggah bukti transfer,
   order masuk antrian review admin.
======================================================= */

// Uploader abstraksi penyimpanan bukti setor (implementasi: OSS)
type Uploader interface {
	UploadFromFormFile(fh *multipart.FileHeader, dir string) (string, error)
}

type DepositService struct {
	DB       *gorm.DB
	Uploader Uploader
	Orders   *orderService.OrderLinkService
}

func NewDepositService(db *gorm.DB, uploader Uploader, orders *orderService.OrderLinkService) *DepositService {
	return &DepositService{DB: db, Uploader: uploader, Orders: orders}
}

type SubmitDepositInput struct {
	ClientTransactionID string
	Provider            string // cash_deposit / crypto_deposit
	OrderID             *uuid.UUID
	AddressID           *uuid.UUID
}

type DepositResult struct {
	Transaction *txModel.PaymentTransaction `json:"transaction"`
	Order       *orderModel.Order           `json:"order"`
}

/* ===================== Submit ===================== */

// SubmitDeposit catat setoran + bukti transfer.
// order_id terisi = retry order lama (transaksi pending lamanya dibersihkan);
// kosong = order baru dari keranjang. Order langsung paid_pending_review.
func (s *DepositService) SubmitDeposit(ctx context.Context, userID uuid.UUID, in *SubmitDepositInput, proof *multipart.FileHeader) (*DepositResult, error) {
	if in.Provider != txModel.ProviderCashDeposit && in.Provider != txModel.ProviderCryptoDeposit {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Provider setor tidak dikenal")
	}
	if proof == nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Bukti transfer wajib diunggah")
	}
	if in.ClientTransactionID == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "client_transaction_id wajib diisi")
	}
	// Penyimpanan bukti tidak terpasang (OSS tidak dikonfigurasi)
	if s.Uploader == nil {
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, "Layanan setor manual sedang tidak tersedia")
	}

	// Idempoten: id klien yang sama mengembalikan setoran sebelumnya
	var existing txModel.PaymentTransaction
	err := s.DB.WithContext(ctx).
		Where("payment_transaction_client_id = ? AND payment_transaction_user_id = ?",
			in.ClientTransactionID, userID).
		First(&existing).Error
	if err == nil {
		return s.resultFor(ctx, &existing)
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var order *orderModel.Order
	if in.OrderID != nil {
		order, err = s.loadRetryOrder(ctx, userID, *in.OrderID)
		if err != nil {
			return nil, err
		}
		// Transaksi gateway pending yang menggantung di order ini tidak relevan lagi
		if err := s.DB.WithContext(ctx).
			Where("payment_transaction_order_id = ? AND payment_transaction_status = ?",
				order.OrderID, txModel.TransactionStatusPending).
			Delete(&txModel.PaymentTransaction{}).Error; err != nil {
			return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
	} else {
		if in.AddressID == nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "address_id wajib diisi kalau order_id kosong")
		}
		addr, aerr := addrService.ValidateOwnership(ctx, s.DB, userID, *in.AddressID)
		if aerr != nil {
			return nil, aerr
		}
		order, err = s.createOrderFromCart(ctx, userID, addr.AddressID)
		if err != nil {
			return nil, err
		}
	}

	proofURL, err := s.Uploader.UploadFromFormFile(proof, "deposits")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Gagal unggah bukti transfer: "+err.Error())
	}

	txn := &txModel.PaymentTransaction{
		PaymentTransactionClientID:  in.ClientTransactionID,
		PaymentTransactionUserID:    userID,
		PaymentTransactionOrderID:   &order.OrderID,
		PaymentTransactionAmountUSD: order.OrderTotalUSD,
		PaymentTransactionStatus:    txModel.TransactionStatusPending,
		PaymentTransactionProvider:  in.Provider,
		PaymentTransactionAddressID: &order.OrderAddressID,
	}
	if err := s.DB.WithContext(ctx).Create(txn).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if err := s.DB.WithContext(ctx).Model(order).
		Update("order_deposit_image_url", proofURL).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	order.OrderDepositImageURL = &proofURL

	// Transaksi tetap pending sampai admin menyetujui bukti setor;
	// order langsung masuk antrian review.
	updated, err := s.Orders.UpdateOrderStatus(ctx, order.OrderID, orderModel.OrderStatusPaidPendingReview)
	if err != nil {
		return nil, err
	}

	return &DepositResult{Transaction: txn, Order: updated}, nil
}

/* ===================== Review (admin) ===================== */

// ReviewDeposit keputusan admin atas bukti setor.
// approve → order diproses; tolak → order batal, transaksi failed.
func (s *DepositService) ReviewDeposit(ctx context.Context, orderID uuid.UUID, approve bool) (*orderModel.Order, error) {
	var order orderModel.Order
	if err := s.DB.WithContext(ctx).First(&order, "order_id = ?", orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Pesanan tidak ditemukan")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if order.OrderStatus != orderModel.OrderStatusPaidPendingReview {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Pesanan tidak sedang menunggu review setoran")
	}

	if approve {
		// Transaksi setor baru benar-benar completed saat admin setuju.
		// Lewat jalur update status yang sama dengan webhook/poll supaya idempoten.
		var txn txModel.PaymentTransaction
		err := s.DB.WithContext(ctx).
			Where("payment_transaction_order_id = ? AND payment_transaction_status = ?",
				orderID, txModel.TransactionStatusPending).
			Order("payment_transaction_created_at DESC").
			First(&txn).Error
		if err == nil {
			if _, uerr := s.Orders.UpdatePaymentStatus(ctx, txn.PaymentTransactionClientID,
				txModel.TransactionStatusCompleted, nil); uerr != nil {
				return nil, uerr
			}
		} else if err != gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return s.Orders.UpdateOrderStatus(ctx, orderID, orderModel.OrderStatusProcessing)
	}

	// Tolak: transaksi setor ikut ditandai failed
	if err := s.DB.WithContext(ctx).
		Model(&txModel.PaymentTransaction{}).
		Where("payment_transaction_order_id = ?", orderID).
		Update("payment_transaction_status", txModel.TransactionStatusFailed).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return s.Orders.UpdateOrderStatus(ctx, orderID, orderModel.OrderStatusCancelled)
}

/* ===================== Internal ===================== */

func (s *DepositService) resultFor(ctx context.Context, txn *txModel.PaymentTransaction) (*DepositResult, error) {
	res := &DepositResult{Transaction: txn}
	if txn.PaymentTransactionOrderID != nil {
		var order orderModel.Order
		if err := s.DB.WithContext(ctx).
			First(&order, "order_id = ?", *txn.PaymentTransactionOrderID).Error; err == nil {
			res.Order = &order
		}
	}
	return res, nil
}

func (s *DepositService) loadRetryOrder(ctx context.Context, userID, orderID uuid.UUID) (*orderModel.Order, error) {
	var order orderModel.Order
	err := s.DB.WithContext(ctx).
		Where("order_id = ? AND order_user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Pesanan tidak ditemukan")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !order.IsAwaitingPayment() {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Pesanan sudah tidak menunggu pembayaran")
	}
	return &order, nil
}

func (s *DepositService) createOrderFromCart(ctx context.Context, userID, addressID uuid.UUID) (*orderModel.Order, error) {
	summary, err := cartService.GetCartSummary(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	order := &orderModel.Order{
		OrderUserID:    userID,
		OrderAddressID: addressID,
		OrderTotalUSD:  summary.TotalUSD,
		OrderStatus:    orderModel.OrderStatusPending,
	}
	if err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
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
		return cartService.ClearCart(ctx, tx, userID)
	}); err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return order, nil
}
