package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	addrService "tokoku_backend/internals/features/addresses/service"
	cartService "tokoku_backend/internals/features/carts/service"
	orderModel "tokoku_backend/internals/features/orders/model"
	orderService "tokoku_backend/internals/features/orders/service"
	"tokoku_backend/internals/features/payment/gateway"
	"tokoku_backend/internals/features/payment/transactions/dto"
	txModel "tokoku_backend/internals/features/payment/transactions/model"
)

/* =======================================================
   TRANSACTION SERVICE
   Lifecycle payment_transactions: create (dengan/ tanpa order),
   regenerate, listing pending, hapus pending.
======================================================= */

type TransactionService struct {
	DB       *gorm.DB
	Gateways *gateway.Registry
	Orders   *orderService.OrderLinkService
}

func NewTransactionService(db *gorm.DB, gw *gateway.Registry, orders *orderService.OrderLinkService) *TransactionService {
	return &TransactionService{DB: db, Gateways: gw, Orders: orders}
}

// GenClientTransactionID buat idempotency key baru sisi server (alur regenerate)
func GenClientTransactionID() string {
	return fmt.Sprintf("TRX-%s-%04d", time.Now().Format("20060102150405"), rand.Intn(10000))
}

/* ===================== Create ===================== */

// CreateTransaction buat transaksi pembayaran lewat gateway.
// order_id terisi = pembayaran ulang order lama; kosong = dari keranjang (address wajib).
// Idempoten by client_transaction_id: id yang sudah ada mengembalikan transaksi lama.
func (s *TransactionService) CreateTransaction(ctx context.Context, userID uuid.UUID, req *dto.CreateTransactionRequest) (*dto.TransactionResponse, error) {
	provider := resolveProvider(req.Provider)

	gw, ok := s.Gateways.Resolve(provider)
	if !ok {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Provider ini tidak dibayar lewat gateway, gunakan alur setor manual")
	}

	if existing, err := s.findByClientID(ctx, userID, req.ClientTransactionID); err == nil {
		return responseFromStored(existing), nil
	} else if fe, ok := err.(*fiber.Error); !ok || fe.Code != fiber.StatusNotFound {
		return nil, err
	}

	var (
		amountUSD float64
		addressID *uuid.UUID
		orderID   *uuid.UUID
		items     []gateway.ItemDetail
	)

	if req.OrderID != nil {
		order, err := s.loadPayableOrder(ctx, userID, *req.OrderID)
		if err != nil {
			return nil, err
		}
		amountUSD = order.OrderTotalUSD
		addressID = &order.OrderAddressID
		orderID = &order.OrderID
		items, err = s.loadOrderItems(ctx, order.OrderID)
		if err != nil {
			return nil, err
		}
	} else {
		// Alur keranjang: provider non-default wajib menyebut metode pembayaran
		if provider != txModel.ProviderOmise && req.PaymentMethodID == "" {
			return nil, fiber.NewError(fiber.StatusBadRequest, "payment_method_id wajib untuk provider ini")
		}
		addr, err := addrService.ValidateOwnership(ctx, s.DB, userID, *req.AddressID)
		if err != nil {
			return nil, err
		}
		summary, err := cartService.GetCartSummary(ctx, s.DB, userID)
		if err != nil {
			return nil, err
		}
		amountUSD = summary.TotalUSD
		addressID = &addr.AddressID
		items = itemsFromCart(summary)
	}

	txn := &txModel.PaymentTransaction{
		PaymentTransactionClientID:  req.ClientTransactionID,
		PaymentTransactionUserID:    userID,
		PaymentTransactionOrderID:   orderID,
		PaymentTransactionAmountUSD: amountUSD,
		PaymentTransactionStatus:    txModel.TransactionStatusPending,
		PaymentTransactionProvider:  provider,
		PaymentTransactionAddressID: addressID,
	}
	if req.PaymentMethodID != "" {
		txn.PaymentTransactionPaymentMethodID = &req.PaymentMethodID
	}
	// Baris transaksi dibuat dulu; kalau gateway gagal, baris pending tetap ada
	// supaya bisa dipakai ulang lewat retry/regenerate.
	if err := s.DB.WithContext(ctx).Create(txn).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	result, err := gw.InitiatePayment(ctx, gateway.InitiateRequest{
		ClientTransactionID: req.ClientTransactionID,
		AmountUSD:           amountUSD,
		Description:         description(req.Description),
		PaymentMethodID:     req.PaymentMethodID,
		Items:               items,
	})
	if err != nil {
		return nil, gatewayErrToFiber(err)
	}

	txn.PaymentTransactionGatewayData = initiateToGatewayData(result)
	if err := s.DB.WithContext(ctx).Model(txn).
		Update("payment_transaction_gateway_data", txn.PaymentTransactionGatewayData).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return &dto.TransactionResponse{
		Transaction:  txn,
		RedirectURL:  result.RedirectURL,
		PreferenceID: result.PreferenceID,
		InitPoint:    result.InitPoint,
	}, nil
}

// CreateTransactionAndOrder buat order dari keranjang LALU transaksinya sekaligus
// (alur checkout preference: klien butuh init_point dengan order sudah terbentuk).
// order_id terisi = retry: order lama dipakai, keranjang tidak disentuh.
func (s *TransactionService) CreateTransactionAndOrder(ctx context.Context, userID uuid.UUID, req *dto.CreateTransactionRequest) (*dto.TransactionResponse, error) {
	provider := resolveProvider(req.Provider)
	gw, ok := s.Gateways.Resolve(provider)
	if !ok {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Provider ini tidak dibayar lewat gateway, gunakan alur setor manual")
	}

	if existing, err := s.findByClientID(ctx, userID, req.ClientTransactionID); err == nil {
		return responseFromStored(existing), nil
	} else if fe, ok := err.(*fiber.Error); !ok || fe.Code != fiber.StatusNotFound {
		return nil, err
	}

	var (
		order *orderModel.Order
		items []gateway.ItemDetail
		err   error
	)

	if req.OrderID != nil {
		order, err = s.loadPayableOrder(ctx, userID, *req.OrderID)
		if err != nil {
			return nil, err
		}
		items, err = s.loadOrderItems(ctx, order.OrderID)
		if err != nil {
			return nil, err
		}
	} else {
		addr, aerr := addrService.ValidateOwnership(ctx, s.DB, userID, *req.AddressID)
		if aerr != nil {
			return nil, aerr
		}
		summary, serr := cartService.GetCartSummary(ctx, s.DB, userID)
		if serr != nil {
			return nil, serr
		}
		items = itemsFromCart(summary)

		order = &orderModel.Order{
			OrderUserID:    userID,
			OrderAddressID: addr.AddressID,
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
	}

	txn := &txModel.PaymentTransaction{
		PaymentTransactionClientID:  req.ClientTransactionID,
		PaymentTransactionUserID:    userID,
		PaymentTransactionOrderID:   &order.OrderID,
		PaymentTransactionAmountUSD: order.OrderTotalUSD,
		PaymentTransactionStatus:    txModel.TransactionStatusPending,
		PaymentTransactionProvider:  provider,
		PaymentTransactionAddressID: &order.OrderAddressID,
	}
	if req.PaymentMethodID != "" {
		txn.PaymentTransactionPaymentMethodID = &req.PaymentMethodID
	}
	// Sama seperti CreateTransaction: baris pending dibuat sebelum ke gateway
	if err := s.DB.WithContext(ctx).Create(txn).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	result, err := gw.InitiatePayment(ctx, gateway.InitiateRequest{
		ClientTransactionID: req.ClientTransactionID,
		AmountUSD:           order.OrderTotalUSD,
		Description:         description(req.Description),
		PaymentMethodID:     req.PaymentMethodID,
		Items:               items,
	})
	if err != nil {
		return nil, gatewayErrToFiber(err)
	}

	txn.PaymentTransactionGatewayData = initiateToGatewayData(result)
	if err := s.DB.WithContext(ctx).Model(txn).
		Update("payment_transaction_gateway_data", txn.PaymentTransactionGatewayData).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return &dto.TransactionResponse{
		Transaction:  txn,
		Order:        order,
		RedirectURL:  result.RedirectURL,
		PreferenceID: result.PreferenceID,
		InitPoint:    result.InitPoint,
	}, nil
}

// RegenerateForOrder ganti transaksi pending lama milik order dengan yang baru
// (id klien baru dari server). Transaksi lama dihapus; nol baris bukan error.
func (s *TransactionService) RegenerateForOrder(ctx context.Context, userID uuid.UUID, req *dto.RegenerateForOrderRequest) (*dto.TransactionResponse, error) {
	// Semua validasi dulu, baru transaksi lama dibuang: order tidak boleh
	// ditinggal tanpa transaksi pending sama sekali.
	provider := resolveProvider(req.Provider)
	if _, ok := s.Gateways.Resolve(provider); !ok {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Provider ini tidak dibayar lewat gateway, gunakan alur setor manual")
	}

	order, err := s.loadPayableOrder(ctx, userID, req.OrderID)
	if err != nil {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).
		Where("payment_transaction_order_id = ? AND payment_transaction_status = ?",
			order.OrderID, txModel.TransactionStatusPending).
		Delete(&txModel.PaymentTransaction{}).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	orderID := order.OrderID
	return s.CreateTransaction(ctx, userID, &dto.CreateTransactionRequest{
		ClientTransactionID: GenClientTransactionID(),
		Provider:            provider,
		OrderID:             &orderID,
		PaymentMethodID:     req.PaymentMethodID,
	})
}

/* ===================== Phone charge ===================== */

// PhonePayment charge via nomor telepon (promptpay), nominal dari keranjang.
// gateway_result dari klien dipakai apa adanya; kalau kosong server yang charge.
func (s *TransactionService) PhonePayment(ctx context.Context, userID uuid.UUID, req *dto.PhonePaymentRequest) (*txModel.PaymentTransaction, error) {
	if existing, err := s.findByClientID(ctx, userID, req.ClientTransactionID); err == nil {
		return existing, nil
	} else if fe, ok := err.(*fiber.Error); !ok || fe.Code != fiber.StatusNotFound {
		return nil, err
	}

	addr, err := addrService.ValidateOwnership(ctx, s.DB, userID, req.AddressID)
	if err != nil {
		return nil, err
	}
	summary, err := cartService.GetCartSummary(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	gatewayData := req.GatewayResult
	if gatewayData == nil {
		pc, ok := s.Gateways.PhoneCharger(txModel.ProviderOmise)
		if !ok {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Charge via telepon tidak didukung")
		}
		raw, err := pc.InitiatePhoneCharge(ctx, req.PhoneNumber, summary.TotalUSD, req.ClientTransactionID)
		if err != nil {
			return nil, gatewayErrToFiber(err)
		}
		gatewayData = raw
	}

	txn := &txModel.PaymentTransaction{
		PaymentTransactionClientID:    req.ClientTransactionID,
		PaymentTransactionUserID:      userID,
		PaymentTransactionAmountUSD:   summary.TotalUSD,
		PaymentTransactionStatus:      txModel.TransactionStatusPending,
		PaymentTransactionProvider:    txModel.ProviderOmise,
		PaymentTransactionAddressID:   &addr.AddressID,
		PaymentTransactionGatewayData: datatypes.JSONMap(gatewayData),
	}
	if req.PaymentMethodID != "" {
		txn.PaymentTransactionPaymentMethodID = &req.PaymentMethodID
	}
	if err := s.DB.WithContext(ctx).Create(txn).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return txn, nil
}

/* ===================== Read / Delete ===================== */

func (s *TransactionService) GetByClientTransactionID(ctx context.Context, userID uuid.UUID, clientTransactionID string) (*txModel.PaymentTransaction, error) {
	return s.findByClientID(ctx, userID, clientTransactionID)
}

// GetPublicByClientTransactionID lookup tanpa auth, dipakai halaman redirect-return
func (s *TransactionService) GetPublicByClientTransactionID(ctx context.Context, clientTransactionID string) (*txModel.PaymentTransaction, error) {
	var txn txModel.PaymentTransaction
	err := s.DB.WithContext(ctx).
		Where("payment_transaction_client_id = ?", clientTransactionID).
		First(&txn).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Transaksi tidak ditemukan")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return &txn, nil
}

// GetUserPendingPayments daftar transaksi pending milik user, terbaru dahulu
func (s *TransactionService) GetUserPendingPayments(ctx context.Context, userID uuid.UUID) ([]txModel.PaymentTransaction, error) {
	var list []txModel.PaymentTransaction
	if err := s.DB.WithContext(ctx).
		Where("payment_transaction_user_id = ? AND payment_transaction_status = ?",
			userID, txModel.TransactionStatusPending).
		Order("payment_transaction_created_at DESC").
		Find(&list).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return list, nil
}

// DeleteUserPendingPayment hapus transaksi pending milik user (soft delete).
// Transaksi completed tidak bisa dihapus.
func (s *TransactionService) DeleteUserPendingPayment(ctx context.Context, userID uuid.UUID, clientTransactionID string) error {
	res := s.DB.WithContext(ctx).
		Where("payment_transaction_client_id = ? AND payment_transaction_user_id = ? AND payment_transaction_status = ?",
			clientTransactionID, userID, txModel.TransactionStatusPending).
		Delete(&txModel.PaymentTransaction{})
	if res.Error != nil {
		return fiber.NewError(fiber.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "Transaksi pending tidak ditemukan")
	}
	return nil
}

/* ===================== Internal ===================== */

func (s *TransactionService) findByClientID(ctx context.Context, userID uuid.UUID, clientID string) (*txModel.PaymentTransaction, error) {
	var txn txModel.PaymentTransaction
	err := s.DB.WithContext(ctx).
		Where("payment_transaction_client_id = ? AND payment_transaction_user_id = ?", clientID, userID).
		First(&txn).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Transaksi tidak ditemukan")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return &txn, nil
}

// loadPayableOrder: order milik user dan masih bisa dibayar
func (s *TransactionService) loadPayableOrder(ctx context.Context, userID, orderID uuid.UUID) (*orderModel.Order, error) {
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

func (s *TransactionService) loadOrderItems(ctx context.Context, orderID uuid.UUID) ([]gateway.ItemDetail, error) {
	type row struct {
		ProductID   uuid.UUID `gorm:"column:order_item_product_id"`
		ProductName string    `gorm:"column:product_name"`
		Quantity    int       `gorm:"column:order_item_quantity"`
		PriceUSD    float64   `gorm:"column:order_item_price_usd"`
	}
	var rows []row
	if err := s.DB.WithContext(ctx).
		Table("order_items").
		Select("order_items.order_item_product_id, products.product_name, order_items.order_item_quantity, order_items.order_item_price_usd").
		Joins("JOIN products ON products.product_id = order_items.order_item_product_id").
		Where("order_items.order_item_order_id = ?", orderID).
		Scan(&rows).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	items := make([]gateway.ItemDetail, 0, len(rows))
	for _, r := range rows {
		items = append(items, gateway.ItemDetail{
			ID:       r.ProductID.String(),
			Name:     r.ProductName,
			Qty:      r.Quantity,
			PriceUSD: r.PriceUSD,
		})
	}
	return items, nil
}

func itemsFromCart(summary *cartService.CartSummary) []gateway.ItemDetail {
	items := make([]gateway.ItemDetail, 0, len(summary.Lines))
	for _, line := range summary.Lines {
		items = append(items, gateway.ItemDetail{
			ID:       line.ProductID.String(),
			Name:     line.ProductName,
			Qty:      line.Quantity,
			PriceUSD: line.FinalPriceUSD,
		})
	}
	return items
}

func resolveProvider(p string) string {
	if p == "" {
		return txModel.ProviderOmise
	}
	return p
}

func description(d string) string {
	if d == "" {
		return "Pembelian di Tokoku"
	}
	return d
}

func initiateToGatewayData(r *gateway.InitiateResult) datatypes.JSONMap {
	data := datatypes.JSONMap{}
	for k, v := range r.Raw {
		data[k] = v
	}
	if r.PaymentID != "" {
		data["payment_id"] = r.PaymentID
	}
	if r.PreferenceID != "" {
		data["preference_id"] = r.PreferenceID
	}
	if r.InitPoint != "" {
		data["init_point"] = r.InitPoint
	}
	if r.RedirectURL != "" {
		data["redirect_url"] = r.RedirectURL
	}
	return data
}

func responseFromStored(txn *txModel.PaymentTransaction) *dto.TransactionResponse {
	resp := &dto.TransactionResponse{Transaction: txn}
	if v, ok := txn.PaymentTransactionGatewayData["redirect_url"].(string); ok {
		resp.RedirectURL = v
	}
	if v, ok := txn.PaymentTransactionGatewayData["preference_id"].(string); ok {
		resp.PreferenceID = v
	}
	if v, ok := txn.PaymentTransactionGatewayData["init_point"].(string); ok {
		resp.InitPoint = v
	}
	return resp
}

func gatewayErrToFiber(err error) error {
	switch {
	case errors.Is(err, gateway.ErrDuplicateClientTransactionID):
		return fiber.NewError(fiber.StatusConflict, "ID transaksi sudah terpakai di gateway, gunakan ID baru")
	case errors.Is(err, gateway.ErrGatewayAuth):
		return fiber.NewError(fiber.StatusBadGateway, "Autentikasi ke payment gateway gagal")
	default:
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
}
