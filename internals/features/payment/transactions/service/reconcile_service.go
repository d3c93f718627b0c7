package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	orderService "tokoku_backend/internals/features/orders/service"
	"tokoku_backend/internals/features/payment/gateway"
	txModel "tokoku_backend/internals/features/payment/transactions/model"
)

/* =======================================================
   RECONCILE SERVICE
   Dua jalur kebenaran status: push (webhook) dan pull (verify).
   Keduanya idempoten; sumber kebenaran selalu gateway, bukan payload.
======================================================= */

type ReconcileService struct {
	DB       *gorm.DB
	Gateways *gateway.Registry
	Orders   *orderService.OrderLinkService
}

func NewReconcileService(db *gorm.DB, gw *gateway.Registry, orders *orderService.OrderLinkService) *ReconcileService {
	return &ReconcileService{DB: db, Gateways: gw, Orders: orders}
}

/* ===================== Push (webhook) ===================== */

// HandleWebhook proses notifikasi gateway. Tidak pernah return error ke caller:
// webhook wajib dibalas 200 apa pun yang terjadi, kegagalan dicatat di
// payment_gateway_events untuk replay manual.
func (s *ReconcileService) HandleWebhook(ctx context.Context, provider string, payload map[string]interface{}) {
	event := &txModel.PaymentGatewayEvent{
		GatewayEventProvider: provider,
		GatewayEventPayload:  datatypes.JSONMap(payload),
		GatewayEventStatus:   txModel.GatewayEventStatusReceived,
	}

	paymentID := extractPaymentID(payload)
	if paymentID == "" {
		log.Printf("⚠️ Webhook %s tanpa payment id, diabaikan", provider)
		s.finishEvent(ctx, event, txModel.GatewayEventStatusIgnored, "payment id tidak ditemukan di payload")
		return
	}
	event.GatewayEventExternalID = &paymentID

	fetcher, ok := s.Gateways.StatusFetcher(provider)
	if !ok {
		s.finishEvent(ctx, event, txModel.GatewayEventStatusIgnored, "provider tidak mendukung fetch status")
		return
	}

	// Status diambil ulang dari gateway; isi payload hanya petunjuk
	info, err := fetcher.FetchPaymentStatus(ctx, paymentID)
	if err != nil {
		log.Printf("❌ Webhook %s: gagal fetch status %s: %v", provider, paymentID, err)
		s.finishEvent(ctx, event, txModel.GatewayEventStatusFailed, err.Error())
		return
	}
	if info.ExternalReference != "" {
		ref := info.ExternalReference
		event.GatewayEventExternalRef = &ref
	}

	// Hanya approved yang diproses lewat push; sisanya menunggu pull/verify
	if info.Status != gateway.StatusApproved {
		s.finishEvent(ctx, event, txModel.GatewayEventStatusIgnored, "status "+info.Status)
		return
	}

	if err := s.applyApproved(ctx, info.ExternalReference, info.Raw); err != nil {
		log.Printf("❌ Webhook %s: gagal proses %s: %v", provider, info.ExternalReference, err)
		s.finishEvent(ctx, event, txModel.GatewayEventStatusFailed, err.Error())
		return
	}

	s.finishEvent(ctx, event, txModel.GatewayEventStatusSuccess, "")
}

// applyApproved: pastikan order ada, lalu tandai transaksi completed
func (s *ReconcileService) applyApproved(ctx context.Context, clientTransactionID string, raw map[string]interface{}) error {
	var txn txModel.PaymentTransaction
	if err := s.DB.WithContext(ctx).
		Where("payment_transaction_client_id = ?", clientTransactionID).
		First(&txn).Error; err != nil {
		return err
	}
	if txn.IsCompleted() {
		return nil
	}

	if txn.PaymentTransactionOrderID == nil {
		if _, err := s.Orders.CreateOrderFromTransaction(ctx, clientTransactionID); err != nil {
			return err
		}
	}

	_, err := s.Orders.UpdatePaymentStatus(ctx, clientTransactionID, txModel.TransactionStatusCompleted, raw)
	return err
}

/* ===================== Pull (verify) ===================== */

const (
	VerifyAlreadyCompleted = "already_completed"
	VerifyNotFound         = "not_found"
	VerifyApproved         = "approved"
	VerifyPending          = "pending"
	VerifyRejected         = "rejected"
	VerifyUnknown          = "unknown"
	VerifyError            = "error"
)

type VerifyResult struct {
	ClientTransactionID string `json:"client_transaction_id"`
	Status              string `json:"status"`
	Updated             bool   `json:"updated"`
	Message             string `json:"message,omitempty"`
}

// VerifyAndUpdate cek status satu transaksi ke gateway dan sinkronkan.
// Tidak pernah return error: hasil per transaksi selalu dilaporkan sebagai VerifyResult.
func (s *ReconcileService) VerifyAndUpdate(ctx context.Context, userID uuid.UUID, clientTransactionID string) *VerifyResult {
	result := &VerifyResult{ClientTransactionID: clientTransactionID, Status: VerifyError}

	var txn txModel.PaymentTransaction
	err := s.DB.WithContext(ctx).
		Where("payment_transaction_client_id = ? AND payment_transaction_user_id = ?",
			clientTransactionID, userID).
		First(&txn).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			result.Status = VerifyNotFound
			result.Message = "Transaksi tidak ditemukan"
			return result
		}
		result.Message = err.Error()
		return result
	}

	// Webhook bisa sudah lebih dulu menyelesaikan transaksi
	if txn.IsCompleted() {
		result.Status = VerifyAlreadyCompleted
		return result
	}

	status, raw, err := s.fetchGatewayStatus(ctx, &txn)
	if err != nil {
		result.Message = err.Error()
		return result
	}

	switch status {
	case gateway.StatusApproved:
		if err := s.applyApproved(ctx, clientTransactionID, raw); err != nil {
			result.Message = err.Error()
			return result
		}
		result.Status = VerifyApproved
		result.Updated = true

	case gateway.StatusPending, gateway.StatusInProcess:
		result.Status = VerifyPending
		result.Message = "Pembayaran masih diproses gateway"

	case gateway.StatusRejected, gateway.StatusCancelled, gateway.StatusRefunded:
		if _, err := s.Orders.UpdatePaymentStatus(ctx, clientTransactionID, txModel.TransactionStatusFailed, raw); err != nil {
			result.Message = err.Error()
			return result
		}
		result.Status = VerifyRejected
		result.Updated = true
		result.Message = "Status gateway: " + status

	default:
		result.Status = VerifyUnknown
		result.Message = "Status gateway tidak dikenali: " + status
	}

	return result
}

// VerifyMultiple verifikasi batch; urutan hasil mengikuti urutan input
func (s *ReconcileService) VerifyMultiple(ctx context.Context, userID uuid.UUID, clientTransactionIDs []string) []*VerifyResult {
	results := make([]*VerifyResult, 0, len(clientTransactionIDs))
	for _, id := range clientTransactionIDs {
		results = append(results, s.VerifyAndUpdate(ctx, userID, id))
	}
	return results
}

/* ===================== Internal ===================== */

// fetchGatewayStatus baca status terkini via StatusFetcher kalau ada,
// fallback ke ConfirmPayment
func (s *ReconcileService) fetchGatewayStatus(ctx context.Context, txn *txModel.PaymentTransaction) (string, map[string]interface{}, error) {
	paymentID := extractPaymentID(map[string]interface{}(txn.PaymentTransactionGatewayData))

	if fetcher, ok := s.Gateways.StatusFetcher(txn.PaymentTransactionProvider); ok {
		id := paymentID
		if id == "" {
			// Midtrans pakai client transaction id sebagai order id
			id = txn.PaymentTransactionClientID
		}
		info, err := fetcher.FetchPaymentStatus(ctx, id)
		if err != nil {
			return "", nil, err
		}
		return info.Status, info.Raw, nil
	}

	gw, ok := s.Gateways.Resolve(txn.PaymentTransactionProvider)
	if !ok {
		return gateway.StatusUnknown, nil, nil
	}
	confirm, err := gw.ConfirmPayment(ctx, paymentID, txn.PaymentTransactionClientID)
	if err != nil {
		return "", nil, err
	}
	return confirm.Status, confirm.Data, nil
}

// extractPaymentID cari id pembayaran gateway dari payload/gateway data
func extractPaymentID(payload map[string]interface{}) string {
	if payload == nil {
		return ""
	}
	for _, key := range []string{"payment_id", "transaction_id", "id", "order_id"} {
		if v, ok := payload[key].(string); ok && v != "" {
			return v
		}
	}
	if data, ok := payload["data"].(map[string]interface{}); ok {
		if v, ok := data["id"].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func (s *ReconcileService) finishEvent(ctx context.Context, event *txModel.PaymentGatewayEvent, status, errText string) {
	now := time.Now()
	event.GatewayEventStatus = status
	event.GatewayEventProcessedAt = &now
	if errText != "" {
		event.GatewayEventError = &errText
	}
	if err := s.DB.WithContext(ctx).Create(event).Error; err != nil {
		log.Printf("❌ Gagal simpan gateway event: %v", err)
	}
}
