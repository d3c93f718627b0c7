package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* ===================== Constants ===================== */

const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// Provider pembayaran. Omise = redirect link (kartu/wallet),
// Midtrans = checkout preference (Snap), sisanya setor manual.
const (
	ProviderOmise         = "omise"
	ProviderMidtrans      = "midtrans"
	ProviderCashDeposit   = "cash_deposit"
	ProviderCryptoDeposit = "crypto_deposit"
)

/* ===================== Model ===================== */

type PaymentTransaction struct {
	PaymentTransactionID uuid.UUID `gorm:"column:payment_transaction_id;type:uuid;primaryKey" json:"payment_transaction_id"`

	// Idempotency key dari caller; korelasi utama dengan gateway (external_reference / order_id di PSP)
	PaymentTransactionClientID string `gorm:"column:payment_transaction_client_id;type:varchar(120);not null;uniqueIndex" json:"payment_transaction_client_id"`

	PaymentTransactionUserID  uuid.UUID  `gorm:"column:payment_transaction_user_id;type:uuid;not null;index" json:"payment_transaction_user_id"`
	PaymentTransactionOrderID *uuid.UUID `gorm:"column:payment_transaction_order_id;type:uuid;index" json:"payment_transaction_order_id,omitempty"`

	// Nominal dalam mata uang dasar (USD)
	PaymentTransactionAmountUSD float64 `gorm:"column:payment_transaction_amount_usd;type:numeric(12,2);not null;check:payment_transaction_amount_usd >= 0" json:"payment_transaction_amount_usd"`

	PaymentTransactionStatus   string `gorm:"column:payment_transaction_status;type:varchar(20);not null;default:'pending'" json:"payment_transaction_status"`
	PaymentTransactionProvider string `gorm:"column:payment_transaction_provider;type:varchar(30);not null" json:"payment_transaction_provider"`

	PaymentTransactionAddressID       *uuid.UUID `gorm:"column:payment_transaction_address_id;type:uuid" json:"payment_transaction_address_id,omitempty"`
	PaymentTransactionPaymentMethodID *string    `gorm:"column:payment_transaction_payment_method_id;type:varchar(120)" json:"payment_transaction_payment_method_id,omitempty"`

	// Respons mentah terakhir dari gateway (supersedable)
	PaymentTransactionGatewayData datatypes.JSONMap `gorm:"column:payment_transaction_gateway_data;type:jsonb" json:"payment_transaction_gateway_data,omitempty"`

	CreatedAt time.Time      `gorm:"column:payment_transaction_created_at;autoCreateTime" json:"payment_transaction_created_at"`
	UpdatedAt time.Time      `gorm:"column:payment_transaction_updated_at;autoUpdateTime" json:"payment_transaction_updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:payment_transaction_deleted_at;index" json:"payment_transaction_deleted_at,omitempty"`
}

func (PaymentTransaction) TableName() string { return "payment_transactions" }

func (t *PaymentTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.PaymentTransactionID == uuid.Nil {
		t.PaymentTransactionID = uuid.New()
	}
	return nil
}

/* ===================== Helpers ===================== */

func (t *PaymentTransaction) IsPending() bool {
	return t.PaymentTransactionStatus == TransactionStatusPending
}

func (t *PaymentTransaction) IsCompleted() bool {
	return t.PaymentTransactionStatus == TransactionStatusCompleted
}

// IsGatewayProvider true kalau provider dikonfirmasi lewat gateway (bukan setor manual)
func (t *PaymentTransaction) IsGatewayProvider() bool {
	return t.PaymentTransactionProvider == ProviderOmise || t.PaymentTransactionProvider == ProviderMidtrans
}

func IsValidProvider(p string) bool {
	switch p {
	case ProviderOmise, ProviderMidtrans, ProviderCashDeposit, ProviderCryptoDeposit:
		return true
	}
	return false
}
