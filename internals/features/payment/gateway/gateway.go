package gateway

import (
	"context"
	"errors"
	"fmt"
)

/* =========================================================
   Status gateway ternormalisasi
========================================================= */

const (
	StatusApproved  = "approved"
	StatusPending   = "pending"
	StatusInProcess = "in_process"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
	StatusRefunded  = "refunded"
	StatusUnknown   = "unknown"
)

/* =========================================================
   Error types
========================================================= */

var (
	// ErrDuplicateClientTransactionID: gateway menolak karena client transaction id sudah terpakai.
	// Caller diharapkan regenerate id baru, bukan menampilkan error generik.
	ErrDuplicateClientTransactionID = errors.New("client transaction id sudah terpakai di gateway")

	// ErrGatewayAuth: kredensial gateway salah/expired (HTTP 401 di provider)
	ErrGatewayAuth = errors.New("autentikasi ke payment gateway gagal")
)

// GatewayError membungkus error provider supaya caller bisa bedakan sumbernya.
type GatewayError struct {
	Provider string
	Err      error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s: %v", e.Provider, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

/* =========================================================
   Capability set
========================================================= */

type ItemDetail struct {
	ID       string
	Name     string
	Qty      int
	PriceUSD float64
}

type InitiateRequest struct {
	ClientTransactionID string
	AmountUSD           float64
	Description         string
	PaymentMethodID     string // token kartu / metode tersimpan; boleh kosong untuk default
	Items               []ItemDetail
	Metadata            map[string]interface{}
}

type InitiateResult struct {
	PaymentID    string `json:"payment_id,omitempty"`
	RedirectURL  string `json:"redirect_url,omitempty"`
	PreferenceID string `json:"preference_id,omitempty"`
	InitPoint    string `json:"init_point,omitempty"`

	Raw map[string]interface{} `json:"raw,omitempty"`
}

type ConfirmResult struct {
	StatusCode int                    `json:"status_code"`
	Status     string                 `json:"status"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// StatusInfo hasil baca status di sisi gateway (dipakai webhook/polling)
type StatusInfo struct {
	Status            string
	ExternalReference string
	Raw               map[string]interface{}
}

// Gateway = capability set seragam per provider.
type Gateway interface {
	InitiatePayment(ctx context.Context, req InitiateRequest) (*InitiateResult, error)
	ConfirmPayment(ctx context.Context, paymentID, clientTransactionID string) (*ConfirmResult, error)
}

// PhoneCharger opsional: charge yang diinisiasi via nomor telepon.
type PhoneCharger interface {
	InitiatePhoneCharge(ctx context.Context, phoneNumber string, amountUSD float64, clientTransactionID string) (map[string]interface{}, error)
}

// StatusFetcher opsional: baca {status, external_reference} by gateway payment id.
type StatusFetcher interface {
	FetchPaymentStatus(ctx context.Context, gatewayPaymentID string) (*StatusInfo, error)
}

/* =========================================================
   Registry (dipilih berdasarkan payment_transaction_provider)
========================================================= */

type Registry struct {
	gateways map[string]Gateway
}

func NewRegistry() *Registry {
	return &Registry{gateways: map[string]Gateway{}}
}

func (r *Registry) Register(provider string, g Gateway) {
	r.gateways[provider] = g
}

func (r *Registry) Resolve(provider string) (Gateway, bool) {
	g, ok := r.gateways[provider]
	return g, ok
}

func (r *Registry) PhoneCharger(provider string) (PhoneCharger, bool) {
	g, ok := r.gateways[provider]
	if !ok {
		return nil, false
	}
	pc, ok := g.(PhoneCharger)
	return pc, ok
}

func (r *Registry) StatusFetcher(provider string) (StatusFetcher, bool) {
	g, ok := r.gateways[provider]
	if !ok {
		return nil, false
	}
	sf, ok := g.(StatusFetcher)
	return sf, ok
}
