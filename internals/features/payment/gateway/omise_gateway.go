package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	omise "github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

/* =========================================================
   Omise = Redirect-Link Gateway
   - amount dikirim dalam minor unit (sen)
   - hasil initiate: charge id + authorize_uri (halaman hosted)
   - konfirmasi sinkron via RetrieveCharge
========================================================= */

type OmiseGateway struct {
	Client    *omise.Client
	ReturnURL string // halaman FE tujuan redirect setelah bayar
}

func NewOmiseGateway(publicKey, secretKey, returnURL string) (*OmiseGateway, error) {
	client, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("init omise client: %w", err)
	}
	// Timeout bounded untuk semua call keluar; timeout dipetakan ke error gateway generik
	client.Client.Timeout = 15 * time.Second
	return &OmiseGateway{Client: client, ReturnURL: returnURL}, nil
}

// Sentinel payment_method_id yang artinya "pakai default gateway"
// (normalisasi di level adapter, bukan aturan core).
func normalizeOmiseMethodID(id string) string {
	switch strings.TrimSpace(id) {
	case "", "omise-default":
		return ""
	}
	return strings.TrimSpace(id)
}

// UsdToCents konversi USD → minor unit (sen), dibulatkan ke integer terdekat.
func UsdToCents(amountUSD float64) int64 {
	return int64(math.Round(amountUSD * 100))
}

func (g *OmiseGateway) InitiatePayment(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	metadata := map[string]interface{}{
		"client_transaction_id": req.ClientTransactionID,
	}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	op := &operations.CreateCharge{
		Amount:      UsdToCents(req.AmountUSD),
		Currency:    "USD",
		ReturnURI:   g.ReturnURL,
		Description: req.Description,
		Metadata:    metadata,
	}
	if token := normalizeOmiseMethodID(req.PaymentMethodID); token != "" {
		op.Card = token
	}

	charge := &omise.Charge{}
	if err := g.Client.Do(charge, op); err != nil {
		return nil, classifyOmiseError(err)
	}

	return &InitiateResult{
		PaymentID:   charge.ID,
		RedirectURL: charge.AuthorizeURI,
		Raw:         chargeToMap(charge),
	}, nil
}

func (g *OmiseGateway) ConfirmPayment(ctx context.Context, paymentID, clientTransactionID string) (*ConfirmResult, error) {
	charge := &omise.Charge{}
	if err := g.Client.Do(charge, &operations.RetrieveCharge{ChargeID: paymentID}); err != nil {
		return nil, classifyOmiseError(err)
	}

	return &ConfirmResult{
		StatusCode: 200,
		Status:     mapOmiseStatus(string(charge.Status)),
		Data:       chargeToMap(charge),
	}, nil
}

// InitiatePhoneCharge: charge via source (PromptPay-style) yang diinisiasi
// dengan nomor telepon pembeli; konfirmasi tetap lewat polling/redirect.
func (g *OmiseGateway) InitiatePhoneCharge(ctx context.Context, phoneNumber string, amountUSD float64, clientTransactionID string) (map[string]interface{}, error) {
	src := &omise.Source{}
	if err := g.Client.Do(src, &operations.CreateSource{
		Type:     "promptpay",
		Amount:   UsdToCents(amountUSD),
		Currency: "USD",
	}); err != nil {
		return nil, classifyOmiseError(err)
	}

	charge := &omise.Charge{}
	if err := g.Client.Do(charge, &operations.CreateCharge{
		Amount:   UsdToCents(amountUSD),
		Currency: "USD",
		Source:   src.ID,
		Metadata: map[string]interface{}{
			"client_transaction_id": clientTransactionID,
			"phone_number":          phoneNumber,
		},
	}); err != nil {
		return nil, classifyOmiseError(err)
	}

	return chargeToMap(charge), nil
}

/* =========================================================
   Mapping & klasifikasi error
========================================================= */

func mapOmiseStatus(status string) string {
	switch strings.ToLower(status) {
	case "successful":
		return StatusApproved
	case "pending":
		return StatusPending
	case "failed":
		return StatusRejected
	case "expired":
		return StatusCancelled
	case "reversed":
		return StatusRefunded
	}
	return StatusUnknown
}

// classifyOmiseError: bedakan duplikat client transaction id dan auth failure
// dari error generik. Deteksi duplikat terpaksa sniffing pesan (gateway tidak
// kasih kode khusus untuk itu).
func classifyOmiseError(err error) error {
	var oerr *omise.Error
	if errors.As(err, &oerr) {
		if oerr.Code == "authentication_failure" {
			return &GatewayError{Provider: "omise", Err: ErrGatewayAuth}
		}
		if isDuplicateMessage(oerr.Message) {
			return &GatewayError{Provider: "omise", Err: ErrDuplicateClientTransactionID}
		}
		return &GatewayError{Provider: "omise", Err: oerr}
	}
	log.Printf("[ERROR] Omise transport error: %v", err)
	return &GatewayError{Provider: "omise", Err: err}
}

func isDuplicateMessage(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "duplicate") ||
		strings.Contains(m, "already been used") ||
		strings.Contains(m, "was already captured")
}

func chargeToMap(charge *omise.Charge) map[string]interface{} {
	raw, err := json.Marshal(charge)
	if err != nil {
		return nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
