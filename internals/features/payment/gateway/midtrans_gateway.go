package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"

	"tokoku_backend/internals/features/payment/gateway/rates"
)

/* =========================================================
   Midtrans Snap = Checkout-Preference Gateway
   - "preference" = Snap transaction (token + redirect_url)
   - konfirmasi lewat webhook / polling (CheckTransaction),
     bukan confirm sinkron
   - nominal dikonversi USD → IDR (integer, IDR tanpa sen)
========================================================= */

type MidtransGateway struct {
	Snap snap.Client
	Core coreapi.Client

	Rates *rates.Cache

	// URL return FE + notification endpoint backend
	FinishURL string
	NotifyURL string
}

func NewMidtransGateway(serverKey string, useProd bool, rateCache *rates.Cache, finishURL, notifyURL string) *MidtransGateway {
	env := midtrans.Sandbox
	if useProd {
		env = midtrans.Production
	}

	g := &MidtransGateway{
		Rates:     rateCache,
		FinishURL: finishURL,
		NotifyURL: notifyURL,
	}
	g.Snap.New(serverKey, env)
	g.Core.New(serverKey, env)
	return g
}

// UsdToIDR konversi pakai kurs cache, dibulatkan ke rupiah bulat (IDR tanpa minor unit).
func (g *MidtransGateway) UsdToIDR(ctx context.Context, amountUSD float64) int64 {
	rate := g.Rates.Get(ctx)
	return int64(math.Round(amountUSD * rate))
}

func (g *MidtransGateway) InitiatePayment(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	grossIDR := g.UsdToIDR(ctx, req.AmountUSD)
	if grossIDR <= 0 {
		return nil, &GatewayError{Provider: "midtrans", Err: fmt.Errorf("nominal tidak valid: %.2f USD", req.AmountUSD)}
	}

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.ClientTransactionID,
			GrossAmt: grossIDR,
		},
		Callbacks: &snap.Callbacks{Finish: g.FinishURL},
		Metadata: map[string]interface{}{
			"notification_url":      g.NotifyURL,
			"client_transaction_id": req.ClientTransactionID,
		},
	}

	if len(req.Items) > 0 {
		items := make([]midtrans.ItemDetails, 0, len(req.Items))
		var sum int64
		for i, it := range req.Items {
			price := g.UsdToIDR(ctx, it.PriceUSD)
			if i == len(req.Items)-1 {
				// item terakhir menyerap selisih pembulatan supaya Σ item = gross_amount
				rest := grossIDR - sum - price*int64(it.Qty)
				price += rest / int64(maxInt(it.Qty, 1))
			}
			sum += price * int64(it.Qty)
			items = append(items, midtrans.ItemDetails{
				ID:    safeItemID(it.ID),
				Name:  truncate(it.Name, 50),
				Price: price,
				Qty:   int32(it.Qty),
			})
		}
		snapReq.Items = &items
	}

	resp, err := g.Snap.CreateTransaction(snapReq)
	if err != nil {
		return nil, &GatewayError{Provider: "midtrans", Err: err}
	}

	return &InitiateResult{
		PreferenceID: resp.Token,
		InitPoint:    resp.RedirectURL,
		Raw: map[string]interface{}{
			"token":        resp.Token,
			"redirect_url": resp.RedirectURL,
			"gross_idr":    grossIDR,
		},
	}, nil
}

// ConfirmPayment sengaja stub: model konfirmasi gateway ini push/pull,
// bukan confirm sinkron.
func (g *MidtransGateway) ConfirmPayment(ctx context.Context, paymentID, clientTransactionID string) (*ConfirmResult, error) {
	return &ConfirmResult{
		StatusCode: 202,
		Status:     StatusPending,
		Data: map[string]interface{}{
			"message": "pending, dikonfirmasi via webhook/redirect, bukan confirm sinkron",
		},
	}, nil
}

// FetchPaymentStatus baca {status, external_reference} untuk satu payment id
// di sisi gateway (dipakai webhook push & verify pull).
func (g *MidtransGateway) FetchPaymentStatus(ctx context.Context, gatewayPaymentID string) (*StatusInfo, error) {
	resp, err := g.Core.CheckTransaction(gatewayPaymentID)
	if err != nil {
		return nil, &GatewayError{Provider: "midtrans", Err: err}
	}
	if resp == nil {
		return nil, &GatewayError{Provider: "midtrans", Err: fmt.Errorf("respons kosong dari CheckTransaction")}
	}

	return &StatusInfo{
		Status:            MapMidtransStatus(resp.TransactionStatus, resp.FraudStatus),
		ExternalReference: resp.OrderID,
		Raw:               statusRespToMap(resp),
	}, nil
}

/* =========================================================
   Mapping status Midtrans → status ternormalisasi
========================================================= */

func MapMidtransStatus(transactionStatus, fraudStatus string) string {
	ts := strings.ToLower(transactionStatus)
	fraud := strings.ToLower(fraudStatus)

	switch ts {
	case "capture":
		if fraud == "challenge" {
			return StatusInProcess
		}
		if fraud == "" || fraud == "accept" {
			return StatusApproved
		}
		return StatusRejected
	case "settlement":
		return StatusApproved
	case "pending":
		return StatusPending
	case "deny", "failure":
		return StatusRejected
	case "cancel", "expire":
		return StatusCancelled
	case "refund", "partial_refund":
		return StatusRefunded
	}
	return StatusUnknown
}

/* =========================================================
   Utils
========================================================= */

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}

func safeItemID(s string) string {
	if s == "" {
		return "item-1"
	}
	return s
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func statusRespToMap(resp *coreapi.TransactionStatusResponse) map[string]interface{} {
	raw, err := json.Marshal(resp)
	if err != nil {
		return nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
