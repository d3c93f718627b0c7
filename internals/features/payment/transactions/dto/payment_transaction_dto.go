package dto

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	orderModel "tokoku_backend/internals/features/orders/model"
	txModel "tokoku_backend/internals/features/payment/transactions/model"
)

var validate = validator.New()

/* ===================== Requests ===================== */

// CreateTransactionRequest: order_id terisi = retry untuk order lama,
// kalau kosong wajib ada address_id (alur keranjang).
type CreateTransactionRequest struct {
	ClientTransactionID string     `json:"client_transaction_id" validate:"required,max=120"`
	Provider            string     `json:"provider" validate:"required"`
	OrderID             *uuid.UUID `json:"order_id,omitempty"`
	AddressID           *uuid.UUID `json:"address_id,omitempty"`
	PaymentMethodID     string     `json:"payment_method_id,omitempty"`
	Description         string     `json:"description,omitempty" validate:"max=255"`
}

func (r *CreateTransactionRequest) Validate() map[string][]string {
	errs := validateStruct(r)
	if !txModel.IsValidProvider(r.Provider) {
		errs = appendFieldError(errs, "provider", "Provider pembayaran tidak dikenal")
	}
	if r.OrderID == nil && r.AddressID == nil {
		errs = appendFieldError(errs, "address_id", "Wajib diisi kalau order_id kosong")
	}
	return errs
}

type VerifyMultipleRequest struct {
	ClientTransactionIDs []string `json:"client_transaction_ids" validate:"required,min=1,max=50,dive,required"`
}

func (r *VerifyMultipleRequest) Validate() map[string][]string {
	return validateStruct(r)
}

type PhonePaymentRequest struct {
	ClientTransactionID string    `json:"client_transaction_id" validate:"required,max=120"`
	PhoneNumber         string    `json:"phone_number" validate:"required,min=8,max=20"`
	AddressID           uuid.UUID `json:"address_id" validate:"required"`
	PaymentMethodID     string    `json:"payment_method_id,omitempty"`

	// Hasil charge dari sisi klien (opsional). Kalau kosong, server yang charge.
	GatewayResult map[string]interface{} `json:"gateway_result,omitempty"`
}

func (r *PhonePaymentRequest) Validate() map[string][]string {
	return validateStruct(r)
}

// UpdateStatusRequest dipakai halaman redirect-return sebagai fallback webhook.
type UpdateStatusRequest struct {
	ClientTransactionID string                 `json:"client_transaction_id" validate:"required,max=120"`
	Status              string                 `json:"status" validate:"required,oneof=pending completed failed"`
	PaymentGatewayData  map[string]interface{} `json:"payment_gateway_data,omitempty"`
}

func (r *UpdateStatusRequest) Validate() map[string][]string {
	return validateStruct(r)
}

type RegenerateForOrderRequest struct {
	OrderID         uuid.UUID `json:"order_id" validate:"required"`
	Provider        string    `json:"provider,omitempty"`
	PaymentMethodID string    `json:"payment_method_id,omitempty"`
}

func (r *RegenerateForOrderRequest) Validate() map[string][]string {
	errs := validateStruct(r)
	if r.Provider != "" && !txModel.IsValidProvider(r.Provider) {
		errs = appendFieldError(errs, "provider", "Provider pembayaran tidak dikenal")
	}
	return errs
}

/* ===================== Responses ===================== */

type TransactionResponse struct {
	Transaction *txModel.PaymentTransaction `json:"transaction"`

	// Terisi pada alur checkout (order dibuat bersama transaksinya)
	Order *orderModel.Order `json:"order,omitempty"`

	// Data untuk melanjutkan pembayaran di sisi klien
	RedirectURL  string `json:"redirect_url,omitempty"`
	PreferenceID string `json:"preference_id,omitempty"`
	InitPoint    string `json:"init_point,omitempty"`
}

/* ===================== Helpers ===================== */

func validateStruct(s interface{}) map[string][]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string][]string{"_": {err.Error()}}
	}
	out := map[string][]string{}
	for _, fe := range verrs {
		out[fe.Field()] = append(out[fe.Field()], validationMessage(fe))
	}
	return out
}

func appendFieldError(errs map[string][]string, field, msg string) map[string][]string {
	if errs == nil {
		errs = map[string][]string{}
	}
	errs[field] = append(errs[field], msg)
	return errs
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Wajib diisi"
	case "max":
		return "Melebihi panjang maksimal " + fe.Param()
	case "min":
		return "Kurang dari minimal " + fe.Param()
	case "gt":
		return "Harus lebih besar dari " + fe.Param()
	default:
		return "Tidak valid (" + fe.Tag() + ")"
	}
}
