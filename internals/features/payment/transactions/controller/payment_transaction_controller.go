package controller

import (
	"github.com/gofiber/fiber/v2"

	"tokoku_backend/internals/features/payment/transactions/dto"
	"tokoku_backend/internals/features/payment/transactions/service"
	helpers "tokoku_backend/internals/helpers"
)

type PaymentTransactionController struct {
	Service   *service.TransactionService
	Reconcile *service.ReconcileService
}

func NewPaymentTransactionController(svc *service.TransactionService, rec *service.ReconcileService) *PaymentTransactionController {
	return &PaymentTransactionController{Service: svc, Reconcile: rec}
}

// POST /api/u/payments
func (ctl *PaymentTransactionController) CreateTransaction(c *fiber.Ctx) error {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}

	var req dto.CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Body request tidak valid")
	}
	if errs := req.Validate(); errs != nil {
		return helpers.JsonValidationError(c, errs)
	}

	resp, err := ctl.Service.CreateTransaction(c.Context(), userID, &req)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}
	return helpers.JsonCreated(c, "Transaksi pembayaran dibuat", resp)
}

// POST /api/u/payments/checkout
func (ctl *PaymentTransactionController) CreateTransactionAndOrder(c *fiber.Ctx) error {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}

	var req dto.CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Body request tidak valid")
	}
	if errs := req.Validate(); errs != nil {
		return helpers.JsonValidationError(c, errs)
	}

	resp, err := ctl.Service.CreateTransactionAndOrder(c.Context(), userID, &req)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}
	return helpers.JsonCreated(c, "Checkout dibuat", resp)
}

// POST /api/u/payments/phone
func (ctl *PaymentTransactionController) PhonePayment(c *fiber.Ctx) error {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}

	var req dto.PhonePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Body request tidak valid")
	}
	if errs := req.Validate(); errs != nil {
		return helpers.JsonValidationError(c, errs)
	}

	txn, err := ctl.Service.PhonePayment(c.Context(), userID, &req)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}
	return helpers.JsonCreated(c, "Charge via telepon dibuat", txn)
}

// POST /api/u/payments/regenerate
func (ctl *PaymentTransactionController) RegenerateForOrder(c *fiber.Ctx) error {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}

	var req dto.RegenerateForOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Body request tidak valid")
	}
	if errs := req.Validate(); errs != nil {
		return helpers.JsonValidationError(c, errs)
	}

	resp, err := ctl.Service.RegenerateForOrder(c.Context(), userID, &req)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}
	return helpers.JsonCreated(c, "Transaksi baru untuk pesanan dibuat", resp)
}

// POST /api/u/payments/verify
func (ctl *PaymentTransactionController) VerifyMultiple(c *fiber.Ctx) error {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}

	var req dto.VerifyMultipleRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Body request tidak valid")
	}
	if errs := req.Validate(); errs != nil {
		return helpers.JsonValidationError(c, errs)
	}

	results := ctl.Reconcile.VerifyMultiple(c.Context(), userID, req.ClientTransactionIDs)
	return helpers.JsonOK(c, "Verifikasi selesai", results)
}

// GET /api/u/payments/pending
func (ctl *PaymentTransactionController) GetPendingPayments(c *fiber.Ctx) error {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}

	list, err := ctl.Service.GetUserPendingPayments(c.Context(), userID)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}
	return helpers.JsonList(c, "Daftar pembayaran pending", list)
}

// GET /api/u/payments/:clientTransactionId
func (ctl *PaymentTransactionController) GetByClientTransactionID(c *fiber.Ctx) error {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}

	txn, err := ctl.Service.GetByClientTransactionID(c.Context(), userID, c.Params("clientTransactionId"))
	if err != nil {
		return helpers.FromFiberError(c, err)
	}
	return helpers.JsonOK(c, "Detail transaksi", txn)
}

// GET /api/public/transactions/:clientTransactionId
// Dipakai halaman redirect-return, jadi tanpa auth.
func (ctl *PaymentTransactionController) GetPublicTransaction(c *fiber.Ctx) error {
	txn, err := ctl.Service.GetPublicByClientTransactionID(c.Context(), c.Params("clientTransactionId"))
	if err != nil {
		return helpers.FromFiberError(c, err)
	}
	return helpers.JsonOK(c, "Detail transaksi", txn)
}

// POST /api/public/transactions/status
// Fallback webhook dari halaman redirect-return; idempoten per status.
func (ctl *PaymentTransactionController) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Body request tidak valid")
	}
	if errs := req.Validate(); errs != nil {
		return helpers.JsonValidationError(c, errs)
	}

	txn, err := ctl.Service.Orders.UpdatePaymentStatus(c.Context(), req.ClientTransactionID, req.Status, req.PaymentGatewayData)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}
	return helpers.JsonUpdated(c, "Status transaksi diperbarui", txn)
}

// DELETE /api/u/payments/:clientTransactionId
func (ctl *PaymentTransactionController) DeletePendingPayment(c *fiber.Ctx) error {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}

	if err := ctl.Service.DeleteUserPendingPayment(c.Context(), userID, c.Params("clientTransactionId")); err != nil {
		return helpers.FromFiberError(c, err)
	}
	return helpers.JsonDeleted(c, "Transaksi pending dihapus", nil)
}
