package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tokoku_backend/internals/features/payment/deposits/service"
	helpers "tokoku_backend/internals/helpers"
)

type DepositController struct {
	Service *service.DepositService
}

func NewDepositController(svc *service.DepositService) *DepositController {
	return &DepositController{Service: svc}
}

// POST /api/u/deposits (multipart/form-data)
// Field: client_transaction_id, provider, address_id ATAU order_id, proof (file)
func (ctl *DepositController) SubmitDeposit(c *fiber.Ctx) error {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}

	in := &service.SubmitDepositInput{
		ClientTransactionID: c.FormValue("client_transaction_id"),
		Provider:            c.FormValue("provider"),
	}
	if v := c.FormValue("order_id"); v != "" {
		id, perr := uuid.Parse(v)
		if perr != nil {
			return helpers.JsonError(c, fiber.StatusBadRequest, "order_id tidak valid")
		}
		in.OrderID = &id
	}
	if v := c.FormValue("address_id"); v != "" {
		id, perr := uuid.Parse(v)
		if perr != nil {
			return helpers.JsonError(c, fiber.StatusBadRequest, "address_id tidak valid")
		}
		in.AddressID = &id
	}

	proof, ferr := c.FormFile("proof")
	if ferr != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Bukti transfer wajib diunggah")
	}

	result, err := ctl.Service.SubmitDeposit(c.Context(), userID, in, proof)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}
	return helpers.JsonCreated(c, "Setoran dicatat, menunggu verifikasi admin", result)
}

// POST /api/a/deposits/:orderId/review
// Body: {"approve": true|false}
func (ctl *DepositController) ReviewDeposit(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "orderId tidak valid")
	}

	var body struct {
		Approve bool `json:"approve"`
	}
	if err := c.BodyParser(&body); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Body request tidak valid")
	}

	order, err := ctl.Service.ReviewDeposit(c.Context(), orderID, body.Approve)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}

	msg := "Setoran ditolak, pesanan dibatalkan"
	if body.Approve {
		msg = "Setoran disetujui, pesanan diproses"
	}
	return helpers.JsonUpdated(c, msg, order)
}
