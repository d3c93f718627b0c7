package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	orderModel "tokoku_backend/internals/features/orders/model"
	"tokoku_backend/internals/features/orders/service"
	helpers "tokoku_backend/internals/helpers"
)

type OrderController struct {
	Service *service.OrderLinkService
}

func NewOrderController(svc *service.OrderLinkService) *OrderController {
	return &OrderController{Service: svc}
}

// GET /api/u/orders
func (ctl *OrderController) ListOrders(c *fiber.Ctx) error {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}

	orders, err := ctl.Service.ListUserOrders(c.Context(), userID)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}
	return helpers.JsonList(c, "Daftar pesanan", orders)
}

// GET /api/u/orders/:orderId
func (ctl *OrderController) GetOrder(c *fiber.Ctx) error {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}

	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "orderId tidak valid")
	}

	order, err := ctl.Service.GetUserOrder(c.Context(), userID, orderID)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}
	return helpers.JsonOK(c, "Detail pesanan", order)
}

// PATCH /api/a/orders/:orderId/status
// Body: {"status": "shipping"}, dipakai alur fulfilment admin
func (ctl *OrderController) UpdateOrderStatus(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "orderId tidak valid")
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Body request tidak valid")
	}
	if !isValidOrderStatus(body.Status) {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Status pesanan tidak dikenal")
	}

	order, err := ctl.Service.UpdateOrderStatus(c.Context(), orderID, body.Status)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}
	return helpers.JsonUpdated(c, "Status pesanan diperbarui", order)
}

func isValidOrderStatus(s string) bool {
	switch s {
	case orderModel.OrderStatusCreated, orderModel.OrderStatusPending,
		orderModel.OrderStatusProcessing, orderModel.OrderStatusPaidPendingReview,
		orderModel.OrderStatusShipping, orderModel.OrderStatusDelivered,
		orderModel.OrderStatusCancelled:
		return true
	}
	return false
}
