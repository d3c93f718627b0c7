package routes

import (
	"github.com/gofiber/fiber/v2"

	orderController "tokoku_backend/internals/features/orders/controller"
	"tokoku_backend/internals/features/orders/service"
)

func OrderUserRoutes(user fiber.Router, svc *service.OrderLinkService) {
	ctl := orderController.NewOrderController(svc)

	orders := user.Group("/orders")
	orders.Get("/", ctl.ListOrders)
	orders.Get("/:orderId", ctl.GetOrder)
}

// OrderAdminRoutes perubahan status order (alur fulfilment, khusus admin)
func OrderAdminRoutes(admin fiber.Router, svc *service.OrderLinkService) {
	ctl := orderController.NewOrderController(svc)

	orders := admin.Group("/orders")
	orders.Patch("/:orderId/status", ctl.UpdateOrderStatus)
}
