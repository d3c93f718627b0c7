package routes

import (
	"github.com/gofiber/fiber/v2"

	depositController "tokoku_backend/internals/features/payment/deposits/controller"
	"tokoku_backend/internals/features/payment/deposits/service"
)

func DepositUserRoutes(user fiber.Router, svc *service.DepositService) {
	ctl := depositController.NewDepositController(svc)

	deposits := user.Group("/deposits")
	deposits.Post("/", ctl.SubmitDeposit)
}

// DepositAdminRoutes keputusan review bukti setor (khusus admin)
func DepositAdminRoutes(admin fiber.Router, svc *service.DepositService) {
	ctl := depositController.NewDepositController(svc)

	deposits := admin.Group("/deposits")
	deposits.Post("/:orderId/review", ctl.ReviewDeposit)
}
