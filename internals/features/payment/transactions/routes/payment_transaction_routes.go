package routes

import (
	"github.com/gofiber/fiber/v2"

	paymentController "tokoku_backend/internals/features/payment/transactions/controller"
	"tokoku_backend/internals/features/payment/transactions/service"
)

// PaymentUserRoutes rute transaksi pembayaran (butuh login)
func PaymentUserRoutes(user fiber.Router, svc *service.TransactionService, rec *service.ReconcileService) {
	ctl := paymentController.NewPaymentTransactionController(svc, rec)

	payments := user.Group("/payments")
	payments.Post("/", ctl.CreateTransaction)
	payments.Post("/checkout", ctl.CreateTransactionAndOrder)
	payments.Post("/phone", ctl.PhonePayment)
	payments.Post("/regenerate", ctl.RegenerateForOrder)
	payments.Post("/verify", ctl.VerifyMultiple)
	payments.Get("/pending", ctl.GetPendingPayments)
	payments.Get("/:clientTransactionId", ctl.GetByClientTransactionID)
	payments.Delete("/:clientTransactionId", ctl.DeletePendingPayment)
}

// PaymentPublicRoutes rute tanpa auth: webhook gateway (selalu 200) plus
// lookup dan update status untuk halaman redirect-return.
func PaymentPublicRoutes(public fiber.Router, svc *service.TransactionService, rec *service.ReconcileService) {
	webhookCtl := paymentController.NewWebhookController(rec)
	public.Post("/:provider/webhook", webhookCtl.HandleWebhook)

	ctl := paymentController.NewPaymentTransactionController(svc, rec)
	transactions := public.Group("/transactions")
	transactions.Post("/status", ctl.UpdateStatus)
	transactions.Get("/:clientTransactionId", ctl.GetPublicTransaction)
}
