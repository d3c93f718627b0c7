package route

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tokoku_backend/internals/configs"
	addressRoutes "tokoku_backend/internals/features/addresses/routes"
	cartRoutes "tokoku_backend/internals/features/carts/routes"
	"tokoku_backend/internals/features/notifications"
	orderRoutes "tokoku_backend/internals/features/orders/routes"
	orderService "tokoku_backend/internals/features/orders/service"
	depositRoutes "tokoku_backend/internals/features/payment/deposits/routes"
	depositService "tokoku_backend/internals/features/payment/deposits/service"
	"tokoku_backend/internals/features/payment/gateway"
	"tokoku_backend/internals/features/payment/gateway/rates"
	txModel "tokoku_backend/internals/features/payment/transactions/model"
	paymentRoutes "tokoku_backend/internals/features/payment/transactions/routes"
	txService "tokoku_backend/internals/features/payment/transactions/service"
	oss "tokoku_backend/internals/helpers/oss"
	authMiddleware "tokoku_backend/internals/middlewares/auth"
)

// SetupRoutes rakit semua dependency lalu daftarkan rute:
// /api/public (tanpa auth), /api/u (wajib JWT), /api/a (JWT + role admin).
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	registry := buildGatewayRegistry()
	mailer := notifications.NewSMTPMailerFromEnv()

	orders := orderService.NewOrderLinkService(db, mailerOrNil(mailer))
	transactions := txService.NewTransactionService(db, registry, orders)
	reconcile := txService.NewReconcileService(db, registry, orders)

	var uploader depositService.Uploader
	if svc, err := oss.NewOSSServiceFromEnv(); err != nil {
		log.Printf("⚠️ OSS tidak aktif: %v", err)
	} else {
		uploader = svc
	}
	deposits := depositService.NewDepositService(db, uploader, orders)

	api := app.Group("/api")

	public := api.Group("/public")
	paymentRoutes.PaymentPublicRoutes(public, transactions, reconcile)

	user := api.Group("/u", authMiddleware.AuthMiddleware())
	paymentRoutes.PaymentUserRoutes(user, transactions, reconcile)
	depositRoutes.DepositUserRoutes(user, deposits)
	orderRoutes.OrderUserRoutes(user, orders)
	cartRoutes.CartUserRoutes(user, db)
	addressRoutes.AddressUserRoutes(user, db)

	admin := api.Group("/a", authMiddleware.AuthMiddleware(), authMiddleware.OnlyAdmin())
	depositRoutes.DepositAdminRoutes(admin, deposits)
	orderRoutes.OrderAdminRoutes(admin, orders)
}

func buildGatewayRegistry() *gateway.Registry {
	registry := gateway.NewRegistry()

	if configs.OmiseSecretKey != "" {
		omiseGw, err := gateway.NewOmiseGateway(
			configs.OmisePublicKey,
			configs.OmiseSecretKey,
			configs.WebBaseURL+"/payment/return",
		)
		if err != nil {
			log.Printf("❌ Gagal inisialisasi gateway omise: %v", err)
		} else {
			registry.Register(txModel.ProviderOmise, omiseGw)
			log.Println("🔌 Gateway omise terdaftar")
		}
	}

	if configs.MidtransServerKey != "" {
		rateCache := rates.NewCache(rates.NewHTTPFetcher(), nil, rates.DefaultTTL)
		registry.Register(txModel.ProviderMidtrans, gateway.NewMidtransGateway(
			configs.MidtransServerKey,
			configs.MidtransUseProd,
			rateCache,
			configs.WebBaseURL+"/payment/finish",
			configs.AppBaseURL+"/api/public/midtrans/webhook",
		))
		log.Println("🔌 Gateway midtrans terdaftar")
	}

	return registry
}

// mailerOrNil hindari interface berisi nil pointer
func mailerOrNil(m *notifications.SMTPMailer) notifications.Mailer {
	if m == nil {
		return nil
	}
	return m
}
