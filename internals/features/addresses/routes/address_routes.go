package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	addressController "tokoku_backend/internals/features/addresses/controller"
)

func AddressUserRoutes(user fiber.Router, db *gorm.DB) {
	ctl := addressController.NewAddressController(db)

	addresses := user.Group("/addresses")
	addresses.Get("/", ctl.ListAddresses)
	addresses.Post("/", ctl.CreateAddress)
}
