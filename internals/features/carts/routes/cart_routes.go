package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	cartController "tokoku_backend/internals/features/carts/controller"
)

func CartUserRoutes(user fiber.Router, db *gorm.DB) {
	ctl := cartController.NewCartController(db)

	cart := user.Group("/cart")
	cart.Get("/", ctl.GetCart)
	cart.Post("/items", ctl.UpsertItem)
	cart.Delete("/items/:itemId", ctl.RemoveItem)
	cart.Delete("/", ctl.ClearCart)
}
