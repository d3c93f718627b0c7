package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"tokoku_backend/internals/features/carts/dto"
	"tokoku_backend/internals/features/carts/service"
	helpers "tokoku_backend/internals/helpers"
)

type CartController struct {
	DB *gorm.DB
}

func NewCartController(db *gorm.DB) *CartController {
	return &CartController{DB: db}
}

// GET /api/u/cart
func (ctl *CartController) GetCart(c *fiber.Ctx) error {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}

	summary, err := service.GetCartSummary(c.Context(), ctl.DB, userID)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}
	return helpers.JsonOK(c, "Isi keranjang", summary)
}

// POST /api/u/cart/items
func (ctl *CartController) UpsertItem(c *fiber.Ctx) error {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}

	var req dto.UpsertCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Body request tidak valid")
	}
	if req.ProductID == uuid.Nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "product_id wajib diisi")
	}

	item, err := service.UpsertItem(c.Context(), ctl.DB, userID, req.ProductID, req.Quantity)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}
	return helpers.JsonCreated(c, "Item keranjang disimpan", item)
}

// DELETE /api/u/cart/items/:itemId
func (ctl *CartController) RemoveItem(c *fiber.Ctx) error {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}

	itemID, err := uuid.Parse(c.Params("itemId"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "itemId tidak valid")
	}

	if err := service.RemoveItem(c.Context(), ctl.DB, userID, itemID); err != nil {
		return helpers.FromFiberError(c, err)
	}
	return helpers.JsonDeleted(c, "Item keranjang dihapus", nil)
}

// DELETE /api/u/cart
func (ctl *CartController) ClearCart(c *fiber.Ctx) error {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}

	if err := service.ClearCart(c.Context(), ctl.DB, userID); err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helpers.JsonDeleted(c, "Keranjang dikosongkan", nil)
}
