package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tokoku_backend/internals/features/addresses/dto"
	addrModel "tokoku_backend/internals/features/addresses/model"
	"tokoku_backend/internals/features/addresses/service"
	helpers "tokoku_backend/internals/helpers"
)

type AddressController struct {
	DB *gorm.DB
}

func NewAddressController(db *gorm.DB) *AddressController {
	return &AddressController{DB: db}
}

// GET /api/u/addresses
func (ctl *AddressController) ListAddresses(c *fiber.Ctx) error {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}

	list, err := service.ListByUser(c.Context(), ctl.DB, userID)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}
	return helpers.JsonList(c, "Daftar alamat", list)
}

// POST /api/u/addresses
func (ctl *AddressController) CreateAddress(c *fiber.Ctx) error {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return helpers.FromFiberError(c, err)
	}

	var req dto.CreateAddressRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Body request tidak valid")
	}
	if req.AddressLine == "" || req.AddressCity == "" {
		return helpers.JsonError(c, fiber.StatusBadRequest, "address_line dan address_city wajib diisi")
	}

	addr := &addrModel.Address{
		AddressUserID:   userID,
		AddressLine:     req.AddressLine,
		AddressCity:     req.AddressCity,
		AddressProvince: req.AddressProvince,
		AddressPostcode: req.AddressPostcode,
	}
	if req.AddressPhone != "" {
		addr.AddressPhone = &req.AddressPhone
	}

	if err := service.Create(c.Context(), ctl.DB, addr); err != nil {
		return helpers.FromFiberError(c, err)
	}
	return helpers.JsonCreated(c, "Alamat tersimpan", addr)
}
