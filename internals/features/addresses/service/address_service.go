package service

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	addrModel "tokoku_backend/internals/features/addresses/model"
)

// ValidateOwnership pastikan alamat ada & milik user.
// 404 "Alamat tidak ditemukan" kalau tidak cocok.
func ValidateOwnership(ctx context.Context, db *gorm.DB, userID, addressID uuid.UUID) (*addrModel.Address, error) {
	var addr addrModel.Address
	err := db.WithContext(ctx).
		Where("address_id = ? AND address_user_id = ?", addressID, userID).
		First(&addr).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Alamat tidak ditemukan")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return &addr, nil
}

// ListByUser ambil semua alamat milik user (terbaru dahulu)
func ListByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]addrModel.Address, error) {
	var list []addrModel.Address
	if err := db.WithContext(ctx).
		Where("address_user_id = ?", userID).
		Order("address_created_at DESC").
		Find(&list).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return list, nil
}

// Create simpan alamat baru untuk user
func Create(ctx context.Context, db *gorm.DB, addr *addrModel.Address) error {
	if err := db.WithContext(ctx).Create(addr).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return nil
}
