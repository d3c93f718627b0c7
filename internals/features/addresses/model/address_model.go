package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Address struct {
	AddressID uuid.UUID `gorm:"column:address_id;type:uuid;primaryKey" json:"address_id"`

	AddressUserID uuid.UUID `gorm:"column:address_user_id;type:uuid;not null;index" json:"address_user_id"`

	AddressLine     string  `gorm:"column:address_line;type:varchar(255);not null" json:"address_line"`
	AddressCity     string  `gorm:"column:address_city;type:varchar(100);not null" json:"address_city"`
	AddressProvince string  `gorm:"column:address_province;type:varchar(100)" json:"address_province"`
	AddressPostcode string  `gorm:"column:address_postcode;type:varchar(20)" json:"address_postcode"`
	AddressPhone    *string `gorm:"column:address_phone;type:varchar(30)" json:"address_phone,omitempty"`

	CreatedAt time.Time      `gorm:"column:address_created_at;autoCreateTime" json:"address_created_at"`
	UpdatedAt time.Time      `gorm:"column:address_updated_at;autoUpdateTime" json:"address_updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:address_deleted_at;index" json:"address_deleted_at,omitempty"`
}

func (Address) TableName() string { return "addresses" }

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.AddressID == uuid.Nil {
		a.AddressID = uuid.New()
	}
	return nil
}
