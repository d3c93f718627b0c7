package dto

type CreateAddressRequest struct {
	AddressLine     string `json:"address_line" validate:"required,max=255"`
	AddressCity     string `json:"address_city" validate:"required,max=100"`
	AddressProvince string `json:"address_province" validate:"max=100"`
	AddressPostcode string `json:"address_postcode" validate:"max=20"`
	AddressPhone    string `json:"address_phone" validate:"max=30"`
}
