// file: internals/features/payment/transactions/model/payment_gateway_event_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/*
  payment_gateway_events = LOG WEBHOOK / CALLBACK PAYMENT GATEWAY
  - Bisa banyak row per 1 transaksi (tiap callback / notif)
  - Nyimpen payload mentah + status processing, buat debug / replay.
*/

const (
	GatewayEventStatusReceived = "received"
	GatewayEventStatusSuccess  = "success"
	GatewayEventStatusFailed   = "failed"
	GatewayEventStatusIgnored  = "ignored"
)

type PaymentGatewayEvent struct {
	GatewayEventID uuid.UUID `gorm:"column:gateway_event_id;type:uuid;primaryKey" json:"gateway_event_id"`

	GatewayEventProvider    string  `gorm:"column:gateway_event_provider;type:varchar(30);not null" json:"gateway_event_provider"`
	GatewayEventExternalID  *string `gorm:"column:gateway_event_external_id;type:varchar(120)" json:"gateway_event_external_id,omitempty"`
	GatewayEventExternalRef *string `gorm:"column:gateway_event_external_ref;type:varchar(120);index" json:"gateway_event_external_ref,omitempty"`

	GatewayEventPayload datatypes.JSONMap `gorm:"column:gateway_event_payload;type:jsonb" json:"gateway_event_payload,omitempty"`

	GatewayEventStatus string  `gorm:"column:gateway_event_status;type:varchar(20);not null;default:'received'" json:"gateway_event_status"`
	GatewayEventError  *string `gorm:"column:gateway_event_error;type:text" json:"gateway_event_error,omitempty"`

	GatewayEventReceivedAt  time.Time  `gorm:"column:gateway_event_received_at;autoCreateTime" json:"gateway_event_received_at"`
	GatewayEventProcessedAt *time.Time `gorm:"column:gateway_event_processed_at" json:"gateway_event_processed_at,omitempty"`
}

func (PaymentGatewayEvent) TableName() string { return "payment_gateway_events" }

func (e *PaymentGatewayEvent) BeforeCreate(tx *gorm.DB) error {
	if e.GatewayEventID == uuid.Nil {
		e.GatewayEventID = uuid.New()
	}
	return nil
}
