package controller

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"

	"tokoku_backend/internals/features/payment/transactions/service"
)

type WebhookController struct {
	Reconcile *service.ReconcileService
}

func NewWebhookController(rec *service.ReconcileService) *WebhookController {
	return &WebhookController{Reconcile: rec}
}

// POST /api/public/:provider/webhook
// Selalu balas 200: gateway akan retry kalau non-2xx, dan retry badai
// tidak membantu payload yang memang rusak. Kegagalan tercatat di event log.
func (ctl *WebhookController) HandleWebhook(c *fiber.Ctx) error {
	provider := c.Params("provider")

	payload := parseWebhookPayload(c)
	if payload == nil {
		log.Printf("⚠️ Webhook %s: payload tidak bisa dibaca", provider)
		return c.SendStatus(fiber.StatusOK)
	}

	ctl.Reconcile.HandleWebhook(c.Context(), provider, payload)
	return c.SendStatus(fiber.StatusOK)
}

// parseWebhookPayload toleran terhadap format: JSON dulu, fallback form-urlencoded.
// Query param `id`/`topic` (gaya redirect callback) juga ikut dibaca.
func parseWebhookPayload(c *fiber.Ctx) map[string]interface{} {
	payload := map[string]interface{}{}

	body := c.Body()
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			payload = map[string]interface{}{}
			if form, ferr := c.MultipartForm(); ferr == nil && form != nil {
				for k, v := range form.Value {
					if len(v) > 0 {
						payload[k] = v[0]
					}
				}
			}
		}
	}

	for _, key := range []string{"id", "topic", "type"} {
		if v := c.Query(key); v != "" {
			if _, exists := payload[key]; !exists {
				payload[key] = v
			}
		}
	}

	if len(payload) == 0 {
		return nil
	}
	return payload
}
