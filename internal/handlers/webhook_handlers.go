package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"

	"rentpay_portal/internal/models"
	"rentpay_portal/internal/services"
)

// Stripe retries deliveries for days; claimed event IDs are remembered
// long enough to outlast the retry schedule.
const webhookDedupeTTL = 72 * time.Hour

type WebhookHandler struct {
	db             *gorm.DB
	cache          *services.RedisCache
	stripeClient   *services.StripeService
	paymentService *services.PaymentService
}

func NewWebhookHandler(db *gorm.DB, cache *services.RedisCache, stripeClient *services.StripeService, paymentService *services.PaymentService) *WebhookHandler {
	return &WebhookHandler{db: db, cache: cache, stripeClient: stripeClient, paymentService: paymentService}
}

// HandleStripe processes Stripe webhook deliveries: verify the signature,
// audit the payload, claim the event ID, then settle the charge.
func (h *WebhookHandler) HandleStripe(c echo.Context) error {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, 1<<16))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read payload")
	}

	event, err := h.stripeClient.VerifyWebhook(payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid signature")
	}

	// Audit before any processing
	history := models.PaymentCallbackHistory{
		PaymentGateway: models.PaymentGatewayStripe,
		EventID:        event.ID,
		EventType:      string(event.Type),
		Metadata:       payload,
	}
	if err := h.db.Create(&history).Error; err != nil {
		log.Printf("Failed to record callback history for %s: %v", event.ID, err)
	}

	if !h.claimEvent(c.Request().Context(), event.ID) {
		return c.JSON(http.StatusOK, map[string]string{"status": "duplicate"})
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.processing", "payment_intent.canceled":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Malformed event object")
		}
		if err := h.paymentService.ApplyIntentEvent(c.Request().Context(), &intent, time.Now()); err != nil {
			log.Printf("Failed to apply %s for intent %s: %v", event.Type, intent.ID, err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process event")
		}

	case "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Malformed event object")
		}
		if err := h.paymentService.MarkFailed(c.Request().Context(), intent.ID); err != nil {
			log.Printf("Failed to mark intent %s failed: %v", intent.ID, err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process event")
		}

	default:
		log.Printf("Ignoring Stripe event type %s", event.Type)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "received"})
}

// claimEvent returns false when the event was already processed. Redis
// being down fails open: processing is idempotent anyway.
func (h *WebhookHandler) claimEvent(ctx context.Context, eventID string) bool {
	if h.cache == nil {
		return true
	}
	claimed, err := h.cache.SetNX(ctx, "stripe_event:"+eventID, true, webhookDedupeTTL)
	if err != nil {
		log.Printf("Webhook dedupe unavailable: %v", err)
		return true
	}
	return claimed
}
