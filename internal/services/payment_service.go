package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"

	"rentpay_portal/internal/billing"
	"rentpay_portal/internal/models"
)

// nextChargeLeadTime is how far ahead of its due date the next cycle's
// charge is pre-created after a successful payment, so a tenant paying on
// the 1st sees next month's bill appear a few days before it falls due.
// Independent of the sweep's skip-future rule on purpose.
const nextChargeLeadTime = 5 * 24 * time.Hour

// ErrPaymentAlreadyMade is returned when initiation is attempted against a
// charge the gateway has already settled.
var ErrPaymentAlreadyMade = errors.New("payment already made")

// PaymentService orchestrates gateway sessions and webhook settlement for
// rent charges.
type PaymentService struct {
	db           *gorm.DB
	stripeClient *StripeService
	email        *EmailService
}

func NewPaymentService(db *gorm.DB, stripeClient *StripeService, email *EmailService) *PaymentService {
	return &PaymentService{
		db:           db,
		stripeClient: stripeClient,
		email:        email,
	}
}

// CheckActiveSession returns the newest active gateway session for the
// charge, or nil when none is open.
func (s *PaymentService) CheckActiveSession(paymentID uint) (*models.PaymentSession, error) {
	var existing models.PaymentSession
	err := s.db.Where("payment_id = ? AND is_active = ?", paymentID, true).
		Order("created_at desc").First(&existing).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &existing, nil
}

// InitiatePaymentResult holds what the browser needs to confirm the intent.
type InitiatePaymentResult struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
	IsExisting   bool   `json:"is_existing"`
}

// InitiatePayment starts or resumes a gateway session for a rent charge.
// An active session whose intent is still collectible is reused unless
// forceNew is set, in which case it is canceled at Stripe and replaced.
func (s *PaymentService) InitiatePayment(ctx context.Context, payment *models.Payment, method models.PaymentMethod, forceNew bool) (*InitiatePaymentResult, error) {
	if payment.Status == models.PaymentStatusSucceeded {
		return nil, ErrPaymentAlreadyMade
	}

	existing, err := s.CheckActiveSession(payment.ID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		intent, err := s.stripeClient.GetIntent(existing.OrderID)
		if err == nil {
			switch intent.Status {
			case stripe.PaymentIntentStatusSucceeded:
				return nil, ErrPaymentAlreadyMade

			case stripe.PaymentIntentStatusCanceled:
				existing.IsActive = false
				s.db.Save(existing)
				// Proceed to create new

			default:
				if forceNew {
					if err := s.stripeClient.CancelIntent(existing.OrderID); err != nil {
						log.Printf("Failed to cancel intent %s: %v", existing.OrderID, err)
					}
					existing.IsActive = false
					s.db.Save(existing)
					// Proceed to create new
				} else {
					return &InitiatePaymentResult{
						IntentID:     intent.ID,
						ClientSecret: intent.ClientSecret,
						IsExisting:   true,
					}, nil
				}
			}
		} else {
			// Status check failed, treat the local session as broken
			existing.IsActive = false
			s.db.Save(existing)
		}
	}

	orderRef := fmt.Sprintf("rent-%d-%s", payment.ID, uuid.New().String())

	req := ChargeRequest{
		OrderID:     orderRef,
		Amount:      payment.Amount,
		Method:      method,
		TenantEmail: payment.Tenant.Email,
		Description: fmt.Sprintf("Rent for %s, due %s", payment.Tenant.Name, payment.DueDate.Format("January 2006")),
		Metadata: map[string]string{
			"payment_id": fmt.Sprint(payment.ID),
			"tenant_id":  fmt.Sprint(payment.TenantID),
		},
	}

	intent, err := s.stripeClient.CreateIntent(req)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(payment).Updates(map[string]interface{}{
		"method":       method,
		"provider_ref": intent.ID,
	}).Error; err != nil {
		return nil, err
	}

	reqBytes, _ := json.Marshal(req)
	respBytes, _ := json.Marshal(map[string]string{
		"intent_id": intent.ID,
		"status":    string(intent.Status),
	})

	session := models.PaymentSession{
		PaymentID:        payment.ID,
		TenantID:         payment.TenantID,
		PaymentGateway:   models.PaymentGatewayStripe,
		OrderID:          intent.ID,
		IsActive:         true,
		RequestMetadata:  reqBytes,
		ResponseMetadata: respBytes,
	}
	s.db.Create(&session)

	return &InitiatePaymentResult{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		IsExisting:   false,
	}, nil
}

// ApplyIntentEvent settles a charge from a verified webhook event. Called
// with the parsed PaymentIntent for payment_intent.* events; unknown intents
// (e.g. created by support tooling) are ignored.
func (s *PaymentService) ApplyIntentEvent(ctx context.Context, intent *stripe.PaymentIntent, now time.Time) error {
	var payment models.Payment
	err := s.db.WithContext(ctx).Preload("Tenant").Preload("Property").
		Where("provider_ref = ?", intent.ID).First(&payment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			log.Printf("Webhook for unknown intent %s, ignoring", intent.ID)
			return nil
		}
		return err
	}

	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded:
		if payment.Status == models.PaymentStatusSucceeded {
			return nil // replayed event
		}
		paidAt := now
		updates := map[string]interface{}{
			"status":  models.PaymentStatusSucceeded,
			"paid_at": &paidAt,
		}
		if err := s.db.Model(&payment).Updates(updates).Error; err != nil {
			return err
		}
		s.deactivateSessions(payment.ID)
		s.sendReceipt(payment)
		s.scheduleNextCharge(ctx, &payment, now)

	case stripe.PaymentIntentStatusProcessing:
		// ACH debits sit here until settlement
		if payment.Status == models.PaymentStatusPending {
			return s.db.Model(&payment).
				Update("status", models.PaymentStatusProcessing).Error
		}

	case stripe.PaymentIntentStatusCanceled:
		s.deactivateSessions(payment.ID)
	}

	return nil
}

// MarkFailed transitions a charge to failed (payment_intent.payment_failed).
func (s *PaymentService) MarkFailed(ctx context.Context, intentID string) error {
	var payment models.Payment
	err := s.db.WithContext(ctx).Where("provider_ref = ?", intentID).First(&payment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}
	if payment.Status == models.PaymentStatusSucceeded {
		return nil
	}
	if err := s.db.Model(&payment).Update("status", models.PaymentStatusFailed).Error; err != nil {
		return err
	}
	s.deactivateSessions(payment.ID)
	return nil
}

// RetryPayment re-opens a failed charge for another attempt.
func (s *PaymentService) RetryPayment(ctx context.Context, paymentID uint) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.WithContext(ctx).First(&payment, paymentID).Error; err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentStatusFailed {
		return nil, fmt.Errorf("payment %d is %s, only failed payments can be retried", paymentID, payment.Status)
	}

	if err := s.db.Model(&payment).Updates(map[string]interface{}{
		"status":       models.PaymentStatusPending,
		"provider_ref": "",
	}).Error; err != nil {
		return nil, err
	}
	s.deactivateSessions(payment.ID)
	return &payment, nil
}

// scheduleNextCharge pre-creates the next cycle's charge after a settled
// payment, but only once it comes due within nextChargeLeadTime.
func (s *PaymentService) scheduleNextCharge(ctx context.Context, payment *models.Payment, now time.Time) {
	store := billing.NewGormStore(s.db)

	nextDue := billing.NextDueDate(payment.Tenant.PaymentDueDay, payment.DueDate.AddDate(0, 0, 1))
	if nextDue.Sub(models.DateOnly(now)) > nextChargeLeadTime {
		log.Printf("Next charge for tenant %d due %s, outside lead time, not creating",
			payment.TenantID, nextDue.Format(time.DateOnly))
		return
	}

	result, err := billing.GeneratePaymentForTenant(ctx, store, store, payment.TenantID, nextDue)
	if err != nil {
		log.Printf("Failed to generate next charge for tenant %d: %v", payment.TenantID, err)
		return
	}
	if result.Created {
		log.Printf("Generated next charge %d for tenant %d due %s",
			result.Payment.ID, payment.TenantID, nextDue.Format(time.DateOnly))
	}
}

func (s *PaymentService) deactivateSessions(paymentID uint) {
	if err := s.db.Model(&models.PaymentSession{}).
		Where("payment_id = ? AND is_active = ?", paymentID, true).
		Update("is_active", false).Error; err != nil {
		log.Printf("Failed to deactivate sessions for payment %d: %v", paymentID, err)
	}
}

func (s *PaymentService) sendReceipt(payment models.Payment) {
	if s.email == nil || payment.Tenant.Email == "" {
		return
	}
	if err := s.email.SendReceipt(payment.Tenant.Email, payment.Tenant.Name, payment.Amount, payment.DueDate); err != nil {
		log.Printf("Failed to send receipt for payment %d: %v", payment.ID, err)
	}
}
