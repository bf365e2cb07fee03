package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/gorm"

	"rentpay_portal/internal/models"
	"rentpay_portal/internal/services"
)

// SendPaymentRemindersArgs defines the arguments for a reminder run
type SendPaymentRemindersArgs struct {
	DaysAhead    int `json:"days_ahead"`
	AttemptCount int `json:"attempt_count"`
}

// SendPaymentRemindersTaskDef emails tenants whose pending rent comes due
// soon (or is overdue). Tenants on autopay or opted out are skipped.
type SendPaymentRemindersTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *SendPaymentRemindersTaskDef) TaskID() string {
	return "send_payment_reminders"
}

// CreateTask builds a ScheduledTask record for this task
func (t *SendPaymentRemindersTaskDef) CreateTask(args SendPaymentRemindersArgs, due time.Time, recurringInterval *string) (*models.ScheduledTask, error) {
	taskType := models.ScheduledTaskTypeOneTime
	if recurringInterval != nil {
		taskType = models.ScheduledTaskTypeRecurring
	}
	return BuildScheduledTask(t.TaskID(), args, due, recurringInterval, taskType, 3)
}

// HandleExecution sends one reminder per qualifying charge. One tenant's
// bounce never blocks the rest; persistent failures re-enqueue a one-time
// retry until MaxAttempt is reached.
func (t *SendPaymentRemindersTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	argsBytes, err := json.Marshal(task.Arguments)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal args: %w", err)
	}

	var parsedArgs SendPaymentRemindersArgs
	if err := json.Unmarshal(argsBytes, &parsedArgs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal args: %w", err)
	}
	if parsedArgs.DaysAhead <= 0 {
		parsedArgs.DaysAhead = 3
	}

	cutoff := models.DateOnly(time.Now()).AddDate(0, 0, parsedArgs.DaysAhead)

	var duePayments []models.Payment
	err = db.WithContext(ctx).Preload("Tenant").
		Where("status = ? AND due_date <= ?", models.PaymentStatusPending, cutoff).
		Find(&duePayments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due payments: %w", err)
	}

	emailService := services.NewEmailService()
	baseURL := os.Getenv("APP_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	total := len(duePayments)
	successCount := 0
	skippedCount := 0
	failureCount := 0
	var failures []string

	for _, payment := range duePayments {
		tenant := payment.Tenant

		if tenant.ReminderOptOut || tenant.AutopayEnabled || tenant.Email == "" {
			skippedCount++
			continue
		}

		payURL := fmt.Sprintf("%s/payments/%d", baseURL, payment.ID)
		sendErr := emailService.SendPaymentReminder(tenant.Email, tenant.Name, payment.Amount, payment.DueDate, payURL)
		if sendErr != nil {
			log.Printf("Failed to send reminder to %s: %v", tenant.Email, sendErr)
			failureCount++
			failures = append(failures, fmt.Sprintf("%s: %v", tenant.Name, sendErr))
		} else {
			successCount++
		}
	}

	result := map[string]interface{}{
		"total":   total,
		"success": successCount,
		"skipped": skippedCount,
		"failure": failureCount,
	}

	if failureCount > 0 {
		result["errors"] = failures

		attempt := parsedArgs.AttemptCount
		if attempt < task.MaxAttempt {
			log.Printf("Partial failure: %d reminders failed. Rescheduling for attempt %d", failureCount, attempt+1)

			newArgs := parsedArgs
			newArgs.AttemptCount = attempt + 1

			retryTask, err := BuildScheduledTask(t.TaskID(), newArgs, time.Now().Add(5*time.Minute), nil, models.ScheduledTaskTypeOneTime, task.MaxAttempt)
			if err == nil {
				db.Create(retryTask)
			} else {
				log.Printf("Failed to create retry task: %v", err)
			}
		} else {
			log.Printf("Max attempts (%d) reached with %d reminders failing.", task.MaxAttempt, failureCount)
			return result, fmt.Errorf("max attempts reached, failed to deliver %d reminders", failureCount)
		}
	}

	return result, nil
}

// SendPaymentRemindersTask is the singleton instance of SendPaymentRemindersTaskDef
var SendPaymentRemindersTask = &SendPaymentRemindersTaskDef{}
