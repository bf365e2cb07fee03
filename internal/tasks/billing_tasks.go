package tasks

import (
	"context"
	"time"

	"gorm.io/gorm"

	"rentpay_portal/internal/billing"
	"rentpay_portal/internal/models"
)

// GenerateDuePaymentsTaskDef runs the missing-payment sweep from the
// worker, typically as a daily recurring task. The sweep is idempotent so
// overlap with the admin button or webhook generation is harmless.
type GenerateDuePaymentsTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *GenerateDuePaymentsTaskDef) TaskID() string {
	return "generate_due_payments"
}

// CreateTask builds a ScheduledTask record for this task. Pass a daily
// RRULE (e.g. "FREQ=DAILY") to keep the sweep recurring.
func (t *GenerateDuePaymentsTaskDef) CreateTask(due time.Time, recurringInterval *string) (*models.ScheduledTask, error) {
	taskType := models.ScheduledTaskTypeOneTime
	if recurringInterval != nil {
		taskType = models.ScheduledTaskTypeRecurring
	}
	return BuildScheduledTask(t.TaskID(), map[string]interface{}{}, due, recurringInterval, taskType, 3)
}

// HandleExecution sweeps all assigned tenants and backfills missing
// charges. Per-tenant failures are part of the report, not task failures.
func (t *GenerateDuePaymentsTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	store := billing.NewGormStore(db)

	report, err := billing.CheckAndGenerateMissingPayments(ctx, store, store, time.Now())
	if err != nil {
		return nil, err
	}

	result := map[string]interface{}{
		"status":    "success",
		"checked":   report.Checked,
		"generated": report.Generated,
		"existing":  report.Existing,
		"skipped":   report.Skipped,
		"errors":    report.Errors,
	}

	if report.Errors > 0 {
		var messages []string
		for _, detail := range report.Details {
			if detail.Action == billing.ActionError {
				messages = append(messages, detail.TenantName+": "+detail.Message)
			}
		}
		result["error_details"] = messages
	}

	return result, nil
}

// GenerateDuePaymentsTask is the singleton instance of GenerateDuePaymentsTaskDef
var GenerateDuePaymentsTask = &GenerateDuePaymentsTaskDef{}
