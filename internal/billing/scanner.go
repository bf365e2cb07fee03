package billing

import (
	"context"
	"time"

	"rentpay_portal/internal/models"
)

// Per-tenant outcome actions recorded by the sweep.
const (
	ActionCreated       = "created"
	ActionAlreadyExists = "already_exists"
	ActionNotDue        = "not_due"
	ActionError         = "error"
)

// TenantOutcome is one tenant's line in a sweep report.
type TenantOutcome struct {
	TenantID   uint   `json:"tenant_id"`
	TenantName string `json:"tenant_name"`
	DueDate    string `json:"due_date"`
	Action     string `json:"action"`
	Message    string `json:"message,omitempty"`
}

// BatchReport aggregates a full sweep.
type BatchReport struct {
	Checked   int             `json:"checked"`
	Generated int             `json:"generated"`
	Existing  int             `json:"existing"`
	Skipped   int             `json:"skipped"`
	Errors    int             `json:"errors"`
	Details   []TenantOutcome `json:"details"`
}

// CheckAndGenerateMissingPayments sweeps every tenant with a property
// assignment and backfills any rent charge whose due date has already
// arrived. Tenants whose current cycle is not yet due are skipped; charges
// are never pre-created here. One tenant's failure is recorded in the
// report and the sweep continues with the rest, so the result is safe to
// re-run and every problem stays visible to the operator.
func CheckAndGenerateMissingPayments(ctx context.Context, dir TenantDirectory, ledger Ledger, today time.Time) (BatchReport, error) {
	var report BatchReport

	tenants, err := dir.ListAssignedTenants(ctx)
	if err != nil {
		return report, err
	}

	today = models.DateOnly(today)

	for _, tenant := range tenants {
		report.Checked++

		dueDate := NextDueDate(tenant.PaymentDueDay, today)
		outcome := TenantOutcome{
			TenantID:   tenant.ID,
			TenantName: tenant.Name,
			DueDate:    dueDate.Format(time.DateOnly),
		}

		if dueDate.After(today) {
			outcome.Action = ActionNotDue
			report.Skipped++
			report.Details = append(report.Details, outcome)
			continue
		}

		result, err := GeneratePaymentForTenant(ctx, dir, ledger, tenant.ID, dueDate)
		switch {
		case err != nil:
			outcome.Action = ActionError
			outcome.Message = err.Error()
			report.Errors++
		case result.Created:
			outcome.Action = ActionCreated
			report.Generated++
		default:
			outcome.Action = ActionAlreadyExists
			report.Existing++
		}
		report.Details = append(report.Details, outcome)
	}

	return report, nil
}
