package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentpay_portal/internal/models"
)

func TestCheckAndGenerateMissingPayments_FaultIsolation(t *testing.T) {
	db := openTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()
	today := date(2024, time.March, 15)

	seedTenant(t, db, "alice", 15, 1850)
	seedUnassignedTenant(t, db, "broken", 15)
	seedTenant(t, db, "carol", 15, 1200)

	report, err := CheckAndGenerateMissingPayments(ctx, store, store, today)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if report.Checked != 2 {
		// The unassigned tenant is invisible to the directory.
		t.Errorf("checked = %d; want 2", report.Checked)
	}
	if report.Generated != 2 {
		t.Errorf("generated = %d; want 2", report.Generated)
	}
	if report.Errors != 0 {
		t.Errorf("errors = %d; want 0: %+v", report.Errors, report.Details)
	}
}

// erringDirectory lists tenants the backing store cannot resolve, the way a
// row deleted mid-sweep (or misconfigured) would behave.
type erringDirectory struct {
	inner    TenantDirectory
	brokenID uint
}

func (d erringDirectory) ListAssignedTenants(ctx context.Context) ([]models.Tenant, error) {
	return d.inner.ListAssignedTenants(ctx)
}

func (d erringDirectory) GetTenantWithProperty(ctx context.Context, tenantID uint) (*models.Tenant, error) {
	if tenantID == d.brokenID {
		return nil, nil
	}
	return d.inner.GetTenantWithProperty(ctx, tenantID)
}

func TestCheckAndGenerateMissingPayments_OneFailureDoesNotStopTheSweep(t *testing.T) {
	db := openTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()
	today := date(2024, time.March, 15)

	seedTenant(t, db, "alice", 15, 1850)
	broken := seedTenant(t, db, "broken", 15, 1500)
	seedTenant(t, db, "carol", 15, 1200)

	dir := erringDirectory{inner: store, brokenID: broken.ID}
	report, err := CheckAndGenerateMissingPayments(ctx, dir, store, today)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if report.Checked != 3 {
		t.Errorf("checked = %d; want 3", report.Checked)
	}
	if report.Generated != 2 {
		t.Errorf("generated = %d; want 2", report.Generated)
	}
	if report.Errors != 1 {
		t.Fatalf("errors = %d; want 1: %+v", report.Errors, report.Details)
	}

	var failed *TenantOutcome
	for i := range report.Details {
		if report.Details[i].Action == ActionError {
			failed = &report.Details[i]
		}
	}
	if failed == nil {
		t.Fatal("no error outcome in details")
	}
	if failed.TenantID != broken.ID {
		t.Errorf("error recorded for tenant %d; want %d", failed.TenantID, broken.ID)
	}
	if failed.Message == "" {
		t.Error("error outcome carries no message")
	}
}

func TestCheckAndGenerateMissingPayments_SkipsFutureDueDates(t *testing.T) {
	db := openTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()
	today := date(2024, time.March, 15)

	dueToday := seedTenant(t, db, "alice", 15, 1850)
	notYet := seedTenant(t, db, "bob", 20, 1500)

	report, err := CheckAndGenerateMissingPayments(ctx, store, store, today)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if report.Generated != 1 {
		t.Errorf("generated = %d; want 1", report.Generated)
	}
	if report.Skipped != 1 {
		t.Errorf("skipped = %d; want 1", report.Skipped)
	}

	for _, detail := range report.Details {
		switch detail.TenantID {
		case dueToday.ID:
			if detail.Action != ActionCreated {
				t.Errorf("tenant due today: action = %s; want created", detail.Action)
			}
		case notYet.ID:
			if detail.Action != ActionNotDue {
				t.Errorf("tenant due later: action = %s; want not_due", detail.Action)
			}
		}
	}

	var count int64
	db.Model(&models.Payment{}).Where("tenant_id = ?", notYet.ID).Count(&count)
	if count != 0 {
		t.Errorf("future charge was pre-created (%d rows)", count)
	}
}

func TestCheckAndGenerateMissingPayments_ReRunIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()
	today := date(2024, time.March, 15)

	seedTenant(t, db, "alice", 15, 1850)
	seedTenant(t, db, "bob", 15, 1500)

	first, err := CheckAndGenerateMissingPayments(ctx, store, store, today)
	if err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if first.Generated != 2 {
		t.Fatalf("first sweep generated = %d; want 2", first.Generated)
	}

	second, err := CheckAndGenerateMissingPayments(ctx, store, store, today)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if second.Generated != 0 {
		t.Errorf("second sweep generated = %d; want 0", second.Generated)
	}
	if second.Existing != 2 {
		t.Errorf("second sweep existing = %d; want 2", second.Existing)
	}

	var count int64
	db.Model(&models.Payment{}).Count(&count)
	if count != 2 {
		t.Errorf("payment rows after re-run = %d; want 2", count)
	}
}

func TestCheckAndGenerateMissingPayments_DirectoryFailureAborts(t *testing.T) {
	ctx := context.Background()
	dirErr := &LedgerError{Op: "list assigned tenants", Err: errors.New("connection refused")}

	_, err := CheckAndGenerateMissingPayments(ctx, failingDirectory{err: dirErr}, failingLedger{err: dirErr}, date(2024, time.March, 15))
	var le *LedgerError
	if !errors.As(err, &le) {
		t.Fatalf("err = %v; want a LedgerError", err)
	}
}

type failingDirectory struct {
	err error
}

func (d failingDirectory) ListAssignedTenants(context.Context) ([]models.Tenant, error) {
	return nil, d.err
}

func (d failingDirectory) GetTenantWithProperty(context.Context, uint) (*models.Tenant, error) {
	return nil, d.err
}
