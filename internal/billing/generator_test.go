package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentpay_portal/internal/models"
)

func TestGeneratePaymentForTenant_CreatesOnce(t *testing.T) {
	db := openTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	tenant := seedTenant(t, db, "alice", 15, 1850)
	dueDate := date(2024, time.March, 15)

	first, err := GeneratePaymentForTenant(ctx, store, store, tenant.ID, dueDate)
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}
	if !first.Created {
		t.Fatal("first call should create the charge")
	}
	if first.Payment.Amount != 1850 {
		t.Errorf("amount = %v; want 1850", first.Payment.Amount)
	}
	if first.Payment.Status != models.PaymentStatusPending {
		t.Errorf("status = %s; want pending", first.Payment.Status)
	}

	second, err := GeneratePaymentForTenant(ctx, store, store, tenant.ID, dueDate)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if second.Created {
		t.Fatal("second call must be an idempotent no-op")
	}
	if second.Payment.ID != first.Payment.ID {
		t.Errorf("second call returned payment %d; want existing %d", second.Payment.ID, first.Payment.ID)
	}

	var count int64
	db.Model(&models.Payment{}).Where("tenant_id = ?", tenant.ID).Count(&count)
	if count != 1 {
		t.Errorf("payment rows = %d; want exactly 1", count)
	}
}

func TestGeneratePaymentForTenant_SnapshotsRent(t *testing.T) {
	db := openTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	tenant := seedTenant(t, db, "bob", 1, 1200)
	dueDate := date(2024, time.April, 1)

	result, err := GeneratePaymentForTenant(ctx, store, store, tenant.ID, dueDate)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// Raising the rent afterwards must not touch the existing charge.
	if err := db.Model(&models.Property{}).Where("id = ?", *tenant.PropertyID).
		Update("rent_amount", 1400).Error; err != nil {
		t.Fatalf("update rent: %v", err)
	}

	var stored models.Payment
	if err := db.First(&stored, result.Payment.ID).Error; err != nil {
		t.Fatalf("reload payment: %v", err)
	}
	if stored.Amount != 1200 {
		t.Errorf("amount after rent change = %v; want snapshot 1200", stored.Amount)
	}

	// A charge for the next cycle picks up the new rent.
	next, err := GeneratePaymentForTenant(ctx, store, store, tenant.ID, date(2024, time.May, 1))
	if err != nil {
		t.Fatalf("generate next cycle: %v", err)
	}
	if next.Payment.Amount != 1400 {
		t.Errorf("next cycle amount = %v; want 1400", next.Payment.Amount)
	}
}

func TestGeneratePaymentForTenant_NotAssignable(t *testing.T) {
	db := openTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()
	dueDate := date(2024, time.March, 1)

	unassigned := seedUnassignedTenant(t, db, "carol", 1)
	freeloader := seedTenant(t, db, "dave", 1, 0)

	tests := []struct {
		name     string
		tenantID uint
	}{
		{name: "tenant does not exist", tenantID: 9999},
		{name: "tenant has no property", tenantID: unassigned.ID},
		{name: "property rent is not positive", tenantID: freeloader.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GeneratePaymentForTenant(ctx, store, store, tt.tenantID, dueDate)
			if !errors.Is(err, ErrTenantNotAssignable) {
				t.Errorf("err = %v; want ErrTenantNotAssignable", err)
			}
		})
	}

	var count int64
	db.Model(&models.Payment{}).Count(&count)
	if count != 0 {
		t.Errorf("payment rows = %d; want none", count)
	}
}

// blindLedger hides existing rows from the pre-insert check, forcing the
// generator onto the unique index to simulate losing a concurrent race.
type blindLedger struct {
	*GormStore
	blind bool
}

func (l *blindLedger) FindPayment(ctx context.Context, tenantID uint, dueDate time.Time) (*models.Payment, error) {
	if l.blind {
		l.blind = false
		return nil, nil
	}
	return l.GormStore.FindPayment(ctx, tenantID, dueDate)
}

func TestGeneratePaymentForTenant_LosingRaceMeansAlreadyExists(t *testing.T) {
	db := openTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	tenant := seedTenant(t, db, "erin", 15, 2100)
	dueDate := date(2024, time.March, 15)

	winner, err := GeneratePaymentForTenant(ctx, store, store, tenant.ID, dueDate)
	if err != nil {
		t.Fatalf("winner generate: %v", err)
	}

	loser := &blindLedger{GormStore: store, blind: true}
	result, err := GeneratePaymentForTenant(ctx, store, loser, tenant.ID, dueDate)
	if err != nil {
		t.Fatalf("losing race must not be an error, got: %v", err)
	}
	if result.Created {
		t.Fatal("race loser reported Created true")
	}
	if result.Payment.ID != winner.Payment.ID {
		t.Errorf("race loser returned payment %d; want winner's %d", result.Payment.ID, winner.Payment.ID)
	}

	var count int64
	db.Model(&models.Payment{}).Where("tenant_id = ?", tenant.ID).Count(&count)
	if count != 1 {
		t.Errorf("payment rows = %d; want exactly 1", count)
	}
}

// failingLedger simulates an unavailable data store.
type failingLedger struct {
	err error
}

func (l failingLedger) FindPayment(context.Context, uint, time.Time) (*models.Payment, error) {
	return nil, l.err
}

func (l failingLedger) InsertPayment(context.Context, *models.Payment) error {
	return l.err
}

func TestGeneratePaymentForTenant_LedgerErrorPropagates(t *testing.T) {
	db := openTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	tenant := seedTenant(t, db, "frank", 15, 900)

	ledgerErr := &LedgerError{Op: "find payment", Err: errors.New("connection reset")}
	_, err := GeneratePaymentForTenant(ctx, store, failingLedger{err: ledgerErr}, tenant.ID, date(2024, time.March, 15))

	var le *LedgerError
	if !errors.As(err, &le) {
		t.Fatalf("err = %v; want a LedgerError", err)
	}
}
