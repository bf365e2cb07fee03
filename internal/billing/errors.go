package billing

import (
	"errors"
	"fmt"
)

// ErrTenantNotAssignable means the tenant is missing, has no property
// assignment, or the property carries no positive rent amount. Fatal for a
// single generation call; a batch sweep records it and moves on.
var ErrTenantNotAssignable = errors.New("tenant has no billable property assignment")

// ErrDuplicateDueDate is returned by a Ledger whose insert lost the race
// for a (tenant, due date) pair. Callers must treat it exactly like
// "charge already exists", never as a failure.
var ErrDuplicateDueDate = errors.New("payment already exists for tenant and due date")

// LedgerError wraps an underlying storage failure with the operation that
// hit it.
type LedgerError struct {
	Op  string
	Err error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger %s: %v", e.Op, e.Err)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}
