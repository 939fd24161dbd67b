package ledger

import "fmt"

// ValidationError is rejected before any write reaches the store. Field names
// the offending part of the request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// ErrLoanIntegrity indicates the category/loan 1:1 invariant is broken: a
// split references a LOAN category that has no loan row. The operation is
// aborted; the condition requires reconciliation, not a retry.
type ErrLoanIntegrity struct {
	Cause error
}

func (e ErrLoanIntegrity) Error() string {
	return "loan sub-ledger integrity violation: " + e.Cause.Error()
}

func (e ErrLoanIntegrity) Unwrap() error {
	return e.Cause
}
