// Package sheets defines the outbound port for the spreadsheet backup.
package sheets

import (
	"context"

	"clubledger/internal/core"
)

// LedgerWriter appends ledger records to an external backup spreadsheet.
// Implementations must be idempotent-tolerant: the worker may redeliver a
// record after a failed ack, so a duplicate row is acceptable, a lost row is
// not.
type LedgerWriter interface {
	AppendPayment(ctx context.Context, p core.Payment) error
	AppendExpense(ctx context.Context, e core.Expense) error
	AppendDonation(ctx context.Context, d core.Donation) error
}
