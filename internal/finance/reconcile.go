package finance

import (
	"github.com/shopspring/decimal"

	"educenter/internal/logger"
	"educenter/pkg/models"
)

// Reconciliation traces how the balance before an invoice was recovered.
type Reconciliation struct {
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	DebitAmount    decimal.Decimal `json:"debitAmount"` // Effect of the invoice on the balance (<= 0)
	BalanceBefore  decimal.Decimal `json:"balanceBefore"`

	MatchedTransactionID string `json:"matchedTransactionId,omitempty"`
	MatchCount           int    `json:"matchCount"`

	// UsedFallback is set when no linked invoice transaction exists and the
	// debit was assumed to equal the invoiced amount. A discount or partial
	// payment applied without a linked transaction is not visible here.
	UsedFallback bool `json:"usedFallback"`
}

// Reconcile recovers the balance the student had immediately before invoice
// was applied. The student's current balance already includes the invoice
// debit, so reversing that single transaction yields the earlier balance:
//
//	current = -500, debit = -300  =>  before = -500 - (-300) = -200
//
// The debit comes from the INVOICE transaction linked to the invoice; the
// first one in ledger order wins. Without one, the debit is taken to be
// -invoice.Amount.
func Reconcile(student *models.Student, invoice models.Invoice, txns []models.Transaction) (Reconciliation, error) {
	const op = "Reconcile"

	if student == nil {
		return Reconciliation{}, &Error{Op: op, InvoiceID: invoice.ID, StudentID: invoice.StudentID, Err: ErrStudentNotFound}
	}

	rec := Reconciliation{CurrentBalance: student.Balance}

	for _, t := range txns {
		if !t.IsInvoiceDebitFor(invoice.ID) {
			continue
		}
		rec.MatchCount++
		if rec.MatchCount == 1 {
			rec.MatchedTransactionID = t.ID
			rec.DebitAmount = t.Amount
		}
	}

	if rec.MatchCount > 1 {
		log := logger.WithComponent("reconcile")
		log.Warn().
			Str("invoice_id", invoice.ID).
			Str("student_id", student.ID).
			Int("matches", rec.MatchCount).
			Str("used_transaction_id", rec.MatchedTransactionID).
			Msg("Multiple invoice transactions linked to one invoice, using the first")
	}

	if rec.MatchCount == 0 {
		rec.DebitAmount = invoice.Amount.Neg()
		rec.UsedFallback = true
	}

	rec.BalanceBefore = student.Balance.Sub(rec.DebitAmount)
	return rec, nil
}
