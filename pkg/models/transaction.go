package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionType is the closed set of ledger entry kinds.
type TransactionType string

const (
	TransactionInvoice          TransactionType = "INVOICE"           // Charge applied when an invoice is generated
	TransactionPayment          TransactionType = "PAYMENT"           // Money received from the family
	TransactionAdjustmentCredit TransactionType = "ADJUSTMENT_CREDIT" // Manual credit (discount, refund to account)
	TransactionAdjustmentDebit  TransactionType = "ADJUSTMENT_DEBIT"  // Manual debit (extra charge)
)

// ParseTransactionType validates a stored type name.
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(strings.ToUpper(strings.TrimSpace(s))); t {
	case TransactionInvoice, TransactionPayment, TransactionAdjustmentCredit, TransactionAdjustmentDebit:
		return t, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// Transaction is one entry of a student's ledger. Its amount is signed: debits
// (invoices, debit adjustments) are negative, payments and credits positive.
type Transaction struct {
	ID               string          `json:"id"`
	StudentID        string          `json:"studentId"`
	Type             TransactionType `json:"type"`
	Amount           decimal.Decimal `json:"amount"`
	Date             Date            `json:"date"`
	RelatedInvoiceID string          `json:"relatedInvoiceId,omitempty"` // Invoice that generated this entry, if any
	Description      string          `json:"description"`
}

// IsInvoiceDebitFor reports whether t is the charge recorded for invoiceID.
func (t Transaction) IsInvoiceDebitFor(invoiceID string) bool {
	return t.Type == TransactionInvoice && t.RelatedInvoiceID == invoiceID
}
