package finance

import "github.com/shopspring/decimal"

// Amounts are the figures printed on a tuition notice. All three are
// non-negative.
type Amounts struct {
	OutstandingDebt decimal.Decimal `json:"outstandingDebt"` // Debt carried into the period
	OpeningCredit   decimal.Decimal `json:"openingCredit"`   // Credit carried into the period
	TotalDue        decimal.Decimal `json:"totalDue"`
}

// ComputeAmounts derives the notice figures from the balance before the
// invoice and the invoice's new charge: prior debt plus the charge, minus any
// credit carried forward, never below zero.
func ComputeAmounts(balanceBefore, invoiceAmount decimal.Decimal) Amounts {
	debt := decimal.Max(decimal.Zero, balanceBefore.Neg())
	credit := decimal.Max(decimal.Zero, balanceBefore)

	return Amounts{
		OutstandingDebt: debt,
		OpeningCredit:   credit,
		TotalDue:        decimal.Max(decimal.Zero, debt.Add(invoiceAmount).Sub(credit)),
	}
}
