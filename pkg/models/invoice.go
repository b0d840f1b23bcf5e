package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MonthLayout is the layout of an invoice billing period key ("2024-03").
const MonthLayout = "2006-01"

// Invoice is the tuition charge issued to one student for one billing month.
type Invoice struct {
	ID            string          `json:"id"`
	StudentID     string          `json:"studentId"`
	Month         string          `json:"month"`         // Billing period, YYYY-MM
	Amount        decimal.Decimal `json:"amount"`        // New charge for the period, never a running balance
	Details       string          `json:"details"`       // Free-text fee breakdown
	GeneratedDate Date            `json:"generatedDate"` // Day the invoice was issued
}

// Period splits the billing month into its year and month components.
func (i Invoice) Period() (year, month string, err error) {
	if _, err := time.Parse(MonthLayout, i.Month); err != nil {
		return "", "", fmt.Errorf("invoice %s: invalid month %q: %w", i.ID, i.Month, err)
	}
	return i.Month[:4], i.Month[5:7], nil
}
