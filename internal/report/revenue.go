package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"educenter/pkg/models"
)

// cancellationMarker in a description marks a credit that reverses a
// cancelled invoice rather than money received.
const cancellationMarker = "hủy hóa đơn"

// Collections is the money received in one month: tuition from student
// transactions plus other income.
type Collections struct {
	Month        string          `json:"month"`
	Tuition      decimal.Decimal `json:"tuition"`
	OtherIncome  decimal.Decimal `json:"otherIncome"`
	Total        decimal.Decimal `json:"total"`
	Transactions int             `json:"transactions"`
	IncomeItems  int             `json:"incomeItems"`
}

// MonthlyRevenue sums the tuition collected in month (YYYY-MM) and the other
// income dated in it.
//
// Tuition counts payments and credit adjustments with a positive amount,
// skipping invoice cancellations. Other income counts every record of the
// month whatever its sign.
func MonthlyRevenue(txns []models.Transaction, income []models.Income, month string) (Collections, error) {
	const op = "MonthlyRevenue"

	if _, err := time.Parse(models.MonthLayout, month); err != nil {
		return Collections{}, fmt.Errorf("%s: %q: %w", op, month, ErrInvalidMonth)
	}

	c := Collections{Month: month, Tuition: decimal.Zero, OtherIncome: decimal.Zero}
	for _, t := range txns {
		if t.Type != models.TransactionPayment && t.Type != models.TransactionAdjustmentCredit {
			continue
		}
		if t.Date.MonthKey() != month || !t.Amount.IsPositive() {
			continue
		}
		if strings.Contains(strings.ToLower(norm.NFC.String(t.Description)), cancellationMarker) {
			continue
		}
		c.Tuition = c.Tuition.Add(t.Amount)
		c.Transactions++
	}
	for _, in := range income {
		if in.Date.MonthKey() != month {
			continue
		}
		c.OtherIncome = c.OtherIncome.Add(in.Amount)
		c.IncomeItems++
	}
	c.Total = c.Tuition.Add(c.OtherIncome)
	return c, nil
}
