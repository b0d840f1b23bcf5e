// Package report derives the finance summaries shown on the back-office
// dashboard: the unpaid-tuition report, receivables and monthly collections.
package report

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"educenter/pkg/models"
)

// Source is the part of a ledger snapshot the reports read.
type Source interface {
	Students() []models.Student
	Classes() []models.Class
	Transactions() []models.Transaction
}

// DebtSort selects the order of the debt report.
type DebtSort string

const (
	SortByBalance DebtSort = "balance" // Most negative balance first
	SortByName    DebtSort = "name"
)

// ParseDebtSort validates a sort key. An empty key selects SortByBalance.
func ParseDebtSort(s string) (DebtSort, error) {
	switch DebtSort(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByBalance:
		return SortByBalance, nil
	case SortByName:
		return SortByName, nil
	default:
		return "", &SortError{Value: s}
	}
}

// DebtFilter narrows and orders the debt report.
type DebtFilter struct {
	// ClassID keeps only members of the class. An unknown class id does not
	// filter anything.
	ClassID string

	// Search matches a case-insensitive substring of the student name or id.
	Search string

	Sort       DebtSort
	Descending bool
}

// DebtRow is one student who owes tuition.
type DebtRow struct {
	StudentID string          `json:"studentId"`
	Name      string          `json:"name"`
	Classes   []string        `json:"classes"`
	Balance   decimal.Decimal `json:"balance"` // Always negative
}

// Debt is the amount owed, as a positive number.
func (r DebtRow) Debt() decimal.Decimal {
	return r.Balance.Abs()
}

// ClassNames joins the row's class names the way the report prints them.
func (r DebtRow) ClassNames() string {
	return strings.Join(r.Classes, ", ")
}

// DebtReport lists the students in debt and the sum of their balances.
type DebtReport struct {
	Rows []DebtRow `json:"rows"`

	// Total is the sum of the listed balances, so it is zero or negative.
	Total decimal.Decimal `json:"total"`
}

// TotalDebt is Total as a positive amount.
func (r DebtReport) TotalDebt() decimal.Decimal {
	return r.Total.Abs()
}

// Debts builds the unpaid-tuition report.
func Debts(src Source, f DebtFilter) DebtReport {
	classes := src.Classes()

	var members map[string]bool
	if f.ClassID != "" {
		for _, c := range classes {
			if c.ID == f.ClassID {
				members = make(map[string]bool, len(c.StudentIDs))
				for _, id := range c.StudentIDs {
					members[id] = true
				}
				break
			}
		}
	}

	query := strings.ToLower(f.Search)

	report := DebtReport{Rows: []DebtRow{}, Total: decimal.Zero}
	for _, s := range src.Students() {
		if members != nil && !members[s.ID] {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(s.Name), query) &&
			!strings.Contains(strings.ToLower(s.ID), query) {
			continue
		}
		if !s.InDebt() {
			continue
		}

		row := DebtRow{StudentID: s.ID, Name: s.Name, Balance: s.Balance, Classes: []string{}}
		for _, c := range classes {
			if c.Has(s.ID) {
				row.Classes = append(row.Classes, c.Name)
			}
		}
		report.Rows = append(report.Rows, row)
		report.Total = report.Total.Add(s.Balance)
	}

	sortDebtRows(report.Rows, f.Sort, f.Descending)
	return report
}

// TopDebtors returns up to n students with the most negative balances.
func TopDebtors(src Source, n int) []DebtRow {
	rows := Debts(src, DebtFilter{Sort: SortByBalance}).Rows
	if n >= 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// TotalReceivables is the sum of all negative balances.
func TotalReceivables(students []models.Student) decimal.Decimal {
	total := decimal.Zero
	for _, s := range students {
		if s.InDebt() {
			total = total.Add(s.Balance)
		}
	}
	return total
}

func sortDebtRows(rows []DebtRow, by DebtSort, desc bool) {
	var cmp func(a, b DebtRow) int
	switch by {
	case SortByName:
		// Vietnamese collation orders "Đ" after "D" and ignores tone marks
		// at the primary level.
		col := collate.New(language.Vietnamese)
		cmp = func(a, b DebtRow) int { return col.CompareString(a.Name, b.Name) }
	default:
		cmp = func(a, b DebtRow) int { return a.Balance.Cmp(b.Balance) }
	}

	sort.SliceStable(rows, func(i, j int) bool {
		c := cmp(rows[i], rows[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}
