package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"educenter/internal/logger"
	"educenter/internal/sheets"
	"educenter/pkg/models"
)

// Sheet names and column spans of a ledger kept in Google Sheets. Every sheet
// starts with a header row.
const (
	SheetSettings     = "Settings"     // A=key, B=value
	SheetStudents     = "Students"     // A=id, B=name, C=parent, D=status, E=balance
	SheetClasses      = "Classes"      // A=id, B=name, C=student ids (comma separated)
	SheetTransactions = "Transactions" // A=id, B=student id, C=type, D=amount, E=date, F=invoice id, G=description
	SheetInvoices     = "Invoices"     // A=id, B=student id, C=month, D=amount, E=details, F=generated date
	SheetIncome       = "Income"       // A=id, B=date, C=amount, D=description
)

// RangeReader reads a block of cell values.
type RangeReader interface {
	ReadRange(ctx context.Context, rangeSpec string) ([][]interface{}, error)
}

// SheetsStore reads the ledger from a Google Sheets spreadsheet. Rows that
// cannot be parsed are logged and skipped.
type SheetsStore struct {
	reader RangeReader
	log    zerolog.Logger
}

// OpenSheets connects to the spreadsheet at sheetURL.
func OpenSheets(ctx context.Context, sheetURL, credentialsFile, credentialsJSON string) (*SheetsStore, error) {
	svc, err := sheets.NewSheetsService(ctx, sheetURL, sheets.Credentials{File: credentialsFile, JSON: credentialsJSON})
	if err != nil {
		return nil, err
	}
	return NewSheetsStore(svc), nil
}

// NewSheetsStore creates a store over any RangeReader.
func NewSheetsStore(reader RangeReader) *SheetsStore {
	return &SheetsStore{
		reader: reader,
		log:    logger.WithComponent("ledger-sheets"),
	}
}

// Close is a no-op.
func (ss *SheetsStore) Close() error { return nil }

// Load reads the ledger sheets. The Income sheet is optional; when it cannot
// be read the ledger loads without other income.
func (ss *SheetsStore) Load(ctx context.Context) (*Snapshot, error) {
	const op = "SheetsStore.Load"

	var data Data

	settingsRows, err := ss.readRows(ctx, SheetSettings, "A:B")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	values := map[string]string{}
	for _, row := range settingsRows {
		if key := getString(row, 0); key != "" {
			values[key] = getString(row, 1)
		}
	}
	data.Settings = settingsFromMap(values)

	studentRows, err := ss.readRows(ctx, SheetStudents, "A:E")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i, row := range studentRows {
		st, err := parseStudentRow(row, i+2)
		if err != nil {
			ss.skip(err)
			continue
		}
		data.Students = append(data.Students, st)
	}

	classRows, err := ss.readRows(ctx, SheetClasses, "A:C")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i, row := range classRows {
		c, err := parseClassRow(row, i+2)
		if err != nil {
			ss.skip(err)
			continue
		}
		data.Classes = append(data.Classes, c)
	}

	txRows, err := ss.readRows(ctx, SheetTransactions, "A:G")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i, row := range txRows {
		t, err := parseTransactionRow(row, i+2)
		if err != nil {
			ss.skip(err)
			continue
		}
		data.Transactions = append(data.Transactions, t)
	}

	invoiceRows, err := ss.readRows(ctx, SheetInvoices, "A:F")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i, row := range invoiceRows {
		inv, err := parseInvoiceRow(row, i+2)
		if err != nil {
			ss.skip(err)
			continue
		}
		data.Invoices = append(data.Invoices, inv)
	}

	incomeRows, err := ss.readRows(ctx, SheetIncome, "A:D")
	if err != nil {
		ss.log.Warn().Err(err).Msg("Income sheet unavailable, loading without other income")
	}
	for i, row := range incomeRows {
		in, err := parseIncomeRow(row, i+2)
		if err != nil {
			ss.skip(err)
			continue
		}
		data.Income = append(data.Income, in)
	}

	ss.log.Info().
		Int("students", len(data.Students)).
		Int("classes", len(data.Classes)).
		Int("transactions", len(data.Transactions)).
		Int("invoices", len(data.Invoices)).
		Int("income", len(data.Income)).
		Msg("Ledger read from Google Sheets")

	return NewSnapshot(data), nil
}

// readRows returns the data rows of a sheet, without its header row.
func (ss *SheetsStore) readRows(ctx context.Context, sheet, columns string) ([][]interface{}, error) {
	values, err := ss.reader.ReadRange(ctx, sheet+"!"+columns)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s sheet: %w", sheet, err)
	}
	if len(values) <= 1 {
		ss.log.Warn().Str("sheet", sheet).Msg("Sheet has no data rows")
		return nil, nil
	}
	return values[1:], nil
}

func (ss *SheetsStore) skip(err error) {
	ss.log.Warn().Err(err).Msg("Failed to parse ledger row, skipping")
}

func parseStudentRow(row []interface{}, rowNum int) (models.Student, error) {
	st := models.Student{
		ID:         getString(row, 0),
		Name:       getString(row, 1),
		ParentName: getString(row, 2),
		Status:     models.PersonStatus(strings.ToUpper(getString(row, 3))),
	}
	if st.ID == "" {
		return st, &RowError{Sheet: SheetStudents, Row: rowNum, Field: "id", Reason: "missing student id"}
	}
	if st.Status == "" {
		st.Status = models.StatusActive
	}

	balance, err := getAmount(row, 4)
	if err != nil {
		return st, &RowError{Sheet: SheetStudents, Row: rowNum, Field: "balance", Value: getString(row, 4), Reason: err.Error()}
	}
	st.Balance = balance
	return st, nil
}

func parseClassRow(row []interface{}, rowNum int) (models.Class, error) {
	c := models.Class{ID: getString(row, 0), Name: getString(row, 1)}
	if c.ID == "" {
		return c, &RowError{Sheet: SheetClasses, Row: rowNum, Field: "id", Reason: "missing class id"}
	}
	for _, id := range strings.Split(getString(row, 2), ",") {
		if id = strings.TrimSpace(id); id != "" {
			c.StudentIDs = append(c.StudentIDs, id)
		}
	}
	return c, nil
}

func parseTransactionRow(row []interface{}, rowNum int) (models.Transaction, error) {
	t := models.Transaction{
		ID:               getString(row, 0),
		StudentID:        getString(row, 1),
		RelatedInvoiceID: getString(row, 5),
		Description:      getString(row, 6),
	}
	if t.ID == "" || t.StudentID == "" {
		return t, &RowError{Sheet: SheetTransactions, Row: rowNum, Field: "id", Value: t.ID, Reason: "missing transaction or student id"}
	}

	typ, err := models.ParseTransactionType(getString(row, 2))
	if err != nil {
		return t, &RowError{Sheet: SheetTransactions, Row: rowNum, Field: "type", Value: getString(row, 2), Reason: err.Error()}
	}
	t.Type = typ

	if t.Amount, err = getAmount(row, 3); err != nil {
		return t, &RowError{Sheet: SheetTransactions, Row: rowNum, Field: "amount", Value: getString(row, 3), Reason: err.Error()}
	}
	if t.Date, err = parseSheetDate(getString(row, 4)); err != nil {
		return t, &RowError{Sheet: SheetTransactions, Row: rowNum, Field: "date", Value: getString(row, 4), Reason: err.Error()}
	}
	return t, nil
}

func parseInvoiceRow(row []interface{}, rowNum int) (models.Invoice, error) {
	inv := models.Invoice{
		ID:        getString(row, 0),
		StudentID: getString(row, 1),
		Month:     getString(row, 2),
		Details:   getString(row, 4),
	}
	if inv.ID == "" {
		return inv, &RowError{Sheet: SheetInvoices, Row: rowNum, Field: "id", Reason: "missing invoice id"}
	}

	var err error
	if inv.Amount, err = getAmount(row, 3); err != nil {
		return inv, &RowError{Sheet: SheetInvoices, Row: rowNum, Field: "amount", Value: getString(row, 3), Reason: err.Error()}
	}
	if inv.GeneratedDate, err = parseSheetDate(getString(row, 5)); err != nil {
		return inv, &RowError{Sheet: SheetInvoices, Row: rowNum, Field: "generatedDate", Value: getString(row, 5), Reason: err.Error()}
	}
	return inv, nil
}

func parseIncomeRow(row []interface{}, rowNum int) (models.Income, error) {
	in := models.Income{
		ID:          getString(row, 0),
		Description: getString(row, 3),
	}
	if in.ID == "" {
		return in, &RowError{Sheet: SheetIncome, Row: rowNum, Field: "id", Reason: "missing income id"}
	}

	var err error
	if in.Date, err = parseSheetDate(getString(row, 1)); err != nil {
		return in, &RowError{Sheet: SheetIncome, Row: rowNum, Field: "date", Value: getString(row, 1), Reason: err.Error()}
	}
	if in.Amount, err = getAmount(row, 2); err != nil {
		return in, &RowError{Sheet: SheetIncome, Row: rowNum, Field: "amount", Value: getString(row, 2), Reason: err.Error()}
	}
	return in, nil
}
