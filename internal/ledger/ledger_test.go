package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"educenter/pkg/models"
)

func loadFixture(t *testing.T) *Snapshot {
	t.Helper()
	snap, err := NewFileStore(filepath.Join("testdata", "backup.json")).Load(context.Background())
	require.NoError(t, err)
	return snap
}

func TestFileStoreLoad(t *testing.T) {
	snap := loadFixture(t)

	assert.Len(t, snap.Students(), 3)
	assert.Len(t, snap.Classes(), 2)
	assert.Len(t, snap.Transactions(), 4)
	assert.Len(t, snap.Invoices(), 4)
	assert.Len(t, snap.Income(), 2)
	assert.Equal(t, "970436", snap.Settings().BankBin)

	hoa, ok := snap.Student("HS001")
	require.True(t, ok)
	assert.True(t, hoa.Balance.Equal(decimal.NewFromInt(-500000)), "balance %s", hoa.Balance)
	assert.Equal(t, "Trần Văn Nam", hoa.Guardian())

	inv, ok := snap.Invoice("INV-0324-HS001")
	require.True(t, ok)
	assert.Equal(t, "2024-03", inv.Month)
	assert.Equal(t, "2024-03-01", inv.GeneratedDate.Format(models.DateLayout))
}

func TestFileStoreMissingFile(t *testing.T) {
	_, err := NewFileStore(filepath.Join(t.TempDir(), "nope.json")).Load(context.Background())
	assert.Error(t, err)
}

func TestSnapshotTransactionsForKeepsLedgerOrder(t *testing.T) {
	snap := loadFixture(t)

	txns := snap.TransactionsFor("HS002")
	require.Len(t, txns, 2)
	assert.Equal(t, "T3", txns[0].ID)
	assert.Equal(t, "T4", txns[1].ID)
	assert.Empty(t, snap.TransactionsFor("HS404"))
}

func TestSnapshotFirstIDWins(t *testing.T) {
	snap := NewSnapshot(Data{
		Students: []models.Student{
			{ID: "S1", Name: "first"},
			{ID: "S1", Name: "second"},
		},
	})
	st, ok := snap.Student("S1")
	require.True(t, ok)
	assert.Equal(t, "first", st.Name)
}

func TestSnapshotInvoicesForMonth(t *testing.T) {
	snap := loadFixture(t)
	assert.Len(t, snap.InvoicesForMonth("2024-03"), 3)
	assert.Len(t, snap.InvoicesForMonth("2024-02"), 1)
	assert.Empty(t, snap.InvoicesForMonth("2023-12"))
}

func TestSnapshotWithSettings(t *testing.T) {
	snap := loadFixture(t)

	over := snap.WithSettings(models.CenterSettings{BankBin: "970415", BankAccountHolder: "Lê Thị B"})
	assert.Equal(t, "970415", over.Settings().BankBin)
	assert.Equal(t, "0123456789", over.Settings().BankAccountNumber)
	assert.Equal(t, "Lê Thị B", over.Settings().BankAccountHolder)

	assert.Equal(t, "970436", snap.Settings().BankBin, "original snapshot is unchanged")
	_, ok := over.Student("HS001")
	assert.True(t, ok)
}

func TestOpenUnsupportedSource(t *testing.T) {
	_, err := Open(context.Background(), Options{Source: "postgres"})
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}

func TestSQLiteImportAndLoad(t *testing.T) {
	ctx := context.Background()
	fixture := loadFixture(t)

	store, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Import(ctx, fixture.Data()))

	snap, err := store.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, fixture.Settings(), snap.Settings())
	require.Len(t, snap.Students(), 3)
	assert.Equal(t, "HS001", snap.Students()[0].ID)
	assert.True(t, snap.Students()[1].Balance.Equal(decimal.NewFromInt(200000)))

	require.Len(t, snap.Classes(), 2)
	assert.Equal(t, []string{"HS001", "HS002"}, snap.Classes()[0].StudentIDs)

	txns := snap.Transactions()
	require.Len(t, txns, 4)
	assert.Equal(t, []string{"T1", "T2", "T3", "T4"}, []string{txns[0].ID, txns[1].ID, txns[2].ID, txns[3].ID})
	assert.Equal(t, models.TransactionInvoice, txns[1].Type)
	assert.Equal(t, "INV-0324-HS001", txns[1].RelatedInvoiceID)
	assert.True(t, txns[1].Amount.Equal(decimal.NewFromInt(-300000)))
	assert.Equal(t, "2024-03", txns[1].Date.MonthKey())

	inv, ok := snap.Invoice("INV-0324-HS002")
	require.True(t, ok)
	assert.True(t, inv.Amount.Equal(decimal.NewFromInt(350000)))
	assert.Equal(t, "Toán 6A", inv.Details)

	income := snap.Income()
	require.Len(t, income, 2)
	assert.Equal(t, "INC1", income[0].ID)
	assert.True(t, income[0].Amount.Equal(decimal.NewFromInt(120000)))
	assert.Equal(t, "2024-03-15", income[0].Date.Format(models.DateLayout))
	assert.Equal(t, "Phí câu lạc bộ", income[1].Description)
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	store, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Import(ctx, loadFixture(t).Data()))
	require.NoError(t, store.Close())

	store, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Invoices(), 4)
	assert.Len(t, snap.Income(), 2)
}

type fakeRanges map[string][][]interface{}

func (f fakeRanges) ReadRange(_ context.Context, rangeSpec string) ([][]interface{}, error) {
	v, ok := f[rangeSpec]
	if !ok {
		return nil, errors.New("range not found: " + rangeSpec)
	}
	return v, nil
}

func TestSheetsStoreLoad(t *testing.T) {
	ranges := fakeRanges{
		"Settings!A:B": {
			{"key", "value"},
			{"bankBin", "970436"},
			{"bankAccountNumber", "0123456789"},
			{"bankAccountHolder", "Nguyễn Văn Đức"},
		},
		"Students!A:E": {
			{"Mã HS", "Họ tên", "Phụ huynh", "Trạng thái", "Số dư"},
			{"HS001", "Trần Thị Hoa", "", "active", "-500.000 ₫"},
			{"", "Không mã", "", "", "0"},
			{"HS002", "Lê Văn An", "", "", float64(200000)},
		},
		"Classes!A:C": {
			{"id", "name", "students"},
			{"L1", "Toán 6A", "HS001, HS002"},
		},
		"Transactions!A:G": {
			{"id", "student", "type", "amount", "date", "invoice", "description"},
			{"T1", "HS001", "INVOICE", "-300.000", "01/03/2024", "INV-1"},
			{"T2", "HS001", "REFUND", "100", "01/03/2024"},
			{"T3", "HS002", "payment", "550.000", "2024-03-03", "", "Chuyển khoản"},
		},
		"Invoices!A:F": {
			{"id", "student", "month", "amount", "details", "generated"},
			{"INV-1", "HS001", "2024-03", "300.000", "12 buổi", "01/03/2024"},
			{"INV-2", "HS002", "2024-03", "abc"},
		},
		"Income!A:D": {
			{"id", "date", "amount", "description"},
			{"I1", "05/03/2024", "120.000", "Bán sách"},
			{"I2", "", "x", "Lỗi"},
		},
	}

	snap, err := NewSheetsStore(ranges).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "970436", snap.Settings().BankBin)

	require.Len(t, snap.Students(), 2, "row without id is skipped")
	assert.Equal(t, models.StatusActive, snap.Students()[0].Status)
	assert.True(t, snap.Students()[0].Balance.Equal(decimal.NewFromInt(-500000)))
	assert.True(t, snap.Students()[1].Balance.Equal(decimal.NewFromInt(200000)))

	require.Len(t, snap.Classes(), 1)
	assert.Equal(t, []string{"HS001", "HS002"}, snap.Classes()[0].StudentIDs)

	txns := snap.Transactions()
	require.Len(t, txns, 2, "unknown transaction type is skipped")
	assert.Equal(t, "INV-1", txns[0].RelatedInvoiceID)
	assert.Empty(t, txns[0].Description)
	assert.Equal(t, models.TransactionPayment, txns[1].Type)

	require.Len(t, snap.Invoices(), 1, "unparseable amount is skipped")
	assert.Equal(t, "2024-03-01", snap.Invoices()[0].GeneratedDate.Format(models.DateLayout))

	require.Len(t, snap.Income(), 1, "unparseable income row is skipped")
	assert.True(t, snap.Income()[0].Amount.Equal(decimal.NewFromInt(120000)))
	assert.Equal(t, "2024-03", snap.Income()[0].Date.MonthKey())
}

func TestSheetsStoreWithoutIncomeSheet(t *testing.T) {
	ranges := fakeRanges{
		"Settings!A:B":     {{"key", "value"}},
		"Students!A:E":     {{"id"}, {"HS001", "Trần Thị Hoa", "", "", "0"}},
		"Classes!A:C":      {{"id"}},
		"Transactions!A:G": {{"id"}},
		"Invoices!A:F":     {{"id"}},
	}

	snap, err := NewSheetsStore(ranges).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Students(), 1)
	assert.Empty(t, snap.Income())
}

func TestSheetsStoreReadError(t *testing.T) {
	_, err := NewSheetsStore(fakeRanges{}).Load(context.Background())
	assert.Error(t, err)
}

func TestRowErrorIsInvalidRow(t *testing.T) {
	_, err := parseInvoiceRow([]interface{}{""}, 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRow)
	assert.Contains(t, err.Error(), "Invoices row 7")
}
