package ledger

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"educenter/internal/logger"
	"educenter/pkg/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLiteStore keeps the ledger in a local SQLite database. Rows are read back
// in insertion order, which is ledger order.
type SQLiteStore struct {
	db  *sql.DB
	log zerolog.Logger
}

// OpenSQLite opens (creating if needed) the database at path and applies the
// schema migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	const op = "OpenSQLite"

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open database at %s: %w", op, path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	s := &SQLiteStore{db: db, log: logger.WithComponent("ledger-sqlite")}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info().Str("path", path).Msg("SQLite ledger opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create sqlite migration driver: %w", err)
	}
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("could not read embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migration instance creation failed: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			s.log.Debug().Msg("No new database migrations to apply")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	s.log.Info().Msg("Database migrations applied")
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads every table into a snapshot.
func (s *SQLiteStore) Load(ctx context.Context) (*Snapshot, error) {
	const op = "SQLiteStore.Load"

	var (
		data Data
		err  error
	)
	if data.Settings, err = s.loadSettings(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if data.Students, err = s.loadStudents(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if data.Classes, err = s.loadClasses(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if data.Transactions, err = s.loadTransactions(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if data.Invoices, err = s.loadInvoices(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if data.Income, err = s.loadIncome(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Debug().
		Int("students", len(data.Students)).
		Int("transactions", len(data.Transactions)).
		Int("invoices", len(data.Invoices)).
		Msg("SQLite ledger loaded")

	return NewSnapshot(data), nil
}

func (s *SQLiteStore) loadSettings(ctx context.Context) (models.CenterSettings, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return models.CenterSettings{}, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	values := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return models.CenterSettings{}, fmt.Errorf("scan settings: %w", err)
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return models.CenterSettings{}, err
	}
	return settingsFromMap(values), nil
}

func (s *SQLiteStore) loadStudents(ctx context.Context) ([]models.Student, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, parent_name, status, balance FROM students ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	var out []models.Student
	for rows.Next() {
		var st models.Student
		var status string
		if err := rows.Scan(&st.ID, &st.Name, &st.ParentName, &status, &st.Balance); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		st.Status = models.PersonStatus(status)
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadClasses(ctx context.Context) ([]models.Class, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM classes ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query classes: %w", err)
	}
	var out []models.Class
	for rows.Next() {
		var c models.Class
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan class: %w", err)
		}
		out = append(out, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		members, err := s.db.QueryContext(ctx,
			`SELECT student_id FROM class_students WHERE class_id = ? ORDER BY position`, out[i].ID)
		if err != nil {
			return nil, fmt.Errorf("query class members: %w", err)
		}
		for members.Next() {
			var id string
			if err := members.Scan(&id); err != nil {
				members.Close()
				return nil, fmt.Errorf("scan class member: %w", err)
			}
			out[i].StudentIDs = append(out[i].StudentIDs, id)
		}
		members.Close()
		if err := members.Err(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLiteStore) loadTransactions(ctx context.Context) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, student_id, type, amount, date, related_invoice_id, description FROM transactions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var (
			t             models.Transaction
			typ, dateText string
		)
		if err := rows.Scan(&t.ID, &t.StudentID, &typ, &t.Amount, &dateText, &t.RelatedInvoiceID, &t.Description); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Type, err = models.ParseTransactionType(typ); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		if t.Date, err = models.ParseDate(dateText); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadInvoices(ctx context.Context) ([]models.Invoice, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, student_id, month, amount, details, generated_date FROM invoices ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	var out []models.Invoice
	for rows.Next() {
		var (
			inv      models.Invoice
			dateText string
		)
		if err := rows.Scan(&inv.ID, &inv.StudentID, &inv.Month, &inv.Amount, &inv.Details, &dateText); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		if inv.GeneratedDate, err = models.ParseDate(dateText); err != nil {
			return nil, fmt.Errorf("invoice %s: %w", inv.ID, err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadIncome(ctx context.Context) ([]models.Income, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, date, amount, description FROM income ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query income: %w", err)
	}
	defer rows.Close()

	var out []models.Income
	for rows.Next() {
		var (
			in       models.Income
			dateText string
		)
		if err := rows.Scan(&in.ID, &dateText, &in.Amount, &in.Description); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		if in.Date, err = models.ParseDate(dateText); err != nil {
			return nil, fmt.Errorf("income %s: %w", in.ID, err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// Import replaces the database content with d in a single transaction.
func (s *SQLiteStore) Import(ctx context.Context, d Data) error {
	const op = "SQLiteStore.Import"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	for _, table := range []string{"settings", "students", "classes", "class_students", "transactions", "invoices", "income"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("%s: clear %s: %w", op, table, err)
		}
	}

	for k, v := range settingsToMap(d.Settings) {
		if _, err := tx.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("%s: insert setting %s: %w", op, k, err)
		}
	}
	for _, st := range d.Students {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO students (id, name, parent_name, status, balance) VALUES (?, ?, ?, ?, ?)`,
			st.ID, st.Name, st.ParentName, string(st.Status), st.Balance.String()); err != nil {
			return fmt.Errorf("%s: insert student %s: %w", op, st.ID, err)
		}
	}
	for _, c := range d.Classes {
		if _, err := tx.ExecContext(ctx, `INSERT INTO classes (id, name) VALUES (?, ?)`, c.ID, c.Name); err != nil {
			return fmt.Errorf("%s: insert class %s: %w", op, c.ID, err)
		}
		for pos, sid := range c.StudentIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO class_students (class_id, student_id, position) VALUES (?, ?, ?)`,
				c.ID, sid, pos); err != nil {
				return fmt.Errorf("%s: insert class member %s/%s: %w", op, c.ID, sid, err)
			}
		}
	}
	for _, t := range d.Transactions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (id, student_id, type, amount, date, related_invoice_id, description) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.StudentID, string(t.Type), t.Amount.String(), formatDate(t.Date), t.RelatedInvoiceID, t.Description); err != nil {
			return fmt.Errorf("%s: insert transaction %s: %w", op, t.ID, err)
		}
	}
	for _, inv := range d.Invoices {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO invoices (id, student_id, month, amount, details, generated_date) VALUES (?, ?, ?, ?, ?, ?)`,
			inv.ID, inv.StudentID, inv.Month, inv.Amount.String(), inv.Details, formatDate(inv.GeneratedDate)); err != nil {
			return fmt.Errorf("%s: insert invoice %s: %w", op, inv.ID, err)
		}
	}
	for _, in := range d.Income {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO income (id, date, amount, description) VALUES (?, ?, ?, ?)`,
			in.ID, formatDate(in.Date), in.Amount.String(), in.Description); err != nil {
			return fmt.Errorf("%s: insert income %s: %w", op, in.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	s.log.Info().
		Int("students", len(d.Students)).
		Int("transactions", len(d.Transactions)).
		Int("invoices", len(d.Invoices)).
		Int("income", len(d.Income)).
		Msg("Ledger imported into SQLite")
	return nil
}

func formatDate(d models.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.RFC3339)
}

func settingsToMap(s models.CenterSettings) map[string]string {
	return map[string]string{
		"name":              s.Name,
		"address":           s.Address,
		"phone":             s.Phone,
		"bankName":          s.BankName,
		"bankBin":           s.BankBin,
		"bankAccountNumber": s.BankAccountNumber,
		"bankAccountHolder": s.BankAccountHolder,
	}
}

func settingsFromMap(m map[string]string) models.CenterSettings {
	return models.CenterSettings{
		Name:              m["name"],
		Address:           m["address"],
		Phone:             m["phone"],
		BankName:          m["bankName"],
		BankBin:           m["bankBin"],
		BankAccountNumber: m["bankAccountNumber"],
		BankAccountHolder: m["bankAccountHolder"],
	}
}
