// Package ledger loads the center's students, classes, transactions, invoices
// and settings from a backup file, a SQLite database or a Google Sheet.
package ledger

import (
	"context"
	"fmt"
	"strings"
)

// Source names a ledger backend.
type Source string

const (
	SourceFile   Source = "file"
	SourceSQLite Source = "sqlite"
	SourceSheets Source = "sheets"
)

// Store loads a current snapshot of the ledger. Each Load reads the backend
// afresh; a Store holds no cached records.
type Store interface {
	Load(ctx context.Context) (*Snapshot, error)
	Close() error
}

// Options selects and configures a Store.
type Options struct {
	Source Source

	// Path is the backup file for SourceFile and the database file for
	// SourceSQLite.
	Path string

	// SheetURL and the credentials configure SourceSheets.
	SheetURL        string
	CredentialsFile string
	CredentialsJSON string
}

// Open creates the Store selected by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	const op = "Open"

	switch Source(strings.ToLower(string(opts.Source))) {
	case SourceFile, "":
		return NewFileStore(opts.Path), nil
	case SourceSQLite:
		store, err := OpenSQLite(ctx, opts.Path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return store, nil
	case SourceSheets:
		store, err := OpenSheets(ctx, opts.SheetURL, opts.CredentialsFile, opts.CredentialsJSON)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%s: %q: %w", op, opts.Source, ErrUnsupportedSource)
	}
}
