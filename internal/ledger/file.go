package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"educenter/internal/logger"
)

// FileStore reads a JSON backup exported by the admin app.
type FileStore struct {
	path string
	log  zerolog.Logger
}

// NewFileStore creates a store reading the backup at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		log:  logger.WithComponent("ledger-file"),
	}
}

// Load decodes the backup file.
func (fs *FileStore) Load(ctx context.Context) (*Snapshot, error) {
	const op = "FileStore.Load"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	f, err := os.Open(fs.path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open ledger file: %w", op, err)
	}
	defer f.Close()

	var data Data
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		return nil, fmt.Errorf("%s: failed to decode %s: %w", op, fs.path, err)
	}

	fs.log.Debug().
		Str("path", fs.path).
		Int("students", len(data.Students)).
		Int("transactions", len(data.Transactions)).
		Int("invoices", len(data.Invoices)).
		Int("income", len(data.Income)).
		Msg("Ledger file loaded")

	return NewSnapshot(data), nil
}

// Close is a no-op; the file is opened per Load.
func (fs *FileStore) Close() error { return nil }
