package finance

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"educenter/internal/logger"
	"educenter/pkg/models"
)

// Service memoizes notices per (student, invoice, ledger version). A notice
// is a pure function of the snapshot, so a cache hit returns exactly what
// BuildNotice would.
type Service struct {
	notices *cache.Cache // nil when caching is disabled
	log     zerolog.Logger
}

// NewService creates a notice service whose entries expire after ttl. A ttl
// of zero or less disables caching.
func NewService(ttl time.Duration) *Service {
	s := &Service{log: logger.WithComponent("notice-service")}
	if ttl > 0 {
		s.notices = cache.New(ttl, 2*ttl)
	}
	return s
}

// Notice returns the notice for invoiceID, building it when the snapshot has
// changed since it was last computed.
func (s *Service) Notice(l Ledger, invoiceID string) (*Notice, error) {
	invoice, ok := l.Invoice(invoiceID)
	if !ok || s.notices == nil {
		return BuildNotice(l, invoiceID)
	}

	key := cacheKey(l, invoice)
	if cached, found := s.notices.Get(key); found {
		s.log.Debug().Str("invoice_id", invoiceID).Msg("Notice cache hit")
		n := *cached.(*Notice)
		return &n, nil
	}

	n, err := BuildNotice(l, invoiceID)
	if err != nil {
		return nil, err
	}
	s.notices.Set(key, n, cache.DefaultExpiration)

	out := *n
	return &out, nil
}

// cacheKey identifies a notice by student, invoice and the version of every
// input it depends on: the student record, a digest of the student's
// transactions, the invoice itself and the center settings.
func cacheKey(l Ledger, invoice models.Invoice) string {
	settings := l.Settings()
	studentID := invoice.StudentID

	studentVersion := "missing"
	if student, ok := l.Student(studentID); ok {
		studentVersion = student.Balance.String() + "/" + student.Name + "/" + student.ParentName
	}

	return strings.Join([]string{
		studentID,
		invoice.ID,
		studentVersion,
		transactionsDigest(l.TransactionsFor(studentID)),
		invoice.Month + "/" + invoice.Amount.String() + "/" + invoice.Details + "/" + invoice.GeneratedDate.Format(models.DateLayout),
		settings.BankBin + "/" + settings.BankAccountNumber + "/" + settings.BankAccountHolder + "/" + settings.BankName,
		settings.Name + "/" + settings.Address + "/" + settings.Phone,
	}, "|")
}

// transactionsDigest hashes the transaction fields reconciliation reads, in
// ledger order.
func transactionsDigest(txns []models.Transaction) string {
	h := sha256.New()
	for _, t := range txns {
		fmt.Fprintf(h, "%s\x1f%s\x1f%s\x1f%s\x1e", t.ID, t.Type, t.Amount.String(), t.RelatedInvoiceID)
	}
	return hex.EncodeToString(h.Sum(nil))
}
