package finance

import (
	"errors"

	"github.com/shopspring/decimal"

	"educenter/internal/vietqr"
	"educenter/pkg/models"
)

// Ledger is the read-only view of the center's records a notice is derived
// from. Implementations must return transactions in ledger order.
type Ledger interface {
	Student(id string) (models.Student, bool)
	Invoice(id string) (models.Invoice, bool)
	TransactionsFor(studentID string) []models.Transaction
	Settings() models.CenterSettings
}

// NoticeStatus tells the caller which kind of notice to render.
type NoticeStatus string

const (
	NoticeReady          NoticeStatus = "ok"
	NoticeStudentMissing NoticeStatus = "student_missing" // Render a placeholder, not a notice
)

// BankInfo is the transfer destination printed on the notice.
type BankInfo struct {
	Name          string `json:"name,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	AccountHolder string `json:"accountHolder,omitempty"`
}

// Notice is a tuition fee notice ("phiếu báo học phí") for one invoice.
// It is derived fresh from a ledger snapshot and never stored.
type Notice struct {
	Status NoticeStatus `json:"status"`

	InvoiceID     string          `json:"invoiceId"`
	Month         string          `json:"month"`
	InvoiceAmount decimal.Decimal `json:"invoiceAmount"`
	Details       string          `json:"details,omitempty"`
	GeneratedDate models.Date     `json:"generatedDate"`

	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName,omitempty"`
	Guardian    string `json:"guardian,omitempty"`

	Amounts
	Reconciliation *Reconciliation `json:"reconciliation,omitempty"`

	Center            models.CenterSettings `json:"-"`
	Bank              BankInfo              `json:"bank"`
	TransferReference string                `json:"transferReference,omitempty"`
	QR                *vietqr.Payload       `json:"qr,omitempty"`
	QRUnavailable     string                `json:"qrUnavailable,omitempty"` // Why no QR is offered
}

// BuildNotice derives the notice for invoiceID. Only an unknown invoice is an
// error; a missing student yields a NoticeStudentMissing notice with zero
// amounts, and an unavailable QR code is reported in QRUnavailable.
func BuildNotice(l Ledger, invoiceID string) (*Notice, error) {
	const op = "BuildNotice"

	invoice, ok := l.Invoice(invoiceID)
	if !ok {
		return nil, &Error{Op: op, InvoiceID: invoiceID, Err: ErrInvoiceNotFound}
	}

	settings := l.Settings()
	n := &Notice{
		Status:        NoticeReady,
		InvoiceID:     invoice.ID,
		Month:         invoice.Month,
		InvoiceAmount: invoice.Amount,
		Details:       invoice.Details,
		GeneratedDate: invoice.GeneratedDate,
		StudentID:     invoice.StudentID,
		Center:        settings,
		Bank: BankInfo{
			Name:          settings.BankName,
			AccountNumber: settings.BankAccountNumber,
			AccountHolder: settings.BankAccountHolder,
		},
		Amounts: Amounts{
			OutstandingDebt: decimal.Zero,
			OpeningCredit:   decimal.Zero,
			TotalDue:        decimal.Zero,
		},
	}

	var student *models.Student
	if s, found := l.Student(invoice.StudentID); found {
		student = &s
	}

	rec, err := Reconcile(student, invoice, l.TransactionsFor(invoice.StudentID))
	if errors.Is(err, ErrStudentNotFound) {
		n.Status = NoticeStudentMissing
		n.QRUnavailable = ErrStudentNotFound.Error()
		return n, nil
	}
	if err != nil {
		return nil, err
	}

	n.StudentName = student.Name
	n.Guardian = student.Guardian()
	n.Reconciliation = &rec
	n.Amounts = ComputeAmounts(rec.BalanceBefore, invoice.Amount)

	if ref, err := vietqr.TransferReference(student.Name, invoice.Month); err == nil {
		n.TransferReference = ref
	}

	qr, err := vietqr.Build(settings, student.Name, invoice.Month, n.TotalDue)
	if err != nil {
		n.QRUnavailable = err.Error()
	}
	n.QR = qr

	return n, nil
}

// Period formats the billing month as MM/YYYY, or returns the raw month when
// it is malformed.
func (n *Notice) Period() string {
	year, month, err := models.Invoice{Month: n.Month}.Period()
	if err != nil {
		return n.Month
	}
	return month + "/" + year
}
