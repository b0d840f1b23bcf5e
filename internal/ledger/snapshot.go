package ledger

import (
	"educenter/pkg/models"
)

// Data is the raw content of a ledger: the same shape as the admin app's
// backup export.
type Data struct {
	Settings     models.CenterSettings `json:"settings"`
	Students     []models.Student      `json:"students"`
	Classes      []models.Class        `json:"classes"`
	Transactions []models.Transaction  `json:"transactions"`
	Invoices     []models.Invoice      `json:"invoices"`
	Income       []models.Income       `json:"income"`
}

// Snapshot is an immutable, indexed view of ledger data. Lookups by id return
// the first record with that id, and transactions keep ledger order.
type Snapshot struct {
	data Data

	students  map[string]int
	invoices  map[string]int
	byStudent map[string][]int
}

// NewSnapshot indexes d. The snapshot keeps its own copy of the slices.
func NewSnapshot(d Data) *Snapshot {
	d = Data{
		Settings:     d.Settings,
		Students:     append([]models.Student(nil), d.Students...),
		Classes:      append([]models.Class(nil), d.Classes...),
		Transactions: append([]models.Transaction(nil), d.Transactions...),
		Invoices:     append([]models.Invoice(nil), d.Invoices...),
		Income:       append([]models.Income(nil), d.Income...),
	}

	s := &Snapshot{
		data:      d,
		students:  make(map[string]int, len(d.Students)),
		invoices:  make(map[string]int, len(d.Invoices)),
		byStudent: make(map[string][]int),
	}
	for i, st := range d.Students {
		if _, dup := s.students[st.ID]; !dup {
			s.students[st.ID] = i
		}
	}
	for i, inv := range d.Invoices {
		if _, dup := s.invoices[inv.ID]; !dup {
			s.invoices[inv.ID] = i
		}
	}
	for i, t := range d.Transactions {
		s.byStudent[t.StudentID] = append(s.byStudent[t.StudentID], i)
	}
	return s
}

// Student looks a student up by id.
func (s *Snapshot) Student(id string) (models.Student, bool) {
	i, ok := s.students[id]
	if !ok {
		return models.Student{}, false
	}
	return s.data.Students[i], true
}

// Invoice looks an invoice up by id.
func (s *Snapshot) Invoice(id string) (models.Invoice, bool) {
	i, ok := s.invoices[id]
	if !ok {
		return models.Invoice{}, false
	}
	return s.data.Invoices[i], true
}

// TransactionsFor returns the student's transactions in ledger order.
func (s *Snapshot) TransactionsFor(studentID string) []models.Transaction {
	idx := s.byStudent[studentID]
	out := make([]models.Transaction, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.data.Transactions[i])
	}
	return out
}

// InvoicesForMonth returns the invoices billed for month (YYYY-MM).
func (s *Snapshot) InvoicesForMonth(month string) []models.Invoice {
	var out []models.Invoice
	for _, inv := range s.data.Invoices {
		if inv.Month == month {
			out = append(out, inv)
		}
	}
	return out
}

func (s *Snapshot) Settings() models.CenterSettings { return s.data.Settings }

func (s *Snapshot) Students() []models.Student { return s.data.Students }

func (s *Snapshot) Classes() []models.Class { return s.data.Classes }

func (s *Snapshot) Transactions() []models.Transaction { return s.data.Transactions }

func (s *Snapshot) Invoices() []models.Invoice { return s.data.Invoices }

func (s *Snapshot) Income() []models.Income { return s.data.Income }

// Data returns the snapshot's records.
func (s *Snapshot) Data() Data { return s.data }

// WithSettings returns a snapshot whose settings are overlaid with the
// non-empty fields of override.
func (s *Snapshot) WithSettings(override models.CenterSettings) *Snapshot {
	merged := s.data.Settings
	overlay := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	overlay(&merged.Name, override.Name)
	overlay(&merged.Address, override.Address)
	overlay(&merged.Phone, override.Phone)
	overlay(&merged.BankName, override.BankName)
	overlay(&merged.BankBin, override.BankBin)
	overlay(&merged.BankAccountNumber, override.BankAccountNumber)
	overlay(&merged.BankAccountHolder, override.BankAccountHolder)

	out := *s
	out.data.Settings = merged
	return &out
}
