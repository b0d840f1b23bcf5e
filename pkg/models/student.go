package models

import "github.com/shopspring/decimal"

// PersonStatus marks whether a student is currently enrolled.
type PersonStatus string

const (
	StatusActive   PersonStatus = "ACTIVE"
	StatusInactive PersonStatus = "INACTIVE"
)

// Student is an enrolled learner and the owner of a tuition account.
type Student struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	ParentName string          `json:"parentName,omitempty"`
	Status     PersonStatus    `json:"status,omitempty"`
	Balance    decimal.Decimal `json:"balance"` // Negative = owes money, positive = credit on account
}

// Guardian returns the name a notice is addressed to.
func (s Student) Guardian() string {
	if s.ParentName != "" {
		return s.ParentName
	}
	return s.Name
}

// InDebt reports whether the account balance is negative.
func (s Student) InDebt() bool {
	return s.Balance.IsNegative()
}

// Class groups students for attendance and reporting.
type Class struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	StudentIDs []string `json:"studentIds"`
}

// Has reports whether the student belongs to the class.
func (c Class) Has(studentID string) bool {
	for _, id := range c.StudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}
