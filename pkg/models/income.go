package models

import "github.com/shopspring/decimal"

// Income is money the center received outside tuition, such as book sales
// or event fees. It counts toward monthly revenue but never touches a
// student balance.
type Income struct {
	ID          string          `json:"id"`
	Date        Date            `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}
