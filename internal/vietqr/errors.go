package vietqr

import "errors"

// Reasons a transfer QR code is not offered. None of them is a failure of the
// notice itself; callers omit the QR section and keep rendering.
var (
	// ErrIncompleteBankConfig is returned when the center has no bank BIN or
	// account number configured.
	ErrIncompleteBankConfig = errors.New("bank transfer account is not configured")

	// ErrNothingDue is returned when the total due is zero or negative.
	ErrNothingDue = errors.New("nothing due")

	// ErrInvalidMonth is returned when the invoice month is not in YYYY-MM form.
	ErrInvalidMonth = errors.New("invalid invoice month")
)
