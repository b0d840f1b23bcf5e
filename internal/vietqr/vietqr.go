// Package vietqr builds VietQR bank-transfer image links for tuition notices.
package vietqr

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"educenter/internal/textnorm"
	"educenter/pkg/models"
)

const (
	// BaseURL is the image endpoint of the VietQR quick-link service.
	BaseURL = "https://img.vietqr.io/image/"

	// Template is the rendering template requested from the service.
	Template = "compact2"

	// TuitionTag marks a transfer as a tuition payment ("học phí").
	TuitionTag = "HP"
)

// Payload describes a transfer QR code ready to be rendered.
type Payload struct {
	URL         string `json:"url"`
	Amount      int64  `json:"amount"`
	AddInfo     string `json:"addInfo"`
	AccountName string `json:"accountName,omitempty"`
}

// TransferReference returns the transfer description families must quote:
// the compact student name, the tuition tag, the two-digit month and the
// two-digit year of the billing period.
//
//	TransferReference("Trần Thị Hoa", "2024-03") == "TranThiHoaHP0324"
func TransferReference(studentName, month string) (string, error) {
	const op = "TransferReference"

	if _, err := time.Parse(models.MonthLayout, month); err != nil {
		return "", fmt.Errorf("%s: %q: %w", op, month, ErrInvalidMonth)
	}
	year, mm, _ := strings.Cut(month, "-")

	return textnorm.Compact(studentName) + TuitionTag + mm + year[len(year)-2:], nil
}

// Build composes the QR payload for a tuition transfer of totalDue to the
// center's bank account. It returns a nil payload and one of
// ErrIncompleteBankConfig, ErrNothingDue or ErrInvalidMonth when no QR code
// should be offered.
func Build(settings models.CenterSettings, studentName, month string, totalDue decimal.Decimal) (*Payload, error) {
	if !settings.HasTransferAccount() {
		return nil, ErrIncompleteBankConfig
	}
	if !totalDue.IsPositive() {
		return nil, ErrNothingDue
	}

	addInfo, err := TransferReference(studentName, month)
	if err != nil {
		return nil, err
	}

	payload := &Payload{
		Amount:  totalDue.Round(0).IntPart(),
		AddInfo: addInfo,
	}
	if settings.BankAccountHolder != "" {
		payload.AccountName = textnorm.UpperSpaced(settings.BankAccountHolder)
	}
	payload.URL = imageURL(settings.BankBin, settings.BankAccountNumber, payload)

	return payload, nil
}

// imageURL writes the query parameters in a fixed order (amount, addInfo,
// accountName); url.Values would sort them.
func imageURL(bin, account string, p *Payload) string {
	var b strings.Builder
	b.WriteString(BaseURL)
	b.WriteString(url.PathEscape(bin + "-" + account + "-" + Template + ".png"))
	b.WriteString("?amount=")
	b.WriteString(strconv.FormatInt(p.Amount, 10))
	b.WriteString("&addInfo=")
	b.WriteString(url.QueryEscape(p.AddInfo))
	if p.AccountName != "" {
		b.WriteString("&accountName=")
		b.WriteString(url.QueryEscape(p.AccountName))
	}
	return b.String()
}
