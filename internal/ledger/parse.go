package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"educenter/pkg/models"
)

// parseVNDAmount parses amounts as written in Vietnamese spreadsheets. The
// dot is the thousands separator and the comma the decimal separator
// ("1.500.000 ₫", "-300.000", "12.345,5"). A single separator followed by
// exactly three digits is read as a thousands separator.
func parseVNDAmount(amountStr string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(amountStr)
	if cleaned == "" {
		return decimal.Zero, nil // Empty amount is treated as 0
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = strings.Trim(cleaned, "()")
	}

	for _, token := range []string{"₫", "VNĐ", "VND", "đ", "Đ", " ", "\u00a0"} {
		cleaned = strings.ReplaceAll(cleaned, token, "")
	}
	if strings.HasPrefix(cleaned, "-") {
		negative = !negative
		cleaned = strings.TrimPrefix(cleaned, "-")
	}
	cleaned = strings.TrimPrefix(cleaned, "+")

	cleaned = normalizeSeparators(cleaned)

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to parse amount: %s (cleaned: %s)", amountStr, cleaned)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

// normalizeSeparators rewrites a grouped number into plain "1234.5" form.
func normalizeSeparators(s string) string {
	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")

	switch {
	case dots > 0 && commas > 0:
		// The right-most separator is the decimal one.
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			return strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
		}
		return strings.ReplaceAll(s, ",", "")
	case dots > 1:
		return strings.ReplaceAll(s, ".", "")
	case commas > 1:
		return strings.ReplaceAll(s, ",", "")
	case dots == 1:
		if len(s)-strings.Index(s, ".")-1 == 3 {
			return strings.ReplaceAll(s, ".", "")
		}
		return s
	case commas == 1:
		if len(s)-strings.Index(s, ",")-1 == 3 {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.ReplaceAll(s, ",", ".")
	}
	return s
}

// parseSheetDate parses the day formats used in Vietnamese sheets
// (DD/MM/YYYY) and ISO dates.
func parseSheetDate(dateStr string) (models.Date, error) {
	cleaned := strings.TrimSpace(dateStr)
	if cleaned == "" {
		return models.Date{}, nil
	}

	formats := []string{
		"02/01/2006", // DD/MM/YYYY
		"2/1/2006",   // D/M/YYYY
		"02-01-2006", // DD-MM-YYYY
		models.DateLayout,
		time.RFC3339,
	}
	for _, format := range formats {
		if t, err := time.Parse(format, cleaned); err == nil {
			return models.NewDate(t), nil
		}
	}
	return models.Date{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// getString safely extracts a string value from a row slice
func getString(row []interface{}, index int) string {
	if index >= len(row) || row[index] == nil {
		return ""
	}
	switch v := row[index].(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// getAmount extracts an amount cell, accepting both formatted text and raw
// numeric cell values.
func getAmount(row []interface{}, index int) (decimal.Decimal, error) {
	if index < len(row) {
		if v, ok := row[index].(float64); ok {
			return decimal.NewFromFloat(v), nil
		}
	}
	return parseVNDAmount(getString(row, index))
}
