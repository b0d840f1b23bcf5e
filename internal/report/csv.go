package report

import (
	"encoding/csv"
	"fmt"
	"io"
)

var debtCSVHeader = []string{"Họ Tên", "Các Lớp Học", "Số Tiền Nợ"}

// WriteDebtCSV writes the debt rows as CSV with the amount owed as a positive
// integer. The output starts with a UTF-8 byte order mark so spreadsheet
// programs detect the encoding.
func WriteDebtCSV(w io.Writer, rows []DebtRow) error {
	const op = "WriteDebtCSV"

	if _, err := io.WriteString(w, "\uFEFF"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(debtCSVHeader); err != nil {
		return fmt.Errorf("%s: failed to write header: %w", op, err)
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Name, r.ClassNames(), r.Debt().String()}); err != nil {
			return fmt.Errorf("%s: failed to write row for %s: %w", op, r.StudentID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
