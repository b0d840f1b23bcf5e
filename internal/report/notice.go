package report

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"educenter/internal/finance"
	"educenter/pkg/models"
)

const noticeLayout = `{{ .Center.Name }}
{{- with .Center.Address }}
{{ . }}{{ end }}
{{- with .Center.Phone }}
ĐT: {{ . }}{{ end }}

PHIẾU BÁO HỌC PHÍ
Kỳ: Tháng {{ .Period }}

Họ và tên HS:   {{ .StudentName }}
Mã số HS:       {{ .StudentID }}
Phụ huynh:      {{ .Guardian }}
Ngày lập phiếu: {{ date .GeneratedDate }}

{{ row "Dư nợ kỳ trước" (vnd .OutstandingDebt) }}
{{ row "Số dư/Đã trả kỳ trước" (printf "-%s" (vnd .OpeningCredit)) }}
{{ row (printf "Học phí phát sinh tháng %s" .Period) (vnd .InvoiceAmount) }}
{{- range lines .Details }}
    {{ . }}{{ end }}
{{ rule }}
{{ row "TỔNG THANH TOÁN" (vnd .TotalDue) }}

THÔNG TIN THANH TOÁN
Ngân hàng:      {{ .Bank.Name }}
Số tài khoản:   {{ .Bank.AccountNumber }}
Chủ tài khoản:  {{ .Bank.AccountHolder }}
Nội dung CK (quan trọng): {{ .TransferReference }}
{{- if .QR }}
Mã QR:          {{ .QR.URL }}
{{- end }}

Cảm ơn quý phụ huynh đã tin tưởng!
Vui lòng thanh toán học phí khi nhận được phiếu!
`

const (
	labelWidth  = 36
	amountWidth = 16
)

var noticeTemplate = template.Must(template.New("notice").Funcs(template.FuncMap{
	"vnd":   FormatVND,
	"row":   noticeRow,
	"rule":  func() string { return strings.Repeat("-", labelWidth+amountWidth) },
	"lines": detailLines,
	"date": func(d models.Date) string {
		if d.IsZero() {
			return ""
		}
		return d.Format("02/01/2006")
	},
}).Parse(noticeLayout))

// RenderNotice writes the plain-text tuition notice. A notice whose student
// is missing renders as a one-line placeholder.
func RenderNotice(w io.Writer, n *finance.Notice) error {
	const op = "RenderNotice"

	if n.Status == finance.NoticeStudentMissing {
		if _, err := fmt.Fprintf(w, "Học viên không tồn tại (hóa đơn %s, mã HS %s).\n", n.InvoiceID, n.StudentID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}

	if err := noticeTemplate.Execute(w, n); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// FormatVND formats an amount in whole dong with Vietnamese digit grouping,
// e.g. "1.500.000 ₫".
func FormatVND(d decimal.Decimal) string {
	p := message.NewPrinter(language.Vietnamese)
	return p.Sprintf("%d", d.Round(0).IntPart()) + " ₫"
}

func noticeRow(label, amount string) string {
	pad := labelWidth - len([]rune(label))
	if pad < 1 {
		pad = 1
	}
	return label + strings.Repeat(" ", pad) + fmt.Sprintf("%*s", amountWidth, amount)
}

func detailLines(details string) []string {
	var out []string
	for _, line := range strings.Split(details, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
