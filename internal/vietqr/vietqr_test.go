package vietqr_test

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"educenter/internal/vietqr"
	"educenter/pkg/models"
)

func bankSettings() models.CenterSettings {
	return models.CenterSettings{
		Name:              "Trung tâm Ánh Dương",
		BankName:          "Vietcombank",
		BankBin:           "970436",
		BankAccountNumber: "0123456789",
		BankAccountHolder: "Nguyễn Văn Đức",
	}
}

func TestTransferReference(t *testing.T) {
	ref, err := vietqr.TransferReference("Trần Thị Hoa", "2024-03")
	require.NoError(t, err)
	assert.Equal(t, "TranThiHoaHP0324", ref)

	ref, err = vietqr.TransferReference("Đỗ Minh", "1999-12")
	require.NoError(t, err)
	assert.Equal(t, "DoMinhHP1299", ref)
}

func TestTransferReferenceRejectsMalformedMonth(t *testing.T) {
	for _, month := range []string{"", "2024", "2024-3", "03-2024", "2024-13", "2024-03-01"} {
		_, err := vietqr.TransferReference("Trần Thị Hoa", month)
		assert.ErrorIs(t, err, vietqr.ErrInvalidMonth, "month %q", month)
	}
}

func TestBuild(t *testing.T) {
	p, err := vietqr.Build(bankSettings(), "Trần Thị Hoa", "2024-03", decimal.NewFromInt(700000))
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, int64(700000), p.Amount)
	assert.Equal(t, "TranThiHoaHP0324", p.AddInfo)
	assert.Equal(t, "NGUYEN VAN DUC", p.AccountName)
	assert.Equal(t,
		"https://img.vietqr.io/image/970436-0123456789-compact2.png?amount=700000&addInfo=TranThiHoaHP0324&accountName=NGUYEN+VAN+DUC",
		p.URL)
}

func TestBuildWithoutAccountHolder(t *testing.T) {
	settings := bankSettings()
	settings.BankAccountHolder = ""

	p, err := vietqr.Build(settings, "Lê Văn An", "2025-01", decimal.NewFromInt(450000))
	require.NoError(t, err)
	assert.Empty(t, p.AccountName)
	assert.Equal(t,
		"https://img.vietqr.io/image/970436-0123456789-compact2.png?amount=450000&addInfo=LeVanAnHP0125",
		p.URL)
}

func TestBuildRoundsAmount(t *testing.T) {
	tests := []struct {
		due  string
		want int64
	}{
		{"150000.4", 150000},
		{"150000.5", 150001},
		{"0.6", 1},
	}
	for _, tt := range tests {
		p, err := vietqr.Build(bankSettings(), "An", "2024-03", decimal.RequireFromString(tt.due))
		require.NoError(t, err)
		assert.Equal(t, tt.want, p.Amount, "due %s", tt.due)
	}
}

func TestBuildSuppressed(t *testing.T) {
	noAccount := bankSettings()
	noAccount.BankAccountNumber = ""
	noBin := bankSettings()
	noBin.BankBin = ""

	tests := []struct {
		name     string
		settings models.CenterSettings
		month    string
		due      decimal.Decimal
		wantErr  error
	}{
		{"missing account number", noAccount, "2024-03", decimal.NewFromInt(100), vietqr.ErrIncompleteBankConfig},
		{"missing bin", noBin, "2024-03", decimal.NewFromInt(100), vietqr.ErrIncompleteBankConfig},
		{"zero due", bankSettings(), "2024-03", decimal.Zero, vietqr.ErrNothingDue},
		{"negative due", bankSettings(), "2024-03", decimal.NewFromInt(-5), vietqr.ErrNothingDue},
		{"bank config checked before amount", noBin, "2024-03", decimal.Zero, vietqr.ErrIncompleteBankConfig},
		{"malformed month", bankSettings(), "March", decimal.NewFromInt(100), vietqr.ErrInvalidMonth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := vietqr.Build(tt.settings, "Trần Thị Hoa", tt.month, tt.due)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBuildEscapesQueryValues(t *testing.T) {
	settings := bankSettings()
	settings.BankAccountHolder = "Công ty A&B"

	p, err := vietqr.Build(settings, "Hoa", "2024-03", decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.Equal(t, "CONG TY A&B", p.AccountName)
	assert.Contains(t, p.URL, "&accountName=CONG+TY+A%26B")
}

func TestBuildEscapesReservedHolderCharacters(t *testing.T) {
	settings := bankSettings()
	settings.BankAccountHolder = "Lớp *Sao* ~Mai"

	p, err := vietqr.Build(settings, "Hoa", "2024-03", decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.Equal(t, "LOP *SAO* ~MAI", p.AccountName)
	assert.Contains(t, p.URL, "&accountName=LOP+%2ASAO%2A+~MAI")
}

func ExampleBuild() {
	settings := models.CenterSettings{
		BankBin:           "970436",
		BankAccountNumber: "0123456789",
		BankAccountHolder: "Trung tâm Ánh Dương",
	}

	p, err := vietqr.Build(settings, "Trần Thị Hoa", "2024-03", decimal.NewFromInt(700000))
	if err != nil {
		fmt.Println("no QR:", err)
		return
	}
	fmt.Println(p.URL)
	// Output: https://img.vietqr.io/image/970436-0123456789-compact2.png?amount=700000&addInfo=TranThiHoaHP0324&accountName=TRUNG+TAM+ANH+DUONG
}
