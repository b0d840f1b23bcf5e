package sheets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSpreadsheetID(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://docs.google.com/spreadsheets/d/1AbC-d_9/edit#gid=0", "1AbC-d_9", false},
		{"https://docs.google.com/spreadsheets/d/xyz", "xyz", false},
		{"https://example.com/sheet", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := extractSpreadsheetID(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCredentialsLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"from":"file"}`), 0o600))

	key, err := Credentials{File: path, JSON: `{"from":"env"}`}.load()
	require.NoError(t, err)
	assert.Equal(t, `{"from":"file"}`, string(key))

	key, err = Credentials{JSON: `{"from":"env"}`}.load()
	require.NoError(t, err)
	assert.Equal(t, `{"from":"env"}`, string(key))

	_, err = Credentials{}.load()
	assert.Error(t, err)

	_, err = Credentials{File: filepath.Join(t.TempDir(), "missing.json")}.load()
	assert.Error(t, err)
}

func TestNoticeRowValuesMatchHeaders(t *testing.T) {
	row := NoticeRow{
		InvoiceID:         "INV-0324-HS001",
		StudentID:         "HS001",
		StudentName:       "Trần Thị Hoa",
		Month:             "2024-03",
		OutstandingDebt:   200000,
		InvoiceAmount:     300000,
		TotalDue:          500000,
		TransferReference: "TranThiHoaHP0324",
		Status:            "success",
		ProcessedAt:       "15/03/2024 10:00",
	}

	values := row.values()
	require.Len(t, values, len(noticeHeaders))
	assert.Equal(t, "INV-0324-HS001", values[0])
	assert.Equal(t, 500000.0, values[7])
	assert.Equal(t, "TranThiHoaHP0324", values[8])
	assert.Equal(t, "15/03/2024 10:00", values[12])
}
