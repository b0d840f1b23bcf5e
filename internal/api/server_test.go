package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"educenter/internal/ledger"
	"educenter/pkg/models"
)

func fixtureStore() ledger.Store {
	return ledger.NewFileStore(filepath.Join("..", "ledger", "testdata", "backup.json"))
}

func newTestServer(t *testing.T, store ledger.Store, opts Options) *httptest.Server {
	t.Helper()
	if opts.NoticeCacheTTL == 0 {
		opts.NoticeCacheTTL = time.Minute
	}
	srv := httptest.NewServer(NewServer(store, opts).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, v interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, fixtureStore(), Options{})

	var body map[string]string
	resp := getJSON(t, srv.URL+"/healthz", &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv := newTestServer(t, fixtureStore(), Options{})

	const id = "0b6f3c52-3a41-4a5e-9d0a-1f0f3f7c2a11"
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(requestIDHeader, id)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, id, resp.Header.Get(requestIDHeader))
}

func TestNotice(t *testing.T) {
	srv := newTestServer(t, fixtureStore(), Options{})

	var body map[string]interface{}
	resp := getJSON(t, srv.URL+"/api/invoices/INV-0324-HS001/notice", &body)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "200000", body["outstandingDebt"])
	assert.Equal(t, "0", body["openingCredit"])
	assert.Equal(t, "500000", body["totalDue"])
	assert.Equal(t, "TranThiHoaHP0324", body["transferReference"])

	qr, ok := body["qr"].(map[string]interface{})
	require.True(t, ok, "qr present")
	assert.Equal(t,
		"https://img.vietqr.io/image/970436-0123456789-compact2.png?amount=500000&addInfo=TranThiHoaHP0324&accountName=NGUYEN+VAN+DUC",
		qr["url"])
}

func TestNoticeNothingDue(t *testing.T) {
	srv := newTestServer(t, fixtureStore(), Options{})

	var body map[string]interface{}
	getJSON(t, srv.URL+"/api/invoices/INV-0324-HS002/notice", &body)

	assert.Equal(t, "550000", body["openingCredit"])
	assert.Equal(t, "0", body["totalDue"])
	assert.Nil(t, body["qr"])
	assert.Equal(t, "nothing due", body["qrUnavailable"])
}

func TestNoticeMissingStudent(t *testing.T) {
	srv := newTestServer(t, fixtureStore(), Options{})

	var body map[string]interface{}
	resp := getJSON(t, srv.URL+"/api/invoices/INV-0324-HS404/notice", &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "student_missing", body["status"])
	assert.Equal(t, "0", body["totalDue"])
}

func TestNoticeUnknownInvoice(t *testing.T) {
	srv := newTestServer(t, fixtureStore(), Options{})

	var body map[string]string
	resp := getJSON(t, srv.URL+"/api/invoices/INV-NOPE/notice", &body)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body["error"], "invoice not found")
}

func TestNoticeAsText(t *testing.T) {
	srv := newTestServer(t, fixtureStore(), Options{})

	resp, err := http.Get(srv.URL + "/api/invoices/INV-0324-HS001/notice?format=text")
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"))
	assert.Contains(t, string(raw), "PHIẾU BÁO HỌC PHÍ")
	assert.Contains(t, string(raw), "TranThiHoaHP0324")
}

func TestNoticeBankOverride(t *testing.T) {
	srv := newTestServer(t, fixtureStore(), Options{
		Overrides: models.CenterSettings{BankBin: "970415", BankAccountHolder: "Trung Tam"},
	})

	var body map[string]interface{}
	getJSON(t, srv.URL+"/api/invoices/INV-0324-HS001/notice", &body)

	qr := body["qr"].(map[string]interface{})
	assert.Equal(t,
		"https://img.vietqr.io/image/970415-0123456789-compact2.png?amount=500000&addInfo=TranThiHoaHP0324&accountName=TRUNG+TAM",
		qr["url"])
}

func TestMonthNotices(t *testing.T) {
	srv := newTestServer(t, fixtureStore(), Options{})

	var body struct {
		Month    string                   `json:"month"`
		Count    int                      `json:"count"`
		TotalDue string                   `json:"totalDue"`
		Notices  []map[string]interface{} `json:"notices"`
	}
	resp := getJSON(t, srv.URL+"/api/months/2024-03/notices", &body)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, body.Count)
	assert.Equal(t, "500000", body.TotalDue)
	require.Len(t, body.Notices, 3)
	assert.Equal(t, "INV-0324-HS001", body.Notices[0]["invoiceId"])
	assert.Equal(t, "student_missing", body.Notices[2]["status"])

	bad := getJSON(t, srv.URL+"/api/months/2024-3/notices", nil)
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestDebts(t *testing.T) {
	srv := newTestServer(t, fixtureStore(), Options{})

	var body struct {
		Rows []struct {
			StudentID string   `json:"studentId"`
			Classes   []string `json:"classes"`
			Balance   string   `json:"balance"`
		} `json:"rows"`
		Total string `json:"total"`
	}
	resp := getJSON(t, srv.URL+"/api/reports/debts", &body)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body.Rows, 1)
	assert.Equal(t, "HS001", body.Rows[0].StudentID)
	assert.Equal(t, []string{"Toán 6A"}, body.Rows[0].Classes)
	assert.Equal(t, "-500000", body.Total)

	bad := getJSON(t, srv.URL+"/api/reports/debts?sort=age", nil)
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)

	bad = getJSON(t, srv.URL+"/api/reports/debts?top=-1", nil)
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestDebtsCSV(t *testing.T) {
	srv := newTestServer(t, fixtureStore(), Options{})

	resp, err := http.Get(srv.URL + "/api/reports/debts?format=csv")
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(raw), "Trần Thị Hoa,Toán 6A,500000")
}

func TestRevenue(t *testing.T) {
	srv := newTestServer(t, fixtureStore(), Options{})

	var body map[string]interface{}
	resp := getJSON(t, srv.URL+"/api/reports/revenue?month=2024-03", &body)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2024-03", body["month"])
	assert.Equal(t, "550000", body["tuition"])
	assert.Equal(t, "120000", body["otherIncome"])
	assert.Equal(t, "670000", body["total"])
	assert.Equal(t, "-500000", body["totalReceivables"])

	bad := getJSON(t, srv.URL+"/api/reports/revenue?month=03-2024", nil)
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

type failingStore struct{}

func (failingStore) Load(context.Context) (*ledger.Snapshot, error) {
	return nil, errors.New("disk on fire")
}

func (failingStore) Close() error { return nil }

func TestStoreFailure(t *testing.T) {
	srv := newTestServer(t, failingStore{}, Options{})

	var body map[string]string
	resp := getJSON(t, srv.URL+"/api/invoices/INV-0324-HS001/notice", &body)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "ledger unavailable", body["error"])
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, fixtureStore(), Options{RateLimit: 0.001})

	first := getJSON(t, srv.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, first.StatusCode)

	second := getJSON(t, srv.URL+"/healthz", nil)
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
}
