/*
handlers_test.go - HTTP tests for the invoice API

Tests for:
- Customer listing and lookup
- Invoice JSON and text report
- Error to status mapping
- Rate limiting and metrics endpoint
*/
package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/meter-invoice/api"
	"github.com/warp/meter-invoice/billing"
	"github.com/warp/meter-invoice/billing/store"
	csvstore "github.com/warp/meter-invoice/store/csv"
	"go.uber.org/zap"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func reading(id string, year int, month time.Month, day int, value int64) billing.MeterReading {
	return billing.MeterReading{Date: billing.NewDate(year, month, day), CustomerID: id, Value: decimal.NewFromInt(value)}
}

func newTestServer(t *testing.T, opts api.RouterOptions) *httptest.Server {
	repo := store.NewMemory()
	repo.AddCustomer(billing.Customer{
		ID: "12345", Name: "Muster", Street: "Teststrasse 0", Postcode: "12345", City: "Teststadt",
		BaseTariff: decimal.NewFromInt(140), EnergyTariff: decimal.RequireFromString("24.8"),
	})
	repo.AddReadings(
		reading("12345", 2021, time.February, 8, 250),
		reading("12345", 2021, time.March, 2, 250),
		reading("12345", 2021, time.March, 30, 100),
		reading("12345", 2021, time.April, 27, 150),
	)

	h := api.NewHandler(billing.NewEngine(repo), zap.NewNop())
	srv := httptest.NewServer(api.NewRouter(h, opts))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

// =============================================================================
// CUSTOMERS
// =============================================================================

func TestListCustomers(t *testing.T) {
	srv := newTestServer(t, api.RouterOptions{})

	resp, body := get(t, srv, "/api/customers")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var customers []api.CustomerDTO
	require.NoError(t, json.Unmarshal(body, &customers))
	require.Len(t, customers, 1)
	assert.Equal(t, "Muster", customers[0].Name)
	assert.Equal(t, "24.8", customers[0].EnergyTariff)
}

func TestGetCustomer_NotFound(t *testing.T) {
	srv := newTestServer(t, api.RouterOptions{})

	resp, body := get(t, srv, "/api/customers/999")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var errResp api.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "customer_not_found", errResp.Code)
	assert.Equal(t, "customer with id 999 not found", errResp.Error)
}

// =============================================================================
// INVOICES
// =============================================================================

func TestGetInvoice(t *testing.T) {
	// GIVEN: A customer with readings around March 2021
	// WHEN: Requesting the March invoice
	// THEN: Prices match the day-weighted allocation

	srv := newTestServer(t, api.RouterOptions{})

	resp, body := get(t, srv, "/api/customers/12345/invoices/2021/3")

	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var inv api.InvoiceDTO
	require.NoError(t, json.Unmarshal(body, &inv))
	assert.Equal(t, "2021-03", inv.Period)
	assert.Equal(t, "01.03.2021 bis 31.03.2021", inv.Range)
	assert.Equal(t, 31, inv.Days)
	assert.Equal(t, "115", inv.Consumption)
	assert.Equal(t, "11.90", inv.BasePrice)
	assert.Equal(t, "28.52", inv.EnergyPrice)
	assert.Equal(t, "40.42", inv.TotalPrice)
	require.Len(t, inv.Shares, 2)
	assert.Equal(t, "interior", inv.Shares[1].Kind)
}

func TestGetInvoiceReport(t *testing.T) {
	srv := newTestServer(t, api.RouterOptions{})

	resp, body := get(t, srv, "/api/customers/12345/invoices/2021/3/report")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "report_12345_3.txt")
	assert.Contains(t, string(body), "Arbeitspreis  115 kWh x 24.8 ct/kWh = 28.52 €")
	assert.Contains(t, string(body), "Summe        40.42 €")
}

func TestGetInvoice_ErrorStatus(t *testing.T) {
	srv := newTestServer(t, api.RouterOptions{})

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/api/customers/12345/invoices/abc/3", http.StatusBadRequest, ""},
		{"/api/customers/12345/invoices/2021/x", http.StatusBadRequest, ""},
		{"/api/customers/12345/invoices/2021/13", http.StatusBadRequest, ""},
		{"/api/customers/999/invoices/2021/3", http.StatusNotFound, "customer_not_found"},
		{"/api/customers/12345/invoices/2019/3", http.StatusNotFound, "no_readings_for_year"},
		{"/api/customers/12345/invoices/2021/4", http.StatusUnprocessableEntity, "insufficient_history"},
		{"/api/customers/12345/invoices/2021/2", http.StatusUnprocessableEntity, "insufficient_history"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, srv, tt.path)

			assert.Equal(t, tt.status, resp.StatusCode, string(body))
			var errResp api.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &errResp))
			assert.Equal(t, tt.code, errResp.Code)
		})
	}
}

func TestGetInvoice_MissingInputFile_ServerError(t *testing.T) {
	repo := csvstore.New("does-not-exist.csv", "does-not-exist.csv")
	h := api.NewHandler(billing.NewEngine(repo), zap.NewNop())
	srv := httptest.NewServer(api.NewRouter(h, api.RouterOptions{}))
	defer srv.Close()

	resp, body := get(t, srv, "/api/customers/12345/invoices/2021/3")

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, string(body), "does-not-exist.csv", "paths are not leaked to clients")
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func TestRateLimit(t *testing.T) {
	// GIVEN: A limit of 1 request per second (burst 2)
	// WHEN: Sending several requests at once
	// THEN: Requests beyond the burst get 429

	srv := newTestServer(t, api.RouterOptions{RateLimitPerSecond: 1})

	statuses := map[int]int{}
	for i := 0; i < 5; i++ {
		resp, _ := get(t, srv, "/healthz")
		statuses[resp.StatusCode]++
	}

	assert.Equal(t, 2, statuses[http.StatusOK])
	assert.Equal(t, 3, statuses[http.StatusTooManyRequests])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, api.RouterOptions{})
	get(t, srv, "/api/customers/12345/invoices/2021/3")

	resp, body := get(t, srv, "/metrics")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "invoice_computations_total")
	assert.Contains(t, string(body), `route="/api/customers/{id}/invoices/{year}/{month}"`)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, api.RouterOptions{})

	resp, body := get(t, srv, "/healthz")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "healthy")
}
