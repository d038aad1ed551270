/*
handlers.go - HTTP API handlers for the invoice engine

PURPOSE:
  Exposes invoice computation over REST. Handles HTTP request/response,
  JSON serialization, and delegates to billing.Engine.

ENDPOINTS:
  GET /healthz                                        Liveness
  GET /api/customers                                  List customers
  GET /api/customers/{id}                             Customer details
  GET /api/customers/{id}/invoices/{year}/{month}     Invoice as JSON
  GET /api/customers/{id}/invoices/{year}/{month}/report
                                                      Invoice as text report

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed year or month in the URL
  - 404: Unknown customer, no readings for the year
  - 422: Readings cannot support the requested month
  - 429: Rate limit exceeded (see middleware.go)
  - 500: Repository failures, including a missing input file

CONCURRENCY:
  Handlers share only the engine, which is stateless. Each request
  computes its invoice independently.

SEE ALSO:
  - dto.go: Response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/warp/meter-invoice/billing"
	"github.com/warp/meter-invoice/report"
	"go.uber.org/zap"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine *billing.Engine
	logger *zap.Logger
}

// NewHandler creates a handler computing invoices with engine.
func NewHandler(engine *billing.Engine, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Engine: engine, logger: logger}
}

// =============================================================================
// HEALTH
// =============================================================================

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// =============================================================================
// CUSTOMER HANDLERS
// =============================================================================

// ListCustomers returns all customers.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Engine.Customers(r.Context())
	if err != nil {
		h.writeBillingError(w, r, err)
		return
	}

	result := make([]CustomerDTO, 0, len(customers))
	for _, c := range customers {
		result = append(result, toCustomerDTO(c))
	}
	writeJSON(w, http.StatusOK, result)
}

// GetCustomer returns a single customer.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.Engine.Customer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeBillingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(c))
}

// =============================================================================
// INVOICE HANDLERS
// =============================================================================

// GetInvoice computes the invoice of a customer for one month.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.computeInvoice(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTO(inv))
}

// GetInvoiceReport renders the invoice as the plain-text report.
func (h *Handler) GetInvoiceReport(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.computeInvoice(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="`+report.FileName(inv.Customer.ID, inv.Period.Month)+`"`)
	w.WriteHeader(http.StatusOK)
	if err := report.Render(w, inv); err != nil {
		h.logger.Error("render report", zap.Error(err), zap.String("request_id", middleware.GetReqID(r.Context())))
	}
}

func (h *Handler) computeInvoice(w http.ResponseWriter, r *http.Request) (*billing.Invoice, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return nil, false
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return nil, false
	}
	period, err := billing.NewBillingPeriod(year, month)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid billing period", err)
		return nil, false
	}

	start := time.Now()
	inv, err := h.Engine.Invoice(r.Context(), chi.URLParam(r, "id"), period)
	observeComputation(err, time.Since(start))
	if err != nil {
		h.writeBillingError(w, r, err)
		return nil, false
	}
	return inv, true
}

// =============================================================================
// HELPERS
// =============================================================================

// writeBillingError maps billing error kinds to status codes. A missing
// input file is the operator's problem, not the client's.
func (h *Handler) writeBillingError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, billing.ErrFileNotFound):
		h.logger.Error("repository unavailable", zap.Error(err), zap.String("request_id", middleware.GetReqID(r.Context())))
		writeError(w, http.StatusInternalServerError, "Input data unavailable", nil)
	case billing.IsNotFound(err):
		writeErrorCode(w, http.StatusNotFound, err.Error(), errorCode(err))
	case billing.IsClientError(err):
		writeErrorCode(w, http.StatusUnprocessableEntity, err.Error(), errorCode(err))
	default:
		h.logger.Error("invoice failed", zap.Error(err), zap.String("request_id", middleware.GetReqID(r.Context())))
		writeError(w, http.StatusInternalServerError, "Internal error", nil)
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, billing.ErrCustomerNotFound):
		return "customer_not_found"
	case errors.Is(err, billing.ErrNoReadingsForYear):
		return "no_readings_for_year"
	case errors.Is(err, billing.ErrInsufficientHistory):
		return "insufficient_history"
	case errors.Is(err, billing.ErrMalformedSeries):
		return "malformed_series"
	case errors.Is(err, billing.ErrNoDataForMonth):
		return "no_data_for_month"
	case errors.Is(err, billing.ErrInvalidPeriod):
		return "invalid_period"
	default:
		return ""
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeErrorCode(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}
