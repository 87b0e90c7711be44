package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dayflow/dayflow-backend/internal/hr/service"
	"github.com/dayflow/dayflow-backend/pkg/httputil"
	"github.com/dayflow/dayflow-backend/pkg/logger"
)

// PayrollHandler handles payroll endpoints
type PayrollHandler struct {
	service *service.PayrollService
	logger  *logger.Logger
}

// NewPayrollHandler creates a new payroll handler
func NewPayrollHandler(svc *service.PayrollService, log *logger.Logger) *PayrollHandler {
	return &PayrollHandler{
		service: svc,
		logger:  log,
	}
}

// List returns ?month= records, the current month by default
func (h *PayrollHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, records, &httputil.Meta{Total: len(records)})
}

// Departments aggregates ?month= payroll per department
func (h *PayrollHandler) Departments(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.Departments(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, totals)
}

// Me returns the caller's current month and history
func (h *PayrollHandler) Me(w http.ResponseWriter, r *http.Request) {
	payroll, err := h.service.ForEmployee(r.Context(), httputil.GetUserID(r.Context()))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, payroll)
}

// Adjust sets bonus and deductions on a current-month record
func (h *PayrollHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req service.AdjustPayrollRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	rec, err := h.service.Adjust(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, rec)
}
