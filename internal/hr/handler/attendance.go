package handler

import (
	"net/http"

	"github.com/dayflow/dayflow-backend/internal/hr/service"
	"github.com/dayflow/dayflow-backend/pkg/errors"
	"github.com/dayflow/dayflow-backend/pkg/httputil"
	"github.com/dayflow/dayflow-backend/pkg/logger"
)

// AttendanceHandler handles attendance endpoints
type AttendanceHandler struct {
	service *service.AttendanceService
	logger  *logger.Logger
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(svc *service.AttendanceService, log *logger.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service: svc,
		logger:  log,
	}
}

// CheckIn stamps the caller's check-in for today
func (h *AttendanceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.CheckIn(r.Context(), httputil.GetUserID(r.Context()))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, rec)
}

// CheckOut stamps the caller's check-out for today
func (h *AttendanceHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.CheckOut(r.Context(), httputil.GetUserID(r.Context()))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, rec)
}

// Today returns the caller's record for today, or null
func (h *AttendanceHandler) Today(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, h.service.Today(r.Context(), httputil.GetUserID(r.Context())))
}

// List returns ?date= records (admin) or one employee's history. Without
// parameters the caller's own history is returned.
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if date := query.Get("date"); date != "" {
		if !isAdmin(r) {
			httputil.Error(w, errors.Forbidden("admin access required"))
			return
		}
		records := h.service.ListForDate(r.Context(), date)
		httputil.JSONWithMeta(w, http.StatusOK, records, &httputil.Meta{Total: len(records)})
		return
	}

	employeeID := query.Get("employeeId")
	if employeeID == "" {
		employeeID = httputil.GetUserID(r.Context())
	}
	if !selfOrAdmin(r, employeeID) {
		httputil.Error(w, errors.Forbidden("cannot view another employee"))
		return
	}

	records := h.service.ListForEmployee(r.Context(), employeeID)
	httputil.JSONWithMeta(w, http.StatusOK, records, &httputil.Meta{Total: len(records)})
}

// Summary counts the caller's (or ?employeeId=) days by status
func (h *AttendanceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employeeId")
	if employeeID == "" {
		employeeID = httputil.GetUserID(r.Context())
	}
	if !selfOrAdmin(r, employeeID) {
		httputil.Error(w, errors.Forbidden("cannot view another employee"))
		return
	}

	httputil.JSON(w, http.StatusOK, h.service.Summary(r.Context(), employeeID))
}

// Tally counts ?date= attendance across all employees
func (h *AttendanceHandler) Tally(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, h.service.Tally(r.Context(), r.URL.Query().Get("date")))
}
