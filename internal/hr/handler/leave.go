package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dayflow/dayflow-backend/internal/hr/repository"
	"github.com/dayflow/dayflow-backend/internal/hr/service"
	"github.com/dayflow/dayflow-backend/pkg/errors"
	"github.com/dayflow/dayflow-backend/pkg/httputil"
	"github.com/dayflow/dayflow-backend/pkg/logger"
)

// LeaveHandler handles leave endpoints
type LeaveHandler struct {
	service *service.LeaveService
	logger  *logger.Logger
}

// NewLeaveHandler creates a new leave handler
func NewLeaveHandler(svc *service.LeaveService, log *logger.Logger) *LeaveHandler {
	return &LeaveHandler{
		service: svc,
		logger:  log,
	}
}

// List returns every request (admin, filtered by ?status=) or the
// caller's own requests
func (h *LeaveHandler) List(w http.ResponseWriter, r *http.Request) {
	var requests []repository.LeaveRequest
	if isAdmin(r) {
		requests = h.service.List(r.Context(), repository.LeaveStatus(r.URL.Query().Get("status")))
	} else {
		requests = h.service.ListForEmployee(r.Context(), httputil.GetUserID(r.Context()))
	}

	httputil.JSONWithMeta(w, http.StatusOK, requests, &httputil.Meta{Total: len(requests)})
}

// Apply files a leave request for the caller
func (h *LeaveHandler) Apply(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFrom(r.Context())
	if !ok {
		httputil.Error(w, errors.Unauthorized("not signed in"))
		return
	}

	var req service.ApplyLeaveRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	lr, err := h.service.Apply(r.Context(), session, req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, lr)
}

// Decide approves or rejects a pending request
func (h *LeaveHandler) Decide(w http.ResponseWriter, r *http.Request) {
	var req service.DecideLeaveRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, errors.BadRequest("Invalid action"))
		return
	}

	lr, err := h.service.Decide(r.Context(), chi.URLParam(r, "id"), req.Action == "approve", req.Remarks)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, lr)
}

// Counts tallies leave requests, all for admins and own otherwise
func (h *LeaveHandler) Counts(w http.ResponseWriter, r *http.Request) {
	employeeID := httputil.GetUserID(r.Context())
	if isAdmin(r) {
		employeeID = r.URL.Query().Get("employeeId")
	}

	httputil.JSON(w, http.StatusOK, h.service.Counts(r.Context(), employeeID))
}
