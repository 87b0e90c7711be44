package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dayflow/dayflow-backend/internal/hr/registration"
	"github.com/dayflow/dayflow-backend/pkg/errors"
	"github.com/dayflow/dayflow-backend/pkg/httputil"
	"github.com/dayflow/dayflow-backend/pkg/logger"
)

// RegistrationHandler exposes the registration workflow. The workflow may be
// local or a client of another hr-service.
type RegistrationHandler struct {
	api    registration.API
	logger *logger.Logger
}

// NewRegistrationHandler creates a new registration handler
func NewRegistrationHandler(api registration.API, log *logger.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		api:    api,
		logger: log,
	}
}

// ListPending lists registrations awaiting a decision
func (h *RegistrationHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.api.ListPending(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, pending, &httputil.Meta{Total: len(pending)})
}

// Submit stores a new pending registration
func (h *RegistrationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req registration.SubmitRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	reg, err := h.api.Submit(r.Context(), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, reg)
}

// Decide approves or rejects a pending registration
func (h *RegistrationHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req registration.DecideRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, errors.BadRequest("Invalid action"))
		return
	}

	switch req.Action {
	case registration.ActionApprove:
		user, err := h.api.Approve(r.Context(), id)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, user)
	default:
		if err := h.api.Reject(r.Context(), id); err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.Message(w, http.StatusOK, registration.RejectedMessage)
	}
}

// ApprovedUsers lists approved accounts, or looks one up by ?email=
func (h *RegistrationHandler) ApprovedUsers(w http.ResponseWriter, r *http.Request) {
	if email := r.URL.Query().Get("email"); email != "" {
		user, err := h.api.FindApproved(r.Context(), email)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, user)
		return
	}

	users, err := h.api.ListApproved(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, users, &httputil.Meta{Total: len(users)})
}
