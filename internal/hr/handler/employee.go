package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dayflow/dayflow-backend/internal/hr/export"
	"github.com/dayflow/dayflow-backend/internal/hr/repository"
	"github.com/dayflow/dayflow-backend/internal/hr/service"
	"github.com/dayflow/dayflow-backend/pkg/errors"
	"github.com/dayflow/dayflow-backend/pkg/httputil"
	"github.com/dayflow/dayflow-backend/pkg/logger"
)

// maxRosterUpload bounds an uploaded roster file
const maxRosterUpload = 10 << 20

// EmployeeHandler handles employee endpoints
type EmployeeHandler struct {
	service *service.EmployeeService
	logger  *logger.Logger
}

// NewEmployeeHandler creates a new employee handler
func NewEmployeeHandler(svc *service.EmployeeService, log *logger.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		service: svc,
		logger:  log,
	}
}

// List lists employees, filtered by ?search=
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	employees := h.service.List(r.Context(), r.URL.Query().Get("search"))
	httputil.JSONWithMeta(w, http.StatusOK, employees, &httputil.Meta{Total: len(employees)})
}

// Get gets an employee by ID. Employees may only read their own record.
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "me" {
		id = httputil.GetUserID(r.Context())
	}
	if !selfOrAdmin(r, id) {
		httputil.Error(w, errors.Forbidden("cannot view another employee"))
		return
	}

	emp, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, emp)
}

// Create creates a new employee
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateEmployeeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	emp, err := h.service.Create(r.Context(), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, emp)
}

// Update applies an admin edit
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req service.UpdateEmployeeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	emp, err := h.service.Update(r.Context(), id, req, repository.Role(httputil.GetUserRole(r.Context())))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, emp)
}

// UpdateProfile applies a self-service edit
func (h *EmployeeHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "me" {
		id = httputil.GetUserID(r.Context())
	}
	if !selfOrAdmin(r, id) {
		httputil.Error(w, errors.Forbidden("cannot edit another employee"))
		return
	}

	var req service.ProfileRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	emp, err := h.service.UpdateProfile(r.Context(), id, req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, emp)
}

// Delete deletes an employee
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// Import creates employees from an uploaded .xlsx or .xls roster in the
// "file" form field
func (h *EmployeeHandler) Import(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxRosterUpload); err != nil {
		httputil.Error(w, errors.BadRequest("invalid upload"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.Error(w, errors.BadRequest("file is required"))
		return
	}
	defer file.Close()

	rows, err := export.ReadRows(file, header.Filename)
	if err != nil {
		h.logger.Debug().Err(err).Str("filename", header.Filename).Msg("unreadable roster")
		httputil.Error(w, errors.BadRequest(err.Error()))
		return
	}

	roster, err := export.ParseRoster(rows)
	if err != nil {
		httputil.Error(w, errors.BadRequest(err.Error()))
		return
	}

	httputil.JSON(w, http.StatusOK, h.service.Import(r.Context(), roster))
}
