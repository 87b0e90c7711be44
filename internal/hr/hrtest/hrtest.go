// Package hrtest wires a complete in-memory hr-service for handler and
// client tests.
package hrtest

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/dayflow/dayflow-backend/internal/hr/credential"
	"github.com/dayflow/dayflow-backend/internal/hr/events"
	"github.com/dayflow/dayflow-backend/internal/hr/feed"
	"github.com/dayflow/dayflow-backend/internal/hr/handler"
	"github.com/dayflow/dayflow-backend/internal/hr/jwt"
	"github.com/dayflow/dayflow-backend/internal/hr/registration"
	"github.com/dayflow/dayflow-backend/internal/hr/repository"
	"github.com/dayflow/dayflow-backend/internal/hr/service"
	"github.com/dayflow/dayflow-backend/internal/hr/store"
	"github.com/dayflow/dayflow-backend/pkg/config"
	"github.com/dayflow/dayflow-backend/pkg/httputil"
	"github.com/dayflow/dayflow-backend/pkg/testutil"
)

// Admin is the session used by AdminToken
var Admin = repository.Session{ID: service.AdminID, Email: "admin@dayflow.com", Name: "admin", Role: repository.RoleAdmin}

// Env is a running service over a fresh memory store seeded with
// repository.DefaultSeed
type Env struct {
	Repos     *repository.Repositories
	Publisher *testutil.MockPublisher
	Workflow  *registration.Workflow
	JWT       *jwt.Manager
	Router    http.Handler
}

// NewEnv builds an Env. The registration routes are served by api when
// non-nil and by the local workflow otherwise. An api that can sign users
// in also backs sign-in for accounts unknown locally.
func NewEnv(t *testing.T, api registration.API) *Env {
	t.Helper()

	log := testutil.NewTestLogger()
	repos := repository.NewRepositories(store.NewMemoryStore(), repository.DefaultSeed(), 3, log)
	mock := testutil.NewMockPublisher()
	pub := events.NewPublisher(mock, log)
	hasher := credential.NewHasher(false)
	workflow := registration.NewWorkflow(repos, hasher, pub, log)
	if api == nil {
		api = workflow
	}

	jwtManager := jwt.NewManager(&config.JWTConfig{
		Secret:       "hrtest-secret",
		AccessExpiry: time.Hour,
		Issuer:       "dayflow-hrtest",
	})

	employees := service.NewEmployeeService(repos, pub, log)
	attendance := service.NewAttendanceService(repos, pub, log)
	leave := service.NewLeaveService(repos, pub, log)
	payroll := service.NewPayrollService(repos, pub, log)
	auth := service.NewAuthService(repos, workflow, hasher, jwtManager, &config.AuthConfig{}, log)
	if remote, ok := api.(service.RemoteSignIn); ok {
		auth.WithRemote(remote)
	}
	reports := service.NewReportService(repos)
	dashboard := feed.NewPoller[service.Dashboard](reports.Dashboard, time.Hour, log)

	h := &handler.Handlers{
		Auth:          handler.NewAuthHandler(auth, jwtManager, log),
		Registrations: handler.NewRegistrationHandler(api, log),
		Employees:     handler.NewEmployeeHandler(employees, log),
		Attendance:    handler.NewAttendanceHandler(attendance, log),
		Leave:         handler.NewLeaveHandler(leave, log),
		Payroll:       handler.NewPayrollHandler(payroll, log),
		Reports:       handler.NewReportHandler(reports, dashboard, employees, attendance, payroll, log),
	}

	r := chi.NewRouter()
	r.Use(httputil.RequestID)
	r.Use(httputil.Recoverer(log))
	h.Mount(r)

	return &Env{
		Repos:     repos,
		Publisher: mock,
		Workflow:  workflow,
		JWT:       jwtManager,
		Router:    r,
	}
}

// Token signs a session token for user
func (e *Env) Token(t *testing.T, user repository.Session) string {
	t.Helper()
	token, err := e.JWT.Generate(user)
	require.NoError(t, err)
	return token.AccessToken
}

// AdminToken signs an admin session token
func (e *Env) AdminToken(t *testing.T) string {
	return e.Token(t, Admin)
}

// EmployeeToken signs a session token for a seeded employee
func (e *Env) EmployeeToken(t *testing.T, employeeID string) string {
	t.Helper()
	emp, err := e.Repos.Employees.Get(t.Context(), employeeID)
	require.NoError(t, err)
	return e.Token(t, repository.Session{
		ID:         emp.ID,
		Email:      emp.Email,
		Name:       emp.Name,
		Role:       repository.RoleEmployee,
		Department: emp.Department,
	})
}
