package service

import (
	"testing"
	"time"

	"github.com/dayflow/dayflow-backend/internal/hr/credential"
	"github.com/dayflow/dayflow-backend/internal/hr/events"
	"github.com/dayflow/dayflow-backend/internal/hr/jwt"
	"github.com/dayflow/dayflow-backend/internal/hr/registration"
	"github.com/dayflow/dayflow-backend/internal/hr/repository"
	"github.com/dayflow/dayflow-backend/internal/hr/store"
	"github.com/dayflow/dayflow-backend/pkg/config"
	"github.com/dayflow/dayflow-backend/pkg/testutil"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	clock      *clock
	repos      *repository.Repositories
	publisher  *testutil.MockPublisher
	workflow   *registration.Workflow
	employees  *EmployeeService
	attendance *AttendanceService
	leave      *LeaveService
	payroll    *PayrollService
	auth       *AuthService
	reports    *ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := testutil.NewTestLogger()
	repos := repository.NewRepositories(store.NewMemoryStore(), repository.DefaultSeed(), 3, log)
	mock := testutil.NewMockPublisher()
	pub := events.NewPublisher(mock, log)
	hasher := credential.NewHasher(true)
	workflow := registration.NewWorkflow(repos, hasher, pub, log)
	jwtManager := jwt.NewManager(&config.JWTConfig{
		Secret:       "test-secret",
		AccessExpiry: time.Hour,
		Issuer:       "dayflow-test",
	})

	c := &clock{t: time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)}

	f := &fixture{
		clock:      c,
		repos:      repos,
		publisher:  mock,
		workflow:   workflow,
		employees:  NewEmployeeService(repos, pub, log),
		attendance: NewAttendanceService(repos, pub, log),
		leave:      NewLeaveService(repos, pub, log),
		payroll:    NewPayrollService(repos, pub, log),
		auth:       NewAuthService(repos, workflow, hasher, jwtManager, &config.AuthConfig{}, log),
		reports:    NewReportService(repos),
	}
	f.employees.now = c.now
	f.attendance.now = c.now
	f.leave.now = c.now
	f.payroll.now = c.now
	f.reports.now = c.now
	return f
}
