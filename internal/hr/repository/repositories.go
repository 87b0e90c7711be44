package repository

import (
	"github.com/dayflow/dayflow-backend/internal/hr/store"
	"github.com/dayflow/dayflow-backend/pkg/logger"
)

// Repositories bundles the reconciled view of every HR collection.
type Repositories struct {
	Store         store.Store
	Seed          Seed
	Employees     *Repository[Employee]
	Attendance    *Repository[AttendanceRecord]
	Leave         *Repository[LeaveRequest]
	Payroll       *Repository[PayrollRecord]
	ApprovedUsers *Repository[ApprovedUser]
	Registrations *Repository[Registration]
}

// NewRepositories wires a repository per collection of s.
func NewRepositories(s store.Store, seed Seed, maxRetries int, log *logger.Logger) *Repositories {
	log = log.WithComponent("repository")

	employees := New("employee", s, seed.Employees,
		store.NewCollection(s, store.KeyEmployees, EmployeeIdentity, maxRetries, log)).
		WithTombstones(store.NewCollection(s, store.KeyEmployeesDeleted, TombstoneIdentity, maxRetries, log))

	return &Repositories{
		Store:     s,
		Seed:      seed,
		Employees: employees,
		Attendance: New("attendance record", s, seed.Attendance,
			store.NewCollection(s, store.KeyAttendance, AttendanceIdentity, maxRetries, log)),
		Leave: New("leave request", s, seed.Leave,
			store.NewCollection(s, store.KeyLeaveRequests, LeaveIdentity, maxRetries, log)),
		Payroll: New("payroll record", s, seed.Payroll,
			store.NewCollection(s, store.KeyPayroll, PayrollIdentity, maxRetries, log)),
		ApprovedUsers: New[ApprovedUser]("approved user", s, nil,
			store.NewCollection(s, store.KeyApprovedUsers, ApprovedUserIdentity, maxRetries, log)),
		Registrations: New[Registration]("registration", s, nil,
			store.NewCollection(s, store.KeyRegistrations, RegistrationIdentity, maxRetries, log)),
	}
}
