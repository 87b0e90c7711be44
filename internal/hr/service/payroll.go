package service

import (
	"context"
	"sort"
	"time"

	"github.com/dayflow/dayflow-backend/internal/hr/events"
	"github.com/dayflow/dayflow-backend/internal/hr/repository"
	"github.com/dayflow/dayflow-backend/internal/hr/stats"
	"github.com/dayflow/dayflow-backend/pkg/errors"
	"github.com/dayflow/dayflow-backend/pkg/logger"
)

// PayrollService keeps monthly payroll records in step with salaries
type PayrollService struct {
	repos     *repository.Repositories
	publisher *events.Publisher
	logger    *logger.Logger
	now       func() time.Time
}

// NewPayrollService creates a new payroll service
func NewPayrollService(repos *repository.Repositories, publisher *events.Publisher, log *logger.Logger) *PayrollService {
	return &PayrollService{
		repos:     repos,
		publisher: publisher,
		logger:    log.WithComponent("payroll-service"),
		now:       time.Now,
	}
}

// AdjustPayrollRequest sets the current month's bonus and deductions
type AdjustPayrollRequest struct {
	Bonus      float64 `json:"bonus" validate:"gte=0"`
	Deductions float64 `json:"deductions" validate:"gte=0"`
}

// EmployeePayroll is an employee's current month plus history
type EmployeePayroll struct {
	Current repository.PayrollRecord   `json:"current"`
	History []repository.PayrollRecord `json:"history"`
}

// ForEmployee syncs the current month for one employee and returns it with
// the employee's history, newest month first.
func (s *PayrollService) ForEmployee(ctx context.Context, employeeID string) (*EmployeePayroll, error) {
	emp, err := s.repos.Employees.Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	var current repository.PayrollRecord
	err = s.repos.Store.Atomic(ctx, func(ctx context.Context) error {
		synced, err := s.sync(ctx, emp)
		current = synced
		return err
	})
	if err != nil {
		return nil, err
	}

	history := s.repos.Payroll.Filter(ctx, func(p repository.PayrollRecord) bool {
		return p.EmployeeID == employeeID
	})
	sortByMonth(history)
	return &EmployeePayroll{Current: current, History: history}, nil
}

// List returns every record of month. The current month is synced for all
// employees first; an empty month means the current one.
func (s *PayrollService) List(ctx context.Context, month string) ([]repository.PayrollRecord, error) {
	current := stats.MonthLabel(s.now())
	if month == "" {
		month = current
	}

	if month == current {
		err := s.repos.Store.Atomic(ctx, func(ctx context.Context) error {
			for _, emp := range s.repos.Employees.List(ctx) {
				if _, err := s.sync(ctx, emp); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	records := s.repos.Payroll.Filter(ctx, func(p repository.PayrollRecord) bool {
		return p.Month == month
	})
	sort.SliceStable(records, func(i, j int) bool { return records[i].EmployeeID < records[j].EmployeeID })
	return records, nil
}

// Departments aggregates month's payroll per department
func (s *PayrollService) Departments(ctx context.Context, month string) ([]stats.DepartmentTotal, error) {
	if month == "" {
		month = stats.MonthLabel(s.now())
	}
	records, err := s.List(ctx, month)
	if err != nil {
		return nil, err
	}
	return stats.DepartmentPayroll(s.repos.Employees.List(ctx), records, month), nil
}

// Adjust sets bonus and deductions on a current-month record and
// recomputes its net salary.
func (s *PayrollService) Adjust(ctx context.Context, id string, req AdjustPayrollRequest) (*repository.PayrollRecord, error) {
	if req.Bonus < 0 || req.Deductions < 0 {
		return nil, errors.Invalid("Bonus and deductions must not be negative")
	}

	var rec repository.PayrollRecord
	err := s.repos.Store.Atomic(ctx, func(ctx context.Context) error {
		var err error
		rec, err = s.repos.Payroll.Get(ctx, id)
		if err != nil {
			return err
		}
		if rec.Month != stats.MonthLabel(s.now()) {
			return errors.BadRequest("Only the current month's payroll can be adjusted")
		}

		rec.Bonus = req.Bonus
		rec.Deductions = req.Deductions
		rec.NetSalary = stats.NetSalary(rec.BaseSalary, rec.Bonus, rec.Deductions)
		return s.repos.Payroll.Upsert(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("payroll_id", rec.ID).
		Float64("bonus", rec.Bonus).
		Float64("deductions", rec.Deductions).
		Msg("payroll adjusted")
	s.publisher.PayrollAdjusted(ctx, &rec)
	return &rec, nil
}

// sync writes emp's current-month record when it is missing or its base
// salary is stale.
func (s *PayrollService) sync(ctx context.Context, emp repository.Employee) (repository.PayrollRecord, error) {
	now := s.now()
	month := stats.MonthLabel(now)

	var existing *repository.PayrollRecord
	if rec, ok := s.repos.Payroll.Find(ctx, func(p repository.PayrollRecord) bool {
		return p.EmployeeID == emp.ID && p.Month == month
	}); ok {
		existing = &rec
	}

	rec := stats.MonthlyPayroll(emp, existing, now)
	if existing != nil && *existing == rec {
		return rec, nil
	}
	return rec, s.repos.Payroll.Upsert(ctx, rec)
}

func sortByMonth(records []repository.PayrollRecord) {
	month := func(p repository.PayrollRecord) time.Time {
		t, _ := time.Parse("January 2006", p.Month)
		return t
	}
	sort.SliceStable(records, func(i, j int) bool { return month(records[i]).After(month(records[j])) })
}
