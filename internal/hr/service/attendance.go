package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dayflow/dayflow-backend/internal/hr/events"
	"github.com/dayflow/dayflow-backend/internal/hr/repository"
	"github.com/dayflow/dayflow-backend/internal/hr/stats"
	"github.com/dayflow/dayflow-backend/pkg/errors"
	"github.com/dayflow/dayflow-backend/pkg/logger"
)

// ClockLayout is the stamp format written by check-in and check-out
const ClockLayout = "03:04 PM"

// AttendanceService handles check-in/check-out and attendance queries
type AttendanceService struct {
	repos     *repository.Repositories
	publisher *events.Publisher
	logger    *logger.Logger
	now       func() time.Time
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(repos *repository.Repositories, publisher *events.Publisher, log *logger.Logger) *AttendanceService {
	return &AttendanceService{
		repos:     repos,
		publisher: publisher,
		logger:    log.WithComponent("attendance-service"),
		now:       time.Now,
	}
}

// AttendanceView is a record with its derived status and hours
type AttendanceView struct {
	repository.AttendanceRecord
	DailyStatus repository.AttendanceStatus `json:"dailyStatus"`
	HoursWorked string                      `json:"hoursWorked"`
}

// View derives the display fields of rec
func View(rec repository.AttendanceRecord) AttendanceView {
	return AttendanceView{
		AttendanceRecord: rec,
		DailyStatus:      stats.DailyStatus(rec),
		HoursWorked:      stats.HoursWorked(rec.CheckIn, rec.CheckOut),
	}
}

func views(records []repository.AttendanceRecord) []AttendanceView {
	out := make([]AttendanceView, 0, len(records))
	for _, rec := range records {
		out = append(out, View(rec))
	}
	return out
}

func (s *AttendanceService) today() (time.Time, string) {
	now := s.now()
	return now, now.Format(repository.DateLayout)
}

// CheckIn stamps today's check-in for employeeID
func (s *AttendanceService) CheckIn(ctx context.Context, employeeID string) (*AttendanceView, error) {
	now, date := s.today()
	var rec repository.AttendanceRecord

	err := s.repos.Store.Atomic(ctx, func(ctx context.Context) error {
		existing, err := s.repos.Attendance.Get(ctx, repository.AttendanceKey(employeeID, date))
		switch {
		case err == nil:
			if existing.CheckIn != nil {
				return errors.BadRequest("You have already checked in today!")
			}
			rec = existing
		case errors.Is(err, errors.ErrNotFound):
			rec = repository.AttendanceRecord{
				ID:         fmt.Sprintf("ATT-%d", now.UnixMilli()),
				EmployeeID: employeeID,
				Date:       date,
			}
		default:
			return err
		}

		stamp := now.Format(ClockLayout)
		rec.CheckIn = &stamp
		return s.repos.Attendance.Upsert(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithEmployee(employeeID).Info().Str("date", date).Msg("checked in")
	s.publisher.CheckedIn(ctx, &rec)
	v := View(rec)
	return &v, nil
}

// CheckOut stamps today's check-out. A check-in is required first.
func (s *AttendanceService) CheckOut(ctx context.Context, employeeID string) (*AttendanceView, error) {
	now, date := s.today()
	var rec repository.AttendanceRecord

	err := s.repos.Store.Atomic(ctx, func(ctx context.Context) error {
		existing, err := s.repos.Attendance.Get(ctx, repository.AttendanceKey(employeeID, date))
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				return errors.BadRequest("Please check in first!")
			}
			return err
		}
		if existing.CheckIn == nil {
			return errors.BadRequest("Please check in first!")
		}
		if existing.CheckOut != nil {
			return errors.BadRequest("You have already checked out today!")
		}

		stamp := now.Format(ClockLayout)
		existing.CheckOut = &stamp
		rec = existing
		return s.repos.Attendance.Upsert(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithEmployee(employeeID).Info().Str("date", date).Msg("checked out")
	s.publisher.CheckedOut(ctx, &rec)
	v := View(rec)
	return &v, nil
}

// Today returns employeeID's record for today, or nil
func (s *AttendanceService) Today(ctx context.Context, employeeID string) *AttendanceView {
	_, date := s.today()
	rec, err := s.repos.Attendance.Get(ctx, repository.AttendanceKey(employeeID, date))
	if err != nil {
		return nil
	}
	v := View(rec)
	return &v
}

// ListForEmployee returns an employee's records, newest first
func (s *AttendanceService) ListForEmployee(ctx context.Context, employeeID string) []AttendanceView {
	records := s.repos.Attendance.Filter(ctx, func(a repository.AttendanceRecord) bool {
		return a.EmployeeID == employeeID
	})
	sort.SliceStable(records, func(i, j int) bool { return records[i].Date > records[j].Date })
	return views(records)
}

// ListForDate returns every record of date ordered by employee id
func (s *AttendanceService) ListForDate(ctx context.Context, date string) []AttendanceView {
	records := s.repos.Attendance.Filter(ctx, func(a repository.AttendanceRecord) bool {
		return a.Date == date
	})
	sort.SliceStable(records, func(i, j int) bool { return records[i].EmployeeID < records[j].EmployeeID })
	return views(records)
}

// Tally counts date's attendance across all employees. An empty date
// means today.
func (s *AttendanceService) Tally(ctx context.Context, date string) stats.Tally {
	if date == "" {
		_, date = s.today()
	}
	return stats.AttendanceTally(s.repos.Attendance.List(ctx), s.repos.Employees.List(ctx), date)
}

// Summary counts an employee's days by status
func (s *AttendanceService) Summary(ctx context.Context, employeeID string) stats.AttendanceSummary {
	return stats.SummarizeAttendance(s.repos.Attendance.List(ctx), employeeID)
}
