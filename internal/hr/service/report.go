package service

import (
	"context"
	"time"

	"github.com/dayflow/dayflow-backend/internal/hr/repository"
	"github.com/dayflow/dayflow-backend/internal/hr/stats"
)

// Dashboard is the admin landing snapshot
type Dashboard struct {
	Date            string                    `json:"date"`
	TotalEmployees  int                       `json:"totalEmployees"`
	PresentToday    int                       `json:"presentToday"`
	PendingLeaves   int                       `json:"pendingLeaves"`
	OnLeaveToday    int                       `json:"onLeaveToday"`
	Attendance      stats.Tally               `json:"attendance"`
	Leave           stats.LeaveCounts         `json:"leave"`
	RecentLeave     []repository.LeaveRequest `json:"recentLeave"`
	PendingAccounts int                       `json:"pendingAccounts"`
	GeneratedAt     time.Time                 `json:"generatedAt"`
}

// ReportService computes dashboard and report figures
type ReportService struct {
	repos *repository.Repositories
	now   func() time.Time
}

// NewReportService creates a new report service
func NewReportService(repos *repository.Repositories) *ReportService {
	return &ReportService{repos: repos, now: time.Now}
}

// Dashboard computes today's snapshot
func (s *ReportService) Dashboard(ctx context.Context) Dashboard {
	now := s.now()
	date := now.Format(repository.DateLayout)

	employees := s.repos.Employees.List(ctx)
	leave := s.repos.Leave.List(ctx)
	tally := stats.AttendanceTally(s.repos.Attendance.List(ctx), employees, date)
	counts := stats.CountLeave(leave)

	pendingAccounts := len(s.repos.Registrations.Filter(ctx, func(r repository.Registration) bool {
		return r.Status == repository.RegistrationPending
	}))

	recent := make([]repository.LeaveRequest, 0, 5)
	for i := len(leave) - 1; i >= 0 && len(recent) < 5; i-- {
		recent = append(recent, leave[i])
	}

	return Dashboard{
		Date:            date,
		TotalEmployees:  len(employees),
		PresentToday:    tally.Present,
		PendingLeaves:   counts.Pending,
		OnLeaveToday:    len(stats.OnLeave(leave, date)),
		Attendance:      tally,
		Leave:           counts,
		RecentLeave:     recent,
		PendingAccounts: pendingAccounts,
		GeneratedAt:     now,
	}
}

// Summary computes the report headline for date, today when empty
func (s *ReportService) Summary(ctx context.Context, date string) stats.ReportSummary {
	if date == "" {
		date = s.now().Format(repository.DateLayout)
	}
	return stats.Summarize(
		s.repos.Employees.List(ctx),
		s.repos.Attendance.List(ctx),
		s.repos.Leave.List(ctx),
		date,
	)
}
