package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dayflow/dayflow-backend/internal/hr/events"
	"github.com/dayflow/dayflow-backend/internal/hr/repository"
	"github.com/dayflow/dayflow-backend/internal/hr/stats"
	"github.com/dayflow/dayflow-backend/pkg/errors"
	"github.com/dayflow/dayflow-backend/pkg/logger"
)

// Default remarks when an admin decides without a comment
const (
	DefaultApprovedRemarks = "Approved by admin"
	DefaultRejectedRemarks = "Rejected by admin"
)

// LeaveService handles leave requests
type LeaveService struct {
	repos     *repository.Repositories
	publisher *events.Publisher
	logger    *logger.Logger
	now       func() time.Time
}

// NewLeaveService creates a new leave service
func NewLeaveService(repos *repository.Repositories, publisher *events.Publisher, log *logger.Logger) *LeaveService {
	return &LeaveService{
		repos:     repos,
		publisher: publisher,
		logger:    log.WithComponent("leave-service"),
		now:       time.Now,
	}
}

// ApplyLeaveRequest is the employee leave form
type ApplyLeaveRequest struct {
	Type      repository.LeaveType `json:"type" validate:"required,oneof=paid sick unpaid"`
	StartDate string               `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string               `json:"endDate" validate:"required,datetime=2006-01-02"`
	Reason    string               `json:"reason" validate:"required"`
}

// DecideLeaveRequest is the admin decision
type DecideLeaveRequest struct {
	Action  string `json:"action" validate:"required,oneof=approve reject"`
	Remarks string `json:"remarks"`
}

// newLeaveID returns LR-<unix ms>-<6 random chars>. Requests from several
// employees can land in the same millisecond.
func newLeaveID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("LR-%d-%s", now.UnixMilli(), suffix)
}

// Apply files a pending request for the signed-in user
func (s *LeaveService) Apply(ctx context.Context, user repository.Session, req ApplyLeaveRequest) (*repository.LeaveRequest, error) {
	if req.EndDate < req.StartDate {
		return nil, errors.Invalid("End date must be on or after start date")
	}

	now := s.now()
	lr := repository.LeaveRequest{
		ID:           newLeaveID(now),
		EmployeeID:   user.ID,
		EmployeeName: user.Name,
		Type:         req.Type,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Reason:       strings.TrimSpace(req.Reason),
		Status:       repository.LeavePending,
		AppliedDate:  now.Format(repository.DateLayout),
	}

	if err := s.repos.Leave.Upsert(ctx, lr); err != nil {
		return nil, err
	}

	s.logger.WithEmployee(lr.EmployeeID).Info().Str("leave_id", lr.ID).Msg("leave applied")
	s.publisher.LeaveApplied(ctx, &lr)
	return &lr, nil
}

// Decide approves or rejects a pending request. Decided requests are
// terminal.
func (s *LeaveService) Decide(ctx context.Context, id string, approve bool, remarks string) (*repository.LeaveRequest, error) {
	var lr repository.LeaveRequest

	err := s.repos.Store.Atomic(ctx, func(ctx context.Context) error {
		var err error
		lr, err = s.repos.Leave.Get(ctx, id)
		if err != nil {
			return err
		}
		if lr.Status != repository.LeavePending {
			return errors.AlreadyProcessed("leave request", string(lr.Status))
		}

		remarks = strings.TrimSpace(remarks)
		if approve {
			lr.Status = repository.LeaveApproved
			if remarks == "" {
				remarks = DefaultApprovedRemarks
			}
		} else {
			lr.Status = repository.LeaveRejected
			if remarks == "" {
				remarks = DefaultRejectedRemarks
			}
		}
		lr.Remarks = remarks
		return s.repos.Leave.Upsert(ctx, lr)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("leave_id", id).Str("status", string(lr.Status)).Msg("leave decided")
	s.publisher.LeaveDecided(ctx, &lr)
	return &lr, nil
}

// List returns every request, optionally filtered by status, newest
// application first.
func (s *LeaveService) List(ctx context.Context, status repository.LeaveStatus) []repository.LeaveRequest {
	return s.sorted(s.repos.Leave.Filter(ctx, func(l repository.LeaveRequest) bool {
		return status == "" || l.Status == status
	}))
}

// ListForEmployee returns one employee's requests, newest first
func (s *LeaveService) ListForEmployee(ctx context.Context, employeeID string) []repository.LeaveRequest {
	return s.sorted(s.repos.Leave.Filter(ctx, func(l repository.LeaveRequest) bool {
		return l.EmployeeID == employeeID
	}))
}

// Counts tallies requests, optionally for one employee
func (s *LeaveService) Counts(ctx context.Context, employeeID string) stats.LeaveCounts {
	if employeeID == "" {
		return stats.CountLeave(s.repos.Leave.List(ctx))
	}
	return stats.CountLeave(s.ListForEmployee(ctx, employeeID))
}

func (s *LeaveService) sorted(requests []repository.LeaveRequest) []repository.LeaveRequest {
	sort.SliceStable(requests, func(i, j int) bool { return requests[i].AppliedDate > requests[j].AppliedDate })
	return requests
}
