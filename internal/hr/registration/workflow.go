package registration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dayflow/dayflow-backend/internal/hr/credential"
	"github.com/dayflow/dayflow-backend/internal/hr/events"
	"github.com/dayflow/dayflow-backend/internal/hr/repository"
	"github.com/dayflow/dayflow-backend/internal/hr/stats"
	"github.com/dayflow/dayflow-backend/pkg/errors"
	"github.com/dayflow/dayflow-backend/pkg/httputil"
	"github.com/dayflow/dayflow-backend/pkg/logger"
)

// Workflow runs the registration state machine over the record store
type Workflow struct {
	repos  *repository.Repositories
	hasher *credential.Hasher
	events *events.Publisher
	logger *logger.Logger
	now    func() time.Time
}

var _ API = (*Workflow)(nil)

// NewWorkflow creates a store-backed workflow
func NewWorkflow(repos *repository.Repositories, hasher *credential.Hasher, pub *events.Publisher, log *logger.Logger) *Workflow {
	return &Workflow{
		repos:  repos,
		hasher: hasher,
		events: pub,
		logger: log.WithComponent("registration"),
		now:    time.Now,
	}
}

// NewID returns a registration id: PENDING-<unix ms>-<9 random chars>
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("PENDING-%d-%s", now.UnixMilli(), suffix)
}

// Submit implements API
func (w *Workflow) Submit(ctx context.Context, req SubmitRequest) (*repository.Registration, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.EmployeeID = strings.TrimSpace(req.EmployeeID)
	req.Phone = strings.TrimSpace(req.Phone)
	if err := httputil.Validate(&req); err != nil {
		return nil, err
	}

	password, err := w.hasher.Hash(req.Password)
	if err != nil {
		return nil, errors.Internal("failed to store credential")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = repository.NameFromEmail(req.Email)
	}

	now := w.now().UTC()
	reg := repository.Registration{
		ID:               NewID(now),
		EmployeeID:       req.EmployeeID,
		Email:            req.Email,
		Name:             name,
		Password:         password,
		Role:             req.Role,
		Status:           repository.RegistrationPending,
		RegistrationDate: now,
		Department:       req.Department,
		Position:         req.Position,
		Phone:            req.Phone,
		AdminCode:        req.AdminCode,
		OrganizationName: req.OrganizationName,
		Permissions:      req.Permissions,
	}

	err = w.repos.Store.Atomic(ctx, func(ctx context.Context) error {
		if err := w.checkEmployees(ctx, reg); err != nil {
			return err
		}
		return w.repos.Registrations.Mutate(ctx, func(records []repository.Registration) ([]repository.Registration, error) {
			if err := checkRegistrations(records, reg); err != nil {
				return nil, err
			}
			return append(records, reg), nil
		})
	})
	if err != nil {
		return nil, err
	}

	w.logger.Info().
		Str("registration_id", reg.ID).
		Str("role", string(reg.Role)).
		Msg("registration submitted")
	w.events.RegistrationSubmitted(ctx, &reg)

	out := reg.Public()
	return &out, nil
}

// checkEmployees rejects identities already taken by employees or approved
// accounts.
func (w *Workflow) checkEmployees(ctx context.Context, reg repository.Registration) error {
	email := repository.NormalizeEmail(reg.Email)

	for _, e := range w.repos.Employees.List(ctx) {
		if repository.NormalizeEmail(e.Email) == email {
			return errors.Invalid("Email already registered")
		}
		if reg.EmployeeID != "" && e.ID == reg.EmployeeID {
			return errors.Invalid("Employee ID already exists")
		}
		if reg.Phone != "" && e.Phone == reg.Phone {
			return errors.Invalid("Phone number already registered")
		}
	}

	for _, u := range w.repos.ApprovedUsers.List(ctx) {
		if repository.NormalizeEmail(u.Email) == email {
			return errors.Invalid("Email already registered")
		}
		if reg.EmployeeID != "" && (u.ID == reg.EmployeeID || u.EmployeeID == reg.EmployeeID) {
			return errors.Invalid("Employee ID already exists")
		}
	}
	return nil
}

// checkRegistrations rejects identities already taken by another
// registration, whatever its status.
func checkRegistrations(records []repository.Registration, reg repository.Registration) error {
	email := repository.NormalizeEmail(reg.Email)
	for _, r := range records {
		if repository.NormalizeEmail(r.Email) == email {
			return errors.Invalid("Email already registered")
		}
		if reg.EmployeeID != "" && r.EffectiveEmployeeID() == reg.EmployeeID {
			return errors.Invalid("Employee ID already exists")
		}
		if reg.Phone != "" && r.Phone == reg.Phone && r.Status != repository.RegistrationRejected {
			return errors.Invalid("Phone number already registered")
		}
	}
	return nil
}

// Approve implements API. Uniqueness is checked again against the current
// employees and approved accounts; a clash leaves the registration pending.
// The login entry and employee record are written before the status flip,
// all in one store transaction, so a failure leaves the registration
// pending and a retry upserts instead of duplicating.
func (w *Workflow) Approve(ctx context.Context, id string) (*repository.ApprovedUser, error) {
	var (
		approved repository.ApprovedUser
		decided  repository.Registration
	)

	err := w.repos.Store.Atomic(ctx, func(ctx context.Context) error {
		reg, err := w.pending(ctx, id)
		if err != nil {
			return err
		}

		// Employees may have been added since the registration was submitted
		claimed := reg
		claimed.EmployeeID = reg.EffectiveEmployeeID()
		if err := w.checkEmployees(ctx, claimed); err != nil {
			return err
		}

		now := w.now().UTC()
		approved = approvedUser(reg, now)
		if err := w.repos.ApprovedUsers.Upsert(ctx, approved); err != nil {
			return err
		}

		if reg.Role == repository.RoleEmployee {
			if err := w.repos.Employees.Upsert(ctx, employeeFrom(reg, now)); err != nil {
				return err
			}
		}

		decided, err = w.decide(ctx, id, func(r *repository.Registration) {
			r.Status = repository.RegistrationApproved
			r.ApprovedDate = &now
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	w.logger.Info().
		Str("registration_id", id).
		Str("employee_id", approved.EmployeeID).
		Msg("registration approved")
	w.events.RegistrationDecided(ctx, &decided)

	out := approved.Public()
	return &out, nil
}

// Reject implements API
func (w *Workflow) Reject(ctx context.Context, id string) error {
	if _, err := w.pending(ctx, id); err != nil {
		return err
	}

	now := w.now().UTC()
	decided, err := w.decide(ctx, id, func(r *repository.Registration) {
		r.Status = repository.RegistrationRejected
		r.RejectedDate = &now
	})
	if err != nil {
		return err
	}

	w.logger.Info().Str("registration_id", id).Msg("registration rejected")
	w.events.RegistrationDecided(ctx, &decided)
	return nil
}

func (w *Workflow) pending(ctx context.Context, id string) (repository.Registration, error) {
	reg, err := w.repos.Registrations.Get(ctx, id)
	if err != nil {
		return reg, err
	}
	if reg.Status != repository.RegistrationPending {
		return reg, errors.AlreadyProcessed("registration", string(reg.Status))
	}
	return reg, nil
}

// decide applies fn to the pending registration id in place. The status is
// checked again against the stored record so concurrent decisions cannot
// both win.
func (w *Workflow) decide(ctx context.Context, id string, fn func(*repository.Registration)) (repository.Registration, error) {
	var decided repository.Registration
	err := w.repos.Registrations.Mutate(ctx, func(records []repository.Registration) ([]repository.Registration, error) {
		for i := range records {
			if records[i].ID != id {
				continue
			}
			if records[i].Status != repository.RegistrationPending {
				return nil, errors.AlreadyProcessed("registration", string(records[i].Status))
			}
			fn(&records[i])
			decided = records[i]
			return records, nil
		}
		return nil, errors.NotFound("registration")
	})
	return decided, err
}

func approvedUser(reg repository.Registration, now time.Time) repository.ApprovedUser {
	id := reg.EffectiveEmployeeID()
	return repository.ApprovedUser{
		ID:               id,
		EmployeeID:       id,
		Email:            reg.Email,
		Name:             reg.Name,
		Password:         reg.Password,
		Role:             reg.Role,
		Status:           string(repository.RegistrationApproved),
		ApprovedDate:     &now,
		Department:       reg.Department,
		Position:         reg.Position,
		Phone:            reg.Phone,
		AdminCode:        reg.AdminCode,
		OrganizationName: reg.OrganizationName,
		Permissions:      reg.Permissions,
	}
}

func employeeFrom(reg repository.Registration, now time.Time) repository.Employee {
	return repository.Employee{
		ID:         reg.EffectiveEmployeeID(),
		Name:       reg.Name,
		Email:      reg.Email,
		Department: reg.Department,
		Position:   reg.Position,
		Phone:      reg.Phone,
		Salary:     stats.DefaultAnnualSalary,
		JoinDate:   now.Format(repository.DateLayout),
	}
}

// ListPending implements API
func (w *Workflow) ListPending(ctx context.Context) ([]repository.Registration, error) {
	pending := w.repos.Registrations.Filter(ctx, func(r repository.Registration) bool {
		return r.Status == repository.RegistrationPending
	})
	out := make([]repository.Registration, 0, len(pending))
	for _, r := range pending {
		out = append(out, r.Public())
	}
	return out, nil
}

// FindApproved implements API
func (w *Workflow) FindApproved(ctx context.Context, email string) (*repository.ApprovedUser, error) {
	u, err := w.Credential(ctx, email)
	if err != nil {
		return nil, err
	}
	out := u.Public()
	return &out, nil
}

// Credential returns the approved account for email including its stored
// credential. Used by sign-in; never sent to clients.
func (w *Workflow) Credential(ctx context.Context, email string) (repository.ApprovedUser, error) {
	email = repository.NormalizeEmail(email)
	u, ok := w.repos.ApprovedUsers.Find(ctx, func(u repository.ApprovedUser) bool {
		return repository.NormalizeEmail(u.Email) == email
	})
	if !ok {
		return u, errors.NotFound("user")
	}
	return u, nil
}

// ListApproved implements API
func (w *Workflow) ListApproved(ctx context.Context) ([]repository.ApprovedUser, error) {
	users := w.repos.ApprovedUsers.List(ctx)
	out := make([]repository.ApprovedUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

// PendingByEmail reports whether email has a registration awaiting a decision
func (w *Workflow) PendingByEmail(ctx context.Context, email string) bool {
	email = repository.NormalizeEmail(email)
	_, ok := w.repos.Registrations.Find(ctx, func(r repository.Registration) bool {
		return r.Status == repository.RegistrationPending && repository.NormalizeEmail(r.Email) == email
	})
	return ok
}
