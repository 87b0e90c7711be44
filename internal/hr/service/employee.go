package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dayflow/dayflow-backend/internal/hr/events"
	"github.com/dayflow/dayflow-backend/internal/hr/export"
	"github.com/dayflow/dayflow-backend/internal/hr/repository"
	"github.com/dayflow/dayflow-backend/internal/hr/stats"
	"github.com/dayflow/dayflow-backend/pkg/errors"
	"github.com/dayflow/dayflow-backend/pkg/httputil"
	"github.com/dayflow/dayflow-backend/pkg/logger"
)

// maxPictureBytes bounds a base64 data URI of a 5MB image.
const maxPictureBytes = 5 * 1024 * 1024 * 4 / 3

// EmployeeService handles employee records
type EmployeeService struct {
	repos     *repository.Repositories
	publisher *events.Publisher
	logger    *logger.Logger
	now       func() time.Time
}

// NewEmployeeService creates a new employee service
func NewEmployeeService(repos *repository.Repositories, publisher *events.Publisher, log *logger.Logger) *EmployeeService {
	return &EmployeeService{
		repos:     repos,
		publisher: publisher,
		logger:    log.WithComponent("employee-service"),
		now:       time.Now,
	}
}

// CreateEmployeeRequest is the admin add-employee form
type CreateEmployeeRequest struct {
	ID         string `json:"id" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Department string `json:"department" validate:"required"`
	Position   string `json:"position" validate:"required"`
	Phone      string `json:"phone"`
	Salary     int    `json:"salary" validate:"gte=0"`
}

// UpdateEmployeeRequest is the admin full edit. ID may differ from the
// current id.
type UpdateEmployeeRequest struct {
	ID               string `json:"id" validate:"required"`
	Name             string `json:"name" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	Department       string `json:"department"`
	Position         string `json:"position"`
	Phone            string `json:"phone"`
	Salary           int    `json:"salary" validate:"gte=0"`
	JoinDate         string `json:"joinDate" validate:"omitempty,datetime=2006-01-02"`
	Address          string `json:"address"`
	EmergencyContact string `json:"emergencyContact"`
	EmergencyPhone   string `json:"emergencyPhone"`
	ProfilePicture   string `json:"profilePicture"`
}

// ProfileRequest is the employee self-service edit. Nil fields are kept.
type ProfileRequest struct {
	Phone          *string `json:"phone"`
	Address        *string `json:"address"`
	ProfilePicture *string `json:"profilePicture"`
}

// List returns the reconciled employees, optionally filtered by a search
// term matched against name, email and id.
func (s *EmployeeService) List(ctx context.Context, search string) []repository.Employee {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return s.repos.Employees.List(ctx)
	}
	return s.repos.Employees.Filter(ctx, func(e repository.Employee) bool {
		return strings.Contains(strings.ToLower(e.Name), search) ||
			strings.Contains(strings.ToLower(e.Email), search) ||
			strings.Contains(strings.ToLower(e.ID), search)
	})
}

// Get returns one employee
func (s *EmployeeService) Get(ctx context.Context, id string) (*repository.Employee, error) {
	emp, err := s.repos.Employees.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// Create adds an employee with a default salary and today's join date
func (s *EmployeeService) Create(ctx context.Context, req CreateEmployeeRequest) (*repository.Employee, error) {
	emp := repository.Employee{
		ID:         strings.TrimSpace(req.ID),
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.TrimSpace(req.Email),
		Department: req.Department,
		Position:   req.Position,
		Phone:      strings.TrimSpace(req.Phone),
		Salary:     req.Salary,
		JoinDate:   s.now().Format(repository.DateLayout),
	}
	if emp.Salary == 0 {
		emp.Salary = stats.DefaultAnnualSalary
	}

	err := s.repos.Store.Atomic(ctx, func(ctx context.Context) error {
		if err := s.checkUnique(ctx, emp, ""); err != nil {
			return err
		}
		return s.repos.Employees.Upsert(ctx, emp)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithEmployee(emp.ID).Info().Msg("employee created")
	s.publisher.EmployeeCreated(ctx, &emp)
	return &emp, nil
}

// Update applies an admin edit. When the id changes the old identity is
// retired and the linked approved account follows the new one.
func (s *EmployeeService) Update(ctx context.Context, id string, req UpdateEmployeeRequest, actor repository.Role) (*repository.Employee, error) {
	var updated repository.Employee

	err := s.repos.Store.Atomic(ctx, func(ctx context.Context) error {
		current, err := s.repos.Employees.Get(ctx, id)
		if err != nil {
			return err
		}

		updated = repository.Employee{
			ID:               strings.TrimSpace(req.ID),
			Name:             strings.TrimSpace(req.Name),
			Email:            strings.TrimSpace(req.Email),
			Department:       req.Department,
			Position:         req.Position,
			Phone:            strings.TrimSpace(req.Phone),
			Salary:           req.Salary,
			JoinDate:         req.JoinDate,
			Address:          req.Address,
			EmergencyContact: req.EmergencyContact,
			EmergencyPhone:   strings.TrimSpace(req.EmergencyPhone),
			ProfilePicture:   req.ProfilePicture,
		}
		if updated.JoinDate == "" {
			updated.JoinDate = current.JoinDate
		}
		if updated.ProfilePicture == "" {
			updated.ProfilePicture = current.ProfilePicture
		}
		if err := validatePicture(updated.ProfilePicture); err != nil {
			return err
		}

		if err := s.checkUnique(ctx, updated, id); err != nil {
			return err
		}
		if err := s.repos.Employees.Replace(ctx, id, updated); err != nil {
			return err
		}
		return s.syncApprovedUser(ctx, id, updated)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("employee_id", updated.ID).
		Str("previous_id", id).
		Msg("employee updated")
	s.publisher.EmployeeUpdated(ctx, &updated, id, actor)
	return &updated, nil
}

// syncApprovedUser copies identity fields of an edited employee onto the
// approved account linked to previousID.
func (s *EmployeeService) syncApprovedUser(ctx context.Context, previousID string, emp repository.Employee) error {
	user, ok := s.repos.ApprovedUsers.Find(ctx, func(u repository.ApprovedUser) bool {
		return u.ID == previousID || u.EmployeeID == previousID
	})
	if !ok {
		return nil
	}

	oldIdentity := s.repos.ApprovedUsers.Identity().Of(user)
	user.ID = emp.ID
	user.EmployeeID = emp.ID
	user.Email = emp.Email
	user.Name = emp.Name
	user.Department = emp.Department
	user.Position = emp.Position
	user.Phone = emp.Phone
	return s.repos.ApprovedUsers.Replace(ctx, oldIdentity, user)
}

// UpdateProfile applies a self-service edit limited to phone, address and
// profile picture.
func (s *EmployeeService) UpdateProfile(ctx context.Context, id string, req ProfileRequest) (*repository.Employee, error) {
	var updated repository.Employee

	err := s.repos.Store.Atomic(ctx, func(ctx context.Context) error {
		emp, err := s.repos.Employees.Get(ctx, id)
		if err != nil {
			return err
		}

		if req.Phone != nil {
			emp.Phone = strings.TrimSpace(*req.Phone)
		}
		if req.Address != nil {
			emp.Address = *req.Address
		}
		if req.ProfilePicture != nil {
			if err := validatePicture(*req.ProfilePicture); err != nil {
				return err
			}
			emp.ProfilePicture = *req.ProfilePicture
		}

		if err := s.checkUnique(ctx, emp, id); err != nil {
			return err
		}
		updated = emp
		return s.repos.Employees.Upsert(ctx, emp)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.EmployeeUpdated(ctx, &updated, id, repository.RoleEmployee)
	return &updated, nil
}

// Delete removes an employee and its approved account
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	err := s.repos.Store.Atomic(ctx, func(ctx context.Context) error {
		if err := s.repos.Employees.Delete(ctx, id); err != nil {
			return err
		}
		return s.repos.ApprovedUsers.Mutate(ctx, func(users []repository.ApprovedUser) ([]repository.ApprovedUser, error) {
			out := users[:0:0]
			for _, u := range users {
				if u.ID != id && u.EmployeeID != id {
					out = append(out, u)
				}
			}
			return out, nil
		})
	})
	if err != nil {
		return err
	}

	s.logger.WithEmployee(id).Info().Msg("employee deleted")
	s.publisher.EmployeeDeleted(ctx, id)
	return nil
}

// checkUnique rejects an id, email or phone taken by another employee, and
// an id or email claimed by a pending registration. self is the current id of the record being edited, "" on create.
func (s *EmployeeService) checkUnique(ctx context.Context, emp repository.Employee, self string) error {
	email := repository.NormalizeEmail(emp.Email)

	for _, other := range s.repos.Employees.List(ctx) {
		if self != "" && other.ID == self {
			continue
		}
		if other.ID == emp.ID {
			return errors.Invalid("Employee ID already exists")
		}
		if repository.NormalizeEmail(other.Email) == email {
			return errors.Invalid("Email already exists")
		}
		if emp.Phone != "" && other.Phone == emp.Phone {
			return errors.Invalid("Phone number already exists")
		}
		if emp.EmergencyPhone != "" && other.EmergencyPhone == emp.EmergencyPhone {
			return errors.Invalid("Emergency phone number already exists")
		}
	}

	for _, u := range s.repos.ApprovedUsers.List(ctx) {
		if self != "" && (u.ID == self || u.EmployeeID == self) {
			continue
		}
		if repository.NormalizeEmail(u.Email) == email {
			return errors.Invalid("Email already exists")
		}
	}

	for _, r := range s.repos.Registrations.List(ctx) {
		if r.Status != repository.RegistrationPending {
			continue
		}
		if emp.ID != self && r.EffectiveEmployeeID() == emp.ID {
			return errors.Invalid("Employee ID already exists")
		}
		if repository.NormalizeEmail(r.Email) == email {
			return errors.Invalid("Email already exists")
		}
	}
	return nil
}

func validatePicture(pic string) error {
	if pic == "" {
		return nil
	}
	if !strings.HasPrefix(pic, "data:image/") {
		return errors.Invalid("Please select an image file")
	}
	if len(pic) > maxPictureBytes {
		return errors.Invalid("Image size should be less than 5MB")
	}
	return nil
}

// ImportFailure is a roster line that was not imported
type ImportFailure struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ImportResult reports the outcome of a roster import
type ImportResult struct {
	Created []string        `json:"created"`
	Failed  []ImportFailure `json:"failed"`
}

// Import creates an employee per roster row. Rows fail independently.
func (s *EmployeeService) Import(ctx context.Context, rows []export.RosterRow) ImportResult {
	result := ImportResult{Created: []string{}, Failed: []ImportFailure{}}

	for _, row := range rows {
		if row.Err != "" {
			result.Failed = append(result.Failed, ImportFailure{Line: row.Line, Message: row.Err})
			continue
		}

		req := CreateEmployeeRequest{
			ID:         row.Employee.ID,
			Name:       row.Employee.Name,
			Email:      row.Employee.Email,
			Department: row.Employee.Department,
			Position:   row.Employee.Position,
			Phone:      row.Employee.Phone,
			Salary:     row.Employee.Salary,
		}
		if err := httputil.Validate(&req); err != nil {
			result.Failed = append(result.Failed, ImportFailure{Line: row.Line, Message: failureMessage(err)})
			continue
		}

		emp, err := s.Create(ctx, req)
		if err != nil {
			result.Failed = append(result.Failed, ImportFailure{Line: row.Line, Message: failureMessage(err)})
			continue
		}
		result.Created = append(result.Created, emp.ID)
	}

	s.logger.Info().
		Int("created", len(result.Created)).
		Int("failed", len(result.Failed)).
		Msg("roster imported")
	return result
}

func failureMessage(err error) string {
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		if len(appErr.Details) == 0 {
			return appErr.Message
		}
		fields := make([]string, 0, len(appErr.Details))
		for field, msg := range appErr.Details {
			fields = append(fields, field+": "+msg)
		}
		sort.Strings(fields)
		return strings.Join(fields, "; ")
	}
	return err.Error()
}
