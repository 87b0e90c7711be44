// Package registration implements the account registration workflow:
// a registration is submitted pending and decided once by an admin.
package registration

import (
	"context"

	"github.com/dayflow/dayflow-backend/internal/hr/repository"
)

// API is the registration workflow independent of where it persists.
// Workflow runs it against a record store; client.RegistrationClient runs
// it against a remote hr-service.
type API interface {
	// Submit stores a new pending registration.
	Submit(ctx context.Context, req SubmitRequest) (*repository.Registration, error)
	// Approve moves a pending registration to approved and creates the
	// login entry, plus an employee record for the employee role.
	Approve(ctx context.Context, id string) (*repository.ApprovedUser, error)
	// Reject moves a pending registration to rejected.
	Reject(ctx context.Context, id string) error
	// ListPending returns the registrations awaiting a decision.
	ListPending(ctx context.Context) ([]repository.Registration, error)
	// FindApproved looks up an approved account by email.
	FindApproved(ctx context.Context, email string) (*repository.ApprovedUser, error)
	// ListApproved returns every approved account.
	ListApproved(ctx context.Context) ([]repository.ApprovedUser, error)
}

// SubmitRequest is the signup form
type SubmitRequest struct {
	EmployeeID       string          `json:"employeeId,omitempty"`
	Email            string          `json:"email" validate:"required,email"`
	Password         string          `json:"password" validate:"required"`
	Name             string          `json:"name,omitempty"`
	Role             repository.Role `json:"role" validate:"required,oneof=employee admin"`
	Department       string          `json:"department,omitempty" validate:"required_if=Role employee"`
	Position         string          `json:"position,omitempty" validate:"required_if=Role employee"`
	Phone            string          `json:"phone,omitempty"`
	AdminCode        string          `json:"adminCode,omitempty" validate:"required_if=Role admin"`
	OrganizationName string          `json:"organizationName,omitempty" validate:"required_if=Role admin"`
	Permissions      []string        `json:"permissions,omitempty"`
}

// Action is the decision posted to PATCH /api/registrations/{id}
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// DecideRequest is the body of PATCH /api/registrations/{id}
type DecideRequest struct {
	Action Action `json:"action" validate:"required,oneof=approve reject"`
}

// RejectedMessage is returned to the caller after a rejection
const RejectedMessage = "Registration rejected"
