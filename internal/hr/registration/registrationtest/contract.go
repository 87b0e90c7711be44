// Package registrationtest holds the behaviour every registration.API
// backend must share.
package registrationtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayflow/dayflow-backend/internal/hr/registration"
	"github.com/dayflow/dayflow-backend/internal/hr/repository"
	"github.com/dayflow/dayflow-backend/pkg/errors"
)

// Factory returns a fresh backend seeded with repository.DefaultSeed.
type Factory func(t *testing.T) registration.API

func employeeSignup(email string) registration.SubmitRequest {
	return registration.SubmitRequest{
		Email:      email,
		Password:   "secret@123",
		Role:       repository.RoleEmployee,
		Department: "Engineering",
		Position:   "Engineer",
	}
}

func requireCode(t *testing.T, err error, target error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, target), "got %v", err)
}

// Run exercises api through the full registration lifecycle.
func Run(t *testing.T, newAPI Factory) {
	ctx := context.Background()

	t.Run("submit creates a pending registration", func(t *testing.T) {
		api := newAPI(t)

		reg, err := api.Submit(ctx, employeeSignup("new.hire@dayflow.com"))
		require.NoError(t, err)
		assert.Regexp(t, `^PENDING-\d+-[0-9a-f]{9}$`, reg.ID)
		assert.Equal(t, repository.RegistrationPending, reg.Status)
		assert.Equal(t, "new.hire", reg.Name)
		assert.Empty(t, reg.Password)

		pending, err := api.ListPending(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, reg.ID, pending[0].ID)
		assert.Empty(t, pending[0].Password)
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		api := newAPI(t)

		_, err := api.Submit(ctx, registration.SubmitRequest{Email: "x@dayflow.com"})
		requireCode(t, err, errors.ErrValidation)

		req := employeeSignup("x@dayflow.com")
		req.Department = ""
		_, err = api.Submit(ctx, req)
		requireCode(t, err, errors.ErrValidation)

		_, err = api.Submit(ctx, registration.SubmitRequest{Email: "boss@dayflow.com", Password: "pw", Role: repository.RoleAdmin})
		requireCode(t, err, errors.ErrValidation)
	})

	t.Run("duplicate email is rejected case-insensitively", func(t *testing.T) {
		api := newAPI(t)

		_, err := api.Submit(ctx, employeeSignup("a@x.com"))
		require.NoError(t, err)

		_, err = api.Submit(ctx, employeeSignup("A@x.com"))
		requireCode(t, err, errors.ErrValidation)

		_, err = api.Submit(ctx, employeeSignup("Aditya@Dayflow.com"))
		requireCode(t, err, errors.ErrValidation)
	})

	t.Run("duplicate employee id is rejected", func(t *testing.T) {
		api := newAPI(t)

		req := employeeSignup("dup@dayflow.com")
		req.EmployeeID = "EMP-001"
		_, err := api.Submit(ctx, req)
		requireCode(t, err, errors.ErrValidation)
	})

	t.Run("approve creates the account once", func(t *testing.T) {
		api := newAPI(t)

		req := employeeSignup("approve.me@dayflow.com")
		req.EmployeeID = "EMP-042"
		reg, err := api.Submit(ctx, req)
		require.NoError(t, err)

		user, err := api.Approve(ctx, reg.ID)
		require.NoError(t, err)
		assert.Equal(t, "EMP-042", user.ID)
		assert.Equal(t, "EMP-042", user.EmployeeID)
		assert.Equal(t, repository.RoleEmployee, user.Role)
		assert.Equal(t, "approved", user.Status)
		assert.NotNil(t, user.ApprovedDate)
		assert.Empty(t, user.Password)

		_, err = api.Approve(ctx, reg.ID)
		requireCode(t, err, errors.ErrAlreadyProcessed)

		err = api.Reject(ctx, reg.ID)
		requireCode(t, err, errors.ErrAlreadyProcessed)

		approved, err := api.ListApproved(ctx)
		require.NoError(t, err)
		assert.Len(t, approved, 1)

		found, err := api.FindApproved(ctx, "APPROVE.ME@dayflow.com")
		require.NoError(t, err)
		assert.Equal(t, "EMP-042", found.ID)

		pending, err := api.ListPending(ctx)
		require.NoError(t, err)
		assert.Empty(t, pending)

		// the address is now taken by an approved account
		_, err = api.Submit(ctx, employeeSignup("approve.me@dayflow.com"))
		requireCode(t, err, errors.ErrValidation)
	})

	t.Run("reject is terminal", func(t *testing.T) {
		api := newAPI(t)

		reg, err := api.Submit(ctx, registration.SubmitRequest{
			Email:            "owner@acme.com",
			Password:         "pw",
			Role:             repository.RoleAdmin,
			AdminCode:        "ADM-1",
			OrganizationName: "Acme",
		})
		require.NoError(t, err)

		require.NoError(t, api.Reject(ctx, reg.ID))

		_, err = api.Approve(ctx, reg.ID)
		requireCode(t, err, errors.ErrAlreadyProcessed)

		_, err = api.FindApproved(ctx, "owner@acme.com")
		requireCode(t, err, errors.ErrNotFound)

		approved, err := api.ListApproved(ctx)
		require.NoError(t, err)
		assert.Empty(t, approved)
	})

	t.Run("unknown ids are not found", func(t *testing.T) {
		api := newAPI(t)

		_, err := api.Approve(ctx, "PENDING-0-nope")
		requireCode(t, err, errors.ErrNotFound)

		err = api.Reject(ctx, "PENDING-0-nope")
		requireCode(t, err, errors.ErrNotFound)
	})
}
