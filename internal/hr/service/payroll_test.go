package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayflow/dayflow-backend/internal/hr/repository"
	"github.com/dayflow/dayflow-backend/pkg/errors"
	"github.com/dayflow/dayflow-backend/pkg/messaging"
)

func TestPayrollService_ForEmployeeSyncsCurrentMonth(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	got, err := f.payroll.ForEmployee(ctx, "EMP-001")
	require.NoError(t, err)
	assert.Equal(t, "March 2026", got.Current.Month)
	assert.Equal(t, 50000.0, got.Current.BaseSalary)
	assert.Equal(t, 50000.0, got.Current.NetSalary)

	require.Len(t, got.History, 2)
	assert.Equal(t, "March 2026", got.History[0].Month)
	assert.Equal(t, "December 2025", got.History[1].Month)

	again, err := f.payroll.ForEmployee(ctx, "EMP-001")
	require.NoError(t, err)
	assert.Equal(t, got.Current.ID, again.Current.ID)
	assert.Len(t, again.History, 2)

	_, err = f.payroll.ForEmployee(ctx, "EMP-404")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestPayrollService_Adjust(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	records, err := f.payroll.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, records, 3)

	rec, err := f.payroll.Adjust(ctx, records[0].ID, AdjustPayrollRequest{Bonus: 1000, Deductions: 500})
	require.NoError(t, err)
	assert.Equal(t, 50500.0, rec.NetSalary)
	f.publisher.AssertEventPublished(t, messaging.EventPayrollAdjusted)

	// a later sync keeps the adjustment
	current, err := f.payroll.ForEmployee(ctx, records[0].EmployeeID)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, current.Current.Bonus)
	assert.Equal(t, 50500.0, current.Current.NetSalary)

	_, err = f.payroll.Adjust(ctx, "PAY-SEED-1", AdjustPayrollRequest{Bonus: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))

	_, err = f.payroll.Adjust(ctx, records[0].ID, AdjustPayrollRequest{Bonus: -1})
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestPayrollService_PastMonthIsNotSynced(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	records, err := f.payroll.List(ctx, "December 2025")
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Empty(t, f.repos.Payroll.Filter(ctx, func(p repository.PayrollRecord) bool { return p.Month == "March 2026" }))

	departments, err := f.payroll.Departments(ctx, "December 2025")
	require.NoError(t, err)
	require.Len(t, departments, 3)
	assert.Equal(t, "Design", departments[0].Department)
	assert.Equal(t, 43500.0, departments[0].TotalNet)
}
