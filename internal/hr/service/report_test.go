package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportService_Dashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.attendance.CheckIn(ctx, "EMP-001")
	require.NoError(t, err)
	f.clock.advance(9 * time.Hour)
	_, err = f.attendance.CheckOut(ctx, "EMP-001")
	require.NoError(t, err)

	d := f.reports.Dashboard(ctx)
	assert.Equal(t, "2026-03-02", d.Date)
	assert.Equal(t, 3, d.TotalEmployees)
	assert.Equal(t, 1, d.PresentToday)
	assert.Equal(t, 1, d.PendingLeaves)
	assert.Equal(t, 0, d.OnLeaveToday)
	assert.Equal(t, 2, d.Attendance.NotMarked)
	assert.Len(t, d.RecentLeave, 2)
}

func TestReportService_Summary(t *testing.T) {
	f := newFixture(t)

	s := f.reports.Summary(context.Background(), "2026-01-05")
	assert.Equal(t, 33.3, s.AttendanceRate)
	assert.Equal(t, 620000.0, s.AverageSalary)
	assert.Equal(t, 50.0, s.LeaveApprovalRate)
	assert.Equal(t, 1, s.TotalLeavesTaken)
}
