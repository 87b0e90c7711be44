package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayflow/dayflow-backend/internal/hr/repository"
	"github.com/dayflow/dayflow-backend/pkg/testutil"
)

type span struct {
	in, out *string
}

func TestHoursWorked(t *testing.T) {
	s := testutil.PtrString

	testutil.RunTestCases(t, []testutil.TestCase[span, string]{
		{Name: "full day", Input: span{s("09:00 AM"), s("05:30 PM")}, Expected: "8h 30m"},
		{Name: "zero span", Input: span{s("09:00 AM"), s("09:00 AM")}, Expected: "0h"},
		{Name: "missing check-in", Input: span{nil, s("05:00 PM")}, Expected: "-"},
		{Name: "missing check-out", Input: span{s("09:00 AM"), nil}, Expected: "-"},
		{Name: "check-out before check-in", Input: span{s("10:00 AM"), s("09:00 AM")}, Expected: "-"},
		{Name: "minutes only", Input: span{s("09:00 AM"), s("09:45 AM")}, Expected: "45m"},
		{Name: "hours only", Input: span{s("09:00 AM"), s("01:00 PM")}, Expected: "4h"},
		{Name: "24 hour stamps", Input: span{s("9:15"), s("17:45")}, Expected: "8h 30m"},
		{Name: "mixed formats", Input: span{s("09:00 AM"), s("18:00")}, Expected: "9h"},
		{Name: "midnight and noon", Input: span{s("12:00 AM"), s("12:00 PM")}, Expected: "12h"},
		{Name: "garbage", Input: span{s("soon"), s("05:00 PM")}, Expected: "-"},
		{Name: "bad period", Input: span{s("09:00 XM"), s("05:00 PM")}, Expected: "-"},
		{Name: "hour without minutes", Input: span{s("9"), s("17:00")}, Expected: "-"},
		{Name: "single minute digit", Input: span{s("09:5"), s("17:00")}, Expected: "-"},
		{Name: "signed hour", Input: span{s("+9:00"), s("17:00")}, Expected: "-"},
		{Name: "minutes out of range", Input: span{s("09:60 AM"), s("05:00 PM")}, Expected: "-"},
	}, func(in span) (string, error) {
		return HoursWorked(in.in, in.out), nil
	})
}

func TestDailyStatus(t *testing.T) {
	s := testutil.PtrString

	assert.Equal(t, repository.StatusAbsent, DailyStatus(repository.AttendanceRecord{Status: repository.StatusAbsent, CheckIn: s("09:00 AM")}))
	assert.Equal(t, repository.StatusPresent, DailyStatus(repository.AttendanceRecord{CheckIn: s("09:00 AM"), CheckOut: s("05:00 PM")}))
	assert.Equal(t, repository.StatusCheckedIn, DailyStatus(repository.AttendanceRecord{CheckIn: s("09:00 AM")}))
	assert.Equal(t, repository.StatusNotMarked, DailyStatus(repository.AttendanceRecord{}))
}

func threeEmployees() []repository.Employee {
	return []repository.Employee{
		{ID: "E1", Department: "Engineering", Salary: 600000},
		{ID: "E2", Department: "Engineering", Salary: 480000},
		{ID: "E3", Department: "Design", Salary: 360000},
	}
}

func TestAttendanceTally(t *testing.T) {
	const day = "2026-01-05"
	employees := threeEmployees()

	t.Run("present, checked in, no record", func(t *testing.T) {
		records := []repository.AttendanceRecord{
			{EmployeeID: "E1", Date: day, Status: repository.StatusPresent},
			{EmployeeID: "E2", Date: day, CheckIn: testutil.PtrString("09:00 AM")},
		}
		got := AttendanceTally(records, employees, day)
		assert.Equal(t, Tally{Date: day, Total: 3, Present: 1, CheckedIn: 1, NotMarked: 1}, got)
	})

	t.Run("first marked status wins on duplicates", func(t *testing.T) {
		records := []repository.AttendanceRecord{
			{EmployeeID: "E1", Date: day},
			{EmployeeID: "E1", Date: day, Status: repository.StatusHalfDay},
			{EmployeeID: "E1", Date: day, Status: repository.StatusAbsent},
		}
		got := AttendanceTally(records, employees, day)
		assert.Equal(t, 1, got.HalfDay)
		assert.Equal(t, 0, got.Absent)
		assert.Equal(t, 2, got.NotMarked)
	})

	t.Run("other days and unknown employees are ignored", func(t *testing.T) {
		records := []repository.AttendanceRecord{
			{EmployeeID: "E1", Date: "2026-01-04", Status: repository.StatusPresent},
			{EmployeeID: "GHOST", Date: day, Status: repository.StatusPresent},
			{EmployeeID: "E3", Date: day, Status: repository.StatusLeave},
		}
		got := AttendanceTally(records, employees, day)
		assert.Equal(t, Tally{Date: day, Total: 3, OnLeave: 1, NotMarked: 2}, got)
	})
}

func TestSummarizeAttendance(t *testing.T) {
	records := []repository.AttendanceRecord{
		{EmployeeID: "E1", Date: "2026-01-01", Status: repository.StatusPresent},
		{EmployeeID: "E1", Date: "2026-01-02", Status: repository.StatusAbsent},
		{EmployeeID: "E1", Date: "2026-01-03", CheckIn: testutil.PtrString("9:00"), CheckOut: testutil.PtrString("17:00")},
		{EmployeeID: "E2", Date: "2026-01-01", Status: repository.StatusPresent},
	}
	assert.Equal(t, AttendanceSummary{EmployeeID: "E1", Present: 2, Absent: 1, Total: 3}, SummarizeAttendance(records, "E1"))
}

func TestMonthlyPayroll(t *testing.T) {
	now := time.Date(2026, time.January, 20, 10, 0, 0, 0, time.UTC)
	emp := repository.Employee{ID: "EMP-001", Salary: 600000}

	t.Run("new record", func(t *testing.T) {
		rec := MonthlyPayroll(emp, nil, now)
		assert.Equal(t, 50000.0, rec.BaseSalary)
		assert.Equal(t, 50000.0, rec.NetSalary)
		assert.Zero(t, rec.Bonus)
		assert.Zero(t, rec.Deductions)
		assert.Equal(t, "January 2026", rec.Month)
		assert.Equal(t, "EMP-001", rec.EmployeeID)
		assert.Contains(t, rec.ID, "PAY-EMP-001-")
	})

	t.Run("existing record keeps adjustments", func(t *testing.T) {
		existing := &repository.PayrollRecord{ID: "PAY-1", EmployeeID: "EMP-001", Month: "January 2026", BaseSalary: 40000, Bonus: 2000, Deductions: 1500, NetSalary: 40500}
		rec := MonthlyPayroll(emp, existing, now)
		assert.Equal(t, "PAY-1", rec.ID)
		assert.Equal(t, 50000.0, rec.BaseSalary)
		assert.Equal(t, 50500.0, rec.NetSalary)
		assert.Equal(t, 40000.0, existing.BaseSalary, "input is not mutated")
	})
}

func TestDepartmentPayroll(t *testing.T) {
	payroll := []repository.PayrollRecord{
		{EmployeeID: "E1", Month: "January 2026", NetSalary: 50000},
		{EmployeeID: "E2", Month: "January 2026", NetSalary: 40001},
		{EmployeeID: "E3", Month: "January 2026", NetSalary: 30000},
		{EmployeeID: "E1", Month: "December 2025", NetSalary: 99999},
	}
	got := DepartmentPayroll(threeEmployees(), payroll, "January 2026")
	require.Len(t, got, 2)
	assert.Equal(t, DepartmentTotal{Department: "Design", Employees: 1, TotalNet: 30000, AverageNet: 30000}, got[0])
	assert.Equal(t, DepartmentTotal{Department: "Engineering", Employees: 2, TotalNet: 90001, AverageNet: 45000.5}, got[1])
}

func TestLeave(t *testing.T) {
	requests := []repository.LeaveRequest{
		{ID: "1", Type: repository.LeaveSick, Status: repository.LeaveApproved, StartDate: "2026-01-05", EndDate: "2026-01-06"},
		{ID: "2", Type: repository.LeavePaid, Status: repository.LeavePending, StartDate: "2026-01-05", EndDate: "2026-01-05"},
		{ID: "3", Type: repository.LeavePaid, Status: repository.LeaveRejected, StartDate: "2026-01-05", EndDate: "2026-01-05"},
	}

	c := CountLeave(requests)
	assert.Equal(t, 3, c.Total)
	assert.Equal(t, 1, c.Pending)
	assert.Equal(t, 1, c.Approved)
	assert.Equal(t, 1, c.Rejected)
	assert.Equal(t, 2, c.ByType[repository.LeavePaid])

	on := OnLeave(requests, "2026-01-06")
	require.Len(t, on, 1)
	assert.Equal(t, "1", on[0].ID)
	assert.Empty(t, OnLeave(requests, "2026-01-07"))
}

func TestSummarize(t *testing.T) {
	const day = "2026-01-05"
	attendance := []repository.AttendanceRecord{
		{EmployeeID: "E1", Date: day, Status: repository.StatusPresent},
		{EmployeeID: "E2", Date: day, Status: repository.StatusAbsent},
	}
	leave := []repository.LeaveRequest{
		{Status: repository.LeaveApproved},
		{Status: repository.LeaveApproved},
		{Status: repository.LeavePending},
	}

	got := Summarize(threeEmployees(), attendance, leave, day)
	assert.Equal(t, 33.3, got.AttendanceRate)
	assert.Equal(t, 480000.0, got.AverageSalary)
	assert.Equal(t, 66.7, got.LeaveApprovalRate)
	assert.Equal(t, 2, got.TotalLeavesTaken)

	empty := Summarize(nil, nil, nil, day)
	assert.Zero(t, empty.AttendanceRate)
	assert.Zero(t, empty.LeaveApprovalRate)
}
