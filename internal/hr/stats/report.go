package stats

import (
	"math"

	"github.com/dayflow/dayflow-backend/internal/hr/repository"
)

// ReportSummary is the headline block of the admin reports page.
type ReportSummary struct {
	Date              string  `json:"date"`
	AttendanceRate    float64 `json:"attendanceRate"`
	AverageSalary     float64 `json:"averageSalary"`
	LeaveApprovalRate float64 `json:"leaveApprovalRate"`
	TotalLeavesTaken  int     `json:"totalLeavesTaken"`
}

// Summarize computes the report for date. Rates are percentages with one
// decimal; empty inputs give zero rather than NaN.
func Summarize(employees []repository.Employee, attendance []repository.AttendanceRecord, leave []repository.LeaveRequest, date string) ReportSummary {
	tally := AttendanceTally(attendance, employees, date)
	counts := CountLeave(leave)

	total := 0
	for _, e := range employees {
		total += e.Salary
	}

	return ReportSummary{
		Date:              date,
		AttendanceRate:    percent(tally.Present, tally.Total),
		AverageSalary:     math.Round(ratio(float64(total), float64(len(employees)))),
		LeaveApprovalRate: percent(counts.Approved, counts.Total),
		TotalLeavesTaken:  counts.Approved,
	}
}

func ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func percent(part, whole int) float64 {
	return math.Round(ratio(float64(part), float64(whole))*1000) / 10
}
