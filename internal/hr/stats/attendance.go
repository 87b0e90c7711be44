package stats

import (
	"github.com/dayflow/dayflow-backend/internal/hr/repository"
)

// DailyStatus returns the recorded status, or derives one from the
// check-in/check-out stamps.
func DailyStatus(rec repository.AttendanceRecord) repository.AttendanceStatus {
	if rec.Status != "" {
		return rec.Status
	}
	switch {
	case rec.CheckIn != nil && rec.CheckOut != nil:
		return repository.StatusPresent
	case rec.CheckIn != nil:
		return repository.StatusCheckedIn
	default:
		return repository.StatusNotMarked
	}
}

// Tally counts a day's attendance across the employee universe.
type Tally struct {
	Date      string `json:"date"`
	Total     int    `json:"total"`
	Present   int    `json:"present"`
	Absent    int    `json:"absent"`
	HalfDay   int    `json:"halfDay"`
	NotMarked int    `json:"notMarked"`
	CheckedIn int    `json:"checkedIn"`
	OnLeave   int    `json:"onLeave"`
}

// AttendanceTally buckets one status per employee for date. When an
// employee has several records that day the first status other than
// not-marked wins. NotMarked counts employees without any record.
// Records of employees outside the universe are ignored.
func AttendanceTally(records []repository.AttendanceRecord, employees []repository.Employee, date string) Tally {
	universe := make(map[string]struct{}, len(employees))
	for _, e := range employees {
		universe[e.ID] = struct{}{}
	}

	statuses := make(map[string]repository.AttendanceStatus)
	for _, rec := range records {
		if rec.Date != date {
			continue
		}
		if _, ok := universe[rec.EmployeeID]; !ok {
			continue
		}
		current, seen := statuses[rec.EmployeeID]
		if seen && current != repository.StatusNotMarked {
			continue
		}
		statuses[rec.EmployeeID] = DailyStatus(rec)
	}

	t := Tally{
		Date:      date,
		Total:     len(universe),
		NotMarked: len(universe) - len(statuses),
	}
	for _, status := range statuses {
		switch status {
		case repository.StatusPresent:
			t.Present++
		case repository.StatusAbsent:
			t.Absent++
		case repository.StatusHalfDay:
			t.HalfDay++
		case repository.StatusCheckedIn:
			t.CheckedIn++
		case repository.StatusLeave:
			t.OnLeave++
		}
	}
	return t
}

// AttendanceSummary counts an employee's days by status.
type AttendanceSummary struct {
	EmployeeID string `json:"employeeId"`
	Present    int    `json:"present"`
	Absent     int    `json:"absent"`
	HalfDay    int    `json:"halfDay"`
	Leave      int    `json:"leave"`
	Total      int    `json:"total"`
}

// SummarizeAttendance counts the days of one employee.
func SummarizeAttendance(records []repository.AttendanceRecord, employeeID string) AttendanceSummary {
	s := AttendanceSummary{EmployeeID: employeeID}
	for _, rec := range records {
		if rec.EmployeeID != employeeID {
			continue
		}
		s.Total++
		switch DailyStatus(rec) {
		case repository.StatusPresent:
			s.Present++
		case repository.StatusAbsent:
			s.Absent++
		case repository.StatusHalfDay:
			s.HalfDay++
		case repository.StatusLeave:
			s.Leave++
		}
	}
	return s
}
