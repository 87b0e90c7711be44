package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dayflow/dayflow-backend/internal/hr/repository"
)

// DefaultAnnualSalary is assigned to employees created without a salary.
const DefaultAnnualSalary = 50000

// MonthLabel renders the payroll month of t, e.g. "January 2026".
func MonthLabel(t time.Time) string {
	return t.Format("January 2006")
}

// NetSalary is base plus bonus minus deductions.
func NetSalary(base, bonus, deductions float64) float64 {
	return base + bonus - deductions
}

// MonthlyPayroll computes the current month's record for emp. An existing
// record keeps its id, bonus and deductions; base and net are recomputed
// from the current annual salary.
func MonthlyPayroll(emp repository.Employee, existing *repository.PayrollRecord, now time.Time) repository.PayrollRecord {
	base := float64(emp.Salary) / 12

	if existing != nil {
		rec := *existing
		rec.BaseSalary = base
		rec.NetSalary = NetSalary(base, rec.Bonus, rec.Deductions)
		return rec
	}

	return repository.PayrollRecord{
		ID:         fmt.Sprintf("PAY-%s-%d", emp.ID, now.UnixMilli()),
		EmployeeID: emp.ID,
		Month:      MonthLabel(now),
		BaseSalary: base,
		NetSalary:  base,
	}
}

// DepartmentTotal aggregates one department's payroll for a month.
type DepartmentTotal struct {
	Department string  `json:"department"`
	Employees  int     `json:"employees"`
	TotalNet   float64 `json:"totalNet"`
	AverageNet float64 `json:"averageNet"`
}

// DepartmentPayroll sums the month's net salaries per department, sorted by
// department name. Records of unknown employees are grouped under "".
func DepartmentPayroll(employees []repository.Employee, payroll []repository.PayrollRecord, month string) []DepartmentTotal {
	dept := make(map[string]string, len(employees))
	for _, e := range employees {
		dept[e.ID] = e.Department
	}

	totals := make(map[string]*DepartmentTotal)
	for _, p := range payroll {
		if p.Month != month {
			continue
		}
		d := dept[p.EmployeeID]
		t, ok := totals[d]
		if !ok {
			t = &DepartmentTotal{Department: d}
			totals[d] = t
		}
		t.Employees++
		t.TotalNet += p.NetSalary
	}

	out := make([]DepartmentTotal, 0, len(totals))
	for _, t := range totals {
		t.AverageNet = math.Round(t.TotalNet/float64(t.Employees)*100) / 100
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out
}
