// Package export reads and writes spreadsheet files: payroll and
// attendance reports out, employee rosters in.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/dayflow/dayflow-backend/internal/hr/repository"
	"github.com/dayflow/dayflow-backend/internal/hr/stats"
)

// ContentType is the media type of an XLSX workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	payrollHeader    = []interface{}{"Employee ID", "Name", "Department", "Month", "Base Salary", "Bonus", "Deductions", "Net Salary"}
	attendanceHeader = []interface{}{"Employee ID", "Name", "Date", "Status", "Check In", "Check Out", "Hours Worked"}
)

// WritePayroll writes month's payroll records as a workbook with a
// department summary sheet.
func WritePayroll(w io.Writer, month string, records []repository.PayrollRecord, employees []repository.Employee) error {
	byID := employeeIndex(employees)

	rows := make([][]interface{}, 0, len(records))
	for _, p := range records {
		emp := byID[p.EmployeeID]
		rows = append(rows, []interface{}{
			p.EmployeeID, emp.Name, emp.Department, p.Month,
			p.BaseSalary, p.Bonus, p.Deductions, p.NetSalary,
		})
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := writeSheet(f, "Payroll", payrollHeader, rows); err != nil {
		return err
	}

	var totals [][]interface{}
	for _, d := range stats.DepartmentPayroll(employees, records, month) {
		totals = append(totals, []interface{}{d.Department, d.Employees, d.TotalNet, d.AverageNet})
	}
	if err := writeSheet(f, "Departments", []interface{}{"Department", "Employees", "Total Net", "Average Net"}, totals); err != nil {
		return err
	}

	return save(f, w)
}

// WriteAttendance writes date's attendance records with their derived
// status and hours.
func WriteAttendance(w io.Writer, records []repository.AttendanceRecord, employees []repository.Employee) error {
	byID := employeeIndex(employees)

	rows := make([][]interface{}, 0, len(records))
	for _, a := range records {
		rows = append(rows, []interface{}{
			a.EmployeeID, byID[a.EmployeeID].Name, a.Date,
			string(stats.DailyStatus(a)), deref(a.CheckIn), deref(a.CheckOut),
			stats.HoursWorked(a.CheckIn, a.CheckOut),
		})
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := writeSheet(f, "Attendance", attendanceHeader, rows); err != nil {
		return err
	}
	return save(f, w)
}

func writeSheet(f *excelize.File, name string, header []interface{}, rows [][]interface{}) error {
	// NewFile starts with Sheet1; reuse it for the first sheet.
	if f.SheetCount == 1 && f.GetSheetName(0) == "Sheet1" {
		if err := f.SetSheetName("Sheet1", name); err != nil {
			return err
		}
	} else if _, err := f.NewSheet(name); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", last, bold); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func save(f *excelize.File, w io.Writer) error {
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func employeeIndex(employees []repository.Employee) map[string]repository.Employee {
	out := make(map[string]repository.Employee, len(employees))
	for _, e := range employees {
		out[e.ID] = e
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
