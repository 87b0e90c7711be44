package export

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/dayflow/dayflow-backend/internal/hr/repository"
)

// maxRosterRows bounds how many rows are read from a legacy .xls sheet
const maxRosterRows = 10000

// RosterRow is one parsed roster line. Line is the 1-based sheet row.
type RosterRow struct {
	Line     int
	Employee repository.Employee
	Err      string
}

// rosterColumns maps normalized header text to an employee field setter
var rosterColumns = map[string]func(*repository.Employee, string) error{
	"id":          func(e *repository.Employee, v string) error { e.ID = v; return nil },
	"employee id": func(e *repository.Employee, v string) error { e.ID = v; return nil },
	"name":        func(e *repository.Employee, v string) error { e.Name = v; return nil },
	"email":       func(e *repository.Employee, v string) error { e.Email = v; return nil },
	"department":  func(e *repository.Employee, v string) error { e.Department = v; return nil },
	"position":    func(e *repository.Employee, v string) error { e.Position = v; return nil },
	"phone":       func(e *repository.Employee, v string) error { e.Phone = v; return nil },
	"address":     func(e *repository.Employee, v string) error { e.Address = v; return nil },
	"salary": func(e *repository.Employee, v string) error {
		if v == "" {
			return nil
		}
		n, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid salary %q", v)
		}
		e.Salary = int(n)
		return nil
	},
}

// ReadRows returns the cell text of the single worksheet in an .xlsx or
// legacy .xls file.
func ReadRows(r io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, err
		}
		if workbook.NumSheets() == 0 {
			return nil, fmt.Errorf("no worksheet found")
		}
		if workbook.NumSheets() > 1 {
			return nil, fmt.Errorf("multiple worksheets found; please upload a file with a single sheet")
		}
		rows := workbook.ReadAllCells(maxRosterRows)
		if len(rows) == 0 {
			return nil, fmt.Errorf("worksheet is empty")
		}
		return rows, nil
	default:
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer func() { _ = file.Close() }()

		sheetName := file.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("no worksheet found")
		}
		rows, err := file.GetRows(sheetName)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("worksheet is empty")
		}
		return rows, nil
	}
}

// ParseRoster maps sheet rows to employees using the header row. Unknown
// columns are ignored and blank rows skipped.
func ParseRoster(rows [][]string) ([]RosterRow, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("worksheet is empty")
	}

	setters := make([]func(*repository.Employee, string) error, len(rows[0]))
	found := false
	for i, h := range rows[0] {
		if set, ok := rosterColumns[strings.ToLower(strings.TrimSpace(h))]; ok {
			setters[i] = set
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("no recognised columns in header row")
	}

	var out []RosterRow
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		parsed := RosterRow{Line: i + 2}
		for col, set := range setters {
			if set == nil {
				continue
			}
			if err := set(&parsed.Employee, cellValue(row, col)); err != nil {
				parsed.Err = err.Error()
				break
			}
		}
		out = append(out, parsed)
	}
	return out, nil
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
