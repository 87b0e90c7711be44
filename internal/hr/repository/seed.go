package repository

// Seed is the built-in baseline shown before any edits are persisted.
type Seed struct {
	Employees  []Employee
	Attendance []AttendanceRecord
	Leave      []LeaveRequest
	Payroll    []PayrollRecord
	Accounts   []Account
}

// Account is a built-in employee login.
type Account struct {
	Email      string
	Password   string
	EmployeeID string
	Name       string
}

func ptr(s string) *string { return &s }

// DefaultSeed returns the demo organisation.
func DefaultSeed() Seed {
	return Seed{
		Employees: []Employee{
			{
				ID:               "EMP-001",
				Name:             "Aditya",
				Email:            "aditya@dayflow.com",
				Department:       "Engineering",
				Position:         "Software Engineer",
				Phone:            "+91 98765 43210",
				Salary:           600000,
				JoinDate:         "2023-01-15",
				Address:          "12 MG Road, Bengaluru",
				EmergencyContact: "Rakesh Sharma",
				EmergencyPhone:   "+91 98765 00001",
			},
			{
				ID:               "EMP-002",
				Name:             "Himanshu",
				Email:            "himanshu@dayflow.com",
				Department:       "Design",
				Position:         "Product Designer",
				Phone:            "+91 98765 43211",
				Salary:           540000,
				JoinDate:         "2023-04-03",
				Address:          "44 Park Street, Kolkata",
				EmergencyContact: "Meena Verma",
				EmergencyPhone:   "+91 98765 00002",
			},
			{
				ID:               "EMP-003",
				Name:             "Sudhanshu",
				Email:            "sudhanshu@dayflow.com",
				Department:       "Marketing",
				Position:         "Marketing Lead",
				Phone:            "+91 98765 43212",
				Salary:           720000,
				JoinDate:         "2022-09-19",
				Address:          "7 Linking Road, Mumbai",
				EmergencyContact: "Anil Gupta",
				EmergencyPhone:   "+91 98765 00003",
			},
		},
		Attendance: []AttendanceRecord{
			{ID: "ATT-SEED-1", EmployeeID: "EMP-001", Date: "2026-01-05", Status: StatusPresent, CheckIn: ptr("09:00 AM"), CheckOut: ptr("05:30 PM")},
			{ID: "ATT-SEED-2", EmployeeID: "EMP-002", Date: "2026-01-05", Status: StatusHalfDay, CheckIn: ptr("09:15 AM"), CheckOut: ptr("01:15 PM")},
			{ID: "ATT-SEED-3", EmployeeID: "EMP-003", Date: "2026-01-05", Status: StatusAbsent},
			{ID: "ATT-SEED-4", EmployeeID: "EMP-001", Date: "2026-01-06", Status: StatusPresent, CheckIn: ptr("08:55 AM"), CheckOut: ptr("06:05 PM")},
			{ID: "ATT-SEED-5", EmployeeID: "EMP-003", Date: "2026-01-06", Status: StatusLeave},
		},
		Leave: []LeaveRequest{
			{
				ID:           "LR-SEED-1",
				EmployeeID:   "EMP-003",
				EmployeeName: "Sudhanshu",
				Type:         LeaveSick,
				StartDate:    "2026-01-06",
				EndDate:      "2026-01-07",
				Reason:       "Fever",
				Status:       LeaveApproved,
				Remarks:      "Get well soon",
				AppliedDate:  "2026-01-05",
			},
			{
				ID:           "LR-SEED-2",
				EmployeeID:   "EMP-001",
				EmployeeName: "Aditya",
				Type:         LeavePaid,
				StartDate:    "2026-02-10",
				EndDate:      "2026-02-12",
				Reason:       "Family function",
				Status:       LeavePending,
				AppliedDate:  "2026-01-20",
			},
		},
		Payroll: []PayrollRecord{
			{ID: "PAY-SEED-1", EmployeeID: "EMP-001", Month: "December 2025", BaseSalary: 50000, Bonus: 5000, Deductions: 2000, NetSalary: 53000},
			{ID: "PAY-SEED-2", EmployeeID: "EMP-002", Month: "December 2025", BaseSalary: 45000, Bonus: 0, Deductions: 1500, NetSalary: 43500},
			{ID: "PAY-SEED-3", EmployeeID: "EMP-003", Month: "December 2025", BaseSalary: 60000, Bonus: 3000, Deductions: 0, NetSalary: 63000},
		},
		Accounts: []Account{
			{Email: "aditya@dayflow.com", Password: "aditya@123", EmployeeID: "EMP-001", Name: "Aditya"},
			{Email: "himanshu@dayflow.com", Password: "himanshu@123", EmployeeID: "EMP-002", Name: "Himanshu"},
			{Email: "sudhanshu@dayflow.com", Password: "sudhanshu@123", EmployeeID: "EMP-003", Name: "Sudhanshu"},
		},
	}
}
