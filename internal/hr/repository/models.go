package repository

import (
	"strings"
	"time"
)

// Role of an account.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// RegistrationStatus is pending until an admin decides; approved and rejected are terminal.
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

// LeaveType of a leave request.
type LeaveType string

const (
	LeavePaid   LeaveType = "paid"
	LeaveSick   LeaveType = "sick"
	LeaveUnpaid LeaveType = "unpaid"
)

// LeaveStatus follows the same pending -> approved|rejected machine as registrations.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

// AttendanceStatus is either recorded explicitly or derived from check-in/out stamps.
type AttendanceStatus string

const (
	StatusPresent   AttendanceStatus = "present"
	StatusAbsent    AttendanceStatus = "absent"
	StatusHalfDay   AttendanceStatus = "half-day"
	StatusLeave     AttendanceStatus = "leave"
	StatusCheckedIn AttendanceStatus = "checked-in"
	StatusNotMarked AttendanceStatus = "not-marked"
)

// DateLayout is the ISO date used for attendance days, join dates and leave ranges.
const DateLayout = "2006-01-02"

// Employee is an HR record. ID is human-assigned and may be changed by an admin.
type Employee struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Department       string `json:"department"`
	Position         string `json:"position"`
	Phone            string `json:"phone,omitempty"`
	Salary           int    `json:"salary"`
	JoinDate         string `json:"joinDate"`
	Address          string `json:"address"`
	EmergencyContact string `json:"emergencyContact"`
	EmergencyPhone   string `json:"emergencyPhone"`
	ProfilePicture   string `json:"profilePicture,omitempty"`
}

// AttendanceRecord is one employee's day. At most one exists per (EmployeeID, Date).
type AttendanceRecord struct {
	ID         string           `json:"id"`
	EmployeeID string           `json:"employeeId"`
	Date       string           `json:"date"`
	Status     AttendanceStatus `json:"status,omitempty"`
	CheckIn    *string          `json:"checkIn"`
	CheckOut   *string          `json:"checkOut"`
}

// LeaveRequest is created pending by an employee and decided once by an admin.
type LeaveRequest struct {
	ID           string      `json:"id"`
	EmployeeID   string      `json:"employeeId"`
	EmployeeName string      `json:"employeeName"`
	Type         LeaveType   `json:"type"`
	StartDate    string      `json:"startDate"`
	EndDate      string      `json:"endDate"`
	Reason       string      `json:"reason"`
	Status       LeaveStatus `json:"status"`
	Remarks      string      `json:"remarks"`
	AppliedDate  string      `json:"appliedDate"`
}

// Covers reports whether date (YYYY-MM-DD) falls inside the leave range.
func (l LeaveRequest) Covers(date string) bool {
	return l.StartDate <= date && date <= l.EndDate
}

// PayrollRecord is one employee's month. NetSalary = BaseSalary + Bonus - Deductions.
type PayrollRecord struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employeeId"`
	Month      string  `json:"month"`
	BaseSalary float64 `json:"baseSalary"`
	Bonus      float64 `json:"bonus"`
	Deductions float64 `json:"deductions"`
	NetSalary  float64 `json:"netSalary"`
}

// Registration is a self-service account request awaiting admin decision.
type Registration struct {
	ID               string             `json:"id"`
	EmployeeID       string             `json:"employeeId,omitempty"`
	Email            string             `json:"email"`
	Name             string             `json:"name"`
	Password         string             `json:"password,omitempty"`
	Role             Role               `json:"role"`
	Status           RegistrationStatus `json:"status"`
	RegistrationDate time.Time          `json:"registrationDate"`
	ApprovedDate     *time.Time         `json:"approvedDate,omitempty"`
	RejectedDate     *time.Time         `json:"rejectedDate,omitempty"`
	Department       string             `json:"department,omitempty"`
	Position         string             `json:"position,omitempty"`
	Phone            string             `json:"phone,omitempty"`
	AdminCode        string             `json:"adminCode,omitempty"`
	OrganizationName string             `json:"organizationName,omitempty"`
	Permissions      []string           `json:"permissions,omitempty"`
}

// EffectiveEmployeeID is the identity the approved account and employee record receive.
func (r Registration) EffectiveEmployeeID() string {
	if r.EmployeeID != "" {
		return r.EmployeeID
	}
	return r.ID
}

// Public returns a copy without the stored credential.
func (r Registration) Public() Registration {
	r.Password = ""
	return r
}

// ApprovedUser is the login lookup entry produced by approving a registration.
type ApprovedUser struct {
	ID               string     `json:"id"`
	EmployeeID       string     `json:"employeeId"`
	Email            string     `json:"email"`
	Name             string     `json:"name"`
	Password         string     `json:"password,omitempty"`
	Role             Role       `json:"role"`
	Status           string     `json:"status"`
	ApprovedDate     *time.Time `json:"approvedDate,omitempty"`
	Department       string     `json:"department,omitempty"`
	Position         string     `json:"position,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	AdminCode        string     `json:"adminCode,omitempty"`
	OrganizationName string     `json:"organizationName,omitempty"`
	Permissions      []string   `json:"permissions,omitempty"`
}

// Public returns a copy without the stored credential.
func (u ApprovedUser) Public() ApprovedUser {
	u.Password = ""
	return u
}

// Session is the signed-in user as carried in the session token.
type Session struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	Department string `json:"department,omitempty"`
	Position   string `json:"position,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// NormalizeEmail lower-cases and trims an address for comparisons.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NameFromEmail derives a display name from the local part of an address.
func NameFromEmail(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	return local
}
