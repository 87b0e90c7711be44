package repository

import (
	"time"

	"github.com/dayflow/dayflow-backend/internal/hr/reconcile"
)

// Identities used to merge seed and override collections.
var (
	EmployeeIdentity = reconcile.Identity[Employee]{
		func(e Employee) string { return e.ID },
		func(e Employee) string { return NormalizeEmail(e.Email) },
	}

	AttendanceIdentity = reconcile.Identity[AttendanceRecord]{
		func(a AttendanceRecord) string { return AttendanceKey(a.EmployeeID, a.Date) },
	}

	LeaveIdentity = reconcile.Identity[LeaveRequest]{
		func(l LeaveRequest) string { return l.ID },
	}

	PayrollIdentity = reconcile.Identity[PayrollRecord]{
		func(p PayrollRecord) string { return p.ID },
	}

	ApprovedUserIdentity = reconcile.Identity[ApprovedUser]{
		func(u ApprovedUser) string { return NormalizeEmail(u.Email) },
		func(u ApprovedUser) string { return u.ID },
	}

	RegistrationIdentity = reconcile.Identity[Registration]{
		func(r Registration) string { return r.ID },
	}

	TombstoneIdentity = reconcile.Identity[Tombstone]{
		func(t Tombstone) string { return t.ID },
	}
)

// AttendanceKey is the composite identity of an attendance day.
func AttendanceKey(employeeID, date string) string {
	if employeeID == "" || date == "" {
		return ""
	}
	return employeeID + "|" + date
}

// Tombstone marks a seed record as deleted so it no longer shows through
// the override collection.
type Tombstone struct {
	ID        string    `json:"id"`
	DeletedAt time.Time `json:"deletedAt"`
}
