package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	// Collection-level change notification, emitted after every successful write.
	EventCollectionChanged = "hr.collection.changed"

	// Registration workflow
	EventRegistrationSubmitted = "hr.registration.submitted"
	EventRegistrationApproved  = "hr.registration.approved"
	EventRegistrationRejected  = "hr.registration.rejected"

	// Employee records
	EventEmployeeCreated = "hr.employee.created"
	EventEmployeeUpdated = "hr.employee.updated"
	EventEmployeeDeleted = "hr.employee.deleted"

	// Attendance
	EventAttendanceCheckIn  = "hr.attendance.check_in"
	EventAttendanceCheckOut = "hr.attendance.check_out"

	// Leave
	EventLeaveApplied  = "hr.leave.applied"
	EventLeaveApproved = "hr.leave.approved"
	EventLeaveRejected = "hr.leave.rejected"

	// Payroll
	EventPayrollAdjusted = "hr.payroll.adjusted"
)

// Exchange names
const (
	ExchangeHREvents   = "hr.events"
	ExchangeDeadLetter = "dlx.hr"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// CollectionChangedEvent announces that a persisted collection was rewritten.
type CollectionChangedEvent struct {
	Collection string `json:"collection"`
	Version    int64  `json:"version"`
}

// RegistrationEvent carries the registration id and the outcome.
type RegistrationEvent struct {
	RegistrationID string `json:"registration_id"`
	EmployeeID     string `json:"employee_id"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	Status         string `json:"status"`
}

// EmployeeEvent is published on employee create/update/delete.
type EmployeeEvent struct {
	EmployeeID    string `json:"employee_id"`
	PreviousID    string `json:"previous_id,omitempty"`
	Email         string `json:"email"`
	Department    string `json:"department,omitempty"`
	ChangedByRole string `json:"changed_by_role,omitempty"`
}

// AttendanceEvent is published on check-in and check-out.
type AttendanceEvent struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
}

// LeaveEvent is published when a leave request changes state.
type LeaveEvent struct {
	LeaveID    string `json:"leave_id"`
	EmployeeID string `json:"employee_id"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	Remarks    string `json:"remarks,omitempty"`
}

// PayrollEvent is published when an admin adjusts a payroll record.
type PayrollEvent struct {
	PayrollID  string  `json:"payroll_id"`
	EmployeeID string  `json:"employee_id"`
	Month      string  `json:"month"`
	NetSalary  float64 `json:"net_salary"`
}
