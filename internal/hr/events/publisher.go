package events

import (
	"context"

	"github.com/dayflow/dayflow-backend/internal/hr/repository"
	"github.com/dayflow/dayflow-backend/internal/hr/store"
	"github.com/dayflow/dayflow-backend/pkg/logger"
	"github.com/dayflow/dayflow-backend/pkg/messaging"
)

// Publisher publishes HR domain events. Publish failures are logged and
// never fail the originating request.
type Publisher struct {
	publisher messaging.EventPublisher
	logger    *logger.Logger
}

// NewPublisher wraps an event publisher. Pass messaging.NopPublisher{} when
// RabbitMQ is disabled.
func NewPublisher(p messaging.EventPublisher, log *logger.Logger) *Publisher {
	return &Publisher{
		publisher: p,
		logger:    log.WithComponent("events"),
	}
}

// NewRabbitPublisher declares the HR exchange and returns a publisher on it
func NewRabbitPublisher(rmq *messaging.RabbitMQ, source string, log *logger.Logger) (*Publisher, error) {
	p, err := messaging.NewPublisher(rmq, messaging.ExchangeHREvents, source, log)
	if err != nil {
		return nil, err
	}
	return NewPublisher(p, log), nil
}

func (p *Publisher) publish(ctx context.Context, eventType string, data interface{}) {
	if err := p.publisher.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to publish event")
	}
}

// CollectionChanged announces a committed collection write. It has the
// signature of store.ChangeFunc.
func (p *Publisher) CollectionChanged(ctx context.Context, key store.Key, version int64) {
	p.publish(ctx, messaging.EventCollectionChanged, messaging.CollectionChangedEvent{
		Collection: string(key),
		Version:    version,
	})
}

// RegistrationSubmitted publishes a registration submitted event
func (p *Publisher) RegistrationSubmitted(ctx context.Context, reg *repository.Registration) {
	p.publish(ctx, messaging.EventRegistrationSubmitted, registrationEvent(reg))
}

// RegistrationDecided publishes the approved or rejected event for reg
func (p *Publisher) RegistrationDecided(ctx context.Context, reg *repository.Registration) {
	eventType := messaging.EventRegistrationRejected
	if reg.Status == repository.RegistrationApproved {
		eventType = messaging.EventRegistrationApproved
	}
	p.publish(ctx, eventType, registrationEvent(reg))
}

func registrationEvent(reg *repository.Registration) messaging.RegistrationEvent {
	return messaging.RegistrationEvent{
		RegistrationID: reg.ID,
		EmployeeID:     reg.EffectiveEmployeeID(),
		Email:          reg.Email,
		Role:           string(reg.Role),
		Status:         string(reg.Status),
	}
}

// EmployeeCreated publishes an employee created event
func (p *Publisher) EmployeeCreated(ctx context.Context, emp *repository.Employee) {
	p.publish(ctx, messaging.EventEmployeeCreated, messaging.EmployeeEvent{
		EmployeeID: emp.ID,
		Email:      emp.Email,
		Department: emp.Department,
	})
}

// EmployeeUpdated publishes an employee updated event. previousID is set
// when the edit changed the id.
func (p *Publisher) EmployeeUpdated(ctx context.Context, emp *repository.Employee, previousID string, role repository.Role) {
	data := messaging.EmployeeEvent{
		EmployeeID:    emp.ID,
		Email:         emp.Email,
		Department:    emp.Department,
		ChangedByRole: string(role),
	}
	if previousID != emp.ID {
		data.PreviousID = previousID
	}
	p.publish(ctx, messaging.EventEmployeeUpdated, data)
}

// EmployeeDeleted publishes an employee deleted event
func (p *Publisher) EmployeeDeleted(ctx context.Context, employeeID string) {
	p.publish(ctx, messaging.EventEmployeeDeleted, messaging.EmployeeEvent{EmployeeID: employeeID})
}

// CheckedIn publishes a check-in event
func (p *Publisher) CheckedIn(ctx context.Context, rec *repository.AttendanceRecord) {
	p.publish(ctx, messaging.EventAttendanceCheckIn, attendanceEvent(rec, rec.CheckIn))
}

// CheckedOut publishes a check-out event
func (p *Publisher) CheckedOut(ctx context.Context, rec *repository.AttendanceRecord) {
	p.publish(ctx, messaging.EventAttendanceCheckOut, attendanceEvent(rec, rec.CheckOut))
}

func attendanceEvent(rec *repository.AttendanceRecord, stamp *string) messaging.AttendanceEvent {
	data := messaging.AttendanceEvent{EmployeeID: rec.EmployeeID, Date: rec.Date}
	if stamp != nil {
		data.Time = *stamp
	}
	return data
}

// LeaveApplied publishes a leave applied event
func (p *Publisher) LeaveApplied(ctx context.Context, req *repository.LeaveRequest) {
	p.publish(ctx, messaging.EventLeaveApplied, leaveEvent(req))
}

// LeaveDecided publishes the approved or rejected event for req
func (p *Publisher) LeaveDecided(ctx context.Context, req *repository.LeaveRequest) {
	eventType := messaging.EventLeaveRejected
	if req.Status == repository.LeaveApproved {
		eventType = messaging.EventLeaveApproved
	}
	p.publish(ctx, eventType, leaveEvent(req))
}

func leaveEvent(req *repository.LeaveRequest) messaging.LeaveEvent {
	return messaging.LeaveEvent{
		LeaveID:    req.ID,
		EmployeeID: req.EmployeeID,
		Type:       string(req.Type),
		Status:     string(req.Status),
		Remarks:    req.Remarks,
	}
}

// PayrollAdjusted publishes a payroll adjusted event
func (p *Publisher) PayrollAdjusted(ctx context.Context, rec *repository.PayrollRecord) {
	p.publish(ctx, messaging.EventPayrollAdjusted, messaging.PayrollEvent{
		PayrollID:  rec.ID,
		EmployeeID: rec.EmployeeID,
		Month:      rec.Month,
		NetSalary:  rec.NetSalary,
	})
}
