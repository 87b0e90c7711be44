package handler

import (
	"github.com/go-chi/chi/v5"
)

// Handlers groups every HR handler for mounting
type Handlers struct {
	Auth          *AuthHandler
	Registrations *RegistrationHandler
	Employees     *EmployeeHandler
	Attendance    *AttendanceHandler
	Leave         *LeaveHandler
	Payroll       *PayrollHandler
	Reports       *ReportHandler
}

// Mount registers the /api routes on r
func (h *Handlers) Mount(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/signin", h.Auth.SignIn)
		r.Post("/registrations", h.Registrations.Submit)

		// Signed-in endpoints
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.Authenticate)

			r.Get("/auth/me", h.Auth.Me)

			r.Route("/employees", func(r chi.Router) {
				r.Get("/{id}", h.Employees.Get)
				r.Put("/{id}/profile", h.Employees.UpdateProfile)

				r.Group(func(r chi.Router) {
					r.Use(RequireAdmin)
					r.Get("/", h.Employees.List)
					r.Post("/", h.Employees.Create)
					r.Post("/import", h.Employees.Import)
					r.Put("/{id}", h.Employees.Update)
					r.Delete("/{id}", h.Employees.Delete)
				})
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/check-in", h.Attendance.CheckIn)
				r.Post("/check-out", h.Attendance.CheckOut)
				r.Get("/today", h.Attendance.Today)
				r.Get("/", h.Attendance.List)
				r.Get("/summary", h.Attendance.Summary)
				r.With(RequireAdmin).Get("/tally", h.Attendance.Tally)
			})

			r.Route("/leave", func(r chi.Router) {
				r.Get("/", h.Leave.List)
				r.Post("/", h.Leave.Apply)
				r.Get("/counts", h.Leave.Counts)
				r.With(RequireAdmin).Patch("/{id}", h.Leave.Decide)
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Get("/me", h.Payroll.Me)

				r.Group(func(r chi.Router) {
					r.Use(RequireAdmin)
					r.Get("/", h.Payroll.List)
					r.Get("/departments", h.Payroll.Departments)
					r.Patch("/{id}", h.Payroll.Adjust)
				})
			})

			// Admin endpoints
			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)

				r.Get("/registrations", h.Registrations.ListPending)
				r.Patch("/registrations/{id}", h.Registrations.Decide)
				r.Get("/approved-users", h.Registrations.ApprovedUsers)

				r.Get("/dashboard", h.Reports.Dashboard)
				r.Get("/reports/summary", h.Reports.Summary)
				r.Get("/reports/payroll.xlsx", h.Reports.PayrollWorkbook)
				r.Get("/reports/attendance.xlsx", h.Reports.AttendanceWorkbook)
			})
		})
	})
}
