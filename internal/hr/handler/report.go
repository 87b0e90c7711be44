package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/dayflow/dayflow-backend/internal/hr/export"
	"github.com/dayflow/dayflow-backend/internal/hr/feed"
	"github.com/dayflow/dayflow-backend/internal/hr/repository"
	"github.com/dayflow/dayflow-backend/internal/hr/service"
	"github.com/dayflow/dayflow-backend/internal/hr/stats"
	"github.com/dayflow/dayflow-backend/pkg/errors"
	"github.com/dayflow/dayflow-backend/pkg/httputil"
	"github.com/dayflow/dayflow-backend/pkg/logger"
)

// ReportHandler serves the dashboard, report figures and spreadsheet
// exports
type ReportHandler struct {
	reports    *service.ReportService
	dashboard  *feed.Poller[service.Dashboard]
	employees  *service.EmployeeService
	attendance *service.AttendanceService
	payroll    *service.PayrollService
	logger     *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(
	reports *service.ReportService,
	dashboard *feed.Poller[service.Dashboard],
	employees *service.EmployeeService,
	attendance *service.AttendanceService,
	payroll *service.PayrollService,
	log *logger.Logger,
) *ReportHandler {
	return &ReportHandler{
		reports:    reports,
		dashboard:  dashboard,
		employees:  employees,
		attendance: attendance,
		payroll:    payroll,
		logger:     log,
	}
}

// Dashboard returns the cached dashboard snapshot
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	snapshot, _ := h.dashboard.Snapshot(r.Context())
	httputil.JSON(w, http.StatusOK, snapshot)
}

// Summary returns the report headline for ?date=
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, h.reports.Summary(r.Context(), r.URL.Query().Get("date")))
}

// PayrollWorkbook downloads ?month= payroll as XLSX
func (h *ReportHandler) PayrollWorkbook(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = stats.MonthLabel(time.Now())
	}

	records, err := h.payroll.List(r.Context(), month)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WritePayroll(&buf, month, records, h.employees.List(r.Context(), "")); err != nil {
		h.logger.Error().Err(err).Msg("failed to build payroll workbook")
		httputil.Error(w, errors.Internal("failed to build workbook"))
		return
	}

	sendWorkbook(w, "payroll-"+month, &buf)
}

// AttendanceWorkbook downloads ?date= attendance as XLSX
func (h *ReportHandler) AttendanceWorkbook(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format(repository.DateLayout)
	}

	views := h.attendance.ListForDate(r.Context(), date)
	records := make([]repository.AttendanceRecord, 0, len(views))
	for _, v := range views {
		records = append(records, v.AttendanceRecord)
	}

	var buf bytes.Buffer
	if err := export.WriteAttendance(&buf, records, h.employees.List(r.Context(), "")); err != nil {
		h.logger.Error().Err(err).Msg("failed to build attendance workbook")
		httputil.Error(w, errors.Internal("failed to build workbook"))
		return
	}

	sendWorkbook(w, "attendance-"+date, &buf)
}

func sendWorkbook(w http.ResponseWriter, name string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
