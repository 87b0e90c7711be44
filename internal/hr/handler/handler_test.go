package handler_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dayflow/dayflow-backend/internal/hr/export"
	"github.com/dayflow/dayflow-backend/internal/hr/hrtest"
	"github.com/dayflow/dayflow-backend/internal/hr/registration"
	"github.com/dayflow/dayflow-backend/internal/hr/repository"
	"github.com/dayflow/dayflow-backend/internal/hr/service"
	"github.com/dayflow/dayflow-backend/pkg/httputil"
	"github.com/dayflow/dayflow-backend/pkg/testutil"
)

type envelope[T any] struct {
	Success bool                `json:"success"`
	Data    T                   `json:"data"`
	Message string              `json:"message"`
	Error   *httputil.ErrorBody `json:"error"`
	Meta    *httputil.Meta      `json:"meta"`
}

func TestAuth_SignInAndMe(t *testing.T) {
	env := hrtest.NewEnv(t, nil)

	rr := testutil.ExecuteRequest(env.Router, testutil.NewHTTPRequest(http.MethodPost, "/api/auth/signin", service.SignInRequest{
		Email:    "aditya@dayflow.com",
		Password: "aditya@123",
	}))
	testutil.AssertStatus(t, rr, http.StatusOK)

	var signIn envelope[struct {
		AccessToken string             `json:"access_token"`
		User        repository.Session `json:"user"`
	}]
	testutil.ParseJSONBody(t, rr, &signIn)
	require.NotEmpty(t, signIn.Data.AccessToken)
	assert.Equal(t, "EMP-001", signIn.Data.User.ID)

	req := testutil.WithBearer(testutil.NewHTTPRequest(http.MethodGet, "/api/auth/me", nil), signIn.Data.AccessToken)
	rr = testutil.ExecuteRequest(env.Router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var me envelope[repository.Session]
	testutil.ParseJSONBody(t, rr, &me)
	assert.Equal(t, "Engineering", me.Data.Department)
}

func TestAuth_SignInFailures(t *testing.T) {
	env := hrtest.NewEnv(t, nil)

	tests := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{"bad password", service.SignInRequest{Email: "aditya@dayflow.com", Password: "x"}, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"unknown account", service.SignInRequest{Email: "nobody@dayflow.com", Password: "x"}, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"missing email", service.SignInRequest{Password: "x"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"malformed body", "{not json", http.StatusBadRequest, "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := testutil.ExecuteRequest(env.Router, testutil.NewHTTPRequest(http.MethodPost, "/api/auth/signin", tt.body))
			testutil.AssertStatus(t, rr, tt.status)

			var body envelope[any]
			testutil.ParseJSONBody(t, rr, &body)
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	env := hrtest.NewEnv(t, nil)

	rr := testutil.ExecuteRequest(env.Router, testutil.NewHTTPRequest(http.MethodGet, "/api/registrations", nil))
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)

	req := testutil.WithBearer(testutil.NewHTTPRequest(http.MethodGet, "/api/registrations", nil), "garbage")
	rr = testutil.ExecuteRequest(env.Router, req)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	testutil.AssertBodyContains(t, rr, "TOKEN_INVALID")

	req = testutil.WithBearer(testutil.NewHTTPRequest(http.MethodGet, "/api/registrations", nil), env.EmployeeToken(t, "EMP-001"))
	rr = testutil.ExecuteRequest(env.Router, req)
	testutil.AssertStatus(t, rr, http.StatusForbidden)
}

func TestRegistrations_Lifecycle(t *testing.T) {
	env := hrtest.NewEnv(t, nil)
	admin := env.AdminToken(t)

	rr := testutil.ExecuteRequest(env.Router, testutil.NewHTTPRequest(http.MethodPost, "/api/registrations", registration.SubmitRequest{
		Email:      "new.hire@dayflow.com",
		Password:   "secret@123",
		Role:       repository.RoleEmployee,
		Department: "Engineering",
		Position:   "Engineer",
	}))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	var created envelope[repository.Registration]
	testutil.ParseJSONBody(t, rr, &created)
	assert.True(t, created.Success)
	assert.Empty(t, created.Data.Password)
	id := created.Data.ID

	req := testutil.WithBearer(testutil.NewHTTPRequest(http.MethodGet, "/api/registrations", nil), admin)
	rr = testutil.ExecuteRequest(env.Router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var pending envelope[[]repository.Registration]
	testutil.ParseJSONBody(t, rr, &pending)
	require.Len(t, pending.Data, 1)
	assert.Equal(t, 1, pending.Meta.Total)

	req = testutil.WithBearer(testutil.NewHTTPRequest(http.MethodPatch, "/api/registrations/"+id, map[string]string{"action": "promote"}), admin)
	rr = testutil.ExecuteRequest(env.Router, req)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)

	req = testutil.WithBearer(testutil.NewHTTPRequest(http.MethodPatch, "/api/registrations/"+id, registration.DecideRequest{Action: registration.ActionReject}), admin)
	rr = testutil.ExecuteRequest(env.Router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var rejected envelope[any]
	testutil.ParseJSONBody(t, rr, &rejected)
	assert.Equal(t, registration.RejectedMessage, rejected.Message)

	req = testutil.WithBearer(testutil.NewHTTPRequest(http.MethodPatch, "/api/registrations/"+id, registration.DecideRequest{Action: registration.ActionApprove}), admin)
	rr = testutil.ExecuteRequest(env.Router, req)
	testutil.AssertStatus(t, rr, http.StatusConflict)

	req = testutil.WithBearer(testutil.NewHTTPRequest(http.MethodPatch, "/api/registrations/PENDING-0-nope", registration.DecideRequest{Action: registration.ActionApprove}), admin)
	rr = testutil.ExecuteRequest(env.Router, req)
	testutil.AssertStatus(t, rr, http.StatusNotFound)

	req = testutil.WithBearer(testutil.NewHTTPRequest(http.MethodGet, "/api/approved-users?email=new.hire@dayflow.com", nil), admin)
	rr = testutil.ExecuteRequest(env.Router, req)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestAttendance_EmployeeFlow(t *testing.T) {
	env := hrtest.NewEnv(t, nil)
	token := env.EmployeeToken(t, "EMP-002")

	rr := testutil.ExecuteRequest(env.Router, testutil.WithBearer(testutil.NewHTTPRequest(http.MethodPost, "/api/attendance/check-in", nil), token))
	testutil.AssertStatus(t, rr, http.StatusOK)

	var in envelope[service.AttendanceView]
	testutil.ParseJSONBody(t, rr, &in)
	assert.Equal(t, "EMP-002", in.Data.EmployeeID)
	assert.Equal(t, repository.StatusCheckedIn, in.Data.DailyStatus)

	rr = testutil.ExecuteRequest(env.Router, testutil.WithBearer(testutil.NewHTTPRequest(http.MethodPost, "/api/attendance/check-in", nil), token))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	testutil.AssertBodyContains(t, rr, "You have already checked in today!")

	rr = testutil.ExecuteRequest(env.Router, testutil.WithBearer(testutil.NewHTTPRequest(http.MethodGet, "/api/attendance?employeeId=EMP-001", nil), token))
	testutil.AssertStatus(t, rr, http.StatusForbidden)

	rr = testutil.ExecuteRequest(env.Router, testutil.WithBearer(testutil.NewHTTPRequest(http.MethodGet, "/api/attendance", nil), token))
	testutil.AssertStatus(t, rr, http.StatusOK)
	var history envelope[[]service.AttendanceView]
	testutil.ParseJSONBody(t, rr, &history)
	assert.Len(t, history.Data, 2)

	rr = testutil.ExecuteRequest(env.Router, testutil.WithBearer(testutil.NewHTTPRequest(http.MethodGet, "/api/attendance/tally", nil), token))
	testutil.AssertStatus(t, rr, http.StatusForbidden)
}

func TestLeave_ApplyAndDecide(t *testing.T) {
	env := hrtest.NewEnv(t, nil)
	employee := env.EmployeeToken(t, "EMP-003")
	admin := env.AdminToken(t)

	rr := testutil.ExecuteRequest(env.Router, testutil.WithBearer(testutil.NewHTTPRequest(http.MethodPost, "/api/leave", service.ApplyLeaveRequest{
		Type:      repository.LeavePaid,
		StartDate: "2026-11-02",
		EndDate:   "2026-11-03",
		Reason:    "Wedding",
	}), employee))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	var applied envelope[repository.LeaveRequest]
	testutil.ParseJSONBody(t, rr, &applied)
	assert.Equal(t, "Sudhanshu", applied.Data.EmployeeName)

	rr = testutil.ExecuteRequest(env.Router, testutil.WithBearer(testutil.NewHTTPRequest(http.MethodPatch, "/api/leave/"+applied.Data.ID, service.DecideLeaveRequest{Action: "approve"}), employee))
	testutil.AssertStatus(t, rr, http.StatusForbidden)

	rr = testutil.ExecuteRequest(env.Router, testutil.WithBearer(testutil.NewHTTPRequest(http.MethodPatch, "/api/leave/"+applied.Data.ID, service.DecideLeaveRequest{Action: "approve"}), admin))
	testutil.AssertStatus(t, rr, http.StatusOK)
	var decided envelope[repository.LeaveRequest]
	testutil.ParseJSONBody(t, rr, &decided)
	assert.Equal(t, repository.LeaveApproved, decided.Data.Status)
	assert.Equal(t, service.DefaultApprovedRemarks, decided.Data.Remarks)

	rr = testutil.ExecuteRequest(env.Router, testutil.WithBearer(testutil.NewHTTPRequest(http.MethodGet, "/api/leave", nil), employee))
	var mine envelope[[]repository.LeaveRequest]
	testutil.ParseJSONBody(t, rr, &mine)
	assert.Len(t, mine.Data, 2)
}

func TestEmployees_AdminOnly(t *testing.T) {
	env := hrtest.NewEnv(t, nil)

	rr := testutil.ExecuteRequest(env.Router, testutil.WithBearer(testutil.NewHTTPRequest(http.MethodGet, "/api/employees", nil), env.EmployeeToken(t, "EMP-001")))
	testutil.AssertStatus(t, rr, http.StatusForbidden)

	rr = testutil.ExecuteRequest(env.Router, testutil.WithBearer(testutil.NewHTTPRequest(http.MethodGet, "/api/employees/me", nil), env.EmployeeToken(t, "EMP-001")))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.ExecuteRequest(env.Router, testutil.WithBearer(testutil.NewHTTPRequest(http.MethodGet, "/api/employees/EMP-002", nil), env.EmployeeToken(t, "EMP-001")))
	testutil.AssertStatus(t, rr, http.StatusForbidden)

	admin := env.AdminToken(t)
	rr = testutil.ExecuteRequest(env.Router, testutil.WithBearer(testutil.NewHTTPRequest(http.MethodPost, "/api/employees", service.CreateEmployeeRequest{
		ID:         "EMP-004",
		Name:       "Kavya",
		Email:      "kavya@dayflow.com",
		Department: "Finance",
		Position:   "Accountant",
	}), admin))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	rr = testutil.ExecuteRequest(env.Router, testutil.WithBearer(testutil.NewHTTPRequest(http.MethodDelete, "/api/employees/EMP-004", nil), admin))
	testutil.AssertStatus(t, rr, http.StatusNoContent)
}

func TestEmployees_Import(t *testing.T) {
	env := hrtest.NewEnv(t, nil)

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Employee ID", "Name", "Email", "Department", "Position"},
		{"EMP-200", "Meera", "meera@dayflow.com", "Sales", "Executive"},
		{"EMP-001", "Clash", "clash@dayflow.com", "Sales", "Executive"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var file bytes.Buffer
	_, err := f.WriteTo(&file)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "roster.xlsx")
	require.NoError(t, err)
	_, err = part.Write(file.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/employees/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := testutil.ExecuteRequest(env.Router, testutil.WithBearer(req, env.AdminToken(t)))
	testutil.AssertStatus(t, rr, http.StatusOK)

	var result envelope[service.ImportResult]
	testutil.ParseJSONBody(t, rr, &result)
	assert.Equal(t, []string{"EMP-200"}, result.Data.Created)
	require.Len(t, result.Data.Failed, 1)
	assert.Equal(t, 3, result.Data.Failed[0].Line)
	assert.Equal(t, "Employee ID already exists", result.Data.Failed[0].Message)
}

func TestReports(t *testing.T) {
	env := hrtest.NewEnv(t, nil)
	admin := env.AdminToken(t)

	rr := testutil.ExecuteRequest(env.Router, testutil.WithBearer(testutil.NewHTTPRequest(http.MethodGet, "/api/dashboard", nil), admin))
	testutil.AssertStatus(t, rr, http.StatusOK)
	var dash envelope[service.Dashboard]
	testutil.ParseJSONBody(t, rr, &dash)
	assert.Equal(t, 3, dash.Data.TotalEmployees)

	rr = testutil.ExecuteRequest(env.Router, testutil.WithBearer(testutil.NewHTTPRequest(http.MethodGet, "/api/reports/payroll.xlsx?month=December%202025", nil), admin))
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Equal(t, export.ContentType, rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "payroll-December 2025.xlsx")

	wb, err := excelize.OpenReader(rr.Body)
	require.NoError(t, err)
	defer wb.Close()
	sheetRows, err := wb.GetRows("Payroll")
	require.NoError(t, err)
	assert.Len(t, sheetRows, 4)
}
