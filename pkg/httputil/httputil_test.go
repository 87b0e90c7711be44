package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayflow/dayflow-backend/pkg/errors"
)

type leaveBody struct {
	Type      string  `json:"type" validate:"required,oneof=paid sick unpaid"`
	StartDate string  `json:"startDate" validate:"required,datetime=2006-01-02"`
	Email     string  `json:"email,omitempty" validate:"omitempty,email"`
	Bonus     float64 `json:"bonus" validate:"gte=0"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		code    string
		details map[string]string
	}{
		{name: "valid", body: `{"type":"paid","startDate":"2026-03-02"}`},
		{name: "empty", body: ``, code: "BAD_REQUEST"},
		{name: "malformed", body: `{"type":`, code: "BAD_REQUEST"},
		{name: "wrong type", body: `{"bonus":"lots"}`, code: "VALIDATION_ERROR", details: map[string]string{"bonus": "must be a float64"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var got leaveBody
			err := DecodeJSON(req, &got)
			if tt.code == "" {
				require.NoError(t, err)
				assert.Equal(t, "paid", got.Type)
				return
			}

			var appErr *errors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.code, appErr.Code)
			if tt.details != nil {
				assert.Equal(t, tt.details, appErr.Details)
			}
		})
	}
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	err := Validate(&leaveBody{Type: "holiday", StartDate: "02/03/2026", Email: "nope", Bonus: -1})

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, map[string]string{
		"type":      "must be one of: paid sick unpaid",
		"startDate": "must be a date in 2006-01-02 format",
		"email":     "must be a valid email address",
		"bonus":     "must be at least 0",
	}, appErr.Details)

	assert.NoError(t, Validate(&leaveBody{Type: "sick", StartDate: "2026-03-02"}))
}

func TestJSONEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	JSONWithMeta(rr, http.StatusOK, []string{"a", "b"}, &Meta{Total: 2})

	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":["a","b"],"meta":{"total":2}}`, rr.Body.String())

	rr = httptest.NewRecorder()
	Error(rr, errors.NotFound("employee"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), `"success":false`)
}
