package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log := NewWithLevel("hr-service", "test", tt.level)
			assert.Equal(t, tt.want, log.GetLevel())
		})
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	base := &Logger{Logger: zerolog.New(&buf)}

	base.WithComponent("attendance-service").WithEmployee("EMP001").Info().Msg("checked in")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "attendance-service", line["component"])
	assert.Equal(t, "EMP001", line["employee_id"])
	assert.Equal(t, "checked in", line["message"])
}
