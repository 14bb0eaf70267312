package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func ok(context.Context) error { return nil }

func TestHandle(t *testing.T) {
	tests := []struct {
		name     string
		checkers map[string]Checker
		status   int
		body     Response
	}{
		{
			name:     "all healthy",
			checkers: map[string]Checker{"postgres": CheckerFunc(ok), "redis": CheckerFunc(ok)},
			status:   http.StatusOK,
			body:     Response{Status: "ok", Checks: map[string]string{"postgres": "ok", "redis": "ok"}},
		},
		{
			name: "redis down",
			checkers: map[string]Checker{
				"postgres": CheckerFunc(ok),
				"redis":    CheckerFunc(func(context.Context) error { return errors.New("connection refused") }),
			},
			status: http.StatusServiceUnavailable,
			body:   Response{Status: "unavailable", Checks: map[string]string{"postgres": "ok", "redis": "unavailable"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			NewHandler(tt.checkers, nopLogger{}).Handle(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.status, w.Code)
			var body Response
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.body, body)
		})
	}
}
