package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/leave-portal/internal/domain/leave"
	"github.com/cmlabs-hris/leave-portal/internal/domain/portal"
	"github.com/cmlabs-hris/leave-portal/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", validator.ValidationErrors{{Field: "reason", Message: "reason is required"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"employee id", leave.ErrEmployeeIDRequired, http.StatusBadRequest, "BAD_REQUEST"},
		{"action", fmt.Errorf("%w: %q", leave.ErrInvalidAction, "archive"), http.StatusBadRequest, "BAD_REQUEST"},
		{"view", fmt.Errorf("%w: %q", portal.ErrInvalidView, "admin"), http.StatusBadRequest, "BAD_REQUEST"},
		{"session", portal.ErrSessionNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"apply", fmt.Errorf("%w: %w", leave.ErrApplyLeave, errors.New("dial tcp")), http.StatusBadGateway, "BAD_GATEWAY"},
		{"fetch", fmt.Errorf("%w: %w", leave.ErrFetchLeaves, errors.New("503")), http.StatusBadGateway, "BAD_GATEWAY"},
		{"update", fmt.Errorf("%w: %w", leave.ErrUpdateStatus, errors.New("409")), http.StatusBadGateway, "BAD_GATEWAY"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body Response
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestHandleError_ValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, validator.ValidationErrors{
		{Field: "startDate", Message: "startDate is required"},
		{Field: "reason", Message: "reason is required"},
	})

	var body Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, map[string]string{
		"startDate": "startDate is required",
		"reason":    "reason is required",
	}, body.Error.Details)
}
