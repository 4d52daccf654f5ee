package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"NOT_FOUND", http.StatusNotFound},
		{"ALREADY_EXISTS", http.StatusConflict},
		{"INVALID_INPUT", http.StatusBadRequest},
		{"INVALID_STATE", http.StatusUnprocessableEntity},
		{"CONCURRENCY_CONFLICT", http.StatusConflict},
		{"INVALID_SCHEMA_NAME", http.StatusBadRequest},
		{"TENANT_CONTEXT_MISSING", http.StatusBadRequest},
		{"TENANT_NOT_ACTIVE", http.StatusForbidden},
		{"RUN_IN_PROGRESS", http.StatusConflict},
		{"CHECK_FAILED", http.StatusInternalServerError},
		{"RUN_PERSISTENCE_FAILED", http.StatusInternalServerError},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInternal, http.StatusInternalServerError},
		{"SOMETHING_NEW", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestResponses(t *testing.T) {
	t.Run("success response wraps data", func(t *testing.T) {
		resp := NewSuccessResponse("payload")
		assert.True(t, resp.Success)
		assert.Equal(t, "payload", resp.Data)
		assert.Nil(t, resp.Error)
	})

	t.Run("error response carries code and request id", func(t *testing.T) {
		resp := NewErrorResponseWithRequestID("NOT_FOUND", "Alert not found", "req-123")
		assert.False(t, resp.Success)
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)
		assert.Equal(t, "req-123", resp.Error.RequestID)
	})
}
