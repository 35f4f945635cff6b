package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"iskacare/clinic-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := map[service.Kind]int{
		service.KindValidation:      http.StatusBadRequest,
		service.KindConflict:        http.StatusBadRequest,
		service.KindCodeNotFound:    http.StatusBadRequest,
		service.KindCodeExpired:     http.StatusBadRequest,
		service.KindCodeMismatch:    http.StatusBadRequest,
		service.KindUnauthenticated: http.StatusBadRequest,
		service.KindNotFound:        http.StatusNotFound,
		service.KindDeliveryFailed:  http.StatusInternalServerError,
		service.KindInternal:        http.StatusInternalServerError,
	}

	for kind, want := range tests {
		assert.Equal(t, want, StatusFor(kind), kind)
	}
}

func TestError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{service.ErrCodeExpired, http.StatusBadRequest, "Verification code expired. Please request a new code."},
		{fmt.Errorf("wrapped, %w", service.ErrAccountNotFound), http.StatusNotFound, "User not found with this email"},
		{errors.New("db is on fire"), http.StatusInternalServerError, "Server error. Please try again."},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set("requestID", "req")

		Error(c, tt.err)

		assert.Equal(t, tt.status, w.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tt.msg, body["message"])
		assert.Equal(t, "req", body["requestID"])
	}
}

func TestBadBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err    error
		status int
	}{
		{errors.New("unexpected EOF"), http.StatusBadRequest},
		{fmt.Errorf("bind, %w", &http.MaxBytesError{Limit: 16}), http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		BadBody(c, tt.err)
		assert.Equal(t, tt.status, w.Code, tt.err.Error())
	}
}
