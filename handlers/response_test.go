package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuspark/services"
)

func TestServiceErrorResponseStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        *services.ServiceError
		wantStatus int
	}{
		{"conflict", &services.ServiceError{Kind: services.KindConflict, Code: "ERR_SPOT_OCCUPIED", Message: "車位已被占用"}, http.StatusConflict},
		{"not found", &services.ServiceError{Kind: services.KindNotFound, Code: "ERR_BOOKING_NOT_FOUND", Message: "找不到預約"}, http.StatusNotFound},
		{"forbidden", &services.ServiceError{Kind: services.KindForbidden, Code: "ERR_INSUFFICIENT_PERMISSIONS", Message: "權限不足"}, http.StatusForbidden},
		{"invalid state", &services.ServiceError{Kind: services.KindInvalidState, Code: "ERR_INVALID_STATE", Message: "狀態不允許", State: "completed"}, http.StatusBadRequest},
		{"expired", &services.ServiceError{Kind: services.KindExpired, Code: "ERR_CHECKIN_EXPIRED", Message: "已逾期"}, http.StatusGone},
		{"internal", &services.ServiceError{Kind: services.KindInternal, Code: "ERR_INTERNAL", Message: "內部錯誤"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			ServiceErrorResponse(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)

			var body APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Status)
			assert.Equal(t, tt.err.Code, body.Code)
			assert.Equal(t, tt.err.Message, body.Message)
			if tt.err.State != "" {
				assert.Equal(t, tt.err.State, body.State)
			}
		})
	}
}

func TestServiceErrorResponseWrapsUnknownError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ServiceErrorResponse(c, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
