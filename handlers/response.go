package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campuspark/services"
)

// APIResponse 定義統一的 API 回應結構
type APIResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
	State   string      `json:"state,omitempty"`
}

// SuccessResponse 返回成功的回應
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Status:  true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 返回失敗的回應
func ErrorResponse(c *gin.Context, statusCode int, message string, code string) {
	c.JSON(statusCode, APIResponse{
		Status:  false,
		Message: message,
		Error:   message,
		Code:    code,
	})
}

// ServiceErrorResponse 依 service 層錯誤類別對應 HTTP 狀態碼
func ServiceErrorResponse(c *gin.Context, err error) {
	svcErr := services.AsServiceError(err)

	var statusCode int
	switch svcErr.Kind {
	case services.KindConflict:
		statusCode = http.StatusConflict
	case services.KindNotFound:
		statusCode = http.StatusNotFound
	case services.KindForbidden:
		statusCode = http.StatusForbidden
	case services.KindInvalidState:
		statusCode = http.StatusBadRequest
	case services.KindExpired:
		statusCode = http.StatusGone
	default:
		statusCode = http.StatusInternalServerError
	}

	c.JSON(statusCode, APIResponse{
		Status:  false,
		Message: svcErr.Message,
		Error:   svcErr.Message,
		Code:    svcErr.Code,
		State:   svcErr.State,
	})
}
