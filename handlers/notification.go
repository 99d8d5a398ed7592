package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campuspark/services"
)

// GetNotifications 查詢通知，支援 ?unread_only=true
func GetNotifications(c *gin.Context) {
	memberID := c.GetInt("member_id")
	unreadOnly := c.Query("unread_only") == "true"

	notifications, err := services.GetNotifications(memberID, unreadOnly)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", notifications)
}

// MarkNotificationRead 將通知標記為已讀
func MarkNotificationRead(c *gin.Context) {
	memberID := c.GetInt("member_id")
	notificationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的通知 ID", "ERR_INVALID_ID")
		return
	}

	if err := services.MarkNotificationRead(memberID, notificationID); err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "標記已讀成功", nil)
}
