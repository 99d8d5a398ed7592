package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campuspark/models"
	"campuspark/services"
)

// CreateBooking 建立預約
func CreateBooking(c *gin.Context) {
	memberID := c.GetInt("member_id")

	var input services.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", "ERR_INVALID_INPUT")
		return
	}
	if input.SpotID == 0 && input.ZoneID == 0 {
		ErrorResponse(c, http.StatusBadRequest, "請提供 spot_id 或 zone_id", "ERR_INVALID_INPUT")
		return
	}

	result, err := services.CreateBooking(memberID, input)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	data := gin.H{
		"booking":           result.Booking.ToResponse(),
		"check_in_deadline": result.Booking.CheckInDeadline,
	}
	if result.QRPass != nil {
		data["qr_pass"] = result.QRPass
	}
	SuccessResponse(c, http.StatusCreated, "預約成功，請在 30 分鐘內報到", data)
}

// GetActiveBooking 查詢目前進行中的預約
func GetActiveBooking(c *gin.Context) {
	memberID := c.GetInt("member_id")

	detail, err := services.GetActiveBooking(memberID)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", detail)
}

// CheckIn 報到（pending -> confirmed）
func CheckIn(c *gin.Context) {
	memberID := c.GetInt("member_id")
	bookingID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的預約 ID", "ERR_INVALID_ID")
		return
	}

	booking, err := services.CheckIn(memberID, bookingID)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "報到成功", booking.ToResponse())
}

// CheckOut 結帳離場（confirmed -> completed）
func CheckOut(c *gin.Context) {
	memberID := c.GetInt("member_id")
	bookingID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的預約 ID", "ERR_INVALID_ID")
		return
	}

	result, err := services.CheckOut(memberID, bookingID)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "結帳成功", gin.H{
		"booking":       result.Booking.ToResponse(),
		"fee":           result.Fee,
		"points_earned": result.PointsEarned,
		"total_points":  result.TotalPoints,
	})
}

// CancelBooking 會員自行取消預約
func CancelBooking(c *gin.Context) {
	memberID := c.GetInt("member_id")
	bookingID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的預約 ID", "ERR_INVALID_ID")
		return
	}

	booking, err := services.CancelBooking(memberID, bookingID, models.CancelByUser)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "取消預約成功", booking.ToResponse())
}

// GetBookingHistory 分頁查詢預約歷史，支援 ?page= ?page_size= ?status=
func GetBookingHistory(c *gin.Context) {
	memberID := c.GetInt("member_id")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	status := c.Query("status")

	if status != "" {
		switch status {
		case models.BookingPending, models.BookingConfirmed,
			models.BookingCompleted, models.BookingCancelled:
		default:
			ErrorResponse(c, http.StatusBadRequest, "無效的狀態過濾條件", "ERR_INVALID_STATUS")
			return
		}
	}

	history, err := services.GetBookingHistory(memberID, page, pageSize, status)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", history)
}

// ValidateQRPass 閘門驗證 QR 通行碼（管理員）
func ValidateQRPass(c *gin.Context) {
	var input struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "請提供 token", "ERR_INVALID_INPUT")
		return
	}

	pass, err := services.ValidateQRPass(input.Token)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "通行碼有效", pass)
}

// AdminUpdateBookingStatus 管理員強制變更預約狀態。
// 目前僅支援 cancelled（釋放車位、cancel_reason = admin_cancelled），
// 其餘狀態只能由狀態機本身轉移
func AdminUpdateBookingStatus(c *gin.Context) {
	bookingID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的預約 ID", "ERR_INVALID_ID")
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "請提供 status", "ERR_INVALID_INPUT")
		return
	}
	if input.Status != models.BookingCancelled {
		ErrorResponse(c, http.StatusBadRequest, "僅支援將狀態改為 cancelled", "ERR_UNSUPPORTED_STATUS")
		return
	}

	booking, err := services.AdminCancelBooking(bookingID)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "取消預約成功", booking.ToResponse())
}

// RunAutoCancel 手動觸發逾期預約清掃（管理員）
func RunAutoCancel(c *gin.Context) {
	result, err := services.AutoCancelExpiredBookings()
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "清掃完成", result)
}
