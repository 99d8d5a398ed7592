package services

import (
	"errors"
	"log"
	"math"
	"time"

	"gorm.io/gorm"

	"campuspark/database"
	"campuspark/models"
)

// TimeRemaining pending 預約剩餘的 check-in 時間
type TimeRemaining struct {
	Minutes int  `json:"minutes"`
	Seconds int  `json:"seconds"`
	Expired bool `json:"expired"`
}

// ParkedDuration 已停車時間（confirmed 起算）
type ParkedDuration struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// ActiveBookingDetail 進行中預約的即時狀態：
// pending 附 check-in 倒數，confirmed 附目前停車時間與預估費用
type ActiveBookingDetail struct {
	Booking                models.BookingResponse `json:"booking"`
	TimeRemainingToCheckIn *TimeRemaining         `json:"time_remaining_to_check_in,omitempty"`
	Duration               ParkedDuration         `json:"duration"`
	EstimatedFee           *FeeBreakdown          `json:"estimated_fee,omitempty"`
}

// GetActiveBooking 查詢會員目前進行中的預約（pending 或 confirmed）
func GetActiveBooking(memberID int) (*ActiveBookingDetail, error) {
	var booking models.Booking
	err := database.DB.
		Preload("ParkingSpot").Preload("ParkingSpot.Zone").Preload("Vehicle").
		Where("member_id = ? AND status IN (?, ?)",
			memberID, models.BookingPending, models.BookingConfirmed).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("ERR_NO_ACTIVE_BOOKING", "目前沒有進行中的預約")
		}
		return nil, internalError("查詢進行中預約失敗", err)
	}

	now := time.Now()
	detail := &ActiveBookingDetail{Booking: booking.ToResponse()}

	if booking.Status == models.BookingPending {
		remaining := booking.CheckInDeadline.Sub(now)
		detail.TimeRemainingToCheckIn = &TimeRemaining{
			Minutes: int(math.Max(0, math.Floor(remaining.Minutes()))),
			Seconds: int(math.Max(0, float64(int(remaining.Seconds())%60))),
			Expired: checkInDeadlinePassed(now, booking.CheckInDeadline),
		}
		return detail, nil
	}

	// confirmed：計算目前停車時間與預估費用（與結帳共用同一張折扣表）
	parkingStart := booking.StartTime
	if booking.ActualStartTime != nil {
		parkingStart = *booking.ActualStartTime
	}
	parked := now.Sub(parkingStart)
	detail.Duration = ParkedDuration{
		Hours:   int(parked.Hours()),
		Minutes: int(parked.Minutes()) % 60,
	}

	var member models.Member
	if err := database.DB.First(&member, memberID).Error; err != nil {
		log.Printf("Failed to load member %d for fee estimate: %v", memberID, err)
	} else {
		fee := ComputeFee(parked, member.MemberTier)
		detail.EstimatedFee = &fee
	}
	return detail, nil
}

// BookingHistoryPage 歷史查詢結果（依建立時間新到舊）
type BookingHistoryPage struct {
	Bookings      []models.BookingResponse `json:"bookings"`
	TotalBookings int64                    `json:"total_bookings"`
	TotalPages    int                      `json:"total_pages"`
	CurrentPage   int                      `json:"current_page"`
}

// GetBookingHistory 分頁查詢會員的預約歷史，可用狀態過濾
func GetBookingHistory(memberID, page, pageSize int, status string) (*BookingHistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	query := database.DB.Model(&models.Booking{}).Where("member_id = ?", memberID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, internalError("查詢預約歷史失敗", err)
	}

	var bookings []models.Booking
	if err := query.
		Preload("ParkingSpot").Preload("Vehicle").
		Order("start_time DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&bookings).Error; err != nil {
		return nil, internalError("查詢預約歷史失敗", err)
	}

	responses := make([]models.BookingResponse, len(bookings))
	for i := range bookings {
		responses[i] = bookings[i].ToResponse()
	}

	return &BookingHistoryPage{
		Bookings:      responses,
		TotalBookings: total,
		TotalPages:    int(math.Ceil(float64(total) / float64(pageSize))),
		CurrentPage:   page,
	}, nil
}
