package services

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm/clause"

	"campuspark/database"
	"campuspark/models"
	"campuspark/monitoring"
)

// 逾時自動取消排程
//
// 每 5 分鐘掃一次 pending 且已過 check-in 期限的預約：
//   - status: pending -> cancelled（cancel_reason = auto_cancelled_timeout）
//   - 車位: occupied -> available
//   - 預約費 20 元不退還
//
// 排程只透過資料庫讀寫，不在記憶體持有任何預約狀態；
// 啟動後亦會先跑一次，補上停機期間累積的逾時預約（見 main.go）

// AutoCancelError 單筆取消失敗的明細
type AutoCancelError struct {
	BookingID int    `json:"booking_id"`
	Error     string `json:"error"`
}

// AutoCancelResult 單次掃描的統計，供日誌與監控
type AutoCancelResult struct {
	Timestamp time.Time         `json:"timestamp"`
	Checked   int               `json:"checked"`
	Cancelled int               `json:"cancelled"`
	Failed    int               `json:"failed"`
	Errors    []AutoCancelError `json:"errors,omitempty"`
}

// AutoCancelExpiredBookings 取消所有逾時未 check-in 的預約。
// 每筆預約獨立一個交易，單筆失敗不會中斷整批
func AutoCancelExpiredBookings() (*AutoCancelResult, error) {
	now := time.Now()
	monitoring.AutoCancelRuns.Inc()

	// 期限比較與 check-in 端一致：嚴格小於 now 才算逾時（邊界視為未逾時）
	var expired []models.Booking
	if err := database.DB.
		Where("status = ? AND check_in_deadline < ? AND is_checked_in = ?",
			models.BookingPending, now, false).
		Find(&expired).Error; err != nil {
		return nil, fmt.Errorf("failed to query expired bookings: %w", err)
	}

	result := &AutoCancelResult{Timestamp: now, Checked: len(expired)}
	if len(expired) == 0 {
		log.Println("[AutoCancel] No expired bookings found")
		return result, nil
	}

	log.Printf("[AutoCancel] Found %d expired bookings", len(expired))
	monitoring.AutoCancelChecked.Add(float64(len(expired)))

	for i := range expired {
		booking := &expired[i]
		cancelled, err := autoCancelOne(booking, now)
		if err != nil {
			log.Printf("[AutoCancel] Failed to cancel booking %d: %v", booking.BookingID, err)
			monitoring.AutoCancelFailures.Inc()
			result.Failed++
			result.Errors = append(result.Errors, AutoCancelError{
				BookingID: booking.BookingID,
				Error:     err.Error(),
			})
			continue
		}
		if !cancelled {
			continue // 掃描與 check-in 之間狀態已變，由對方處理
		}

		result.Cancelled++
		monitoring.AutoCancelCancelled.Inc()
		monitoring.BookingEvents.WithLabelValues("expired").Inc()
		log.Printf("[AutoCancel] Cancelled booking %d (member=%d, spot=%d, fee %.0f not refunded)",
			booking.BookingID, booking.MemberID, booking.SpotID, booking.BookingFee)

		NotifyBookingCancelled(booking.MemberID, booking.BookingID, models.CancelByTimeout)
	}

	log.Printf("[AutoCancel] Completed: %d/%d cancelled, %d failed",
		result.Cancelled, result.Checked, result.Failed)
	return result, nil
}

// autoCancelOne 取消單筆逾時預約。行鎖下重讀，若此刻已被 check-in 或
// 使用者自行取消則跳過，不會重複釋放車位
func autoCancelOne(booking *models.Booking, now time.Time) (bool, error) {
	tx := database.DB.Begin()
	if tx.Error != nil {
		return false, tx.Error
	}

	var current models.Booking
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&current, booking.BookingID).Error; err != nil {
		tx.Rollback()
		return false, err
	}
	if current.Status != models.BookingPending || current.IsCheckedIn {
		tx.Rollback()
		return false, nil
	}

	reason := models.CancelByTimeout
	current.Status = models.BookingCancelled
	current.CancelReason = &reason
	current.EndTime = &now
	current.Refundable = false
	if err := tx.Save(&current).Error; err != nil {
		tx.Rollback()
		return false, err
	}

	if err := tx.Model(&models.ParkingSpot{}).
		Where("spot_id = ?", current.SpotID).
		Update("status", models.SpotAvailable).Error; err != nil {
		tx.Rollback()
		return false, err
	}

	if err := tx.Commit().Error; err != nil {
		return false, err
	}
	return true, nil
}
