package services

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campuspark/database"
	"campuspark/models"
	"campuspark/monitoring"
)

// 預約狀態機。所有轉移各自是一個 GORM 交易，車位占用/釋放與
// 預約寫入同交易提交，中途失敗一律整筆回滾，不留半套狀態。
// 轉移表：
//   (無)      --建立--      pending    （占用車位，deadline = now + 30m）
//   pending   --check-in--  confirmed  （now ≤ deadline，含邊界）
//   pending   --check-in--  cancelled  （逾時就地取消，回 Expired）
//   pending   --取消--      cancelled
//   pending   --排程逾時--  cancelled  （見 autocancel.go）
//   confirmed --check-out-- completed  （計費、釋放車位、發點數）
//   confirmed --取消--      cancelled  （已停車時段不收費，政策如此）

type CreateBookingInput struct {
	SpotID    int    `json:"spot_id"`
	ZoneID    int    `json:"zone_id"`
	VehicleID int    `json:"vehicle_id"`
	Floor     string `json:"floor"`
}

// CreateBookingResult 建立成功的回傳，QRPass 可能為 nil（產生失敗不影響預約）
type CreateBookingResult struct {
	Booking *models.Booking
	Spot    *models.ParkingSpot
	QRPass  *QRPass
}

// CreateBooking 建立預約：單一交易內完成「無進行中預約」檢查、
// 車位解析與占用、預約寫入。提交成功後才觸發 QR 與通知等旁路副作用
func CreateBooking(memberID int, input CreateBookingInput) (*CreateBookingResult, error) {
	var member models.Member
	if err := database.DB.First(&member, memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("ERR_MEMBER_NOT_FOUND", "找不到會員資料")
		}
		return nil, internalError("查詢會員失敗", err)
	}

	tx := database.DB.Begin()
	if tx.Error != nil {
		return nil, internalError("開啟交易失敗", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			log.Printf("Panic during booking creation for member %d: %v", memberID, r)
			panic(r) // 回滾後重拋，交給外層 Recovery middleware 回 500
		}
	}()

	// 每人至多一筆進行中預約
	activeCount, err := lockActiveBookingCount(tx, memberID)
	if err != nil {
		tx.Rollback()
		return nil, internalError("檢查進行中預約失敗", err)
	}
	if activeCount > 0 {
		tx.Rollback()
		return nil, conflictError("ERR_ACTIVE_BOOKING_EXISTS", "您已有進行中的預約，請先結束後再建立新預約")
	}

	spot, err := resolveSpot(tx, input.SpotID, input.ZoneID, input.Floor)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// 車輛為選填，僅供顯示，不影響狀態機
	var vehicleID *int
	if input.VehicleID != 0 {
		var vehicle models.Vehicle
		if err := tx.Where("vehicle_id = ? AND member_id = ?", input.VehicleID, memberID).
			First(&vehicle).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, notFoundError("ERR_VEHICLE_NOT_FOUND", "找不到車輛資料")
			}
			return nil, internalError("查詢車輛失敗", err)
		}
		vehicleID = &vehicle.VehicleID
	}

	if err := claimSpot(tx, spot); err != nil {
		tx.Rollback()
		return nil, err
	}

	now := time.Now()
	booking := &models.Booking{
		MemberID:        memberID,
		VehicleID:       vehicleID,
		SpotID:          spot.SpotID,
		ZoneID:          spot.ZoneID,
		ZoneName:        spot.Zone.ZoneName,
		Floor:           spot.Floor,
		StartTime:       now,
		CheckInDeadline: now.Add(CheckInGracePeriod),
		BookingFee:      BookingFee,
		Status:          models.BookingPending,
		IsCheckedIn:     false,
		Refundable:      false, // 預約費 20 元不退還
	}
	if err := tx.Create(booking).Error; err != nil {
		tx.Rollback()
		return nil, internalError("建立預約失敗", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, internalError("提交交易失敗", err)
	}

	monitoring.BookingEvents.WithLabelValues("created").Inc()
	log.Printf("Booking %d created: member=%d spot=%d zone=%s deadline=%s",
		booking.BookingID, memberID, spot.SpotID, spot.Zone.ZoneName,
		booking.CheckInDeadline.Format("15:04:05"))

	// 以下皆為盡力而為的旁路副作用，失敗只記錄，不影響已提交的預約
	qrPass, err := GenerateBookingQRPass(booking)
	if err != nil {
		log.Printf("QR pass generation failed for booking %d: %v", booking.BookingID, err)
		qrPass = nil
	}
	NotifyBookingCreated(memberID, booking.BookingID, spot.SpotNumber)

	booking.ParkingSpot = *spot
	return &CreateBookingResult{Booking: booking, Spot: spot, QRPass: qrPass}, nil
}

// CheckIn 確認到場（pending -> confirmed），開始計費時鐘。
// 期限比較為含邊界：now 恰等於 deadline 仍視為未逾時，與逾時排程一致。
// 已逾時則就地取消（不等排程），讓使用者立即得到結果
func CheckIn(memberID, bookingID int) (*models.Booking, error) {
	booking, err := findOwnedBooking(memberID, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status != models.BookingPending {
		if booking.Status == models.BookingConfirmed {
			return nil, invalidStateError("ERR_ALREADY_CHECKED_IN", "您已完成 check-in", booking.Status)
		}
		return nil, invalidStateError("ERR_INVALID_STATUS", "此預約狀態不允許 check-in", booking.Status)
	}

	now := time.Now()
	if checkInDeadlinePassed(now, booking.CheckInDeadline) {
		// 逾時：就地取消並釋放車位，回 Expired 讓呼叫端立即知道結果
		if err := cancelBookingTx(booking, models.CancelByTimeout, now); err != nil {
			return nil, err
		}
		monitoring.BookingEvents.WithLabelValues("expired").Inc()
		log.Printf("Check-in rejected for booking %d: deadline %s passed, booking auto-cancelled",
			booking.BookingID, booking.CheckInDeadline.Format("15:04:05"))
		return nil, expiredError("ERR_CHECKIN_EXPIRED", "已超過 check-in 期限，預約已自動取消（預約費 20 元不退還）")
	}

	tx := database.DB.Begin()
	if tx.Error != nil {
		return nil, internalError("開啟交易失敗", tx.Error)
	}
	// 行鎖下重讀狀態，與並發的逾時排程取消互斥
	var current models.Booking
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&current, booking.BookingID).Error; err != nil {
		tx.Rollback()
		return nil, internalError("查詢預約失敗", err)
	}
	if current.Status != models.BookingPending {
		tx.Rollback()
		return nil, invalidStateError("ERR_INVALID_STATUS", "此預約狀態不允許 check-in", current.Status)
	}
	// 只改鎖定後重讀的那一份，避免把鎖定前的舊欄位寫回資料庫
	current.Status = models.BookingConfirmed
	current.IsCheckedIn = true
	current.ActualStartTime = &now // 計費從這裡起算
	if err := tx.Save(&current).Error; err != nil {
		tx.Rollback()
		return nil, internalError("更新預約失敗", err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, internalError("提交交易失敗", err)
	}
	booking.Status = current.Status
	booking.IsCheckedIn = current.IsCheckedIn
	booking.ActualStartTime = current.ActualStartTime

	monitoring.BookingEvents.WithLabelValues("checked_in").Inc()
	log.Printf("Booking %d checked in: member=%d spot=%d", booking.BookingID, memberID, booking.SpotID)

	NotifyCheckInSuccess(memberID, booking.BookingID, booking.ParkingSpot.SpotNumber)
	return booking, nil
}

// CheckOutResult 結帳結果
type CheckOutResult struct {
	Booking      *models.Booking
	Fee          FeeBreakdown
	PointsEarned int
	TotalPoints  int
}

// CheckOut 結帳（confirmed -> completed）：計費、釋放車位、發放點數，單一交易
func CheckOut(memberID, bookingID int) (*CheckOutResult, error) {
	booking, err := findOwnedBooking(memberID, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status != models.BookingConfirmed {
		if booking.Status == models.BookingPending {
			return nil, invalidStateError("ERR_NOT_CHECKED_IN", "請先完成 check-in 再結帳", booking.Status)
		}
		return nil, invalidStateError("ERR_INVALID_STATUS", "此預約狀態不允許結帳", booking.Status)
	}

	now := time.Now()
	parkingStart := booking.StartTime
	if booking.ActualStartTime != nil {
		parkingStart = *booking.ActualStartTime
	}
	duration := now.Sub(parkingStart)

	var member models.Member
	if err := database.DB.First(&member, memberID).Error; err != nil {
		return nil, internalError("查詢會員失敗", err)
	}

	fee := ComputeFee(duration, member.MemberTier)
	points := ComputePoints(duration, member.MemberTier)

	tx := database.DB.Begin()
	if tx.Error != nil {
		return nil, internalError("開啟交易失敗", tx.Error)
	}

	// 行鎖下重讀狀態，與並發的取消互斥
	var current models.Booking
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&current, booking.BookingID).Error; err != nil {
		tx.Rollback()
		return nil, internalError("查詢預約失敗", err)
	}
	if current.Status != models.BookingConfirmed {
		tx.Rollback()
		return nil, invalidStateError("ERR_INVALID_STATUS", "此預約狀態不允許結帳", current.Status)
	}

	// 只改鎖定後重讀的那一份，避免把鎖定前的舊欄位寫回資料庫
	current.EndTime = &now
	current.ActualEndTime = &now
	current.Cost = fee.FinalOvertime
	current.TotalCost = fee.TotalCost
	current.Status = models.BookingCompleted
	if err := tx.Save(&current).Error; err != nil {
		tx.Rollback()
		return nil, internalError("更新預約失敗", err)
	}

	if err := releaseSpot(tx, booking.SpotID); err != nil {
		tx.Rollback()
		return nil, err
	}

	// 發放點數
	if err := tx.Model(&models.Member{}).
		Where("member_id = ?", memberID).
		Update("points", gorm.Expr("points + ?", points)).Error; err != nil {
		tx.Rollback()
		return nil, internalError("發放點數失敗", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, internalError("提交交易失敗", err)
	}
	booking.EndTime = current.EndTime
	booking.ActualEndTime = current.ActualEndTime
	booking.Cost = current.Cost
	booking.TotalCost = current.TotalCost
	booking.Status = current.Status

	monitoring.BookingEvents.WithLabelValues("completed").Inc()
	log.Printf("Booking %d completed: member=%d duration=%.2fh overtime=%.2f total=%.2f points=%d",
		booking.BookingID, memberID, duration.Hours(), fee.FinalOvertime, fee.TotalCost, points)

	NotifyCheckOutSuccess(memberID, booking.BookingID, fee)
	return &CheckOutResult{
		Booking:      booking,
		Fee:          fee,
		PointsEarned: points,
		TotalPoints:  member.Points + points,
	}, nil
}

// CancelBooking 取消預約（pending/confirmed -> cancelled）。
// 預約費不退；已停車時段不另收費。
// 對已是終態的預約回 InvalidState，車位不會被重複釋放
func CancelBooking(memberID, bookingID int, reason string) (*models.Booking, error) {
	booking, err := findOwnedBooking(memberID, bookingID)
	if err != nil {
		return nil, err
	}

	if !booking.IsActive() {
		return nil, invalidStateError("ERR_INVALID_STATUS", "只能取消進行中的預約", booking.Status)
	}

	now := time.Now()
	if err := cancelBookingTx(booking, reason, now); err != nil {
		return nil, err
	}

	monitoring.BookingEvents.WithLabelValues("cancelled").Inc()
	log.Printf("Booking %d cancelled: member=%d reason=%s (fee %.0f not refunded)",
		booking.BookingID, memberID, reason, booking.BookingFee)

	NotifyBookingCancelled(booking.MemberID, booking.BookingID, reason)
	return booking, nil
}

// AdminCancelBooking 管理員強制取消，不檢查擁有者
func AdminCancelBooking(bookingID int) (*models.Booking, error) {
	var booking models.Booking
	if err := database.DB.Preload("ParkingSpot").First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("ERR_BOOKING_NOT_FOUND", "找不到預約")
		}
		return nil, internalError("查詢預約失敗", err)
	}
	if !booking.IsActive() {
		return nil, invalidStateError("ERR_INVALID_STATUS", "只能取消進行中的預約", booking.Status)
	}

	now := time.Now()
	if err := cancelBookingTx(&booking, models.CancelByAdmin, now); err != nil {
		return nil, err
	}
	monitoring.BookingEvents.WithLabelValues("cancelled").Inc()
	log.Printf("Booking %d cancelled by admin", booking.BookingID)

	NotifyBookingCancelled(booking.MemberID, booking.BookingID, models.CancelByAdmin)
	return &booking, nil
}

// cancelBookingTx 取消的共用路徑：狀態改 cancelled、記錄原因、釋放車位，單一交易。
// 交易內以行鎖重讀狀態，與並發的 check-in / 排程取消互斥
func cancelBookingTx(booking *models.Booking, reason string, now time.Time) error {
	tx := database.DB.Begin()
	if tx.Error != nil {
		return internalError("開啟交易失敗", tx.Error)
	}

	var current models.Booking
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&current, booking.BookingID).Error; err != nil {
		tx.Rollback()
		return internalError("查詢預約失敗", err)
	}
	if !current.IsActive() {
		tx.Rollback()
		return invalidStateError("ERR_INVALID_STATUS", "只能取消進行中的預約", current.Status)
	}

	// 只改鎖定後重讀的那一份：若鎖定前已被並發 check-in，
	// 寫回舊結構會把 actual_start_time / is_checked_in 洗掉
	current.Status = models.BookingCancelled
	current.CancelReason = &reason
	current.EndTime = &now
	current.Refundable = false
	if err := tx.Save(&current).Error; err != nil {
		tx.Rollback()
		return internalError("更新預約失敗", err)
	}

	if err := releaseSpot(tx, current.SpotID); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return internalError("提交交易失敗", err)
	}

	booking.Status = current.Status
	booking.CancelReason = current.CancelReason
	booking.EndTime = current.EndTime
	booking.Refundable = current.Refundable
	booking.ActualStartTime = current.ActualStartTime
	booking.IsCheckedIn = current.IsCheckedIn
	return nil
}

// checkInDeadlinePassed 期限比較，含邊界：now 恰等於 deadline 視為未逾時，
// 與排程端的 SQL 條件（check_in_deadline < now）一致
func checkInDeadlinePassed(now, deadline time.Time) bool {
	return now.After(deadline)
}

// findOwnedBooking 讀取預約並驗證擁有者。
// 預約存在但非本人時回 Forbidden，與 NotFound 區分
func findOwnedBooking(memberID, bookingID int) (*models.Booking, error) {
	var booking models.Booking
	if err := database.DB.Preload("ParkingSpot").Preload("ParkingSpot.Zone").Preload("Vehicle").
		First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("ERR_BOOKING_NOT_FOUND", "找不到預約")
		}
		return nil, internalError("查詢預約失敗", err)
	}
	if booking.MemberID != memberID {
		log.Printf("Member %d attempted to access booking %d owned by member %d",
			memberID, bookingID, booking.MemberID)
		return nil, forbiddenError("ERR_INSUFFICIENT_PERMISSIONS", "您沒有權限操作此預約")
	}
	return &booking, nil
}
