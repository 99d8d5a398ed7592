package services

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"campuspark/database"
	"campuspark/models"
)

// 需要真實 MySQL 的整合測試。設定 TEST_DATABASE_DSN 才會執行，例如：
// TEST_DATABASE_DSN="campuspark:campuspark1234@tcp(127.0.0.1:3306)/campuspark_test?charset=utf8mb4&parseTime=True&loc=Local"
func setupBookingTestDB(t *testing.T) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set, skipping integration test")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	database.DB = db

	require.NoError(t, db.AutoMigrate(
		&models.Member{},
		&models.ParkingZone{},
		&models.ParkingSpot{},
		&models.Booking{},
		&models.Vehicle{},
		&models.Notification{},
	))

	// 測試間互相獨立
	for _, table := range []string{"notifications", "bookings", "vehicles", "parking_spot", "parking_zone", "members"} {
		require.NoError(t, db.Exec("DELETE FROM "+table).Error)
	}
}

func seedMemberAndSpot(t *testing.T, tier string) (*models.Member, *models.ParkingSpot) {
	t.Helper()

	member := &models.Member{
		Name:       "測試會員",
		Email:      "test@campuspark.local",
		Password:   "hashed",
		Role:       "user",
		MemberTier: tier,
	}
	require.NoError(t, database.DB.Create(member).Error)

	zone := &models.ParkingZone{ZoneName: "A區", Building: "工學院"}
	require.NoError(t, database.DB.Create(zone).Error)

	spot := &models.ParkingSpot{
		ZoneID:     zone.ZoneID,
		SpotNumber: "1F-01",
		Floor:      "1F",
		Status:     models.SpotAvailable,
	}
	require.NoError(t, database.DB.Create(spot).Error)
	return member, spot
}

func TestBookingLifecycle(t *testing.T) {
	setupBookingTestDB(t)
	member, spot := seedMemberAndSpot(t, models.TierIron)

	// 建立預約：車位被占用、狀態 pending、期限 30 分鐘
	result, err := CreateBooking(member.MemberID, CreateBookingInput{SpotID: spot.SpotID})
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, result.Booking.Status)
	assert.WithinDuration(t, time.Now().Add(CheckInGracePeriod), result.Booking.CheckInDeadline, 5*time.Second)

	var reloaded models.ParkingSpot
	require.NoError(t, database.DB.First(&reloaded, spot.SpotID).Error)
	assert.Equal(t, models.SpotOccupied, reloaded.Status)

	// 同一會員不可有第二筆進行中預約
	_, err = CreateBooking(member.MemberID, CreateBookingInput{SpotID: spot.SpotID})
	require.Error(t, err)
	assert.Equal(t, "ERR_ACTIVE_BOOKING_EXISTS", AsServiceError(err).Code)

	// 報到
	booking, err := CheckIn(member.MemberID, result.Booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, booking.Status)
	assert.True(t, booking.IsCheckedIn)
	require.NotNil(t, booking.ActualStartTime)

	// 重複報到
	_, err = CheckIn(member.MemberID, result.Booking.BookingID)
	require.Error(t, err)
	assert.Equal(t, "ERR_ALREADY_CHECKED_IN", AsServiceError(err).Code)

	// 結帳：免費時段內只收預約費，車位釋放
	checkout, err := CheckOut(member.MemberID, result.Booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCompleted, checkout.Booking.Status)
	assert.Equal(t, 20.0, checkout.Fee.TotalCost)

	require.NoError(t, database.DB.First(&reloaded, spot.SpotID).Error)
	assert.Equal(t, models.SpotAvailable, reloaded.Status)

	// 已完成的預約不可取消
	_, err = CancelBooking(member.MemberID, result.Booking.BookingID, models.CancelByUser)
	require.Error(t, err)
	assert.Equal(t, KindInvalidState, AsServiceError(err).Kind)
}

func TestCheckOutRequiresCheckIn(t *testing.T) {
	setupBookingTestDB(t)
	member, spot := seedMemberAndSpot(t, models.TierIron)

	result, err := CreateBooking(member.MemberID, CreateBookingInput{SpotID: spot.SpotID})
	require.NoError(t, err)

	_, err = CheckOut(member.MemberID, result.Booking.BookingID)
	require.Error(t, err)
	assert.Equal(t, "ERR_NOT_CHECKED_IN", AsServiceError(err).Code)
}

func TestCheckInAfterDeadlineCancels(t *testing.T) {
	setupBookingTestDB(t)
	member, spot := seedMemberAndSpot(t, models.TierIron)

	result, err := CreateBooking(member.MemberID, CreateBookingInput{SpotID: spot.SpotID})
	require.NoError(t, err)

	// 把期限改到過去，模擬逾期
	require.NoError(t, database.DB.Model(&models.Booking{}).
		Where("booking_id = ?", result.Booking.BookingID).
		Update("check_in_deadline", time.Now().Add(-time.Minute)).Error)

	_, err = CheckIn(member.MemberID, result.Booking.BookingID)
	require.Error(t, err)
	assert.Equal(t, "ERR_CHECKIN_EXPIRED", AsServiceError(err).Code)

	// 逾期報到的副作用：預約取消、車位釋放
	var booking models.Booking
	require.NoError(t, database.DB.First(&booking, result.Booking.BookingID).Error)
	assert.Equal(t, models.BookingCancelled, booking.Status)
	require.NotNil(t, booking.CancelReason)
	assert.Equal(t, models.CancelByTimeout, *booking.CancelReason)

	var reloaded models.ParkingSpot
	require.NoError(t, database.DB.First(&reloaded, spot.SpotID).Error)
	assert.Equal(t, models.SpotAvailable, reloaded.Status)
}

func TestAutoCancelExpiredBookings(t *testing.T) {
	setupBookingTestDB(t)
	member, spot := seedMemberAndSpot(t, models.TierIron)

	result, err := CreateBooking(member.MemberID, CreateBookingInput{SpotID: spot.SpotID})
	require.NoError(t, err)

	require.NoError(t, database.DB.Model(&models.Booking{}).
		Where("booking_id = ?", result.Booking.BookingID).
		Update("check_in_deadline", time.Now().Add(-time.Minute)).Error)

	sweep, err := AutoCancelExpiredBookings()
	require.NoError(t, err)
	assert.Equal(t, 1, sweep.Checked)
	assert.Equal(t, 1, sweep.Cancelled)
	assert.Equal(t, 0, sweep.Failed)

	var booking models.Booking
	require.NoError(t, database.DB.First(&booking, result.Booking.BookingID).Error)
	assert.Equal(t, models.BookingCancelled, booking.Status)
	require.NotNil(t, booking.CancelReason)
	assert.Equal(t, models.CancelByTimeout, *booking.CancelReason)

	var reloaded models.ParkingSpot
	require.NoError(t, database.DB.First(&reloaded, spot.SpotID).Error)
	assert.Equal(t, models.SpotAvailable, reloaded.Status)

	// 已取消的不會被重複清掃
	sweep, err = AutoCancelExpiredBookings()
	require.NoError(t, err)
	assert.Equal(t, 0, sweep.Checked)
}

func TestZoneAllocationPicksAvailableSpot(t *testing.T) {
	setupBookingTestDB(t)
	member, spot := seedMemberAndSpot(t, models.TierIron)

	// 同分區第二個車位，先把第一個占掉
	second := &models.ParkingSpot{
		ZoneID:     spot.ZoneID,
		SpotNumber: "1F-02",
		Floor:      "1F",
		Status:     models.SpotAvailable,
	}
	require.NoError(t, database.DB.Create(second).Error)
	require.NoError(t, database.DB.Model(&models.ParkingSpot{}).
		Where("spot_id = ?", spot.SpotID).
		Update("status", models.SpotOccupied).Error)

	result, err := CreateBooking(member.MemberID, CreateBookingInput{ZoneID: spot.ZoneID})
	require.NoError(t, err)
	assert.Equal(t, second.SpotID, result.Booking.SpotID)
}

func TestCancelWithStaleSnapshotKeepsCheckInRecord(t *testing.T) {
	setupBookingTestDB(t)
	member, spot := seedMemberAndSpot(t, models.TierIron)

	result, err := CreateBooking(member.MemberID, CreateBookingInput{SpotID: spot.SpotID})
	require.NoError(t, err)

	// 取消端在鎖定前持有的舊快照（仍是 pending）
	stale := *result.Booking

	// 取消鎖定前，check-in 先一步提交
	_, err = CheckIn(member.MemberID, result.Booking.BookingID)
	require.NoError(t, err)

	require.NoError(t, cancelBookingTx(&stale, models.CancelByUser, time.Now()))

	// 取消必須保留 check-in 留下的紀錄，不能被舊快照洗掉
	var row models.Booking
	require.NoError(t, database.DB.First(&row, result.Booking.BookingID).Error)
	assert.Equal(t, models.BookingCancelled, row.Status)
	assert.True(t, row.IsCheckedIn)
	require.NotNil(t, row.ActualStartTime)
	require.NotNil(t, row.CancelReason)
	assert.Equal(t, models.CancelByUser, *row.CancelReason)

	var reloaded models.ParkingSpot
	require.NoError(t, database.DB.First(&reloaded, spot.SpotID).Error)
	assert.Equal(t, models.SpotAvailable, reloaded.Status)
}

func TestConcurrentCreateOnSingleSpot(t *testing.T) {
	setupBookingTestDB(t)
	memberA, spot := seedMemberAndSpot(t, models.TierIron)

	memberB := &models.Member{
		Name:       "測試會員二",
		Email:      "test2@campuspark.local",
		Password:   "hashed",
		Role:       "user",
		MemberTier: models.TierIron,
	}
	require.NoError(t, database.DB.Create(memberB).Error)

	// 兩個會員同時搶同一個車位，行鎖保證恰有一人成功
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, memberID := range []int{memberA.MemberID, memberB.MemberID} {
		wg.Add(1)
		go func(i, memberID int) {
			defer wg.Done()
			_, errs[i] = CreateBooking(memberID, CreateBookingInput{SpotID: spot.SpotID})
		}(i, memberID)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		rejected++
		kind := AsServiceError(err).Kind
		assert.Contains(t, []ErrorKind{KindConflict, KindNotFound}, kind)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	var pendingCount int64
	require.NoError(t, database.DB.Model(&models.Booking{}).
		Where("status = ?", models.BookingPending).Count(&pendingCount).Error)
	assert.EqualValues(t, 1, pendingCount)

	var reloaded models.ParkingSpot
	require.NoError(t, database.DB.First(&reloaded, spot.SpotID).Error)
	assert.Equal(t, models.SpotOccupied, reloaded.Status)
}
