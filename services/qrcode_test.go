package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuspark/database"
	"campuspark/models"
)

func TestGenerateBookingQRPassWithoutRedis(t *testing.T) {
	database.RDB = nil

	deadline := time.Now().Add(30 * time.Minute)
	booking := &models.Booking{
		BookingID:       7,
		MemberID:        3,
		SpotID:          12,
		CheckInDeadline: deadline,
	}

	pass, err := GenerateBookingQRPass(booking)
	require.NoError(t, err)
	require.NotNil(t, pass)

	// Redis 降級時仍產出通行碼
	assert.Len(t, pass.Token, 64)
	assert.Equal(t, 7, pass.BookingID)
	assert.Equal(t, deadline.Unix(), pass.ExpiresAt)
}

func TestGenerateBookingQRPassStoresInRedis(t *testing.T) {
	db, mock := redismock.NewClientMock()
	database.RDB = db
	defer func() { database.RDB = nil }()

	// token 是隨機的，放寬參數比對，只驗證有下 SET
	lenient := func(expected, actual []interface{}) error { return nil }
	mock.CustomMatch(lenient).ExpectSet("", "", time.Minute).SetVal("OK")

	booking := &models.Booking{
		BookingID:       9,
		MemberID:        5,
		SpotID:          2,
		CheckInDeadline: time.Now().Add(30 * time.Minute),
	}

	pass, err := GenerateBookingQRPass(booking)
	require.NoError(t, err)
	assert.NotEmpty(t, pass.Token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateQRPass(t *testing.T) {
	db, mock := redismock.NewClientMock()
	database.RDB = db
	defer func() { database.RDB = nil }()

	stored := QRPass{
		BookingID: 11,
		MemberID:  4,
		SpotID:    8,
		Token:     "abc123",
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: time.Now().Add(10 * time.Minute).Unix(),
	}
	payload, err := json.Marshal(stored)
	require.NoError(t, err)
	mock.ExpectGet("qr:booking:abc123").SetVal(string(payload))

	pass, err := ValidateQRPass("abc123")
	require.NoError(t, err)
	assert.Equal(t, 11, pass.BookingID)
	assert.Equal(t, 8, pass.SpotID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateQRPassMissingKey(t *testing.T) {
	db, mock := redismock.NewClientMock()
	database.RDB = db
	defer func() { database.RDB = nil }()

	mock.ExpectGet("qr:booking:gone").RedisNil()

	_, err := ValidateQRPass("gone")
	require.Error(t, err)
	svcErr := AsServiceError(err)
	assert.Equal(t, KindExpired, svcErr.Kind)
	assert.Equal(t, "ERR_QR_EXPIRED", svcErr.Code)
}

func TestValidateQRPassStaleExpiry(t *testing.T) {
	db, mock := redismock.NewClientMock()
	database.RDB = db
	defer func() { database.RDB = nil }()

	stored := QRPass{
		BookingID: 1,
		Token:     "stale",
		ExpiresAt: time.Now().Add(-time.Minute).Unix(),
	}
	payload, err := json.Marshal(stored)
	require.NoError(t, err)
	mock.ExpectGet("qr:booking:stale").SetVal(string(payload))

	_, err = ValidateQRPass("stale")
	require.Error(t, err)
	assert.Equal(t, KindExpired, AsServiceError(err).Kind)
}

func TestValidateQRPassEmptyToken(t *testing.T) {
	_, err := ValidateQRPass("")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, AsServiceError(err).Kind)
}
