package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"campuspark/database"
	"campuspark/models"
)

// QR 通行碼：建立預約後產生的一次性不透明權杖，App 渲染成 QR code
// 供入場 check-in 掃描。儲存在 Redis，TTL 綁定 check-in 期限
// （無期限時退而求其次 24 小時）。屬非關鍵旁路功能：
// Redis 不可用或產生失敗都不影響預約本身

const qrPassKeyPrefix = "qr:booking:"
const qrPassFallbackTTL = 24 * time.Hour

// QRPass 通行碼內容，序列化後存入 Redis，驗證時取回
type QRPass struct {
	BookingID int    `json:"booking_id"`
	MemberID  int    `json:"member_id"`
	SpotID    int    `json:"spot_id"`
	Token     string `json:"token"`
	IssuedAt  int64  `json:"issued_at"`
	ExpiresAt int64  `json:"expires_at"`
}

// GenerateBookingQRPass 為已提交的預約產生通行碼
func GenerateBookingQRPass(booking *models.Booking) (*QRPass, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	token := hex.EncodeToString(raw)

	now := time.Now()
	expiresAt := booking.CheckInDeadline
	if expiresAt.IsZero() {
		expiresAt = now.Add(qrPassFallbackTTL)
	}

	pass := &QRPass{
		BookingID: booking.BookingID,
		MemberID:  booking.MemberID,
		SpotID:    booking.SpotID,
		Token:     token,
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	}

	if database.RDB == nil {
		// Redis 降級：通行碼仍回傳給呼叫端，但無法事後驗證
		return pass, nil
	}

	payload, err := json.Marshal(pass)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal QR pass: %w", err)
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		ttl = time.Minute
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := database.RDB.Set(ctx, qrPassKeyPrefix+token, payload, ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store QR pass: %w", err)
	}
	return pass, nil
}

// ValidateQRPass 以權杖取回通行碼。過期的 key 由 Redis TTL 自動失效
func ValidateQRPass(token string) (*QRPass, error) {
	if token == "" {
		return nil, notFoundError("ERR_QR_INVALID", "無效的通行碼")
	}
	if database.RDB == nil {
		return nil, internalError("通行碼服務暫時無法使用", nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	payload, err := database.RDB.Get(ctx, qrPassKeyPrefix+token).Bytes()
	if err != nil {
		return nil, expiredError("ERR_QR_EXPIRED", "通行碼不存在或已過期")
	}

	var pass QRPass
	if err := json.Unmarshal(payload, &pass); err != nil {
		return nil, internalError("解析通行碼失敗", err)
	}
	if time.Now().Unix() > pass.ExpiresAt {
		return nil, expiredError("ERR_QR_EXPIRED", "通行碼已過期")
	}
	return &pass, nil
}
