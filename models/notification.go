package models

import "time"

// 通知類型，對應預約生命週期事件
const (
	NotifyBookingCreated   = "booking_created"
	NotifyCheckInSuccess   = "checkin_success"
	NotifyCheckOutSuccess  = "checkout_success"
	NotifyBookingCancelled = "booking_cancelled"
)

// Notification 站內通知。屬盡力而為的旁路副作用，寫入失敗不影響預約流程
type Notification struct {
	NotificationID int       `json:"notification_id" gorm:"primaryKey;autoIncrement;type:INT"`
	MemberID       int       `json:"member_id" gorm:"index;not null;type:INT"`
	BookingID      *int      `json:"booking_id" gorm:"type:INT;default:null"`
	Type           string    `json:"type" gorm:"type:enum('booking_created', 'checkin_success', 'checkout_success', 'booking_cancelled');not null"`
	Title          string    `json:"title" gorm:"type:varchar(100);not null"`
	Message        string    `json:"message" gorm:"type:varchar(255)"`
	IsRead         bool      `json:"is_read" gorm:"type:tinyint(1);default:0"`
	CreatedAt      time.Time `json:"created_at"`
}
