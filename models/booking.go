package models

import "time"

// 預約狀態：pending 等待 check-in、confirmed 停車中、completed / cancelled 為終態
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

// 取消原因
const (
	CancelByUser    = "user_cancelled"
	CancelByTimeout = "auto_cancelled_timeout"
	CancelByAdmin   = "admin_cancelled"
)

// Booking 預約主檔。只由預約狀態機（check-in / check-out / 取消）
// 或逾時清理排程變更，永不刪除，保留為歷史紀錄
type Booking struct {
	BookingID int  `json:"booking_id" gorm:"primaryKey;autoIncrement;type:INT"`
	MemberID  int  `json:"member_id" gorm:"index:idx_member_status;not null;type:INT"`
	VehicleID *int `json:"vehicle_id" gorm:"type:INT;default:null"`
	SpotID    int  `json:"spot_id" gorm:"index;not null;type:INT"`
	ZoneID    int  `json:"zone_id" gorm:"type:INT"`

	// 反正規化欄位，供顯示用，避免歷史查詢 join
	ZoneName string `json:"zone_name" gorm:"type:varchar(50)"`
	Floor    string `json:"floor" gorm:"type:varchar(20)"`

	StartTime       time.Time  `json:"start_time" gorm:"type:datetime;not null;index:,sort:desc"` // 預約建立時間
	ActualStartTime *time.Time `json:"actual_start_time" gorm:"type:datetime;default:null"`       // 實際 check-in 時間，計費起點
	EndTime         *time.Time `json:"end_time" gorm:"type:datetime;default:null"`
	ActualEndTime   *time.Time `json:"actual_end_time" gorm:"type:datetime;default:null"` // 實際 check-out 時間
	CheckInDeadline time.Time  `json:"check_in_deadline" gorm:"type:datetime;not null"`   // 建立後 30 分鐘內必須 check-in

	BookingFee float64 `json:"booking_fee" gorm:"type:decimal(10,2);default:20.00"` // 預約費 20 元/次，不退還
	Cost       float64 `json:"cost" gorm:"type:decimal(10,2);default:0.0"`          // 超時費（折扣後），結帳時計算
	TotalCost  float64 `json:"total_cost" gorm:"type:decimal(10,2);default:0.0"`    // booking_fee + cost

	Status       string  `json:"status" gorm:"type:enum('pending', 'confirmed', 'completed', 'cancelled');default:'pending';index:idx_member_status"`
	IsCheckedIn  bool    `json:"is_checked_in" gorm:"type:tinyint(1);default:0"`
	CancelReason *string `json:"cancel_reason" gorm:"type:enum('user_cancelled', 'auto_cancelled_timeout', 'admin_cancelled');default:null"`
	Refundable   bool    `json:"refundable" gorm:"type:tinyint(1);default:0"`

	Member      Member      `json:"-" gorm:"foreignKey:MemberID;references:MemberID"`
	Vehicle     *Vehicle    `json:"-" gorm:"foreignKey:VehicleID;references:VehicleID"`
	ParkingSpot ParkingSpot `json:"-" gorm:"foreignKey:SpotID;references:SpotID"`
}

// IsActive 是否為進行中的預約（pending 或 confirmed）
func (b *Booking) IsActive() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}

// IsTerminal 是否已進入終態
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingCompleted || b.Status == BookingCancelled
}

type BookingSpotInfo struct {
	SpotID     int    `json:"spot_id"`
	SpotNumber string `json:"spot_number"`
	Floor      string `json:"floor"`
}

type BookingZoneInfo struct {
	ZoneID   int    `json:"zone_id"`
	ZoneName string `json:"zone_name"`
	Building string `json:"building,omitempty"`
}

type BookingVehicleInfo struct {
	LicensePlate string `json:"license_plate"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
}

type BookingResponse struct {
	BookingID       int                 `json:"booking_id"`
	Spot            BookingSpotInfo     `json:"spot"`
	Zone            BookingZoneInfo     `json:"zone"`
	Vehicle         *BookingVehicleInfo `json:"vehicle"`
	StartTime       time.Time           `json:"start_time"`
	ActualStartTime *time.Time          `json:"actual_start_time,omitempty"`
	EndTime         *time.Time          `json:"end_time,omitempty"`
	CheckInDeadline time.Time           `json:"check_in_deadline"`
	Status          string              `json:"status"`
	IsCheckedIn     bool                `json:"is_checked_in"`
	BookingFee      float64             `json:"booking_fee"`
	Cost            float64             `json:"cost"`
	TotalCost       float64             `json:"total_cost"`
	CancelReason    *string             `json:"cancel_reason,omitempty"`
	Refundable      bool                `json:"refundable"`
}

func (b *Booking) ToResponse() BookingResponse {
	resp := BookingResponse{
		BookingID: b.BookingID,
		Spot: BookingSpotInfo{
			SpotID:     b.SpotID,
			SpotNumber: b.ParkingSpot.SpotNumber,
			Floor:      b.Floor,
		},
		Zone: BookingZoneInfo{
			ZoneID:   b.ZoneID,
			ZoneName: b.ZoneName,
		},
		StartTime:       b.StartTime,
		ActualStartTime: b.ActualStartTime,
		EndTime:         b.EndTime,
		CheckInDeadline: b.CheckInDeadline,
		Status:          b.Status,
		IsCheckedIn:     b.IsCheckedIn,
		BookingFee:      b.BookingFee,
		Cost:            b.Cost,
		TotalCost:       b.TotalCost,
		CancelReason:    b.CancelReason,
		Refundable:      b.Refundable,
	}
	if b.Floor == "" {
		resp.Spot.Floor = b.ParkingSpot.Floor
	}
	if b.Vehicle != nil {
		resp.Vehicle = &BookingVehicleInfo{
			LicensePlate: b.Vehicle.LicensePlate,
			Brand:        b.Vehicle.Brand,
			Model:        b.Vehicle.Model,
		}
	}
	return resp
}
