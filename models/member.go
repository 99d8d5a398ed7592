package models

// 會員等級：iron 無折扣、diamond 超時費 9 折、predator 超時費 85 折
const (
	TierIron     = "iron"
	TierDiamond  = "diamond"
	TierPredator = "predator"
)

type Member struct {
	MemberID     int    `json:"member_id" gorm:"primaryKey;autoIncrement;type:INT"`
	Name         string `json:"name" gorm:"type:varchar(50);not null"`
	Email        string `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Phone        string `json:"phone" gorm:"type:varchar(20)"`
	Password     string `json:"password" gorm:"type:varchar(100);not null"`
	Role         string `json:"role" gorm:"type:enum('user', 'admin');default:'user';not null"`
	MemberTier   string `json:"member_tier" gorm:"type:enum('iron', 'diamond', 'predator');default:'iron';not null"`
	Points       int    `json:"points" gorm:"type:INT;default:0"` // 停車累積點數，結帳時發放
	LicensePlate string `json:"license_plate" gorm:"type:varchar(20)"`
	CarModel     string `json:"car_model" gorm:"type:varchar(50)"`

	Vehicles []Vehicle `json:"-" gorm:"foreignKey:MemberID;references:MemberID"`
	Bookings []Booking `json:"-" gorm:"foreignKey:MemberID;references:MemberID"`
}

type MemberResponse struct {
	MemberID     int    `json:"member_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Role         string `json:"role"`
	MemberTier   string `json:"member_tier"`
	Points       int    `json:"points"`
	LicensePlate string `json:"license_plate"`
	CarModel     string `json:"car_model"`
}

func (m *Member) ToResponse() MemberResponse {
	return MemberResponse{
		MemberID:     m.MemberID,
		Name:         m.Name,
		Email:        m.Email,
		Phone:        m.Phone,
		Role:         m.Role,
		MemberTier:   m.MemberTier,
		Points:       m.Points,
		LicensePlate: m.LicensePlate,
		CarModel:     m.CarModel,
	}
}
