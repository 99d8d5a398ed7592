package models

// 車位狀態。不變量：occupied 若且唯若恰有一筆 pending/confirmed 預約指向該車位
const (
	SpotAvailable = "available"
	SpotOccupied  = "occupied"
	SpotReserved  = "reserved"
)

type ParkingSpot struct {
	SpotID     int    `json:"spot_id" gorm:"primaryKey;autoIncrement;type:INT"`
	ZoneID     int    `json:"zone_id" gorm:"not null;type:INT;uniqueIndex:idx_zone_spot_number"`
	SpotNumber string `json:"spot_number" gorm:"type:varchar(20);not null;uniqueIndex:idx_zone_spot_number"`
	Floor      string `json:"floor" gorm:"type:varchar(20);default:'1F'"`
	Status     string `json:"status" gorm:"type:enum('available', 'occupied', 'reserved');default:'available';not null"`

	Zone     ParkingZone `json:"-" gorm:"foreignKey:ZoneID;references:ZoneID"`
	Bookings []Booking   `json:"-" gorm:"foreignKey:SpotID;references:SpotID"`
}

func (ParkingSpot) TableName() string {
	return "parking_spot"
}

type ParkingSpotResponse struct {
	SpotID     int    `json:"spot_id"`
	ZoneID     int    `json:"zone_id"`
	ZoneName   string `json:"zone_name,omitempty"`
	SpotNumber string `json:"spot_number"`
	Floor      string `json:"floor"`
	Status     string `json:"status"`
}

func (p *ParkingSpot) ToResponse() ParkingSpotResponse {
	return ParkingSpotResponse{
		SpotID:     p.SpotID,
		ZoneID:     p.ZoneID,
		ZoneName:   p.Zone.ZoneName,
		SpotNumber: p.SpotNumber,
		Floor:      p.Floor,
		Status:     p.Status,
	}
}
