package models

// ParkingZone 校區停車分區，屬靜態參照資料，啟動時播種，預約流程不會修改
type ParkingZone struct {
	ZoneID   int    `json:"zone_id" gorm:"primaryKey;autoIncrement;type:INT"`
	ZoneName string `json:"zone_name" gorm:"type:varchar(50);uniqueIndex;not null"`
	Building string `json:"building" gorm:"type:varchar(50)"`

	Spots []ParkingSpot `json:"-" gorm:"foreignKey:ZoneID;references:ZoneID"`
}

func (ParkingZone) TableName() string {
	return "parking_zone"
}

type ParkingZoneResponse struct {
	ZoneID     int    `json:"zone_id"`
	ZoneName   string `json:"zone_name"`
	Building   string `json:"building"`
	TotalSpots int64  `json:"total_spots"`
	Available  int64  `json:"available_spots"`
}
