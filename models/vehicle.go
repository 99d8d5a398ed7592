package models

type Vehicle struct {
	VehicleID    int    `json:"vehicle_id" gorm:"primaryKey;autoIncrement;type:INT"`
	MemberID     int    `json:"member_id" gorm:"index;not null;type:INT"`
	LicensePlate string `json:"license_plate" gorm:"type:varchar(20);not null"`
	Brand        string `json:"brand" gorm:"type:varchar(50)"`
	Model        string `json:"model" gorm:"type:varchar(50)"`
	IsDefault    bool   `json:"is_default" gorm:"type:tinyint(1);default:0"`

	Member Member `json:"-" gorm:"foreignKey:MemberID;references:MemberID"`
}

type VehicleResponse struct {
	VehicleID    int    `json:"vehicle_id"`
	LicensePlate string `json:"license_plate"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	IsDefault    bool   `json:"is_default"`
}

func (v *Vehicle) ToResponse() VehicleResponse {
	return VehicleResponse{
		VehicleID:    v.VehicleID,
		LicensePlate: v.LicensePlate,
		Brand:        v.Brand,
		Model:        v.Model,
		IsDefault:    v.IsDefault,
	}
}
