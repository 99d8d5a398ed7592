package services

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"campuspark/database"
	"campuspark/models"
)

// GetMyVehicles 查詢會員的所有車輛
func GetMyVehicles(memberID int) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	if err := database.DB.Where("member_id = ?", memberID).
		Order("is_default DESC, vehicle_id").Find(&vehicles).Error; err != nil {
		return nil, internalError("查詢車輛失敗", err)
	}
	return vehicles, nil
}

// CreateVehicle 新增車輛，會員的第一台車自動設為預設
func CreateVehicle(vehicle *models.Vehicle) error {
	var count int64
	if err := database.DB.Model(&models.Vehicle{}).
		Where("member_id = ?", vehicle.MemberID).Count(&count).Error; err != nil {
		return internalError("查詢車輛失敗", err)
	}
	if count == 0 {
		vehicle.IsDefault = true
	}

	if err := database.DB.Create(vehicle).Error; err != nil {
		return internalError("新增車輛失敗", err)
	}
	log.Printf("Vehicle %d created for member %d: %s", vehicle.VehicleID, vehicle.MemberID, vehicle.LicensePlate)
	return nil
}

// UpdateVehicle 更新車輛資料，僅限本人
func UpdateVehicle(memberID, vehicleID int, updatedFields map[string]interface{}) error {
	vehicle, err := findOwnedVehicle(memberID, vehicleID)
	if err != nil {
		return err
	}

	allowed := map[string]bool{"license_plate": true, "brand": true, "model": true}
	mappedFields := make(map[string]interface{})
	for key, value := range updatedFields {
		if !allowed[key] {
			log.Printf("Ignoring invalid vehicle field: %s", key)
			continue
		}
		str, ok := value.(string)
		if !ok {
			return invalidStateError("ERR_INVALID_INPUT", "欄位 "+key+" 必須為字串", "")
		}
		mappedFields[key] = str
	}
	if len(mappedFields) == 0 {
		return invalidStateError("ERR_INVALID_INPUT", "沒有可更新的欄位", "")
	}

	if err := database.DB.Model(vehicle).Updates(mappedFields).Error; err != nil {
		return internalError("更新車輛失敗", err)
	}
	return nil
}

// DeleteVehicle 刪除車輛，僅限本人；有進行中預約掛在該車輛時不可刪
func DeleteVehicle(memberID, vehicleID int) error {
	vehicle, err := findOwnedVehicle(memberID, vehicleID)
	if err != nil {
		return err
	}

	var activeCount int64
	if err := database.DB.Model(&models.Booking{}).
		Where("vehicle_id = ? AND status IN (?, ?)",
			vehicleID, models.BookingPending, models.BookingConfirmed).
		Count(&activeCount).Error; err != nil {
		return internalError("查詢預約失敗", err)
	}
	if activeCount > 0 {
		return conflictError("ERR_VEHICLE_IN_USE", "此車輛有進行中的預約，無法刪除")
	}

	if err := database.DB.Delete(vehicle).Error; err != nil {
		return internalError("刪除車輛失敗", err)
	}
	return nil
}

// SetDefaultVehicle 設定預設車輛，僅限本人
func SetDefaultVehicle(memberID, vehicleID int) error {
	if _, err := findOwnedVehicle(memberID, vehicleID); err != nil {
		return err
	}

	tx := database.DB.Begin()
	if tx.Error != nil {
		return internalError("開啟交易失敗", tx.Error)
	}
	if err := tx.Model(&models.Vehicle{}).
		Where("member_id = ?", memberID).
		Update("is_default", false).Error; err != nil {
		tx.Rollback()
		return internalError("更新車輛失敗", err)
	}
	if err := tx.Model(&models.Vehicle{}).
		Where("vehicle_id = ?", vehicleID).
		Update("is_default", true).Error; err != nil {
		tx.Rollback()
		return internalError("更新車輛失敗", err)
	}
	if err := tx.Commit().Error; err != nil {
		return internalError("提交交易失敗", err)
	}
	return nil
}

func findOwnedVehicle(memberID, vehicleID int) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := database.DB.First(&vehicle, vehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("ERR_VEHICLE_NOT_FOUND", "找不到車輛資料")
		}
		return nil, internalError("查詢車輛失敗", err)
	}
	if vehicle.MemberID != memberID {
		return nil, forbiddenError("ERR_INSUFFICIENT_PERMISSIONS", "您沒有權限操作此車輛")
	}
	return &vehicle, nil
}
