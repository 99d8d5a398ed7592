package services

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"campuspark/database"
	"campuspark/models"
)

// GetZones 查詢所有分區與各分區的可用車位數
func GetZones() ([]models.ParkingZoneResponse, error) {
	var zones []models.ParkingZone
	if err := database.DB.Order("zone_id").Find(&zones).Error; err != nil {
		return nil, internalError("查詢分區失敗", err)
	}

	responses := make([]models.ParkingZoneResponse, len(zones))
	for i, zone := range zones {
		var total, available int64
		if err := database.DB.Model(&models.ParkingSpot{}).
			Where("zone_id = ?", zone.ZoneID).Count(&total).Error; err != nil {
			return nil, internalError("查詢車位失敗", err)
		}
		if err := database.DB.Model(&models.ParkingSpot{}).
			Where("zone_id = ? AND status = ?", zone.ZoneID, models.SpotAvailable).
			Count(&available).Error; err != nil {
			return nil, internalError("查詢車位失敗", err)
		}
		responses[i] = models.ParkingZoneResponse{
			ZoneID:     zone.ZoneID,
			ZoneName:   zone.ZoneName,
			Building:   zone.Building,
			TotalSpots: total,
			Available:  available,
		}
	}
	return responses, nil
}

// GetZoneAvailability 查詢分區內可用車位清單，可用樓層過濾
func GetZoneAvailability(zoneID int, floor string) (*models.ParkingZoneResponse, []models.ParkingSpotResponse, error) {
	var zone models.ParkingZone
	if err := database.DB.First(&zone, zoneID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, notFoundError("ERR_ZONE_NOT_FOUND", "停車分區不存在")
		}
		return nil, nil, internalError("查詢分區失敗", err)
	}

	query := database.DB.Where("zone_id = ? AND status = ?", zoneID, models.SpotAvailable)
	if floor != "" {
		query = query.Where("floor = ?", floor)
	}

	var spots []models.ParkingSpot
	if err := query.Order("spot_id").Find(&spots).Error; err != nil {
		return nil, nil, internalError("查詢可用車位失敗", err)
	}

	var total int64
	if err := database.DB.Model(&models.ParkingSpot{}).
		Where("zone_id = ?", zoneID).Count(&total).Error; err != nil {
		return nil, nil, internalError("查詢車位失敗", err)
	}

	spotResponses := make([]models.ParkingSpotResponse, len(spots))
	for i := range spots {
		spotResponses[i] = spots[i].ToResponse()
		spotResponses[i].ZoneName = zone.ZoneName
	}

	log.Printf("Zone %d (%s): %d total spots, %d available", zone.ZoneID, zone.ZoneName, total, len(spots))
	return &models.ParkingZoneResponse{
		ZoneID:     zone.ZoneID,
		ZoneName:   zone.ZoneName,
		Building:   zone.Building,
		TotalSpots: total,
		Available:  int64(len(spots)),
	}, spotResponses, nil
}
