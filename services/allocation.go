package services

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campuspark/models"
)

// resolveSpot 在交易內解析目標車位，優先序固定：
//  1. spotID 精確比對車位
//  2. 找不到時將 spotID 視為分區 ID，在該分區內找可用車位
//  3. 再以 zoneID 在分區內搜尋（可用 floor 過濾）
//
// 舊 API 允許把分區 ID 塞進 spot_id 欄位，此處保留該行為但集中在
// 單一函式處理；新呼叫端應改用明確的 zone_id。
// 所有查詢都帶 FOR UPDATE 行鎖，並發建立預約在車位列上序列化，
// 同一車位僅會有一個交易看到 available 並成功占用
func resolveSpot(tx *gorm.DB, spotID, zoneID int, floor string) (*models.ParkingSpot, error) {
	if spotID != 0 {
		var spot models.ParkingSpot
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Zone").
			First(&spot, spotID).Error
		if err == nil {
			if spot.Status != models.SpotAvailable {
				return nil, conflictError("ERR_SPOT_NOT_AVAILABLE", "此車位目前不可用")
			}
			return &spot, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internalError("查詢車位失敗", err)
		}

		// 可能是分區 ID
		var zone models.ParkingZone
		if err := tx.First(&zone, spotID).Error; err == nil {
			return findAvailableSpotInZone(tx, zone.ZoneID, floor)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internalError("查詢分區失敗", err)
		}
	}

	if zoneID != 0 {
		var zone models.ParkingZone
		if err := tx.First(&zone, zoneID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, notFoundError("ERR_ZONE_NOT_FOUND", "停車分區不存在")
			}
			return nil, internalError("查詢分區失敗", err)
		}
		return findAvailableSpotInZone(tx, zone.ZoneID, floor)
	}

	return nil, notFoundError("ERR_NO_AVAILABLE_SPOT", "找不到可用車位，請改選其他分區")
}

// findAvailableSpotInZone 取分區內第一個可用車位（依 spot_id 排序，僅保證原子性，不保證公平性）
func findAvailableSpotInZone(tx *gorm.DB, zoneID int, floor string) (*models.ParkingSpot, error) {
	query := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Zone").
		Where("zone_id = ? AND status = ?", zoneID, models.SpotAvailable)
	if floor != "" {
		query = query.Where("floor = ?", floor)
	}

	var spot models.ParkingSpot
	if err := query.Order("spot_id").First(&spot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("ERR_NO_AVAILABLE_SPOT", "找不到可用車位，請改選其他分區")
		}
		return nil, internalError("查詢可用車位失敗", err)
	}
	return &spot, nil
}

// claimSpot 占用車位（available -> occupied）。
// 必須與對應的預約寫入在同一交易內，占用沒有預約就不該留存，反之亦然
func claimSpot(tx *gorm.DB, spot *models.ParkingSpot) error {
	if spot.Status != models.SpotAvailable {
		return conflictError("ERR_SPOT_NOT_AVAILABLE", "此車位目前不可用")
	}
	spot.Status = models.SpotOccupied
	if err := tx.Model(&models.ParkingSpot{}).
		Where("spot_id = ?", spot.SpotID).
		Update("status", models.SpotOccupied).Error; err != nil {
		return internalError("更新車位狀態失敗", err)
	}
	return nil
}

// releaseSpot 釋放車位（-> available）。所有終態轉移共用此函式
func releaseSpot(tx *gorm.DB, spotID int) error {
	if err := tx.Model(&models.ParkingSpot{}).
		Where("spot_id = ?", spotID).
		Update("status", models.SpotAvailable).Error; err != nil {
		log.Printf("Failed to release parking spot %d: %v", spotID, err)
		return internalError("釋放車位失敗", err)
	}
	return nil
}

// lockActiveBookingCount 在交易內以行鎖檢查會員進行中的預約數，
// 與車位占用同交易執行，確保「每人至多一筆進行中預約」不因並發破功
func lockActiveBookingCount(tx *gorm.DB, memberID int) (int64, error) {
	var bookings []models.Booking
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("member_id = ? AND status IN (?, ?)", memberID, models.BookingPending, models.BookingConfirmed).
		Find(&bookings).Error; err != nil {
		return 0, fmt.Errorf("failed to check active bookings for member %d: %w", memberID, err)
	}
	return int64(len(bookings)), nil
}
