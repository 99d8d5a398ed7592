package services

import (
	"time"

	"github.com/shopspring/decimal"

	"campuspark/models"
)

// 計費規則（依需求固定）：
//   - 預約費 20 元/次，建立預約時產生，不退還
//   - 前 3 小時免費，之後 10 元/小時，不足一小時以一小時計
//   - 會員折扣只適用於超時費，不適用於預約費
const (
	BookingFee   = 20.0
	FreeHours    = 3
	OvertimeRate = 10.0
)

// CheckInGracePeriod 預約後必須在此期限內 check-in，逾時自動取消
const CheckInGracePeriod = 30 * time.Minute

// FeeBreakdown 結帳費用明細
type FeeBreakdown struct {
	DurationHours   float64 `json:"duration_hours"`   // 實際停車時數
	ChargeableHours float64 `json:"chargeable_hours"` // 超過免費時段的時數（未取整）
	BilledHours     int     `json:"billed_hours"`     // 計費時數（無條件進位）
	OvertimeCost    float64 `json:"overtime_cost"`    // 折扣前超時費
	DiscountRate    float64 `json:"discount_rate"`
	DiscountAmount  float64 `json:"discount_amount"`
	FinalOvertime   float64 `json:"final_overtime"` // 折扣後超時費
	BookingFee      float64 `json:"booking_fee"`
	TotalCost       float64 `json:"total_cost"` // booking_fee + final_overtime
}

// DiscountRateForTier 會員等級對超時費的折扣率。
// 預估與結帳兩個端點共用同一張表，避免折扣率不一致
func DiscountRateForTier(tier string) float64 {
	switch tier {
	case models.TierDiamond:
		return 0.10
	case models.TierPredator:
		return 0.15
	default:
		return 0
	}
}

// PointsRateForTier 每停車一小時累積的點數
func PointsRateForTier(tier string) int {
	switch tier {
	case models.TierDiamond:
		return 5
	case models.TierPredator:
		return 10
	default:
		return 2 // iron
	}
}

// ComputeFee 計算停車費用。duration 一律從實際 check-in 時間起算，
// 不是預約建立時間。純函式，不碰資料庫
func ComputeFee(duration time.Duration, tier string) FeeBreakdown {
	durationHours := decimal.NewFromFloat(duration.Hours())
	if durationHours.IsNegative() {
		durationHours = decimal.Zero
	}

	chargeable := durationHours.Sub(decimal.NewFromInt(FreeHours))
	if chargeable.IsNegative() {
		chargeable = decimal.Zero
	}

	// 不足一小時以一小時計
	billedHours := chargeable.Ceil()
	overtime := billedHours.Mul(decimal.NewFromFloat(OvertimeRate))

	rate := decimal.NewFromFloat(DiscountRateForTier(tier))
	discountAmount := overtime.Mul(rate).Round(2)
	finalOvertime := overtime.Sub(discountAmount).Round(2)
	total := decimal.NewFromFloat(BookingFee).Add(finalOvertime).Round(2)

	return FeeBreakdown{
		DurationHours:   durationHours.Round(4).InexactFloat64(),
		ChargeableHours: chargeable.Round(4).InexactFloat64(),
		BilledHours:     int(billedHours.IntPart()),
		OvertimeCost:    overtime.InexactFloat64(),
		DiscountRate:    rate.InexactFloat64(),
		DiscountAmount:  discountAmount.InexactFloat64(),
		FinalOvertime:   finalOvertime.InexactFloat64(),
		BookingFee:      BookingFee,
		TotalCost:       total.InexactFloat64(),
	}
}

// ComputePoints 結帳時發放的點數：整數停車時數 × 等級點數率
func ComputePoints(duration time.Duration, tier string) int {
	if duration <= 0 {
		return 0
	}
	wholeHours := int(duration.Hours())
	return wholeHours * PointsRateForTier(tier)
}
