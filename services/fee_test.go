package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"campuspark/models"
)

func TestComputeFeeWithinFreeHours(t *testing.T) {
	fee := ComputeFee(2*time.Hour+30*time.Minute, models.TierIron)

	assert.Equal(t, 0, fee.BilledHours)
	assert.Equal(t, 0.0, fee.OvertimeCost)
	assert.Equal(t, 0.0, fee.FinalOvertime)
	assert.Equal(t, 20.0, fee.TotalCost, "只收預約費")
}

func TestComputeFeeExactlyThreeHours(t *testing.T) {
	fee := ComputeFee(3*time.Hour, models.TierIron)

	assert.Equal(t, 0, fee.BilledHours, "剛好 3 小時不收超時費")
	assert.Equal(t, 20.0, fee.TotalCost)
}

func TestComputeFeeRoundsUpPartialHour(t *testing.T) {
	// 超過免費時段 1 分鐘即以一小時計
	fee := ComputeFee(3*time.Hour+time.Minute, models.TierIron)

	assert.Equal(t, 1, fee.BilledHours)
	assert.Equal(t, 10.0, fee.OvertimeCost)
	assert.Equal(t, 30.0, fee.TotalCost)
}

func TestComputeFeeDiamondDiscount(t *testing.T) {
	// 5 小時：超時 2 小時 x 10 元，diamond 折 10%
	fee := ComputeFee(5*time.Hour, models.TierDiamond)

	assert.Equal(t, 2, fee.BilledHours)
	assert.Equal(t, 20.0, fee.OvertimeCost)
	assert.Equal(t, 0.10, fee.DiscountRate)
	assert.Equal(t, 2.0, fee.DiscountAmount)
	assert.Equal(t, 18.0, fee.FinalOvertime)
	assert.Equal(t, 38.0, fee.TotalCost)
}

func TestComputeFeePredatorDiscount(t *testing.T) {
	// 6 小時：超時 3 小時 x 10 元，predator 折 15%
	fee := ComputeFee(6*time.Hour, models.TierPredator)

	assert.Equal(t, 30.0, fee.OvertimeCost)
	assert.Equal(t, 0.15, fee.DiscountRate)
	assert.Equal(t, 4.5, fee.DiscountAmount)
	assert.Equal(t, 25.5, fee.FinalOvertime)
	assert.Equal(t, 45.5, fee.TotalCost)
}

func TestComputeFeeDiscountNotAppliedToBookingFee(t *testing.T) {
	// 免費時段內即使是 predator，預約費也不打折
	fee := ComputeFee(time.Hour, models.TierPredator)

	assert.Equal(t, 0.0, fee.FinalOvertime)
	assert.Equal(t, 20.0, fee.TotalCost)
}

func TestComputeFeeNegativeDuration(t *testing.T) {
	fee := ComputeFee(-time.Hour, models.TierIron)

	assert.Equal(t, 0.0, fee.DurationHours)
	assert.Equal(t, 20.0, fee.TotalCost)
}

func TestComputePoints(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		tier     string
		want     int
	}{
		{"iron 未滿 1 小時", 30 * time.Minute, models.TierIron, 0},
		{"iron 2 小時", 2 * time.Hour, models.TierIron, 4},
		{"iron 2.9 小時只算整數時數", 2*time.Hour + 54*time.Minute, models.TierIron, 4},
		{"diamond 3 小時", 3 * time.Hour, models.TierDiamond, 15},
		{"predator 4 小時", 4 * time.Hour, models.TierPredator, 40},
		{"負值不發點", -time.Hour, models.TierPredator, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputePoints(tt.duration, tt.tier))
		})
	}
}

func TestDiscountRateForTier(t *testing.T) {
	assert.Equal(t, 0.0, DiscountRateForTier(models.TierIron))
	assert.Equal(t, 0.10, DiscountRateForTier(models.TierDiamond))
	assert.Equal(t, 0.15, DiscountRateForTier(models.TierPredator))
	assert.Equal(t, 0.0, DiscountRateForTier("unknown"))
}
