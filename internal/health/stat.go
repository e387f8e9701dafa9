package health

import (
	"time"

	"github.com/mtrann/healthtrack/pkg"
)

// HealthStat is one daily body measurement snapshot. Weight is in kilos,
// height in meters, water intake in liters.
type HealthStat struct {
	ID          int       `json:"id"`
	UserID      int       `json:"userId"`
	Date        time.Time `json:"date"`
	Weight      *float64  `json:"weight"`
	Height      *float64  `json:"height"`
	BMI         *float64  `json:"bmi"`
	WaterIntake *float64  `json:"waterIntake"`
	StepCount   *int      `json:"stepCount"`
	HeartRate   *int      `json:"heartRate"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ComputeBMI derives the BMI from weight and height at write time. BMI
// stays null when either measurement is missing or height is zero.
func (hs *HealthStat) ComputeBMI() {
	hs.BMI = nil
	if hs.Weight == nil || hs.Height == nil {
		return
	}
	if *hs.Height == 0 {
		return
	}
	bmi := pkg.RoundToTwoDecimals(*hs.Weight / (*hs.Height * *hs.Height))
	hs.BMI = &bmi
}
