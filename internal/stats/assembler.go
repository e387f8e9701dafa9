package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/mtrann/healthtrack/internal/health"
	"github.com/mtrann/healthtrack/internal/telemetry/tracing"
	"github.com/mtrann/healthtrack/internal/users"
	"github.com/mtrann/healthtrack/internal/workouts"
	"github.com/mtrann/healthtrack/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=stats_mocks_test.go -package=stats_test

type workoutSessionsRepo interface {
	ListActiveInRange(ctx context.Context, userID int, from, to time.Time) ([]workouts.Session, error)
}

type healthStatsRepo interface {
	ListInRange(ctx context.Context, userID int, from, to time.Time) ([]health.HealthStat, error)
}

type usersDirectory interface {
	ResolveTarget(ctx context.Context, viewerID, targetID int) (*users.User, error)
}

// Assembler builds the time-windowed statistics reports. It only ever
// reads: target resolution and the permission to look at somebody
// else's records are the directory's business.
type Assembler struct {
	directory   usersDirectory
	sessions    workoutSessionsRepo
	healthStats healthStatsRepo
}

func NewAssembler(
	directory usersDirectory,
	sessions workoutSessionsRepo,
	healthStats healthStatsRepo,
) *Assembler {
	return &Assembler{
		directory:   directory,
		sessions:    sessions,
		healthStats: healthStats,
	}
}

// AssembleParams carries one statistics request. TargetUserID zero means
// the viewer's own records. Today pins the clock so that equal requests
// over the same data give equal reports.
type AssembleParams struct {
	ViewerID     int
	TargetUserID int
	Period       Period
	Selector     string
	Today        time.Time
}

type TargetUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type HealthSummary struct {
	AvgWeight      *float64 `json:"avg_weight"`
	AvgBMI         *float64 `json:"avg_bmi"`
	AvgWaterIntake *float64 `json:"avg_water_intake"`
	AvgStepCount   *float64 `json:"avg_step_count"`
	AvgHeartRate   *float64 `json:"avg_heart_rate"`
}

type Report struct {
	TargetUser          TargetUser    `json:"target_user"`
	Period              Period        `json:"period"`
	StartDate           string        `json:"start_date"`
	EndDate             string        `json:"end_date"`
	TotalCaloriesBurned []float64     `json:"total_calories_burned"`
	TotalTime           []int         `json:"total_time"`
	TotalSessions       int           `json:"total_sessions"`
	WeightData          []*float64    `json:"weight_data"`
	BMIData             []*float64    `json:"bmi_data"`
	WaterIntakeData     []*float64    `json:"water_intake_data"`
	StepCountData       []*float64    `json:"step_count_data"`
	HeartRateData       []*float64    `json:"heart_rate_data"`
	HealthSummary       HealthSummary `json:"health_summary"`
	WeightChange        *float64      `json:"weight_change"`
}

func (a *Assembler) Assemble(ctx context.Context, params AssembleParams) (_ *Report, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.assemble")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	target, resolved, err := a.resolve(ctx, params)
	if err != nil {
		return nil, err
	}

	sessions, healthStats, err := a.fetch(ctx, target.ID, resolved)
	if err != nil {
		return nil, err
	}

	caloriesSamples := make([]Sample, 0, len(sessions))
	durationSamples := make([]Sample, 0, len(sessions))
	for _, session := range sessions {
		caloriesSamples = append(caloriesSamples, Sample{
			Time: session.UpdatedAt, Seq: session.ID,
			Value: session.TotalCaloriesBurned, Valid: true,
		})
		durationSamples = append(durationSamples, Sample{
			Time: session.UpdatedAt, Seq: session.ID,
			Value: float64(session.TotalDuration), Valid: true,
		})
	}

	weightSamples := healthSamples(healthStats, func(hs *health.HealthStat) *float64 { return hs.Weight })
	bmiSamples := healthSamples(healthStats, func(hs *health.HealthStat) *float64 { return hs.BMI })
	waterSamples := healthSamples(healthStats, func(hs *health.HealthStat) *float64 { return hs.WaterIntake })
	stepSamples := healthSamples(healthStats, func(hs *health.HealthStat) *float64 { return intField(hs.StepCount) })
	heartRateSamples := healthSamples(healthStats, func(hs *health.HealthStat) *float64 { return intField(hs.HeartRate) })

	durationSums := SumSeries(durationSamples, resolved)
	totalTime := make([]int, len(durationSums))
	for i, sum := range durationSums {
		totalTime[i] = int(sum)
	}

	changes := TrackChanges(healthStats)

	return &Report{
		TargetUser:          targetUserOf(target),
		Period:              resolved.Period,
		StartDate:           resolved.Range.Start.Format(time.DateOnly),
		EndDate:             resolved.Range.End.Format(time.DateOnly),
		TotalCaloriesBurned: SumSeries(caloriesSamples, resolved),
		TotalTime:           totalTime,
		TotalSessions:       len(sessions),
		WeightData:          LatestSeries(weightSamples, resolved),
		BMIData:             LatestSeries(bmiSamples, resolved),
		WaterIntakeData:     LatestSeries(waterSamples, resolved),
		StepCountData:       LatestSeries(stepSamples, resolved),
		HeartRateData:       LatestSeries(heartRateSamples, resolved),
		HealthSummary: HealthSummary{
			AvgWeight:      roundedAverage(weightSamples),
			AvgBMI:         roundedAverage(bmiSamples),
			AvgWaterIntake: roundedAverage(waterSamples),
			AvgStepCount:   roundedAverage(stepSamples),
			AvgHeartRate:   roundedAverage(heartRateSamples),
		},
		WeightChange: changes.WeightChange,
	}, nil
}

type RecordSnapshot struct {
	Date   string   `json:"date"`
	Weight *float64 `json:"weight"`
	Height *float64 `json:"height"`
}

type RecordSnapshotWithID struct {
	RecordSnapshot
	ID int `json:"id"`
}

type Changes struct {
	WeightChange *float64 `json:"weight_change"`
	HeightChange *float64 `json:"height_change"`
}

type ChangesReport struct {
	TargetUser  TargetUser            `json:"target_user"`
	Period      Period                `json:"period"`
	StartDate   string                `json:"start_date"`
	EndDate     string                `json:"end_date"`
	Year        string                `json:"year,omitempty"`
	FirstRecord *RecordSnapshot       `json:"first_record"`
	LastRecord  *RecordSnapshotWithID `json:"last_record"`
	Changes     Changes               `json:"changes"`
}

func (a *Assembler) TrackChanges(ctx context.Context, params AssembleParams) (_ *ChangesReport, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stats.trackChanges")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	target, resolved, err := a.resolve(ctx, params)
	if err != nil {
		return nil, err
	}

	healthStats, err := a.healthStats.ListInRange(
		ctx, target.ID,
		resolved.Range.Start, resolved.Range.End.AddDate(0, 0, 1),
	)
	if err != nil {
		return nil, fmt.Errorf("list health stats: %w", err)
	}

	changes := TrackChanges(healthStats)

	report := &ChangesReport{
		TargetUser: targetUserOf(target),
		Period:     resolved.Period,
		StartDate:  resolved.Range.Start.Format(time.DateOnly),
		EndDate:    resolved.Range.End.Format(time.DateOnly),
		Changes: Changes{
			WeightChange: changes.WeightChange,
			HeightChange: changes.HeightChange,
		},
	}
	if resolved.Period == PeriodYearly {
		report.Year = fmt.Sprintf("%d", resolved.Range.Start.Year())
	}
	if changes.First != nil {
		report.FirstRecord = &RecordSnapshot{
			Date:   changes.First.Date.Format(time.DateOnly),
			Weight: changes.First.Weight,
			Height: changes.First.Height,
		}
	}
	if changes.Last != nil {
		report.LastRecord = &RecordSnapshotWithID{
			RecordSnapshot: RecordSnapshot{
				Date:   changes.Last.Date.Format(time.DateOnly),
				Weight: changes.Last.Weight,
				Height: changes.Last.Height,
			},
			ID: changes.Last.ID,
		}
	}

	return report, nil
}

func (a *Assembler) resolve(ctx context.Context, params AssembleParams) (*users.User, *ResolvedPeriod, error) {
	resolved, err := ResolvePeriod(params.Period, params.Selector, params.Today)
	if err != nil {
		return nil, nil, err
	}

	target, err := a.directory.ResolveTarget(ctx, params.ViewerID, params.TargetUserID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve target user: %w", err)
	}

	return target, resolved, nil
}

func (a *Assembler) fetch(
	ctx context.Context,
	targetID int,
	resolved *ResolvedPeriod,
) ([]workouts.Session, []health.HealthStat, error) {
	// the repos take a half-open [from, to) range
	from := resolved.Range.Start
	to := resolved.Range.End.AddDate(0, 0, 1)

	sessions, err := a.sessions.ListActiveInRange(ctx, targetID, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("list workout sessions: %w", err)
	}

	healthStats, err := a.healthStats.ListInRange(ctx, targetID, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("list health stats: %w", err)
	}

	return sessions, healthStats, nil
}

func healthSamples(records []health.HealthStat, field func(*health.HealthStat) *float64) []Sample {
	samples := make([]Sample, 0, len(records))
	for i := range records {
		record := &records[i]
		sample := Sample{Time: record.Date, Seq: record.ID}
		if value := field(record); value != nil {
			sample.Value = *value
			sample.Valid = true
		}
		samples = append(samples, sample)
	}
	return samples
}

func intField(value *int) *float64 {
	if value == nil {
		return nil
	}
	converted := float64(*value)
	return &converted
}

func roundedAverage(samples []Sample) *float64 {
	avg := AverageOf(samples)
	if avg == nil {
		return nil
	}
	rounded := pkg.RoundToTwoDecimals(*avg)
	return &rounded
}

func targetUserOf(user *users.User) TargetUser {
	return TargetUser{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName(),
		Role:     string(user.Role),
	}
}
