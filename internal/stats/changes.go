package stats

import (
	"github.com/mtrann/healthtrack/internal/health"
	"github.com/mtrann/healthtrack/pkg"
)

// ChangeReport compares the first and last health snapshots of a range.
// The deltas stay null unless both endpoint records carry the field and
// the endpoints are two distinct records.
type ChangeReport struct {
	First        *health.HealthStat
	Last         *health.HealthStat
	WeightChange *float64
	HeightChange *float64
}

// TrackChanges picks the endpoints out of the given range-scoped
// records. First is the earliest date (lowest id on a tie), last is the
// latest date (highest id on a tie).
func TrackChanges(records []health.HealthStat) ChangeReport {
	var report ChangeReport
	if len(records) == 0 {
		return report
	}

	first := &records[0]
	last := &records[0]
	for i := 1; i < len(records); i++ {
		record := &records[i]
		if record.Date.Before(first.Date) ||
			(record.Date.Equal(first.Date) && record.ID < first.ID) {
			first = record
		}
		if record.Date.After(last.Date) ||
			(record.Date.Equal(last.Date) && record.ID > last.ID) {
			last = record
		}
	}

	report.First = first
	report.Last = last
	if first.ID == last.ID {
		return report
	}

	report.WeightChange = fieldDelta(first.Weight, last.Weight)
	report.HeightChange = fieldDelta(first.Height, last.Height)
	return report
}

func fieldDelta(first, last *float64) *float64 {
	if first == nil || last == nil {
		return nil
	}
	delta := pkg.RoundToTwoDecimals(*last - *first)
	return &delta
}
