package stats

import (
	"time"
)

// Sample is one dated observation of a single metric. Seq is the
// insertion order of the source record and breaks ties between samples
// sharing an event time. Valid is false when the source field is null.
type Sample struct {
	Time  time.Time
	Seq   int
	Value float64
	Valid bool
}

// SumSeries sums the samples per bucket. Empty buckets are 0, not null:
// the summed quantities are additive, so "no activity" is a true zero.
func SumSeries(samples []Sample, rp *ResolvedPeriod) []float64 {
	keys := rp.BucketKeys()
	index := bucketIndex(keys, rp.Period)

	series := make([]float64, len(keys))
	for _, sample := range samples {
		if !sample.Valid {
			continue
		}
		if i, ok := index[bucketKeyFor(sample.Time, rp.Period)]; ok {
			series[i] += sample.Value
		}
	}
	return series
}

// LatestSeries picks, per bucket, the value of the sample with the
// latest event time, ties broken by highest Seq. A null-valued winning
// sample and an empty bucket both produce null: a measurement that was
// never taken has no value to report.
func LatestSeries(samples []Sample, rp *ResolvedPeriod) []*float64 {
	keys := rp.BucketKeys()
	index := bucketIndex(keys, rp.Period)

	latest := make([]*Sample, len(keys))
	for i := range samples {
		sample := samples[i]
		bucketPos, ok := index[bucketKeyFor(sample.Time, rp.Period)]
		if !ok {
			continue
		}
		current := latest[bucketPos]
		if current == nil ||
			sample.Time.After(current.Time) ||
			(sample.Time.Equal(current.Time) && sample.Seq > current.Seq) {
			latest[bucketPos] = &sample
		}
	}

	series := make([]*float64, len(keys))
	for i, sample := range latest {
		if sample != nil && sample.Valid {
			value := sample.Value
			series[i] = &value
		}
	}
	return series
}

// AverageOf returns the arithmetic mean over all non-null samples, or
// null when there are none.
func AverageOf(samples []Sample) *float64 {
	var sum float64
	var count int
	for _, sample := range samples {
		if !sample.Valid {
			continue
		}
		sum += sample.Value
		count++
	}
	if count == 0 {
		return nil
	}
	avg := sum / float64(count)
	return &avg
}

func bucketKeyFor(t time.Time, period Period) time.Time {
	if period == PeriodYearly {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func bucketIndex(keys []time.Time, period Period) map[time.Time]int {
	index := make(map[time.Time]int, len(keys))
	for i, key := range keys {
		index[bucketKeyFor(key, period)] = i
	}
	return index
}
