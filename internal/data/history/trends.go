package history

import (
	"fmt"
	"math"
	"time"
)

// BuildTrendReport computes run-over-run deltas and a moving average of
// error counts over window. runs must be sorted oldest first.
func BuildTrendReport(runs []Run, window time.Duration) (TrendReport, error) {
	if len(runs) == 0 {
		return TrendReport{}, fmt.Errorf("no runs available")
	}

	points := make([]TrendPoint, 0, len(runs))
	for i, current := range runs {
		point := TrendPoint{
			Timestamp: current.Timestamp,
			RunID:     current.RunID,
			Errors:    current.Errors(),
			Shadowed:  current.Shadowed,
		}
		if i > 0 {
			prev := runs[i-1]
			point.DeltaErrors = current.Errors() - prev.Errors()
			point.DeltaShadowed = current.Shadowed - prev.Shadowed
			point.DeltaFiles = current.FileCount - prev.FileCount
		}
		point.AvgErrors = round2(movingAverage(runs, i, window))
		point.WindowHours = round2(window.Hours())
		points = append(points, point)
	}

	return TrendReport{
		SchemaVersion: SchemaVersion,
		Since:         runs[0].Timestamp,
		Until:         runs[len(runs)-1].Timestamp,
		Window:        window.String(),
		RunCount:      len(points),
		Points:        points,
	}, nil
}

func movingAverage(runs []Run, index int, window time.Duration) float64 {
	if window <= 0 {
		return float64(runs[index].Errors())
	}

	cutoff := runs[index].Timestamp.Add(-window)
	total, count := 0, 0
	for i := index; i >= 0; i-- {
		if runs[i].Timestamp.Before(cutoff) {
			break
		}
		total += runs[i].Errors()
		count++
	}
	return float64(total) / float64(count)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
