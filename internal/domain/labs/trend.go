package labs

import (
	"time"

	"github.com/montanaflynn/stats"
)

// Trend directions.
const (
	TrendStable     = "stable"
	TrendImproving  = "improving"
	TrendWorsening  = "worsening"
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
)

// changeThreshold is the percent change below which a series counts as
// stable.
const changeThreshold = 5.0

// recentWindow is how many trailing points form the "recent" group.
const recentWindow = 3

// TrendPoint is one observation of a named test.
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// TrendResult is the classifier's output for one test across a
// patient's history.
type TrendResult struct {
	TestName    string       `json:"testName"`
	Data        []TrendPoint `json:"data"`
	Trend       string       `json:"trend"`
	NormalRange *Range       `json:"normalRange,omitempty"`
}

// classifyTrend compares the mean of the last three observations
// against the mean of everything before them. When a reference range is
// known the verdict is judged by distance from the range midpoint, the
// clinical target; otherwise by raw direction of change. A zero older
// mean makes percent change undefined and is treated as stable.
func classifyTrend(values []float64, normalRange *Range) string {
	if len(values) < 2 {
		return TrendStable
	}

	// The last three points form the recent group; everything before
	// them is the older group. Too short a series leaves the older
	// group empty and the verdict stable.
	split := len(values) - recentWindow
	if split < 1 {
		return TrendStable
	}
	older := values[:split]
	recent := values[split:]

	olderAvg, err := stats.Mean(older)
	if err != nil {
		return TrendStable
	}
	recentAvg, err := stats.Mean(recent)
	if err != nil {
		return TrendStable
	}

	if olderAvg == 0 {
		return TrendStable
	}

	change := (recentAvg - olderAvg) / olderAvg * 100
	if change < changeThreshold && change > -changeThreshold {
		return TrendStable
	}

	if normalRange != nil {
		mid := normalRange.Mid()
		recentDist := recentAvg - mid
		if recentDist < 0 {
			recentDist = -recentDist
		}
		olderDist := olderAvg - mid
		if olderDist < 0 {
			olderDist = -olderDist
		}
		if recentDist < olderDist {
			return TrendImproving
		}
		return TrendWorsening
	}

	if change > 0 {
		return TrendIncreasing
	}
	return TrendDecreasing
}

// BuildTrend extracts the named test's observations from a patient's
// panels (which must be ordered by test date ascending) and classifies
// the direction. The normal range is sticky to the first panel that
// reports one for the test; later differing ranges are ignored.
func BuildTrend(panels []*LabResult, testName string) TrendResult {
	result := TrendResult{TestName: testName}

	var values []float64
	for _, panel := range panels {
		for _, entry := range panel.Results {
			if entry.TestName != testName {
				continue
			}
			result.Data = append(result.Data, TrendPoint{Date: panel.TestDate, Value: entry.Value})
			values = append(values, entry.Value)
			if result.NormalRange == nil && entry.NormalRange != nil {
				nr := *entry.NormalRange
				result.NormalRange = &nr
			}
			break
		}
	}

	result.Trend = classifyTrend(values, result.NormalRange)
	return result
}
