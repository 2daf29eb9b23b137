package labs

import (
	"time"

	"github.com/montanaflynn/stats"
)

// Outlier is one observation flagged outside the IQR fences.
type Outlier struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Summary holds descriptive statistics for one test across a patient's
// history. Outliers are flagged with the 1.5 IQR rule.
type Summary struct {
	TestName string    `json:"testName"`
	Count    int       `json:"count"`
	Mean     float64   `json:"mean"`
	Median   float64   `json:"median"`
	StdDev   float64   `json:"stdDev"`
	Min      float64   `json:"min"`
	Max      float64   `json:"max"`
	Outliers []Outlier `json:"outliers,omitempty"`
}

// BuildSummary computes descriptive statistics for the named test.
// Panels must be ordered by test date ascending. A series with fewer
// than two points gets zero spread and no outlier analysis.
func BuildSummary(panels []*LabResult, testName string) Summary {
	summary := Summary{TestName: testName}

	var points []TrendPoint
	var values []float64
	for _, panel := range panels {
		for _, entry := range panel.Results {
			if entry.TestName != testName {
				continue
			}
			points = append(points, TrendPoint{Date: panel.TestDate, Value: entry.Value})
			values = append(values, entry.Value)
			break
		}
	}

	summary.Count = len(values)
	if len(values) == 0 {
		return summary
	}

	summary.Mean, _ = stats.Mean(values)
	summary.Median, _ = stats.Median(values)
	summary.Min, _ = stats.Min(values)
	summary.Max, _ = stats.Max(values)

	if len(values) < 2 {
		return summary
	}
	summary.StdDev, _ = stats.StandardDeviation(values)

	quartiles, err := stats.Quartile(values)
	if err != nil {
		return summary
	}
	iqr := quartiles.Q3 - quartiles.Q1
	lower := quartiles.Q1 - 1.5*iqr
	upper := quartiles.Q3 + 1.5*iqr

	for _, p := range points {
		if p.Value < lower || p.Value > upper {
			summary.Outliers = append(summary.Outliers, Outlier{Date: p.Date, Value: p.Value})
		}
	}
	return summary
}
