// Package stats computes the aggregate figures shown on the dashboard. Every
// function is pure over the read-only dataset; missing values are excluded
// rather than imputed and an empty input yields NaN, never an error.
package stats

import (
	"math"

	"github.com/papercomputeco/lifeboat/pkg/passenger"
)

// Summary holds the three headline figures.
type Summary struct {
	Count         int     `json:"count"`
	SurvivalRatio float64 `json:"survival_ratio"`
	AverageAge    float64 `json:"average_age"`
}

// Summarize computes the headline figures for ds.
func Summarize(ds *passenger.Dataset) Summary {
	return Summary{
		Count:         ds.Len(),
		SurvivalRatio: SurvivalRatio(ds),
		AverageAge:    AverageAge(ds),
	}
}

// SurvivalPercent is the survival ratio as a percentage with two decimals.
func (s Summary) SurvivalPercent() float64 {
	return Round(s.SurvivalRatio*100, 2)
}

// AverageAgeRounded is the average age with one decimal.
func (s Summary) AverageAgeRounded() float64 {
	return Round(s.AverageAge, 1)
}

// SurvivalRatio is the mean survival flag over records where it is present.
func SurvivalRatio(ds *passenger.Dataset) float64 {
	var m mean
	for _, r := range records(ds) {
		if r.Survived != nil {
			m.add(flag(*r.Survived))
		}
	}
	return m.value()
}

// AverageAge is the mean age over records where age is present.
func AverageAge(ds *passenger.Dataset) float64 {
	var m mean
	for _, r := range records(ds) {
		if r.Age != nil {
			m.add(*r.Age)
		}
	}
	return m.value()
}

// Round rounds x half away from zero to the given number of decimal places.
// NaN and infinities are returned unchanged.
func Round(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

func (m mean) value() float64 {
	if m.n == 0 {
		return math.NaN()
	}
	return m.sum / float64(m.n)
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func records(ds *passenger.Dataset) []passenger.Record {
	if ds == nil {
		return nil
	}
	return ds.Records
}
