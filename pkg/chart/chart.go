// Package chart builds the three fixed dashboard visualizations from the
// passenger dataset and renders them for terminals.
package chart

import (
	"fmt"
	"strings"

	"github.com/papercomputeco/lifeboat/pkg/passenger"
	"github.com/papercomputeco/lifeboat/pkg/stats"
)

// Kind identifies one of the fixed charts.
type Kind string

const (
	SurvivalBySex     Kind = "survival-by-sex"
	ClassDistribution Kind = "class-distribution"
	AgeDistribution   Kind = "age-distribution"
)

// Kinds lists every chart in selector order.
var Kinds = []Kind{SurvivalBySex, ClassDistribution, AgeDistribution}

// Title is the label shown in the chart selector.
func (k Kind) Title() string {
	switch k {
	case SurvivalBySex:
		return "Survival by Gender"
	case ClassDistribution:
		return "Passenger Class Distribution"
	case AgeDistribution:
		return "Age Distribution"
	default:
		return string(k)
	}
}

// Next returns the kind after k in selector order, wrapping around.
func (k Kind) Next() Kind {
	for i, kind := range Kinds {
		if kind == k {
			return Kinds[(i+1)%len(Kinds)]
		}
	}
	return Kinds[0]
}

// Prev returns the kind before k in selector order, wrapping around.
func (k Kind) Prev() Kind {
	for i, kind := range Kinds {
		if kind == k {
			return Kinds[(i+len(Kinds)-1)%len(Kinds)]
		}
	}
	return Kinds[0]
}

// ErrUnknownKind is returned by ParseKind for an unrecognised selector.
type ErrUnknownKind struct {
	Value string
}

func (e ErrUnknownKind) Error() string {
	return fmt.Sprintf("unknown chart %q (want one of %s)", e.Value, strings.Join(kindNames(), ", "))
}

// ParseKind accepts a chart identifier or its title, case-insensitively.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	for _, k := range Kinds {
		if strings.EqualFold(s, string(k)) || strings.EqualFold(s, k.Title()) {
			return k, nil
		}
	}
	return "", ErrUnknownKind{Value: s}
}

func kindNames() []string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return names
}

// Bar is one bar of a chart.
type Bar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Chart is a renderable aggregate. Curve, when present, has one point per
// bar and holds the smoothed distribution.
type Chart struct {
	Kind   Kind      `json:"kind"`
	Title  string    `json:"title"`
	XLabel string    `json:"x_label"`
	YLabel string    `json:"y_label"`
	Bars   []Bar     `json:"bars"`
	Curve  []float64 `json:"curve,omitempty"`
}

// Build computes the chart of the given kind.
func Build(kind Kind, ds *passenger.Dataset) (Chart, error) {
	c := Chart{Kind: kind, Title: kind.Title()}

	switch kind {
	case SurvivalBySex:
		c.XLabel, c.YLabel = passenger.ColumnSex, passenger.ColumnSurvived
		for _, g := range stats.SurvivalBySex(ds) {
			c.Bars = append(c.Bars, Bar{Label: g.Label, Value: g.Value})
		}

	case ClassDistribution:
		c.XLabel, c.YLabel = passenger.ColumnClass, "count"
		for _, g := range stats.CountByClass(ds) {
			c.Bars = append(c.Bars, Bar{Label: g.Label, Value: g.Value})
		}

	case AgeDistribution:
		c.XLabel, c.YLabel = passenger.ColumnAge, "count"
		dist := stats.AgeDistribution(ds, 0)
		for _, bin := range dist.Bins {
			c.Bars = append(c.Bars, Bar{
				Label: fmt.Sprintf("%.0f-%.0f", bin.Low, bin.High),
				Value: float64(bin.Count),
			})
			c.Curve = append(c.Curve, bin.Density)
		}

	default:
		return Chart{}, ErrUnknownKind{Value: string(kind)}
	}

	return c, nil
}
