package stats

import (
	"math"
	"slices"
	"strconv"

	"github.com/papercomputeco/lifeboat/pkg/passenger"
)

// Group is one category of a grouped aggregate.
type Group struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	N     int     `json:"n"` // records contributing to Value
}

// SurvivalBySex returns the survival ratio for each sex, in the order each
// category first appears. Records with no sex or no survival flag are skipped.
func SurvivalBySex(ds *passenger.Dataset) []Group {
	var (
		order []string
		acc   = map[string]*mean{}
	)
	for _, r := range records(ds) {
		if r.Sex == "" || r.Survived == nil {
			continue
		}
		m, ok := acc[r.Sex]
		if !ok {
			m = &mean{}
			acc[r.Sex] = m
			order = append(order, r.Sex)
		}
		m.add(flag(*r.Survived))
	}

	groups := make([]Group, 0, len(order))
	for _, sex := range order {
		m := acc[sex]
		groups = append(groups, Group{Label: sex, Value: m.value(), N: m.n})
	}
	return groups
}

// CountByClass returns the number of records per passenger class, ascending
// by class. Records with no class are skipped.
func CountByClass(ds *passenger.Dataset) []Group {
	counts := map[int]int{}
	for _, r := range records(ds) {
		if r.Class != nil {
			counts[*r.Class]++
		}
	}

	classes := make([]int, 0, len(counts))
	for c := range counts {
		classes = append(classes, c)
	}
	slices.Sort(classes)

	groups := make([]Group, 0, len(classes))
	for _, c := range classes {
		groups = append(groups, Group{Label: strconv.Itoa(c), Value: float64(counts[c]), N: counts[c]})
	}
	return groups
}

// Bin is one histogram bucket covering [Low, High).
type Bin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`

	// Density is the smoothed estimate at the bin centre, scaled to counts
	// so it can be drawn over the histogram.
	Density float64 `json:"density"`
}

// Distribution is a histogram with a kernel density overlay.
type Distribution struct {
	Bins      []Bin   `json:"bins"`
	N         int     `json:"n"`
	Bandwidth float64 `json:"bandwidth"`
}

// AgeDistribution builds the age histogram over present ages. bins <= 0
// selects Sturges' rule.
func AgeDistribution(ds *passenger.Dataset, bins int) Distribution {
	var ages []float64
	for _, r := range records(ds) {
		if r.Age != nil {
			ages = append(ages, *r.Age)
		}
	}
	return Histogram(ages, bins)
}

// Histogram bins values into equal-width buckets spanning their range and
// overlays a Gaussian kernel density estimate using Scott's bandwidth.
// NaN and infinite values are ignored.
func Histogram(values []float64, bins int) Distribution {
	values = slices.DeleteFunc(slices.Clone(values), func(v float64) bool {
		return math.IsNaN(v) || math.IsInf(v, 0)
	})
	n := len(values)
	if n == 0 {
		return Distribution{}
	}
	if bins <= 0 {
		bins = int(math.Ceil(math.Log2(float64(n)))) + 1
	}

	lo, hi := slices.Min(values), slices.Max(values)
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	width := (hi - lo) / float64(bins)

	out := Distribution{Bins: make([]Bin, bins), N: n, Bandwidth: scottBandwidth(values)}
	for i := range out.Bins {
		out.Bins[i].Low = lo + float64(i)*width
		out.Bins[i].High = lo + float64(i+1)*width
	}
	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1 // the maximum belongs to the last bin
		}
		out.Bins[i].Count++
	}

	for i := range out.Bins {
		centre := (out.Bins[i].Low + out.Bins[i].High) / 2
		out.Bins[i].Density = kde(values, centre, out.Bandwidth) * float64(n) * width
	}
	return out
}

// scottBandwidth is 1.06 * sigma * n^(-1/5).
func scottBandwidth(values []float64) float64 {
	n := float64(len(values))
	if n < 2 {
		return 1
	}

	var m mean
	for _, v := range values {
		m.add(v)
	}
	mu := m.value()

	var ss float64
	for _, v := range values {
		ss += (v - mu) * (v - mu)
	}
	sigma := math.Sqrt(ss / (n - 1))
	if sigma == 0 {
		return 1
	}
	return 1.06 * sigma * math.Pow(n, -0.2)
}

func kde(values []float64, x, h float64) float64 {
	var sum float64
	for _, v := range values {
		u := (x - v) / h
		sum += math.Exp(-0.5 * u * u)
	}
	return sum / (float64(len(values)) * h * math.Sqrt(2*math.Pi))
}
