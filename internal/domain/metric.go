package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Placeholder is how an unavailable metric is rendered.
const Placeholder = "-"

// Metric is a numeric value that may be unavailable. NaN and ±Inf count as
// unavailable: they encode to JSON null and format as Placeholder.
type Metric float64

// NoMetric returns an unavailable metric.
func NoMetric() Metric { return Metric(math.NaN()) }

// Valid reports whether m holds a finite number.
func (m Metric) Valid() bool {
	f := float64(m)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Float returns the value and whether it is valid.
func (m Metric) Float() (float64, bool) {
	return float64(m), m.Valid()
}

// Format renders m with the given number of decimals, or Placeholder.
// A negative decimals value uses the shortest representation.
func (m Metric) Format(decimals int) string {
	if !m.Valid() {
		return Placeholder
	}
	return strconv.FormatFloat(float64(m), 'f', decimals, 64)
}

func (m Metric) String() string { return m.Format(-1) }

// MarshalJSON encodes an unavailable metric as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(float64(m), 'f', -1, 64)), nil
}

// UnmarshalJSON accepts numbers and numeric strings. Anything else decodes
// to an unavailable metric instead of failing.
func (m *Metric) UnmarshalJSON(b []byte) error {
	*m = NoMetric()
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		var s string
		if json.Unmarshal(b, &s) != nil {
			return nil
		}
		n = json.Number(strings.TrimSpace(s))
	}
	if f, err := strconv.ParseFloat(string(n), 64); err == nil {
		*m = Metric(f)
	}
	return nil
}

// guard turns a non-finite result into an unavailable metric.
func guard(f float64) Metric {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return NoMetric()
	}
	return Metric(f)
}

// roundTo rounds half away from zero to the given number of decimals.
func roundTo(m Metric, decimals int) Metric {
	if !m.Valid() {
		return m
	}
	p := math.Pow(10, float64(decimals))
	return guard(math.Round(float64(m)*p) / p)
}
