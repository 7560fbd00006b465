package domain

import "sort"

// MinChartPoints is the smallest series worth plotting.
const MinChartPoints = 2

const chartLabelLayout = "Jan 02"

// ChartPoint is one plotted weight.
type ChartPoint struct {
	Date          Day    `json:"date"`
	FormattedDate string `json:"formattedDate"`
	Weight        Metric `json:"weight"`
}

// ProjectForChart maps entries to points ordered by date ascending. Entries
// without a date are skipped; ties keep input order.
func ProjectForChart(entries []WeightEntry) []ChartPoint {
	points := make([]ChartPoint, 0, len(entries))
	for _, e := range entries {
		if e.Date.IsZero() {
			continue
		}
		points = append(points, ChartPoint{
			Date:          e.Date,
			FormattedDate: e.Date.Format(chartLabelLayout),
			Weight:        guard(float64(e.Weight)),
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// EnoughForChart reports whether points can be drawn as a line; otherwise a
// "not enough data" placeholder is shown.
func EnoughForChart(points []ChartPoint) bool {
	return len(points) >= MinChartPoints
}
