package domain

import (
	"math"
	"sort"
	"time"
)

// StatsConfig holds the program parameters ComputeStats works with. Both are
// placeholders until per-user height and goal are modelled.
type StatsConfig struct {
	HeightMeters float64
	TargetLoss   float64
}

// DefaultStatsConfig returns a 1.7 m height and a 20 lb target loss.
func DefaultStatsConfig() StatsConfig {
	return StatsConfig{HeightMeters: 1.7, TargetLoss: 20}
}

// WeightStats are the metrics derived from a weight series. They are never
// stored; every load recomputes them from the full series.
type WeightStats struct {
	CurrentWeight        Metric `json:"currentWeight"`
	StartingWeight       Metric `json:"startingWeight"`
	TargetWeight         Metric `json:"targetWeight"`
	WeightLoss           Metric `json:"weightLoss"`
	WeightLossPercentage Metric `json:"weightLossPercentage"`
	CurrentBMI           Metric `json:"currentBMI"`
	DaysOnProgram        Metric `json:"daysOnProgram"`
	ProgressToGoal       Metric `json:"progressToGoal"`
	RemainingToGoal      Metric `json:"remainingToGoal"`
	FirstEntryDate       Day    `json:"firstEntryDate"`
	LastEntryDate        Day    `json:"lastEntryDate"`
	EntryCount           int    `json:"entryCount"`
}

// ComputeStats derives WeightStats from entries in any order. It returns nil
// for an empty series; callers render a "no data" state instead.
//
// Entries are ordered by date with a stable sort. Undated entries are left
// out of the ordering unless no entry has a date, in which case input order
// is used and DaysOnProgram is unavailable. Each field is guarded on its own,
// so a malformed weight blanks only the fields that depend on it.
func ComputeStats(entries []WeightEntry, now time.Time, cfg StatsConfig) *WeightStats {
	if len(entries) == 0 {
		return nil
	}
	ordered := orderByDate(entries)
	first, last := ordered[0], ordered[len(ordered)-1]

	st := &WeightStats{
		StartingWeight: guard(float64(first.Weight)),
		CurrentWeight:  guard(float64(last.Weight)),
		FirstEntryDate: first.Date,
		LastEntryDate:  last.Date,
		EntryCount:     len(entries),
	}
	st.TargetWeight = guard(float64(st.StartingWeight) - cfg.TargetLoss)
	st.WeightLoss = guard(float64(st.StartingWeight) - float64(st.CurrentWeight))
	st.WeightLossPercentage = lossPercentage(st.StartingWeight, st.WeightLoss)
	st.CurrentBMI = roundTo(guard(float64(st.CurrentWeight)/(cfg.HeightMeters*cfg.HeightMeters)), 1)
	st.DaysOnProgram = daysSince(first.Date, now)
	st.ProgressToGoal = guard(float64(st.WeightLoss) / (float64(st.StartingWeight) - float64(st.TargetWeight)) * 100)
	st.RemainingToGoal = guard(float64(st.CurrentWeight) - float64(st.TargetWeight))
	return st
}

func orderByDate(entries []WeightEntry) []WeightEntry {
	dated := make([]WeightEntry, 0, len(entries))
	for _, e := range entries {
		if !e.Date.IsZero() {
			dated = append(dated, e)
		}
	}
	if len(dated) == 0 {
		return entries
	}
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].Date.Before(dated[j].Date)
	})
	return dated
}

func lossPercentage(starting, loss Metric) Metric {
	if !starting.Valid() || !loss.Valid() {
		return NoMetric()
	}
	if starting <= 0 {
		return 0
	}
	return guard(float64(loss) / float64(starting) * 100)
}

// daysSince counts started days between local midnight of d and now. Both
// ends are compared on the wall clock so DST shifts do not add a day.
func daysSince(d Day, now time.Time) Metric {
	if d.IsZero() || now.IsZero() {
		return NoMetric()
	}
	fy, fm, fd := d.Time().Date()
	start := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	ny, nm, nd := now.Date()
	h, mi, s := now.Clock()
	end := time.Date(ny, nm, nd, h, mi, s, now.Nanosecond(), time.UTC)
	return guard(math.Ceil(end.Sub(start).Hours() / 24))
}

// StatsDisplay is WeightStats rendered for display, with Placeholder for
// every unavailable field.
type StatsDisplay struct {
	CurrentWeight        string `json:"currentWeight"`
	StartingWeight       string `json:"startingWeight"`
	TargetWeight         string `json:"targetWeight"`
	WeightLoss           string `json:"weightLoss"`
	WeightLossPercentage string `json:"weightLossPercentage"`
	CurrentBMI           string `json:"currentBMI"`
	DaysOnProgram        string `json:"daysOnProgram"`
	ProgressToGoal       string `json:"progressToGoal"`
	RemainingToGoal      string `json:"remainingToGoal"`
}

// Display renders the stats. A nil receiver renders every field as Placeholder.
func (s *WeightStats) Display() StatsDisplay {
	if s == nil {
		return StatsDisplay{
			CurrentWeight:        Placeholder,
			StartingWeight:       Placeholder,
			TargetWeight:         Placeholder,
			WeightLoss:           Placeholder,
			WeightLossPercentage: Placeholder,
			CurrentBMI:           Placeholder,
			DaysOnProgram:        Placeholder,
			ProgressToGoal:       Placeholder,
			RemainingToGoal:      Placeholder,
		}
	}
	return StatsDisplay{
		CurrentWeight:        s.CurrentWeight.Format(-1),
		StartingWeight:       s.StartingWeight.Format(-1),
		TargetWeight:         s.TargetWeight.Format(-1),
		WeightLoss:           s.WeightLoss.Format(-1),
		WeightLossPercentage: s.WeightLossPercentage.Format(1),
		CurrentBMI:           s.CurrentBMI.Format(1),
		DaysOnProgram:        s.DaysOnProgram.Format(0),
		ProgressToGoal:       roundTo(s.ProgressToGoal, 0).Format(0),
		RemainingToGoal:      s.RemainingToGoal.Format(-1),
	}
}
