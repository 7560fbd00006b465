package domain_test

import (
	"math"
	"testing"
	"time"

	"careportal/internal/domain"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id string, weight float64, day domain.Day) domain.WeightEntry {
	return domain.WeightEntry{ID: id, UserID: "u1", Weight: domain.Metric(weight), Date: day}
}

func localMidnight(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestComputeStats_TwoEntryScenario(t *testing.T) {
	entries := []domain.WeightEntry{
		entry("1", 185, domain.NewDay(2024, time.January, 15)),
		entry("2", 162, domain.NewDay(2024, time.July, 1)),
	}

	st := domain.ComputeStats(entries, localMidnight(2024, time.July, 1), domain.DefaultStatsConfig())
	require.NotNil(t, st)

	assert.Equal(t, domain.Metric(185), st.StartingWeight)
	assert.Equal(t, domain.Metric(162), st.CurrentWeight)
	assert.Equal(t, domain.Metric(165), st.TargetWeight)
	assert.Equal(t, domain.Metric(23), st.WeightLoss)
	assert.InDelta(t, 12.43, float64(st.WeightLossPercentage), 0.01)
	assert.Equal(t, domain.Metric(168), st.DaysOnProgram)
	assert.Equal(t, domain.Metric(56.1), st.CurrentBMI)
	assert.InDelta(t, 115.0, float64(st.ProgressToGoal), 0.0001)
	assert.Equal(t, domain.Metric(-3), st.RemainingToGoal)
	assert.Equal(t, 2, st.EntryCount)
	assert.True(t, st.FirstEntryDate.Equal(domain.NewDay(2024, time.January, 15)))
	assert.True(t, st.LastEntryDate.Equal(domain.NewDay(2024, time.July, 1)))
}

func TestComputeStats_SingleEntry(t *testing.T) {
	entries := []domain.WeightEntry{entry("1", 180, domain.NewDay(2024, time.January, 1))}

	st := domain.ComputeStats(entries, localMidnight(2024, time.January, 11), domain.DefaultStatsConfig())
	require.NotNil(t, st)
	assert.Equal(t, domain.Metric(0), st.WeightLoss)
	assert.Equal(t, domain.Metric(0), st.WeightLossPercentage)
	assert.Equal(t, domain.Metric(10), st.DaysOnProgram)

	points := domain.ProjectForChart(entries)
	assert.Len(t, points, 1)
	assert.False(t, domain.EnoughForChart(points))
}

func TestComputeStats_Empty(t *testing.T) {
	assert.Nil(t, domain.ComputeStats(nil, time.Now(), domain.DefaultStatsConfig()))
	assert.Nil(t, domain.ComputeStats([]domain.WeightEntry{}, time.Now(), domain.DefaultStatsConfig()))
}

func TestComputeStats_DaysOnProgramCeil(t *testing.T) {
	entries := []domain.WeightEntry{entry("1", 200, domain.NewDay(2024, time.March, 1))}
	now := time.Date(2024, time.March, 3, 9, 30, 0, 0, time.Local)

	st := domain.ComputeStats(entries, now, domain.DefaultStatsConfig())
	assert.Equal(t, domain.Metric(3), st.DaysOnProgram)
}

func TestComputeStats_ZeroStartingWeight(t *testing.T) {
	entries := []domain.WeightEntry{
		entry("1", 0, domain.NewDay(2024, time.January, 1)),
		entry("2", 10, domain.NewDay(2024, time.February, 1)),
	}
	st := domain.ComputeStats(entries, localMidnight(2024, time.March, 1), domain.DefaultStatsConfig())
	assert.Equal(t, domain.Metric(-10), st.WeightLoss)
	assert.Equal(t, domain.Metric(0), st.WeightLossPercentage)
}

func TestComputeStats_MalformedWeightIsGuardedPerField(t *testing.T) {
	entries := []domain.WeightEntry{
		entry("1", 185, domain.NewDay(2024, time.January, 15)),
		{ID: "2", Weight: domain.NoMetric(), Date: domain.NewDay(2024, time.July, 1)},
	}
	st := domain.ComputeStats(entries, localMidnight(2024, time.July, 1), domain.DefaultStatsConfig())
	require.NotNil(t, st)

	assert.True(t, st.StartingWeight.Valid())
	assert.True(t, st.TargetWeight.Valid())
	assert.True(t, st.DaysOnProgram.Valid())
	assert.False(t, st.CurrentWeight.Valid())
	assert.False(t, st.WeightLoss.Valid())
	assert.False(t, st.WeightLossPercentage.Valid())
	assert.False(t, st.CurrentBMI.Valid())
	assert.False(t, st.ProgressToGoal.Valid())

	d := st.Display()
	assert.Equal(t, "185", d.StartingWeight)
	assert.Equal(t, domain.Placeholder, d.CurrentWeight)
	assert.Equal(t, domain.Placeholder, d.WeightLossPercentage)
	assert.Equal(t, domain.Placeholder, d.CurrentBMI)
	assert.Equal(t, "168", d.DaysOnProgram)
}

func TestComputeStats_UndatedEntries(t *testing.T) {
	t.Run("ignored for ordering when others are dated", func(t *testing.T) {
		entries := []domain.WeightEntry{
			entry("1", 170, domain.Day{}),
			entry("2", 190, domain.NewDay(2024, time.January, 1)),
			entry("3", 180, domain.NewDay(2024, time.February, 1)),
		}
		st := domain.ComputeStats(entries, localMidnight(2024, time.March, 1), domain.DefaultStatsConfig())
		assert.Equal(t, domain.Metric(190), st.StartingWeight)
		assert.Equal(t, domain.Metric(180), st.CurrentWeight)
		assert.Equal(t, 3, st.EntryCount)
	})

	t.Run("input order when nothing is dated", func(t *testing.T) {
		entries := []domain.WeightEntry{entry("1", 200, domain.Day{}), entry("2", 195, domain.Day{})}
		st := domain.ComputeStats(entries, time.Now(), domain.DefaultStatsConfig())
		assert.Equal(t, domain.Metric(200), st.StartingWeight)
		assert.Equal(t, domain.Metric(195), st.CurrentWeight)
		assert.Equal(t, domain.Metric(5), st.WeightLoss)
		assert.False(t, st.DaysOnProgram.Valid())
		assert.Equal(t, domain.Placeholder, st.Display().DaysOnProgram)
	})
}

func TestComputeStats_StableOnTies(t *testing.T) {
	day := domain.NewDay(2024, time.May, 5)
	entries := []domain.WeightEntry{entry("a", 150, day), entry("b", 149, day)}
	st := domain.ComputeStats(entries, localMidnight(2024, time.May, 6), domain.DefaultStatsConfig())
	assert.Equal(t, domain.Metric(150), st.StartingWeight)
	assert.Equal(t, domain.Metric(149), st.CurrentWeight)
}

func TestComputeStats_ConfigurableProgram(t *testing.T) {
	entries := []domain.WeightEntry{entry("1", 100, domain.NewDay(2024, time.January, 1))}
	cfg := domain.StatsConfig{HeightMeters: 2, TargetLoss: 10}
	st := domain.ComputeStats(entries, localMidnight(2024, time.January, 2), cfg)
	assert.Equal(t, domain.Metric(90), st.TargetWeight)
	assert.Equal(t, domain.Metric(25), st.CurrentBMI)

	st = domain.ComputeStats(entries, localMidnight(2024, time.January, 2), domain.StatsConfig{})
	assert.False(t, st.CurrentBMI.Valid(), "zero height must not leak Inf")
	assert.False(t, st.ProgressToGoal.Valid(), "zero target loss must not leak NaN")
}

func randomSeries(f *gofakeit.Faker, n int) []domain.WeightEntry {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.Local)
	days := make([]int, 400)
	for i := range days {
		days[i] = i
	}
	f.ShuffleInts(days)

	out := make([]domain.WeightEntry, n)
	for i := range out {
		out[i] = domain.WeightEntry{
			ID:     f.UUID(),
			UserID: "u1",
			Weight: domain.Metric(f.Float64Range(110, 320)),
			Date:   domain.DayOf(start.AddDate(0, 0, days[i])),
		}
	}
	return out
}

func TestComputeStats_IndependentOfInputOrder(t *testing.T) {
	f := gofakeit.New(7)
	now := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.Local)
	cfg := domain.DefaultStatsConfig()

	for i := 0; i < 25; i++ {
		entries := randomSeries(f, f.IntRange(1, 40))
		want := domain.ComputeStats(entries, now, cfg)

		shuffled := append([]domain.WeightEntry(nil), entries...)
		f.ShuffleAnySlice(shuffled)

		got := domain.ComputeStats(shuffled, now, cfg)
		require.Equal(t, want, got)
	}
}

func TestComputeStats_Invariants(t *testing.T) {
	f := gofakeit.New(11)
	now := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.Local)

	for i := 0; i < 50; i++ {
		st := domain.ComputeStats(randomSeries(f, f.IntRange(1, 30)), now, domain.DefaultStatsConfig())
		require.NotNil(t, st)

		assert.Equal(t, float64(st.StartingWeight)-float64(st.CurrentWeight), float64(st.WeightLoss))
		for _, m := range []domain.Metric{
			st.CurrentWeight, st.StartingWeight, st.TargetWeight, st.WeightLoss,
			st.WeightLossPercentage, st.CurrentBMI, st.DaysOnProgram,
		} {
			assert.False(t, math.IsNaN(float64(m)))
		}
	}
}
