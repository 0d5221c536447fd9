package rankchange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obsAt(date string, rank int, entity string) RankedObservation {
	d, err := ParseDate(date)
	if err != nil {
		panic(err)
	}
	return RankedObservation{Date: d, Rank: rank, Entity: entity}
}

func TestComputeRankChanges_Example(t *testing.T) {
	obs, err := Reshape([]WideSnapshot{
		snapshot("2024-01-01", "Top 1", "AAA", "Top 2", "BBB"),
		snapshot("2024-01-02", "Top 1", "BBB", "Top 2", "CCC"),
	})
	require.NoError(t, err)

	deltas := ComputeRankChanges(obs)
	require.Len(t, deltas, 2)

	bbb := deltas[0]
	assert.Equal(t, "BBB", bbb.Entity)
	assert.Equal(t, 1, bbb.CurrentRank)
	require.NotNil(t, bbb.PreviousRank)
	assert.Equal(t, 2, *bbb.PreviousRank)
	require.NotNil(t, bbb.Change)
	assert.Equal(t, 1, *bbb.Change)
	assert.Equal(t, "Up(1)", bbb.Label)

	ccc := deltas[1]
	assert.Equal(t, "CCC", ccc.Entity)
	assert.Equal(t, "New", ccc.Label)
	assert.Equal(t, LabelNew, ccc.Kind)
	assert.Nil(t, ccc.PreviousRank)
	assert.Nil(t, ccc.Change)
}

func TestComputeRankChanges_Unchanged(t *testing.T) {
	deltas := ComputeRankChanges([]RankedObservation{
		obsAt("2024-01-01", 1, "BBB"),
		obsAt("2024-01-02", 1, "BBB"),
	})
	require.Len(t, deltas, 1)
	assert.Equal(t, "Unchanged", deltas[0].Label)
	assert.Equal(t, LabelUnchanged, deltas[0].Kind)
	require.NotNil(t, deltas[0].Change)
	assert.Equal(t, 0, *deltas[0].Change)
}

func TestComputeRankChanges_UpAndDown(t *testing.T) {
	deltas := ComputeRankChanges([]RankedObservation{
		obsAt("2024-01-01", 5, "RISER"),
		obsAt("2024-01-01", 1, "FALLER"),
		obsAt("2024-01-02", 1, "RISER"),
		obsAt("2024-01-02", 4, "FALLER"),
	})
	require.Len(t, deltas, 2)

	assert.Equal(t, "RISER", deltas[0].Entity)
	assert.Equal(t, "Up(4)", deltas[0].Label)
	assert.Equal(t, 4, *deltas[0].Change)

	assert.Equal(t, "FALLER", deltas[1].Entity)
	assert.Equal(t, "Down(3)", deltas[1].Label)
	assert.Equal(t, -3, *deltas[1].Change)
	assert.Equal(t, 3, deltas[1].Magnitude())
}

func TestComputeRankChanges_SingleDateAllNew(t *testing.T) {
	deltas := ComputeRankChanges([]RankedObservation{
		obsAt("2024-01-02", 2, "B"),
		obsAt("2024-01-02", 1, "A"),
		obsAt("2024-01-02", 3, "C"),
	})
	require.Len(t, deltas, 3)
	for _, d := range deltas {
		assert.Equal(t, "New", d.Label)
		assert.Nil(t, d.PreviousRank)
		assert.Nil(t, d.Change)
	}
	assert.Equal(t, []string{"A", "B", "C"}, []string{deltas[0].Entity, deltas[1].Entity, deltas[2].Entity})
}

func TestComputeRankChanges_Empty(t *testing.T) {
	a := Analyze(nil)
	assert.Empty(t, a.Deltas)
	assert.NotNil(t, a.Deltas)
	assert.Nil(t, a.Latest)
	assert.Nil(t, a.Previous)
}

func TestComputeRankChanges_DropsDepartures(t *testing.T) {
	deltas := ComputeRankChanges([]RankedObservation{
		obsAt("2024-01-01", 1, "GONE"),
		obsAt("2024-01-01", 2, "STAY"),
		obsAt("2024-01-02", 1, "STAY"),
	})
	for _, d := range deltas {
		assert.NotEqual(t, "GONE", d.Entity)
	}
	require.Len(t, deltas, 1)
}

func TestAnalyze_PreviousSkipsGaps(t *testing.T) {
	a := Analyze([]RankedObservation{
		obsAt("2023-12-01", 3, "A"),
		obsAt("2024-01-05", 1, "A"),
		obsAt("2024-01-08", 2, "A"),
	})
	require.NotNil(t, a.Latest)
	require.NotNil(t, a.Previous)
	assert.Equal(t, day(2024, 1, 8), *a.Latest)
	assert.Equal(t, day(2024, 1, 5), *a.Previous)
	assert.Equal(t, "Down(1)", a.Deltas[0].Label)
}

func TestAnalyze_DuplicateEntityKeepsLowestRank(t *testing.T) {
	a := Analyze([]RankedObservation{
		obsAt("2024-01-01", 4, "A"),
		obsAt("2024-01-02", 7, "A"),
		obsAt("2024-01-02", 2, "A"),
	})
	require.Len(t, a.Deltas, 1)
	assert.Equal(t, 2, a.Deltas[0].CurrentRank)
	assert.Equal(t, "Up(2)", a.Deltas[0].Label)

	require.Len(t, a.Warnings, 1)
	assert.Equal(t, WarnDuplicateEntity, a.Warnings[0].Kind)
	assert.Equal(t, 7, a.Warnings[0].Rank)
}

func TestAnalyze_SameDayDifferentTimes(t *testing.T) {
	at := func(hour, rank int) RankedObservation {
		return RankedObservation{Date: time.Date(2024, 1, 2, hour, 0, 0, 0, time.UTC), Rank: rank, Entity: "A"}
	}

	a := Analyze([]RankedObservation{
		{Date: day(2024, 1, 1), Rank: 3, Entity: "A"},
		at(9, 5),
		at(10, 2),
	})
	require.Len(t, a.Deltas, 1)
	assert.Equal(t, 2, a.Deltas[0].CurrentRank)
	assert.Equal(t, "Up(1)", a.Deltas[0].Label)
	assert.Equal(t, day(2024, 1, 2), *a.Latest)

	require.Len(t, a.Warnings, 1)
	assert.Equal(t, WarnDuplicateEntity, a.Warnings[0].Kind)
	assert.Equal(t, 5, a.Warnings[0].Rank)
}

func TestAnalyze_DuplicateRankWarns(t *testing.T) {
	a := Analyze([]RankedObservation{
		obsAt("2024-01-02", 1, "A"),
		obsAt("2024-01-02", 1, "B"),
	})
	require.Len(t, a.Deltas, 2)
	require.Len(t, a.Warnings, 1)
	assert.Equal(t, WarnDuplicateRank, a.Warnings[0].Kind)
	assert.Equal(t, "B", a.Warnings[0].Entity)
}

func TestComputeRankChanges_Idempotent(t *testing.T) {
	obs := []RankedObservation{
		obsAt("2024-01-02", 2, "C"),
		obsAt("2024-01-01", 1, "A"),
		obsAt("2024-01-02", 1, "A"),
		obsAt("2024-01-01", 2, "B"),
		obsAt("2024-01-02", 3, "B"),
	}
	before := append([]RankedObservation(nil), obs...)

	first := ComputeRankChanges(obs)
	second := ComputeRankChanges(obs)

	assert.Equal(t, first, second)
	assert.Equal(t, before, obs, "input must not be reordered")
}
