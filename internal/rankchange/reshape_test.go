package rankchange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func snapshot(date string, slots ...string) WideSnapshot {
	s := WideSnapshot{Date: date, HasDate: true}
	for i := 0; i+1 < len(slots); i += 2 {
		s.Slots = append(s.Slots, Slot{Label: slots[i], Entity: slots[i+1]})
	}
	return s
}

func TestReshape_Example(t *testing.T) {
	obs, err := Reshape([]WideSnapshot{
		snapshot("2024-01-01", "Top 1", "AAA", "Top 2", "BBB"),
		snapshot("2024-01-02", "Top 1", "BBB", "Top 2", "CCC"),
	})
	require.NoError(t, err)

	assert.Equal(t, []RankedObservation{
		{Date: day(2024, 1, 1), Rank: 1, Entity: "AAA"},
		{Date: day(2024, 1, 1), Rank: 2, Entity: "BBB"},
		{Date: day(2024, 1, 2), Rank: 1, Entity: "BBB"},
		{Date: day(2024, 1, 2), Rank: 2, Entity: "CCC"},
	}, obs)
	assert.Equal(t, "01-02", obs[2].Display())
}

func TestReshape_SortsAndSkipsAbsent(t *testing.T) {
	obs, err := Reshape([]WideSnapshot{
		snapshot("2024-01-03", "Top 3", "CCC", "top1", "AAA", "Top 2", ""),
		snapshot("2024-01-02", "TOP 2", "BBB", "Top 1", "   "),
	})
	require.NoError(t, err)

	assert.Equal(t, []RankedObservation{
		{Date: day(2024, 1, 2), Rank: 2, Entity: "BBB"},
		{Date: day(2024, 1, 3), Rank: 1, Entity: "AAA"},
		{Date: day(2024, 1, 3), Rank: 3, Entity: "CCC"},
	}, obs)
}

func TestReshape_IgnoresNonSlotColumns(t *testing.T) {
	obs, err := Reshape([]WideSnapshot{
		snapshot("2024-01-02", "Top 1", "AAA", "Score", "12.5", "Topic", "x"),
	})
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, "AAA", obs[0].Entity)
}

func TestReshape_FormatErrors(t *testing.T) {
	tests := []struct {
		name  string
		snaps []WideSnapshot
	}{
		{"missing date", []WideSnapshot{{Slots: []Slot{{Label: "Top 1", Entity: "AAA"}}}}},
		{"unparseable date", []WideSnapshot{snapshot("yesterday", "Top 1", "AAA")}},
		{"empty date", []WideSnapshot{snapshot("", "Top 1", "AAA")}},
		{"zero rank slot", []WideSnapshot{snapshot("2024-01-02", "Top 0", "AAA")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reshape(tt.snaps)
			require.Error(t, err)
			assert.True(t, IsFormatError(err), "expected FormatError, got %T", err)
		})
	}
}

func TestReshape_RoundTrip(t *testing.T) {
	snaps := []WideSnapshot{
		snapshot("2024-03-04", "Top 1", "KODEX 200", "Top 2", "TIGER 반도체", "Top 3", ""),
		snapshot("2024-03-05", "Top 1", "TIGER 반도체", "Top 2", "", "Top 3", "KODEX 200"),
		snapshot("2024-03-06"),
	}

	obs, err := Reshape(snaps)
	require.NoError(t, err)

	type pair struct {
		rank   int
		entity string
	}
	got := map[string]map[pair]bool{}
	for _, o := range obs {
		k := o.Date.Format("2006-01-02")
		if got[k] == nil {
			got[k] = map[pair]bool{}
		}
		got[k][pair{o.Rank, o.Entity}] = true
	}

	want := map[string]map[pair]bool{}
	for _, s := range snaps {
		for _, slot := range s.Slots {
			if slot.Entity == "" {
				continue
			}
			rank, _, _ := SlotRank(slot.Label)
			if want[s.Date] == nil {
				want[s.Date] = map[pair]bool{}
			}
			want[s.Date][pair{rank, slot.Entity}] = true
		}
	}

	assert.Equal(t, want, got)
}

func TestSlotRank(t *testing.T) {
	tests := []struct {
		label   string
		rank    int
		ok      bool
		wantErr bool
	}{
		{"Top 1", 1, true, false},
		{"top10", 10, true, false},
		{" TOP 3 ", 3, true, false},
		{"Top 0", 0, true, true},
		{"Top -2", 0, true, true},
		{"Date", 0, false, false},
		{"Top Pick", 0, false, false},
		{"Laptop 1", 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			rank, ok, err := SlotRank(tt.label)
			assert.Equal(t, tt.rank, rank)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-02", day(2024, 1, 2)},
		{"2024-01-02T00:00:00", day(2024, 1, 2)},
		{"2024-01-02T15:30:00+09:00", day(2024, 1, 2)},
		{"2024-01-02 09:00:00", day(2024, 1, 2)},
		{"2024/01/02", day(2024, 1, 2)},
		{"2024.01.02", day(2024, 1, 2)},
		{"Jan 2, 2024", day(2024, 1, 2)},
		{"20240102", day(2024, 1, 2)},
		{"1704153600000", day(2024, 1, 2)},
		{"1704153600", day(2024, 1, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}

	for _, bad := range []string{"", "not a date", "2024-13-45", "123"} {
		_, err := ParseDate(bad)
		assert.True(t, IsFormatError(err), "ParseDate(%q) should fail with FormatError", bad)
	}
}

func TestFormatDisplay(t *testing.T) {
	assert.Equal(t, "12-31", FormatDisplay(day(2023, 12, 31)))
}
