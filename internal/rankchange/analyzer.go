package rankchange

import (
	"fmt"
	"sort"
	"time"
)

// ComputeRankChanges returns the latest date's roster with rank deltas
// against the previous available date.
func ComputeRankChanges(obs []RankedObservation) []RankDelta {
	return Analyze(obs).Deltas
}

// Analyze computes rank deltas for the most recent date and collects
// data-quality warnings. "Previous" is the second most recent distinct
// date, however far back it is.
func Analyze(obs []RankedObservation) Analysis {
	sorted := make([]RankedObservation, len(obs))
	for i, o := range obs {
		// 같은 날 다른 시각은 한 날짜로 묶음
		o.Date = calendarDate(o.Date)
		sorted[i] = o
	}
	SortObservations(sorted)

	ranks := make(map[time.Time]map[string]int)
	owners := make(map[time.Time]map[int]string)
	var warnings []Warning

	for _, o := range sorted {
		date := o.Date

		byEntity, ok := ranks[date]
		if !ok {
			byEntity = make(map[string]int)
			ranks[date] = byEntity
			owners[date] = make(map[int]string)
		}

		// sorted by rank, so the first one seen is the lowest
		if kept, dup := byEntity[o.Entity]; dup {
			warnings = append(warnings, Warning{
				Kind:    WarnDuplicateEntity,
				Date:    date,
				Entity:  o.Entity,
				Rank:    o.Rank,
				Message: fmt.Sprintf("%s listed twice on %s, keeping rank %d over %d", o.Entity, date.Format("2006-01-02"), kept, o.Rank),
			})
			continue
		}
		byEntity[o.Entity] = o.Rank

		if other, taken := owners[date][o.Rank]; taken {
			warnings = append(warnings, Warning{
				Kind:    WarnDuplicateRank,
				Date:    date,
				Entity:  o.Entity,
				Rank:    o.Rank,
				Message: fmt.Sprintf("rank %d shared by %s and %s on %s", o.Rank, other, o.Entity, date.Format("2006-01-02")),
			})
			continue
		}
		owners[date][o.Rank] = o.Entity
	}

	dates := make([]time.Time, 0, len(ranks))
	for d := range ranks {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })

	result := Analysis{Deltas: []RankDelta{}, Warnings: warnings}
	if len(dates) == 0 {
		return result
	}

	latest := dates[0]
	result.Latest = &latest

	var previous map[string]int
	if len(dates) > 1 {
		prev := dates[1]
		result.Previous = &prev
		previous = ranks[prev]
	}

	for entity, current := range ranks[latest] {
		result.Deltas = append(result.Deltas, newDelta(entity, current, previous))
	}

	sort.Slice(result.Deltas, func(i, j int) bool {
		a, b := result.Deltas[i], result.Deltas[j]
		if a.CurrentRank != b.CurrentRank {
			return a.CurrentRank < b.CurrentRank
		}
		return a.Entity < b.Entity
	})

	return result
}

func newDelta(entity string, current int, previous map[string]int) RankDelta {
	d := RankDelta{Entity: entity, CurrentRank: current}

	prev, ok := previous[entity]
	if !ok {
		d.Kind = LabelNew
		d.Label = "New"
		return d
	}

	change := prev - current
	d.PreviousRank = &prev
	d.Change = &change

	switch {
	case change > 0:
		d.Kind = LabelUp
		d.Label = fmt.Sprintf("Up(%d)", change)
	case change < 0:
		d.Kind = LabelDown
		d.Label = fmt.Sprintf("Down(%d)", -change)
	default:
		d.Kind = LabelUnchanged
		d.Label = "Unchanged"
	}
	return d
}
