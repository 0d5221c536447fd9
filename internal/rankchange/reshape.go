package rankchange

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// "Top 1", "top3", "TOP 10"
var slotPattern = regexp.MustCompile(`(?i)^\s*top\s*(-?\d+)\s*$`)

// SlotRank extracts the rank from a slot label.
// ok is false for labels that are not rank slots and must be ignored.
func SlotRank(label string) (rank int, ok bool, err error) {
	m := slotPattern.FindStringSubmatch(label)
	if m == nil {
		return 0, false, nil
	}

	rank, convErr := strconv.Atoi(m[1])
	if convErr != nil || rank < 1 {
		return 0, true, &FormatError{Field: "slot", Value: label, Reason: "rank must be a positive integer"}
	}
	return rank, true, nil
}

// IsSlotLabel reports whether label follows the rank-slot naming convention
func IsSlotLabel(label string) bool {
	return slotPattern.MatchString(label)
}

// Reshape converts wide snapshots into long-format observations sorted by
// (date, rank, entity). Absent slot values are skipped.
func Reshape(snapshots []WideSnapshot) ([]RankedObservation, error) {
	out := make([]RankedObservation, 0, len(snapshots)*4)

	for i, snap := range snapshots {
		if !snap.HasDate {
			return nil, &FormatError{Field: "date", Reason: "snapshot " + strconv.Itoa(i) + " has no date field"}
		}

		date, err := ParseDate(snap.Date)
		if err != nil {
			return nil, err
		}

		for _, slot := range snap.Slots {
			rank, ok, err := SlotRank(slot.Label)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}

			entity := strings.TrimSpace(slot.Entity)
			if entity == "" {
				continue
			}

			out = append(out, RankedObservation{Date: date, Rank: rank, Entity: entity})
		}
	}

	SortObservations(out)
	return out, nil
}

// SortObservations orders observations by date, rank, then entity
func SortObservations(obs []RankedObservation) {
	sort.SliceStable(obs, func(i, j int) bool {
		a, b := obs[i], obs[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		return a.Entity < b.Entity
	})
}
