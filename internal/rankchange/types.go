// Package rankchange turns ranked upstream snapshots into long-format
// observations and reports day-over-day rank movement for the latest date.
package rankchange

import "time"

// DisplayLayout is the month-day form used for dates in tables and charts
const DisplayLayout = "01-02"

// RankedObservation is "entity held rank on date".
// Date is a calendar date at UTC midnight.
type RankedObservation struct {
	Date   time.Time `json:"date"`
	Rank   int       `json:"rank"`
	Entity string    `json:"entity"`
}

// Display renders the observation date for presentation
func (o RankedObservation) Display() string {
	return o.Date.Format(DisplayLayout)
}

// WideSnapshot is one upstream row: a date plus "Top N" style slots.
// HasDate is false when the row carried no date field at all.
type WideSnapshot struct {
	Date    string
	HasDate bool
	Slots   []Slot
}

// Slot is one column of a wide snapshot. An empty Entity is absent.
type Slot struct {
	Label  string
	Entity string
}

// Label classifies a rank delta
type Label string

const (
	LabelNew       Label = "new"
	LabelUp        Label = "up"
	LabelDown      Label = "down"
	LabelUnchanged Label = "unchanged"
)

// RankDelta is the movement of one entity on the latest date.
// PreviousRank and Change are nil for New entries.
type RankDelta struct {
	Entity       string `json:"entity"`
	CurrentRank  int    `json:"current_rank"`
	PreviousRank *int   `json:"previous_rank,omitempty"`
	Change       *int   `json:"change,omitempty"`
	Label        string `json:"label"`
	Kind         Label  `json:"kind"`
}

// Magnitude returns |change|, or 0 when there is no prior rank
func (d RankDelta) Magnitude() int {
	if d.Change == nil {
		return 0
	}
	if *d.Change < 0 {
		return -*d.Change
	}
	return *d.Change
}

// WarningKind names a data-quality anomaly
type WarningKind string

const (
	WarnDuplicateEntity WarningKind = "duplicate_entity"
	WarnDuplicateRank   WarningKind = "duplicate_rank"
)

// Warning is a non-fatal data-quality finding
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Date    time.Time   `json:"date"`
	Entity  string      `json:"entity"`
	Rank    int         `json:"rank"`
	Message string      `json:"message"`
}

// Analysis is the full result of a rank-change pass
type Analysis struct {
	Latest   *time.Time  `json:"latest,omitempty"`
	Previous *time.Time  `json:"previous,omitempty"`
	Deltas   []RankDelta `json:"deltas"`
	Warnings []Warning   `json:"warnings,omitempty"`
}
