package rankchange

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind is the shape of an upstream payload, resolved from its columns
type Kind string

const (
	// KindWide rows carry a date and "Top N" slot columns
	KindWide Kind = "wide"
	// KindFlat rows carry explicit date, rank and entity columns
	KindFlat Kind = "flat"
	// KindScores rows carry a date and one numeric column per series
	KindScores Kind = "scores"
	// KindTable is anything else; it is displayed as-is
	KindTable Kind = "table"
)

// Column name candidates, compared case-insensitively
var (
	dateColumns   = []string{"date", "날짜", "일자", "trade_date", "datetime", "timestamp"}
	rankColumns   = []string{"rank", "순위", "ranking", "rank_position"}
	entityColumns = []string{"entity", "name", "종목명", "종목", "etf", "etf명", "ticker", "symbol", "stock_name"}
)

// ScorePoint is one long-format value of a Date × series matrix
type ScorePoint struct {
	Date   time.Time `json:"date"`
	Series string    `json:"series"`
	Value  float64   `json:"value"`
}

// Payload is the decoded upstream response tagged by shape
type Payload struct {
	Kind   Kind                `json:"kind"`
	Table  *Table              `json:"table"`
	Wide   []WideSnapshot      `json:"-"`
	Flat   []RankedObservation `json:"-"`
	Scores []ScorePoint        `json:"-"`
}

// Ranked reports whether the payload can be analyzed for rank changes
func (p Payload) Ranked() bool {
	return p.Kind == KindWide || p.Kind == KindFlat
}

// Observations returns long-format observations for ranked payloads,
// nil for the rest.
func (p Payload) Observations() ([]RankedObservation, error) {
	switch p.Kind {
	case KindWide:
		return Reshape(p.Wide)
	case KindFlat:
		out := make([]RankedObservation, len(p.Flat))
		copy(out, p.Flat)
		SortObservations(out)
		return out, nil
	}
	return nil, nil
}

// DecodePayload decodes and classifies an upstream JSON response
func DecodePayload(data []byte) (Payload, error) {
	table, err := DecodeTable(data)
	if err != nil {
		return Payload{}, err
	}
	return Classify(table)
}

// Classify resolves the payload shape from the table's columns
func Classify(table *Table) (Payload, error) {
	p := Payload{Kind: KindTable, Table: table}

	dateCol := findColumn(table.Columns, dateColumns)

	if hasSlotColumns(table.Columns) {
		p.Kind = KindWide
		p.Wide = wideSnapshots(table, dateCol)
		return p, nil
	}

	rankCol := findColumn(table.Columns, rankColumns)
	entityCol := findColumn(table.Columns, entityColumns)
	if dateCol != "" && rankCol != "" && entityCol != "" {
		flat, err := flatObservations(table, dateCol, rankCol, entityCol)
		if err != nil {
			return Payload{}, err
		}
		p.Kind = KindFlat
		p.Flat = flat
		return p, nil
	}

	if dateCol != "" && len(numericColumns(table, dateCol)) > 0 {
		scores, err := Melt(table, dateCol)
		if err != nil {
			return Payload{}, err
		}
		p.Kind = KindScores
		p.Scores = scores
		return p, nil
	}

	return p, nil
}

// DateColumn returns the table's date column name, or ""
func DateColumn(t *Table) string {
	return findColumn(t.Columns, dateColumns)
}

// EntityColumn returns the table's entity/name column, or ""
func EntityColumn(t *Table) string {
	return findColumn(t.Columns, entityColumns)
}

// Melt converts a Date × series matrix to long format, one point per
// non-null numeric cell, sorted by (date, series).
func Melt(t *Table, dateCol string) ([]ScorePoint, error) {
	series := numericColumns(t, dateCol)
	points := make([]ScorePoint, 0, len(t.Rows)*len(series))

	for i, row := range t.Rows {
		raw, ok := CellString(row[dateCol])
		if !ok {
			return nil, &FormatError{Field: dateCol, Reason: "row " + strconv.Itoa(i) + " has no date"}
		}
		date, err := ParseDate(raw)
		if err != nil {
			return nil, err
		}

		for _, col := range series {
			v, ok := CellNumber(row[col])
			if !ok {
				continue
			}
			points = append(points, ScorePoint{Date: date, Series: col, Value: v})
		}
	}

	sort.SliceStable(points, func(i, j int) bool {
		if !points[i].Date.Equal(points[j].Date) {
			return points[i].Date.Before(points[j].Date)
		}
		return points[i].Series < points[j].Series
	})
	return points, nil
}

func hasSlotColumns(cols []string) bool {
	for _, c := range cols {
		if IsSlotLabel(c) {
			return true
		}
	}
	return false
}

func wideSnapshots(t *Table, dateCol string) []WideSnapshot {
	out := make([]WideSnapshot, 0, len(t.Rows))
	for _, row := range t.Rows {
		snap := WideSnapshot{}
		if dateCol != "" {
			if raw, ok := CellString(row[dateCol]); ok {
				snap.Date = raw
				snap.HasDate = true
			}
		}
		for _, col := range t.Columns {
			if col == dateCol {
				continue
			}
			entity, _ := CellString(row[col])
			snap.Slots = append(snap.Slots, Slot{Label: col, Entity: entity})
		}
		out = append(out, snap)
	}
	return out
}

func flatObservations(t *Table, dateCol, rankCol, entityCol string) ([]RankedObservation, error) {
	out := make([]RankedObservation, 0, len(t.Rows))
	for i, row := range t.Rows {
		raw, ok := CellString(row[dateCol])
		if !ok {
			return nil, &FormatError{Field: dateCol, Reason: "row " + strconv.Itoa(i) + " has no date"}
		}
		date, err := ParseDate(raw)
		if err != nil {
			return nil, err
		}

		entity, _ := CellString(row[entityCol])
		entity = strings.TrimSpace(entity)
		if entity == "" {
			continue
		}

		rankVal, ok := CellNumber(row[rankCol])
		if !ok || rankVal < 1 || rankVal != float64(int(rankVal)) {
			s, _ := CellString(row[rankCol])
			return nil, &FormatError{Field: rankCol, Value: s, Reason: "rank must be a positive integer"}
		}

		out = append(out, RankedObservation{Date: date, Rank: int(rankVal), Entity: entity})
	}
	SortObservations(out)
	return out, nil
}

// numericColumns lists non-date columns whose non-null cells are all numeric
func numericColumns(t *Table, dateCol string) []string {
	var cols []string
	for _, col := range t.Columns {
		if col == dateCol {
			continue
		}
		seen := false
		numeric := true
		for _, row := range t.Rows {
			v := row[col]
			if v == nil {
				continue
			}
			seen = true
			if _, isStr := v.(string); isStr {
				numeric = false
				break
			}
			if _, ok := CellNumber(v); !ok {
				numeric = false
				break
			}
		}
		if seen && numeric {
			cols = append(cols, col)
		}
	}
	return cols
}

func findColumn(cols []string, candidates []string) string {
	for _, want := range candidates {
		for _, c := range cols {
			if strings.EqualFold(strings.TrimSpace(c), want) {
				return c
			}
		}
	}
	return ""
}
