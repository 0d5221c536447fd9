package dashboard

import (
	"time"

	"github.com/wonny/lighthorse/backend/internal/rankchange"
)

// NoticeLevel is the severity of a view notice
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a user-facing message attached to a view
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Query narrows a view
type Query struct {
	Search string `json:"search,omitempty"`
}

// DeltaRow is a rank delta with its rendered background
type DeltaRow struct {
	rankchange.RankDelta
	Background string `json:"background,omitempty"`
}

// View is everything a page needs to render one dataset
type View struct {
	Key       string                  `json:"key"`
	Label     string                  `json:"label"`
	Group     string                  `json:"group,omitempty"`
	Page      string                  `json:"page"`
	Path      string                  `json:"path"`
	Kind      rankchange.Kind         `json:"kind"`
	Query     Query                   `json:"query"`
	Table     *rankchange.Table       `json:"table"`
	Analysis  *rankchange.Analysis    `json:"analysis,omitempty"`
	Rows      []DeltaRow              `json:"rank_changes,omitempty"`
	Series    []rankchange.ScorePoint `json:"series,omitempty"`
	Chart     bool                    `json:"chart"`
	Notices   []Notice                `json:"notices,omitempty"`
	FetchedAt *time.Time              `json:"fetched_at,omitempty"`
}

// Empty reports whether there are no rows to show
func (v *View) Empty() bool {
	return v.Table.Len() == 0
}

// Degraded reports whether loading failed and the view is a placeholder
func (v *View) Degraded() bool {
	for _, n := range v.Notices {
		if n.Level == NoticeError {
			return true
		}
	}
	return false
}

// HasChart reports whether a score chart can be drawn
func (v *View) HasChart() bool {
	return v.Chart && len(v.Series) > 0
}

func (v *View) notice(level NoticeLevel, msg string) {
	v.Notices = append(v.Notices, Notice{Level: level, Message: msg})
}

// Event is published whenever a view is refreshed
type Event struct {
	Type      string    `json:"type"`
	View      string    `json:"view"`
	Rows      int       `json:"rows"`
	FetchedAt time.Time `json:"fetched_at"`
	Error     string    `json:"error,omitempty"`
}
