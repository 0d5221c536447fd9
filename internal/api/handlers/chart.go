package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"
	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/wonny/lighthorse/backend/internal/dashboard"
	"github.com/wonny/lighthorse/backend/internal/rankchange"
	"github.com/wonny/lighthorse/backend/pkg/logger"
)

const (
	chartWidth  = 1024
	chartHeight = 480
)

// ChartHandler renders score time series as PNG line charts
type ChartHandler struct {
	service *dashboard.Service
	logger  *logger.Logger
}

// NewChartHandler creates a new chart handler
func NewChartHandler(svc *dashboard.Service, log *logger.Logger) *ChartHandler {
	return &ChartHandler{
		service: svc,
		logger:  log,
	}
}

// GetViewChart renders one line per series of a score view
// GET /charts/views/{key}.png
func (h *ChartHandler) GetViewChart(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	view, err := h.service.Load(r.Context(), key, dashboard.Query{})
	if errors.Is(err, dashboard.ErrUnknownView) {
		respondError(w, http.StatusNotFound, "Unknown view: "+key)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load view")
		return
	}
	if !view.HasChart() {
		respondError(w, http.StatusNotFound, "차트를 그릴 데이터가 부족합니다.")
		return
	}

	var buf bytes.Buffer
	if err := RenderScoreChart(&buf, view.Label, view.Series); err != nil {
		h.logger.WithError(err).WithField("view", key).Error("Failed to render chart")
		respondError(w, http.StatusInternalServerError, "Failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// RenderScoreChart draws long-format score points as a PNG, one line per series
func RenderScoreChart(buf *bytes.Buffer, title string, points []rankchange.ScorePoint) error {
	bySeries := make(map[string]*chart.TimeSeries)
	var names []string

	for _, p := range points {
		ts, ok := bySeries[p.Series]
		if !ok {
			ts = &chart.TimeSeries{Name: p.Series}
			bySeries[p.Series] = ts
			names = append(names, p.Series)
		}
		ts.XValues = append(ts.XValues, p.Date)
		ts.YValues = append(ts.YValues, p.Value)
	}
	sort.Strings(names)

	series := make([]chart.Series, 0, len(names))
	for _, name := range names {
		ts := bySeries[name]
		// go-chart는 X값이 최소 2개 필요
		if len(ts.XValues) == 1 {
			ts.XValues = append(ts.XValues, ts.XValues[0].Add(24*time.Hour))
			ts.YValues = append(ts.YValues, ts.YValues[0])
		}
		series = append(series, *ts)
	}

	yAxis := chart.YAxis{Name: "Score"}
	if lo, hi, ok := valueBounds(points); ok && lo == hi {
		// 값이 하나뿐이면 y축 범위가 0이 되어 렌더링 실패
		yAxis.Range = &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}

	ch := chart.Chart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeValueFormatterWithFormat(rankchange.DisplayLayout),
		},
		YAxis:  yAxis,
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.LegendLeft(&ch)}

	return ch.Render(chart.PNG, buf)
}

func valueBounds(points []rankchange.ScorePoint) (lo, hi float64, ok bool) {
	for i, p := range points {
		if i == 0 || p.Value < lo {
			lo = p.Value
		}
		if i == 0 || p.Value > hi {
			hi = p.Value
		}
	}
	return lo, hi, len(points) > 0
}
