// Package dashboard loads catalog views from the upstream service and
// prepares them for display.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wonny/lighthorse/backend/internal/cache"
	"github.com/wonny/lighthorse/backend/internal/catalog"
	"github.com/wonny/lighthorse/backend/internal/rankchange"
	"github.com/wonny/lighthorse/backend/pkg/logger"
	"github.com/wonny/lighthorse/backend/pkg/metrics"
)

// ErrUnknownView is returned for a key missing from the catalog
var ErrUnknownView = errors.New("unknown view")

// Fetcher retrieves a raw upstream payload
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// Service turns catalog views into display-ready data
// ⭐ SSOT: 뷰 로딩/분석은 이 서비스에서만
type Service struct {
	catalog *catalog.Catalog
	fetcher Fetcher
	cache   *cache.ResponseCache
	metrics *metrics.Recorder
	logger  *logger.Logger

	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
}

// NewService creates a dashboard service. rec may be nil.
func NewService(cat *catalog.Catalog, fetcher Fetcher, rc *cache.ResponseCache, rec *metrics.Recorder, log *logger.Logger) *Service {
	return &Service{
		catalog: cat,
		fetcher: fetcher,
		cache:   rc,
		metrics: rec,
		logger:  log.WithComponent("dashboard"),
		subs:    make(map[int]chan Event),
	}
}

// Catalog returns the served catalog
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Load fetches and prepares a view. Upstream and data-format problems
// never fail the call: the view comes back empty with an error notice.
func (s *Service) Load(ctx context.Context, key string, q Query) (*View, error) {
	cv, page, ok := s.catalog.View(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownView, key)
	}

	entry, err := s.cache.GetOrFetch(ctx, cv.Path, func(ctx context.Context) ([]byte, error) {
		return s.fetcher.Fetch(ctx, cv.Path)
	})
	return s.build(cv, page, q, entry, err), nil
}

// build prepares a view from a cache entry or the error that replaced it
func (s *Service) build(cv catalog.View, page catalog.Page, q Query, entry cache.Entry, err error) *View {
	view := &View{
		Key:   cv.Key,
		Label: cv.Label,
		Group: cv.Group,
		Page:  page.Slug,
		Path:  cv.Path,
		Kind:  rankchange.KindTable,
		Query: Query{Search: strings.TrimSpace(q.Search)},
		Table: &rankchange.Table{},
		Chart: cv.Chart,
	}

	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"view": cv.Key,
			"path": cv.Path,
		}).WithError(err).Error("Failed to load view")
		view.notice(NoticeError, fmt.Sprintf("데이터를 불러오는 중 오류가 발생했습니다: %v", err))
		return view
	}
	fetchedAt := entry.FetchedAt
	view.FetchedAt = &fetchedAt

	payload, err := rankchange.DecodePayload(entry.Body)
	if err != nil {
		s.formatFailure(view, err)
		return view
	}
	view.Kind = payload.Kind
	view.Table = payload.Table

	switch {
	case payload.Ranked():
		obs, err := payload.Observations()
		if err != nil {
			s.formatFailure(view, err)
			break
		}
		s.analyze(view, obs)
	case payload.Kind == rankchange.KindScores:
		view.Series = payload.Scores
	}

	s.applySearch(view, cv)

	if view.Empty() && !view.Degraded() {
		view.notice(NoticeInfo, "선택한 조건에 해당하는 데이터가 없습니다.")
	}

	return view
}

func (s *Service) analyze(view *View, obs []rankchange.RankedObservation) {
	analysis := rankchange.Analyze(obs)
	view.Analysis = &analysis

	view.Rows = make([]DeltaRow, len(analysis.Deltas))
	for i, d := range analysis.Deltas {
		view.Rows[i] = DeltaRow{RankDelta: d, Background: rankchange.Tint(d).CSS()}
	}

	for _, w := range analysis.Warnings {
		s.metrics.RecordQualityWarning(view.Key, string(w.Kind))
		s.logger.WithFields(map[string]interface{}{
			"view":   view.Key,
			"kind":   w.Kind,
			"date":   w.Date.Format("2006-01-02"),
			"entity": w.Entity,
			"rank":   w.Rank,
		}).Warn(w.Message)
	}
	if len(analysis.Warnings) > 0 {
		view.notice(NoticeWarning, fmt.Sprintf("데이터 품질 경고 %d건이 있습니다.", len(analysis.Warnings)))
	}
}

func (s *Service) formatFailure(view *View, err error) {
	s.metrics.RecordFormatError(view.Key)
	s.logger.WithFields(map[string]interface{}{
		"view": view.Key,
		"path": view.Path,
	}).WithError(err).Error("Upstream payload rejected")

	view.Kind = rankchange.KindTable
	view.Table = &rankchange.Table{}
	view.Analysis = nil
	view.Rows = nil
	view.Series = nil
	view.notice(NoticeError, fmt.Sprintf("데이터 형식이 올바르지 않습니다: %v", err))
}

// applySearch keeps rows whose search column contains the query
func (s *Service) applySearch(view *View, cv catalog.View) {
	term := view.Query.Search
	if !cv.Search || term == "" || view.Degraded() {
		return
	}

	col := cv.SearchColumn
	if !view.Table.HasColumn(col) {
		view.notice(NoticeWarning, fmt.Sprintf("'%s' 컬럼이 데이터에 없습니다. 검색이 불가능합니다.", col))
		return
	}

	view.Table = view.Table.Filter(func(row map[string]any) bool {
		v, ok := rankchange.CellString(row[col])
		return ok && strings.Contains(v, term)
	})
}

// Refresh fetches a view anew and publishes the outcome. A failed fetch
// keeps serving the cached payload until its TTL runs out.
func (s *Service) Refresh(ctx context.Context, key string) (*View, error) {
	cv, page, ok := s.catalog.View(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownView, key)
	}

	entry, refreshErr := s.cache.Replace(ctx, cv.Path, func(ctx context.Context) ([]byte, error) {
		return s.fetcher.Fetch(ctx, cv.Path)
	})
	err := refreshErr
	if err != nil {
		// 실패하면 기존 캐시를 그대로 사용
		if cached, ok := s.cache.Get(cv.Path); ok {
			entry, err = cached, nil
		}
	}
	view := s.build(cv, page, Query{}, entry, err)

	ev := Event{Type: "refresh", View: key, Rows: view.Table.Len(), FetchedAt: time.Now()}
	if view.FetchedAt != nil {
		ev.FetchedAt = *view.FetchedAt
	}
	switch {
	case view.Degraded():
		ev.Error = view.Notices[len(view.Notices)-1].Message
	case refreshErr != nil:
		ev.Error = refreshErr.Error()
	}
	s.publish(ev)

	return view, nil
}

// RefreshAll refreshes every catalog view and returns how many loaded cleanly
func (s *Service) RefreshAll(ctx context.Context) (int, error) {
	ok := 0
	for _, cv := range s.catalog.Views() {
		if err := ctx.Err(); err != nil {
			return ok, err
		}
		view, err := s.Refresh(ctx, cv.Key)
		if err != nil {
			return ok, err
		}
		if !view.Degraded() {
			ok++
		}
	}
	return ok, nil
}

// Subscribe registers for refresh events. The returned func unsubscribes.
func (s *Service) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// publish never blocks; slow subscribers miss events
func (s *Service) publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.logger.WithField("view", ev.View).Debug("Dropped event for slow subscriber")
		}
	}
}
