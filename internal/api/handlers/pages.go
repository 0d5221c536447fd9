package handlers

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/lighthorse/backend/internal/catalog"
	"github.com/wonny/lighthorse/backend/internal/dashboard"
	"github.com/wonny/lighthorse/backend/internal/rankchange"
	"github.com/wonny/lighthorse/backend/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"cell": func(v any) string {
		s, _ := rankchange.CellString(v)
		return s
	},
	// Background values are produced by rankchange.Color.CSS
	"tint": func(row dashboard.DeltaRow) template.CSS {
		if row.Background == "" {
			return ""
		}
		return template.CSS("background-color: " + row.Background)
	},
	"fmtDate": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return rankchange.FormatDisplay(*t)
	},
	"fmtTime": func(t *time.Time) string {
		return t.Local().Format("2006-01-02 15:04")
	},
}

// ChartURLer builds upstream chart image URLs
type ChartURLer interface {
	URL(path string) string
}

// PageHandler renders the dashboard pages
type PageHandler struct {
	service  *dashboard.Service
	charts   ChartURLer
	upstream string
	logger   *logger.Logger
	home     *template.Template
	page     *template.Template
}

type chartItem struct {
	Caption string
	URL     string
}

type chartGroup struct {
	Tab   string
	Items []chartItem
}

type groupLink struct {
	Name   string
	Key    string
	Active bool
}

type pageData struct {
	Title      string
	Active     string
	Pages      []catalog.Page
	Upstream   string
	Page       catalog.Page
	Charts     []chartGroup
	View       *dashboard.View
	Groups     []groupLink
	Options    []catalog.View
	Searchable bool
}

// NewPageHandler parses the embedded templates
func NewPageHandler(svc *dashboard.Service, charts ChartURLer, upstream string, log *logger.Logger) (*PageHandler, error) {
	home, err := template.New("home").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/home.html")
	if err != nil {
		return nil, err
	}
	page, err := template.New("page").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/page.html")
	if err != nil {
		return nil, err
	}

	return &PageHandler{
		service:  svc,
		charts:   charts,
		upstream: upstream,
		logger:   log,
		home:     home,
		page:     page,
	}, nil
}

// Home renders the landing page
// GET /
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	cat := h.service.Catalog()
	h.render(w, h.home, pageData{
		Title:    cat.Title,
		Pages:    cat.Pages,
		Upstream: h.upstream,
	})
}

// Page renders one catalog page with its selected view
// GET /pages/{slug}?view=etf-momentum-ma10&q=삼성
func (h *PageHandler) Page(w http.ResponseWriter, r *http.Request) {
	cat := h.service.Catalog()
	slug := mux.Vars(r)["slug"]

	page, ok := cat.Page(slug)
	if !ok {
		http.Error(w, "page not found", http.StatusNotFound)
		return
	}

	data := pageData{
		Title:  page.Title,
		Active: page.Slug,
		Pages:  cat.Pages,
		Page:   page,
		Charts: h.chartGroups(page),
	}

	if len(page.Views) > 0 {
		selected, ok := selectView(page, r.URL.Query().Get("view"))
		if !ok {
			http.Error(w, "view not found", http.StatusNotFound)
			return
		}

		view, err := h.service.Load(r.Context(), selected.Key, dashboard.Query{Search: r.URL.Query().Get("q")})
		if errors.Is(err, dashboard.ErrUnknownView) {
			http.Error(w, "view not found", http.StatusNotFound)
			return
		}
		if err != nil {
			h.logger.WithError(err).WithField("view", selected.Key).Error("Failed to load view")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		data.View = view
		data.Options = page.ViewsIn(selected.Group)
		data.Searchable = selected.Search
		for _, g := range page.Groups() {
			first := page.ViewsIn(g)[0]
			data.Groups = append(data.Groups, groupLink{Name: g, Key: first.Key, Active: g == selected.Group})
		}
	}

	h.render(w, h.page, data)
}

// selectView resolves ?view= within a page, defaulting to its first view
func selectView(page catalog.Page, key string) (catalog.View, bool) {
	if key == "" {
		return page.Views[0], true
	}
	for _, v := range page.Views {
		if v.Key == key {
			return v, true
		}
	}
	return catalog.View{}, false
}

func (h *PageHandler) chartGroups(page catalog.Page) []chartGroup {
	var groups []chartGroup
	for _, c := range page.Charts {
		item := chartItem{Caption: c.Caption, URL: h.charts.URL(c.Path)}
		if n := len(groups); n > 0 && groups[n-1].Tab == c.Tab {
			groups[n-1].Items = append(groups[n-1].Items, item)
			continue
		}
		groups = append(groups, chartGroup{Tab: c.Tab, Items: []chartItem{item}})
	}
	return groups
}

func (h *PageHandler) render(w http.ResponseWriter, tmpl *template.Template, data pageData) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.WithError(err).Error("Template exec error")
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
