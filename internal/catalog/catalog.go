// Package catalog describes the dashboard pages and the upstream
// endpoints behind each view.
package catalog

// Catalog는 대시보드 페이지/뷰 전체 설정
type Catalog struct {
	Title string `yaml:"title" json:"title" default:"Lighthorse 데이터 분석 대시보드" validate:"required"`
	Pages []Page `yaml:"pages" json:"pages" validate:"required,min=1,dive"`
}

// Page is one dashboard page
type Page struct {
	Slug        string  `yaml:"slug" json:"slug" validate:"required"`
	Title       string  `yaml:"title" json:"title" validate:"required"`
	Icon        string  `yaml:"icon" json:"icon,omitempty"`
	Description string  `yaml:"description" json:"description,omitempty"`
	Views       []View  `yaml:"views" json:"views" validate:"dive"`
	Charts      []Chart `yaml:"charts" json:"charts,omitempty" validate:"dive"`
}

// View is one selectable dataset on a page, backed by one upstream path
type View struct {
	Key   string `yaml:"key" json:"key" validate:"required"`
	Label string `yaml:"label" json:"label" validate:"required"`
	// Group is the top-level selector (e.g. 맨스필드 RS / 모멘텀 스코어);
	// views sharing a group are offered as a secondary option.
	Group        string `yaml:"group" json:"group,omitempty"`
	Path         string `yaml:"path" json:"path" validate:"required,startswith=/"`
	Search       bool   `yaml:"search" json:"search"`
	SearchColumn string `yaml:"search_column" json:"search_column,omitempty" default:"종목명"`
	Chart        bool   `yaml:"chart" json:"chart"`
}

// Chart is an upstream-generated image shown on a page
type Chart struct {
	Tab     string `yaml:"tab" json:"tab"`
	Caption string `yaml:"caption" json:"caption" validate:"required"`
	Path    string `yaml:"path" json:"path" validate:"required,startswith=/"`
}

// Page returns the page with the given slug
func (c *Catalog) Page(slug string) (Page, bool) {
	for _, p := range c.Pages {
		if p.Slug == slug {
			return p, true
		}
	}
	return Page{}, false
}

// View returns the view with the given key and the page that holds it
func (c *Catalog) View(key string) (View, Page, bool) {
	for _, p := range c.Pages {
		for _, v := range p.Views {
			if v.Key == key {
				return v, p, true
			}
		}
	}
	return View{}, Page{}, false
}

// Views returns every view in page order
func (c *Catalog) Views() []View {
	var out []View
	for _, p := range c.Pages {
		out = append(out, p.Views...)
	}
	return out
}

// Groups returns the distinct view groups of a page in order
func (p Page) Groups() []string {
	var groups []string
	seen := make(map[string]bool)
	for _, v := range p.Views {
		if !seen[v.Group] {
			seen[v.Group] = true
			groups = append(groups, v.Group)
		}
	}
	return groups
}

// ViewsIn returns the views of a page that belong to group
func (p Page) ViewsIn(group string) []View {
	var out []View
	for _, v := range p.Views {
		if v.Group == group {
			out = append(out, v)
		}
	}
	return out
}

// Default returns the built-in catalog matching the upstream service
func Default() *Catalog {
	return &Catalog{
		Title: "Lighthorse 데이터 분석 대시보드",
		Pages: []Page{
			{
				Slug:        "index",
				Title:       "최신 분석 차트",
				Icon:        "🖼️",
				Description: "매일 업데이트되는 수급 강도(FG) 및 개별 주식 수급(OS) 분석 차트입니다.",
				Charts: []Chart{
					{Tab: "수급 강도(FG) 차트", Caption: "FG 차트 1", Path: "/charts/fg/1"},
					{Tab: "수급 강도(FG) 차트", Caption: "FG 차트 2", Path: "/charts/fg/2"},
					{Tab: "개별주식 수급(OS) 차트", Caption: "OS 차트 1", Path: "/charts/os/1"},
					{Tab: "개별주식 수급(OS) 차트", Caption: "OS 차트 2", Path: "/charts/os/2"},
				},
			},
			{
				Slug:        "etf-rs",
				Title:       "ETF 상대강도(RS) 분석",
				Icon:        "📑",
				Description: "ETF의 맨스필드 상대강도(RS)와 다양한 이동평균선 기반 모멘텀 스코어를 조회합니다.",
				Views: []View{
					{Key: "etf-mansfield", Label: "맨스필드 RS", Group: "맨스필드 RS", Path: "/rs-etf/mansfield", SearchColumn: "종목명"},
					{Key: "etf-momentum-all", Label: "전체", Group: "모멘텀 스코어", Path: "/rs-etf/momentum/all", Chart: true, SearchColumn: "종목명"},
					{Key: "etf-momentum-ma10", Label: "10일선 필터", Group: "모멘텀 스코어", Path: "/rs-etf/momentum/ma10", Chart: true, SearchColumn: "종목명"},
					{Key: "etf-momentum-ma20", Label: "20일선 필터", Group: "모멘텀 스코어", Path: "/rs-etf/momentum/ma20", Chart: true, SearchColumn: "종목명"},
					{Key: "etf-momentum-ma50", Label: "50일선 필터", Group: "모멘텀 스코어", Path: "/rs-etf/momentum/ma50", Chart: true, SearchColumn: "종목명"},
				},
			},
			{
				Slug:        "stock-rs",
				Title:       "개별 주식 상대강도(RS) 분석",
				Icon:        "📊",
				Description: "개별 주식의 맨스필드 상대강도 및 모멘텀 스코어 데이터를 조회하고 검색할 수 있습니다.",
				Views: []View{
					{Key: "stock-mansfield", Label: "맨스필드 RS", Group: "맨스필드 RS", Path: "/rs-stock/mansfield", SearchColumn: "종목명"},
					{Key: "stock-momentum", Label: "모멘텀 스코어", Group: "모멘텀 스코어", Path: "/rs-stock/momentum", Search: true, Chart: true, SearchColumn: "종목명"},
				},
			},
		},
	}
}
