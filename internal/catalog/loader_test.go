package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cat := Default()
	require.NoError(t, Validate(cat))

	v, p, ok := cat.View("stock-momentum")
	require.True(t, ok)
	assert.Equal(t, "/rs-stock/momentum", v.Path)
	assert.True(t, v.Search)
	assert.Equal(t, "종목명", v.SearchColumn)
	assert.Equal(t, "stock-rs", p.Slug)

	etf, ok := cat.Page("etf-rs")
	require.True(t, ok)
	assert.Equal(t, []string{"맨스필드 RS", "모멘텀 스코어"}, etf.Groups())
	assert.Len(t, etf.ViewsIn("모멘텀 스코어"), 4)

	assert.Len(t, cat.Views(), 7)

	_, _, ok = cat.View("missing")
	assert.False(t, ok)
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	cat, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cat)
}

func TestParse(t *testing.T) {
	cat, err := Parse([]byte(`
pages:
  - slug: kr
    title: 국내 주식
    views:
      - key: kr-momentum
        label: 모멘텀
        path: /rs-stock/momentum
        search: true
`))
	require.NoError(t, err)

	assert.Equal(t, "Lighthorse 데이터 분석 대시보드", cat.Title)
	v, _, ok := cat.View("kr-momentum")
	require.True(t, ok)
	assert.Equal(t, "종목명", v.SearchColumn, "default search column applied")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown field", "pages:\n  - slug: a\n    title: A\n    colour: red\n"},
		{"no pages", "title: x\n"},
		{"relative path", "pages:\n  - slug: a\n    title: A\n    views:\n      - {key: v, label: V, path: rs-etf}\n"},
		{"duplicate key", "pages:\n  - slug: a\n    title: A\n    views:\n      - {key: v, label: V, path: /a}\n      - {key: v, label: W, path: /b}\n"},
		{"duplicate slug", "pages:\n  - {slug: a, title: A}\n  - {slug: a, title: B}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParse_ValidationErrorField(t *testing.T) {
	_, err := Parse([]byte("pages:\n  - slug: a\n    title: A\n    views:\n      - {key: v, label: V, path: nope}\n"))
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "pages[0].views[0].path", verr.Field)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pages:\n  - {slug: a, title: A}\n"), 0o600))

	cat, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cat.Pages, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
