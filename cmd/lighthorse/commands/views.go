package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// viewsCmd represents the views command
var viewsCmd = &cobra.Command{
	Use:   "views",
	Short: "뷰 목록 조회",
	Long: `카탈로그에 등록된 페이지와 뷰를 출력합니다.

Example:
  go run ./cmd/lighthorse views
  go run ./cmd/lighthorse views --catalog catalog.yaml`,
	Args: cobra.NoArgs,
	RunE: runViews,
}

func init() {
	rootCmd.AddCommand(viewsCmd)
}

func runViews(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	PrintHeader(out, a.catalog.Title)

	var rows [][]string
	for _, p := range a.catalog.Pages {
		for _, v := range p.Views {
			var flags []string
			if v.Search {
				flags = append(flags, "search")
			}
			if v.Chart {
				flags = append(flags, "chart")
			}
			rows = append(rows, []string{v.Key, p.Slug, v.Group, v.Label, v.Path, strings.Join(flags, ",")})
		}
	}
	PrintTable(out, []string{"KEY", "PAGE", "GROUP", "LABEL", "PATH", "FLAGS"}, rows)

	fmt.Fprintln(out)
	PrintKeyValue(out, "Pages", fmt.Sprint(len(a.catalog.Pages)), 8)
	PrintKeyValue(out, "Views", fmt.Sprint(len(rows)), 8)
	PrintKeyValue(out, "Upstream", a.client.BaseURL(), 8)
	return nil
}
