package commands

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/lighthorse/backend/internal/dashboard"
	"github.com/wonny/lighthorse/backend/internal/rankchange"
)

// ranksCmd represents the ranks command
var ranksCmd = &cobra.Command{
	Use:   "ranks <view>",
	Short: "순위 변동 조회",
	Long: `뷰 데이터를 가져와 최신 날짜의 순위 변동(New/Up/Down)을 출력합니다.

Example:
  go run ./cmd/lighthorse ranks etf-mansfield
  go run ./cmd/lighthorse ranks etf-mansfield --json`,
	Args: cobra.ExactArgs(1),
	RunE: runRanks,
}

var ranksJSON bool

func init() {
	rootCmd.AddCommand(ranksCmd)

	// Flags
	ranksCmd.Flags().BoolVar(&ranksJSON, "json", false, "JSON 출력")
}

func runRanks(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	view, err := a.service.Load(cmd.Context(), args[0], dashboard.Query{})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if ranksJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view.Analysis)
	}

	PrintHeader(out, fmt.Sprintf("%s (%s)", view.Label, view.Path))
	for _, n := range view.Notices {
		switch n.Level {
		case dashboard.NoticeError:
			PrintError(out, n.Message)
		case dashboard.NoticeWarning:
			PrintWarning(out, n.Message)
		default:
			PrintInfo(out, n.Message)
		}
	}
	if view.Degraded() {
		return fmt.Errorf("view %s could not be loaded", view.Key)
	}

	if view.Analysis == nil {
		PrintInfo(out, fmt.Sprintf("순위 데이터가 아닙니다 (%s, %d rows)", view.Kind, view.Table.Len()))
		return nil
	}

	if view.Analysis.Latest != nil {
		latest := rankchange.FormatDisplay(*view.Analysis.Latest)
		if view.Analysis.Previous != nil {
			latest += " vs " + rankchange.FormatDisplay(*view.Analysis.Previous)
		}
		PrintKeyValue(out, "Date", latest, 6)
		PrintSeparator(out)
	}

	rows := make([][]string, 0, len(view.Rows))
	for _, d := range view.Rows {
		prev := "-"
		if d.PreviousRank != nil {
			prev = strconv.Itoa(*d.PreviousRank)
		}
		rows = append(rows, []string{strconv.Itoa(d.CurrentRank), d.Entity, prev, d.Label})
	}
	PrintTable(out, []string{"RANK", "ENTITY", "PREV", "CHANGE"}, rows)

	for _, w := range view.Analysis.Warnings {
		PrintWarning(out, w.Message)
	}
	return nil
}
