package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile  string
	env         string
	verbose     bool
	catalogFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lighthorse",
	Short: "Lighthorse 데이터 분석 대시보드",
	Long: `Lighthorse Dashboard CLI

lighthorse API 서버의 RS/모멘텀 데이터를 조회하고
순위 변동(New/Up/Down)을 분석하는 대시보드.

Usage:
  go run ./cmd/lighthorse [command]

Examples:
  go run ./cmd/lighthorse serve
  go run ./cmd/lighthorse views
  go run ./cmd/lighthorse ranks etf-mansfield`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&catalogFile, "catalog", "", "catalog YAML (default is CATALOG_PATH or built-in)")
}
