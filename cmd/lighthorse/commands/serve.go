package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/lighthorse/backend/internal/api"
	"github.com/wonny/lighthorse/backend/internal/api/handlers"
	"github.com/wonny/lighthorse/backend/internal/scheduler"
	"github.com/wonny/lighthorse/backend/internal/scheduler/jobs"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "대시보드 서버 시작",
	Long: `대시보드 HTTP 서버와 캐시 예열 스케줄러를 시작합니다.

Endpoints:
  GET  /                              - 홈
  GET  /pages/{slug}?view=&q=         - 분석 페이지
  GET  /api/views                     - 뷰 목록
  GET  /api/views/{key}               - 뷰 데이터
  GET  /api/views/{key}/rank-changes  - 순위 변동
  GET  /api/intensity?label=Up(4)     - 배경 강도
  GET  /charts/views/{key}.png        - 모멘텀 차트
  GET  /ws                            - 갱신 이벤트 스트림
  GET  /metrics                       - Prometheus
  GET  /health                        - Health check

Example:
  go run ./cmd/lighthorse serve
  go run ./cmd/lighthorse serve --port 9000 --no-prewarm`,
	RunE: runServe,
}

var (
	servePort      string
	serveNoPrewarm bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "서버 포트 (default PORT)")
	serveCmd.Flags().BoolVar(&serveNoPrewarm, "no-prewarm", false, "캐시 예열 스케줄러 비활성화")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if servePort != "" {
		a.cfg.Port = servePort
	}

	log := a.log
	log.WithFields(map[string]interface{}{
		"port":      a.cfg.Port,
		"env":       a.cfg.Env,
		"views":     len(a.catalog.Views()),
		"cache_ttl": a.cfg.Lighthorse.CacheTTL,
		"redis":     a.redis.Enabled(),
	}).Info("Initializing dashboard server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Handlers
	pages, err := handlers.NewPageHandler(a.service, a.client, a.client.BaseURL(), log)
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	hub := handlers.NewStreamHub(a.service, log)
	go hub.Run(ctx)

	h := api.Handlers{
		Views:  handlers.NewViewHandler(a.service, a.cache, log),
		Pages:  pages,
		Charts: handlers.NewChartHandler(a.service, log),
		Stream: hub,
	}
	if a.metrics != nil {
		h.Metrics = a.metrics.Handler()
	}

	// 2. Scheduler
	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewCacheCleanupJob(a.cache, log)); err != nil {
		return fmt.Errorf("schedule cache cleanup: %w", err)
	}

	var prewarm *jobs.PrewarmJob
	if a.cfg.Prewarm.Enabled && !serveNoPrewarm {
		prewarm = jobs.NewPrewarmJob(a.service, a.cfg.Prewarm.Schedule, len(a.catalog.Views()), log)
		if err := sched.AddJob(prewarm); err != nil {
			return fmt.Errorf("schedule prewarm: %w", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	if prewarm != nil {
		// 시작 직후 한 번 예열
		if err := sched.RunJob(prewarm.Name()); err != nil {
			return err
		}
	}

	// 3. Server
	server := api.New(a.cfg, log, api.NewRouter(h, log))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Dashboard running on http://localhost:%s\n", a.cfg.Port)
	fmt.Printf("   Upstream: %s (cache %s)\n", a.cfg.Lighthorse.BaseURL, a.cfg.Lighthorse.CacheTTL)
	fmt.Println("\nPress Ctrl+C to stop")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
