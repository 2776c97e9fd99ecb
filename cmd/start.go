package cmd

import (
	"context"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"firestige.xyz/strix/internal/log"
	"firestige.xyz/strix/internal/report"
	"firestige.xyz/strix/internal/server"
	"firestige.xyz/strix/internal/session"
	"firestige.xyz/strix/internal/stats"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the receiver",
	Long: `
Start the Strix receiver.

Examples:
  strix start                 # listen on :6605 with built-in defaults
  strix start -c config.yml   # listen per config.yml
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			exitWithError("failed to load config", err)
		}
		log.Init(cfg.Log)

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		registry := session.NewRegistry()
		agg := stats.NewAggregator()

		reporter := report.NewReporter(agg, registry, cfg.Report.Interval)
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			reporter.Run(ctx)
		}()

		srv := server.New(cfg, registry, agg)
		if err := srv.ListenAndServe(ctx); err != nil {
			cancel()
			wg.Wait()
			exitWithError("server failed", err)
		}

		cancel()
		wg.Wait() // final statistics
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
