package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"firestige.xyz/strix/internal/log"
	"firestige.xyz/strix/internal/replay"
	"firestige.xyz/strix/internal/report"
	"firestige.xyz/strix/internal/session"
	"firestige.xyz/strix/internal/stats"
)

var (
	replayFile      string
	replayPort      uint16
	replaySynthetic bool
	replaySim       string
	replayFrames    int
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a pcap capture or synthetic traffic through the receive pipeline",
	Long: `
Replay TCP media traffic from a capture file, or generate synthetic frames
with the built-in encoder, and print the statistics the live server would
have produced. Useful for debugging field captures and for smoke-testing a
deployment before any vehicle connects.

Examples:
  strix replay -f device.pcap             # media port from config (default 6605)
  strix replay -f device.pcap -p 7605     # override media port
  strix replay --synthetic -n 500         # 500 generated media frames
`,
	Run: func(cmd *cobra.Command, args []string) {
		if !replaySynthetic && replayFile == "" {
			exitWithError("a capture file (-f) or --synthetic is required", nil)
		}

		cfg, err := loadConfig()
		if err != nil {
			exitWithError("failed to load config", err)
		}
		log.Init(cfg.Log)

		port := cfg.Replay.Port
		if cmd.Flags().Changed("port") {
			port = replayPort
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		registry := session.NewRegistry()
		agg := stats.NewAggregator()

		if replaySynthetic {
			src := replay.NewSynthetic(replaySim, 1, replayFrames, registry, agg)
			if err := src.Run(ctx); err != nil {
				exitWithError("synthetic run failed", err)
			}
		} else {
			src := replay.New(replayFile, port, registry, agg)
			if err := src.Run(ctx); err != nil {
				exitWithError("replay failed", err)
			}
		}

		report.NewReporter(agg, registry, cfg.Report.Interval).PrintFinal()
	},
}

func init() {
	replayCmd.Flags().StringVarP(&replayFile, "file", "f", "", "pcap capture file")
	replayCmd.Flags().Uint16VarP(&replayPort, "port", "p", 6605, "TCP media port inside the capture")
	replayCmd.Flags().BoolVar(&replaySynthetic, "synthetic", false, "generate traffic instead of reading a capture")
	replayCmd.Flags().StringVar(&replaySim, "sim", "013800000001", "device SIM for synthetic traffic")
	replayCmd.Flags().IntVarP(&replayFrames, "frames", "n", 250, "media frames to generate with --synthetic")
	rootCmd.AddCommand(replayCmd)
}
