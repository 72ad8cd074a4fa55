// Command pong-soak plays pong headless, computer against computer, for a
// fixed duration and prints a report of the scheduler, storage and memory.
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"runtime"
	"slices"
	"syscall"
	"time"

	"github.com/plus3/pong/config"
	"github.com/plus3/pong/game"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"
)

func main() {
	cfg := config.DefaultConfig()
	var (
		duration      time.Duration
		autopilotBoth bool
		tps           int
		seed          uint64
		gcMetrics     bool
	)

	log := config.Logger()

	root := &cobra.Command{
		Use:   "pong-soak",
		Short: "Run pong headless with both paddles on autopilot and report",
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })
			if err := config.ApplyEnvConfig(&cfg, changed, nil); err != nil {
				return err
			}
			if autopilotBoth {
				cfg.Autopilot = slices.Clone(config.Players)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			interval, err := tickInterval(tps)
			if err != nil {
				return err
			}
			if err := config.SetLogLevel(cfg.LogLevel); err != nil {
				return fmt.Errorf("%w: log level: %v", config.ErrInvalid, err)
			}
			log = config.Logger()

			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}
			rng := rand.New(rand.NewPCG(seed, seed>>1|1))
			arena := game.Arena{Width: float32(cfg.Window.Width), Height: float32(cfg.Window.Height)}

			world, err := game.NewWorld(cfg, arena, game.PlaceholderAssets(), rng, log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, duration)
			defer cancel()

			report := &Report{
				Duration:       duration,
				TPS:            tps,
				BallSpeed:      cfg.BallSpeed,
				WinScore:       cfg.WinScore,
				Seed:           seed,
				GCPauseMetrics: gcMetrics,
			}
			runtime.ReadMemStats(&report.MemStatsStart)

			log.Info().
				Dur("duration", duration).
				Int("tps", tps).
				Strs("autopilot", cfg.Autopilot).
				Uint64("seed", seed).
				Msg("soak started")

			start := time.Now()
			if interval > 0 {
				world.Update.Run(ctx, interval)
			} else {
				for ctx.Err() == nil {
					world.Step(nil)
				}
			}
			report.Elapsed = time.Since(start)

			runtime.ReadMemStats(&report.MemStatsEnd)
			report.Score = world.Score()
			report.Scheduler = world.Update.GetStats()
			report.Storage = world.Storage.CollectStats()

			log.Info().
				Uint64("ticks", report.Scheduler.Frames).
				Int("goals", report.Score.Goals).
				Msg("soak finished")
			return report.Generate(cmd.OutOrStdout())
		},
	}

	root.Flags().DurationVar(&duration, "duration", 10*time.Second, "how long to play")
	root.Flags().BoolVar(&autopilotBoth, "autopilot-both", true, "put both paddles on autopilot")
	root.Flags().StringSliceVar(&cfg.Autopilot, "autopilot", cfg.Autopilot, "players driven by the computer when --autopilot-both is off")
	root.Flags().IntVar(&tps, "tps", cfg.Window.FPS, "ticks per second (0 runs unthrottled)")
	root.Flags().IntVar(&cfg.Window.Width, "width", cfg.Window.Width, "arena width")
	root.Flags().IntVar(&cfg.Window.Height, "height", cfg.Window.Height, "arena height")
	root.Flags().Float64Var(&cfg.BallSpeed, "ball-speed", cfg.BallSpeed, "ball speed multiplier")
	root.Flags().IntVar(&cfg.WinScore, "win-score", 11, "points needed to win a match")
	root.Flags().Uint64Var(&seed, "seed", 0, "random seed for ball serves (0 picks one)")
	root.Flags().BoolVar(&gcMetrics, "gc-metrics", false, "include GC pause metrics in the report")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("pong-soak")
		os.Exit(1)
	}
}

// tickInterval returns the scheduler period for tps ticks per second, or 0
// when tps is 0 and the run is unthrottled.
func tickInterval(tps int) (time.Duration, error) {
	if tps < 0 {
		return 0, fmt.Errorf("%w: tps must not be negative, got %d", config.ErrInvalid, tps)
	}
	if tps == 0 {
		return 0, nil
	}
	return time.Second / time.Duration(tps), nil
}
