package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/plus3/pong/config"
	"github.com/plus3/pong/game"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"
)

var exampleUsage = strings.TrimSpace(`
  pong
  pong --movement nudge --win-score 5
  pong --autopilot green --debug
  pong --config $HOME/.pong/config.toml --watch-assets
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := config.DefaultConfig()
	var cfgPath string
	var seed uint64

	log := config.Logger()

	root := &cobra.Command{
		Use:     "pong",
		Short:   "Two-player pong",
		Long:    "Two-player pong. Blue plays with K/J, green with the arrow keys, Escape quits.",
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = config.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && config.FileExists(cfgFile) {
				fc, err := config.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := config.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}
			if err := config.ApplyEnvConfig(&cfg, changed, nil); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.SetLogLevel(cfg.LogLevel); err != nil {
				return fmt.Errorf("%w: log level: %v", config.ErrInvalid, err)
			}
			log = config.Logger()
			log.Info().Interface("config", cfg).Msg("configuration")

			window, err := game.NewWindow(cfg.Window)
			if err != nil {
				return err
			}
			assets, err := game.LoadAssets(cfg.AssetsDir)
			if err != nil {
				return err
			}

			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}
			rng := rand.New(rand.NewPCG(seed, seed>>1|1))

			world, err := game.NewWorld(cfg, window.Arena(), assets, rng, log)
			if err != nil {
				return err
			}
			g := game.NewGame(world, window, log)
			if cfg.Debug {
				g.Overlay = game.NewOverlay(world, window)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if cfg.WatchAssets {
				watcher, err := game.NewAssetWatcher(cfg.AssetsDir, 100*time.Millisecond, log)
				if err != nil {
					return err
				}
				g.Reloads = watcher.Reloads()
				go watcher.Run(ctx)
			}

			log.Info().Uint64("seed", seed).Msg("starting")
			if err := window.Run(g); err != nil {
				return err
			}
			score := world.Score()
			log.Info().
				Ints("points", score.Points[:]).
				Ints("matches", score.Matches[:]).
				Msg("final score")
			return nil
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.pong/config.toml)")
	root.Flags().StringVar(&cfg.AssetsDir, "assets", cfg.AssetsDir, "directory holding blue-paddle.png and green-paddle.png")
	root.Flags().IntVar(&cfg.Window.Width, "width", cfg.Window.Width, "window width in pixels")
	root.Flags().IntVar(&cfg.Window.Height, "height", cfg.Window.Height, "window height in pixels")
	root.Flags().StringVar(&cfg.Window.Title, "title", cfg.Window.Title, "window title")
	root.Flags().IntVar(&cfg.Window.FPS, "fps", cfg.Window.FPS, "ticks per second")

	root.Flags().StringVar(&cfg.Movement, "movement", cfg.Movement, "paddle movement: velocity or nudge")
	root.Flags().Float64Var(&cfg.BallSpeed, "ball-speed", cfg.BallSpeed, "ball speed multiplier")
	root.Flags().IntVar(&cfg.WinScore, "win-score", cfg.WinScore, "points needed to win a match (0 plays forever)")
	root.Flags().StringSliceVar(&cfg.Autopilot, "autopilot", cfg.Autopilot, "players driven by the computer (blue, green)")
	root.Flags().Uint64Var(&seed, "seed", 0, "random seed for ball serves (0 picks one)")

	root.Flags().BoolVar(&cfg.WatchAssets, "watch-assets", cfg.WatchAssets, "reload paddle textures when their files change")
	root.Flags().BoolVar(&cfg.Debug, "debug", cfg.Debug, "show the debug overlay")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("pong")
		os.Exit(1)
	}
}
