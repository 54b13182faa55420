// strafetool records, verifies and ranks speedrun recordings.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/strafe/internal/config"
	"github.com/Faultbox/strafe/internal/game/sim"
	"github.com/Faultbox/strafe/internal/game/world"
	"github.com/Faultbox/strafe/internal/leaderboard"
	"github.com/Faultbox/strafe/internal/logger"
	"github.com/Faultbox/strafe/internal/replay"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
		fileCfg.JSON = cfg.Logging.JSON
	}
	if err := logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, true); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Sugar.Debugf("config: %+v", cfg)

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command, rest := args[0], args[1:]
	start := time.Now()
	switch command {
	case "record", "rec":
		err = cmdRecord(ctx, cfg, rest)
	case "verify":
		err = cmdVerify(ctx, cfg, rest)
	case "top":
		err = cmdTop(ctx, cfg, rest)
	case "info":
		err = cmdInfo(rest)
	case "maps":
		err = cmdMaps(rest)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	var usage usageError
	if errors.As(err, &usage) {
		fmt.Fprintln(os.Stderr, "Usage: strafetool "+string(usage))
		os.Exit(1)
	}
	if err != nil {
		logger.Debug("command failed", zap.String("command", command), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("command finished", zap.String("command", command), zap.Duration("took", time.Since(start)))
}

type usageError string

func (u usageError) Error() string { return "usage: " + string(u) }

func printUsage() {
	fmt.Println(`strafetool - movement recording and verification utility

Usage:
  strafetool [flags] <command> [options]

Commands:
  record <map.yaml> <script.yaml> [out]  Simulate a script and save the recording
  verify <map.yaml> <recording>          Re-simulate a recording and check every tick
  top <map-id>                           Show the leaderboard for a map
  info <recording>                       Show recording header
  maps <map.yaml|dir>                    Validate map documents

Examples:
  strafetool record maps/corridor.yaml scripts/corridor_run.yaml
  strafetool -db runs.sqlite verify maps/corridor.yaml runs/corridor-player-1.jsonl.zst
  strafetool -db runs.sqlite top corridor

Flags:`)
	config.Usage()
}

func cmdRecord(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("record", flag.ExitOnError)
	realtime := fs.Bool("realtime", false, "Run at wall-clock speed and print a speed readout")
	fs.Parse(args)

	if fs.NArg() < 2 {
		return usageError("record [-realtime] <map.yaml> <script.yaml> [out.jsonl.zst]")
	}

	m, err := world.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	script, err := replay.LoadScript(fs.Arg(1))
	if err != nil {
		return err
	}

	player := cfg.Simulation.Player
	seed := cfg.Simulation.Seed
	out := fs.Arg(2)
	if out == "" {
		out = filepath.Join(cfg.Replay.Dir, fmt.Sprintf("%s-%s-%d.jsonl.zst", m.ID, player, seed))
	}

	inputs := script.Inputs(m.SpawnYaw, cfg.Tuning.TickDelta())

	var rec *replay.Recording
	if *realtime {
		rec, err = recordRealtime(ctx, cfg, m, inputs)
	} else {
		rec, err = replay.Record(ctx, m, cfg.Tuning, seed, player, inputs)
	}
	if err != nil {
		return err
	}

	if err := replay.Save(out, rec); err != nil {
		return err
	}

	h := rec.Header
	fmt.Printf("Recorded: %s\n", out)
	fmt.Printf("Map:      %s\n", h.MapID)
	fmt.Printf("Ticks:    %d\n", h.Ticks)
	printFinish(h.Finished, h.FinishTick, cfg.Tuning.TickRate)
	fmt.Printf("Digest:   %s\n", rec.FinalDigest())
	return nil
}

// recordRealtime paces the script through a fixed-step clock at 60 frames a
// second, the way a client would drive the simulation.
func recordRealtime(ctx context.Context, cfg *config.Config, m *world.Map, inputs []sim.Input) (*replay.Recording, error) {
	r, err := replay.NewRecorder(m, cfg.Tuning, cfg.Simulation.Seed, cfg.Simulation.Player)
	if err != nil {
		return nil, err
	}

	maxFrame := time.Duration(float64(cfg.Simulation.MaxFrameDelta) * float64(time.Second))
	clock := sim.NewClock(cfg.Tuning.TickRate, maxFrame)
	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	next := 0
	last := time.Now()
	for next < len(inputs) {
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil, ctx.Err()
		case now := <-ticker.C:
			n := clock.Advance(now.Sub(last))
			last = now
			for ; n > 0 && next < len(inputs); n-- {
				r.Step(inputs[next])
				next++
			}
			c := r.Character()
			fmt.Printf("\rtick %6d  speed %7.1f  %-12s", next, c.HorizontalSpeed(), c.WallRun.Phase())
		}
	}
	fmt.Println()
	return r.Recording(), nil
}

func cmdVerify(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return usageError("verify <map.yaml> <recording>")
	}

	m, err := world.Load(args[0])
	if err != nil {
		return err
	}
	rec, err := replay.Read(args[1])
	if err != nil {
		return err
	}

	res, err := replay.Verify(ctx, rec, m)
	if err != nil {
		return err
	}

	tickRate := rec.Header.Tuning.TickRate
	fmt.Printf("Verified: %s (%d ticks)\n", args[1], res.Ticks)
	printFinish(res.Finished, res.FinishTick, tickRate)
	fmt.Printf("Digest:   %s\n", res.FinalDigest)

	if cfg.Leaderboard.DBPath == "" || !res.Finished {
		return nil
	}
	if err := rec.Header.CheckTuning(cfg.Tuning); err != nil {
		logger.Warn("run not submitted", zap.String("recording", args[1]), zap.Error(err))
		return fmt.Errorf("not submitted: %w", err)
	}

	store, err := openStore(cfg.Leaderboard.DBPath)
	if err != nil {
		return err
	}
	defer closeStore(store)

	id, err := store.Submit(ctx, leaderboard.Run{
		MapID:       m.ID,
		MapDigest:   m.Digest,
		Player:      rec.Header.Player,
		Seed:        rec.Header.Seed,
		TickRate:    tickRate,
		Finished:    res.Finished,
		FinishTick:  res.FinishTick,
		FinalDigest: res.FinalDigest,
		ReplayPath:  args[1],
	})
	if errors.Is(err, leaderboard.ErrDuplicate) {
		fmt.Println("Already on the leaderboard")
		return nil
	}
	if err != nil {
		return err
	}

	best, _, err := store.Best(ctx, m.ID, rec.Header.Player)
	if err != nil {
		return err
	}
	fmt.Printf("Submitted: run #%d, personal best %s (rank %d)\n", id, formatTime(best.Time), best.Rank)
	return nil
}

func cmdTop(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("top", flag.ExitOnError)
	limit := fs.Int("n", cfg.Leaderboard.Limit, "Number of entries")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return usageError("top [-n N] <map-id>")
	}
	if cfg.Leaderboard.DBPath == "" {
		return errors.New("no leaderboard database (set -db or leaderboard.db_path)")
	}

	store, err := openStore(cfg.Leaderboard.DBPath)
	if err != nil {
		return err
	}
	defer closeStore(store)

	entries, err := store.Top(ctx, fs.Arg(0), *limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Printf("No runs on %s\n", fs.Arg(0))
		return nil
	}

	fmt.Printf("%-4s %-20s %10s %8s  %s\n", "#", "Player", "Time", "Ticks", "Date")
	for _, e := range entries {
		fmt.Printf("%-4d %-20s %10s %8d  %s\n",
			e.Rank, e.Player, formatTime(e.Time), e.FinishTick, e.SubmittedAt.Format(time.DateOnly))
	}
	return nil
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return usageError("info <recording>")
	}

	rec, err := replay.Read(args[0])
	if err != nil {
		return err
	}

	h := rec.Header
	fmt.Printf("Recording: %s\n", args[0])
	fmt.Printf("Version:   %d\n", h.Version)
	fmt.Printf("Map:       %s (%s)\n", h.MapID, h.MapDigest)
	fmt.Printf("Player:    %s\n", h.Player)
	fmt.Printf("Seed:      %d\n", h.Seed)
	fmt.Printf("Tick rate: %d Hz\n", h.Tuning.TickRate)
	fmt.Printf("Ticks:     %d\n", h.Ticks)
	printFinish(h.Finished, h.FinishTick, h.Tuning.TickRate)
	fmt.Printf("Recorded:  %s\n", h.RecordedAt.Format(time.RFC3339))
	fmt.Printf("Digest:    %s\n", rec.FinalDigest())
	return nil
}

func cmdMaps(args []string) error {
	if len(args) < 1 {
		return usageError("maps <map.yaml|dir>")
	}

	mgr := world.NewManager()
	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			err = mgr.LoadDir(path)
		} else {
			_, err = mgr.LoadMap(path)
		}
		if err != nil {
			return err
		}
	}

	fmt.Printf("%d map(s) valid\n", mgr.Count())
	for _, id := range mgr.IDs() {
		m, _ := mgr.Get(id)
		finish := "no finish"
		if m.HasFinish() {
			finish = "finish"
		}
		fmt.Printf("  %-16s %-24q planes=%-3d triggers=%-3d grapple=%-3d %s  %s\n",
			m.ID, m.Name, len(m.Planes), len(m.Triggers), len(m.GrapplePoints), finish, m.Digest[:12])
	}
	return nil
}

func openStore(path string) (*leaderboard.Store, error) {
	store, err := leaderboard.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening leaderboard: %w", err)
	}
	return store, nil
}

func closeStore(store *leaderboard.Store) {
	if err := store.Close(); err != nil {
		logger.Error("closing leaderboard", zap.Error(err))
	}
}

func printFinish(finished bool, tick uint64, tickRate int) {
	if !finished {
		fmt.Println("Finish:   not reached")
		return
	}
	d := time.Duration(0)
	if tickRate > 0 {
		d = time.Duration(tick) * time.Second / time.Duration(tickRate)
	}
	fmt.Printf("Finish:   tick %d (%s)\n", tick, formatTime(d))
}

// formatTime renders a run time as m:ss.mmm.
func formatTime(d time.Duration) string {
	ms := d.Milliseconds()
	return fmt.Sprintf("%d:%02d.%03d", ms/60000, (ms/1000)%60, ms%1000)
}
