package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"TimetableSim/internal/campus"
	"TimetableSim/internal/campus/mapfile"
	"TimetableSim/internal/config"
	"TimetableSim/internal/logging"
	"TimetableSim/internal/store"
)

type globalOptions struct {
	configPath string
	envFile    string
	logJSON    bool

	seed     int64
	hosts    int
	steps    float64
	verbose  bool
	logLevel string
	dbPath   string

	overrides config.Overrides
}

func (g *globalOptions) bind(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVarP(&g.configPath, "config", "c", "configs/timetable.yaml", "path to the YAML settings")
	f.StringVar(&g.envFile, "env", ".env", "optional .env file with TIMETABLE_* variables")
	f.BoolVar(&g.logJSON, "log-json", false, "log as JSON")
	f.Int64Var(&g.seed, "seed", 0, "override the random seed")
	f.IntVar(&g.hosts, "hosts", 0, "override the number of hosts")
	f.Float64Var(&g.steps, "steps", 0, "override the run length in steps")
	f.BoolVarP(&g.verbose, "verbose", "v", false, "print the schedule table after the run")
	f.StringVar(&g.logLevel, "log-level", "", "override the log level")
	f.StringVar(&g.dbPath, "db", "", "SQLite file to store the run report in")
}

// collect turns the flags that were set into overrides.
func (g *globalOptions) collect(cmd *cobra.Command) config.Overrides {
	o := g.overrides
	flags := cmd.Flags()
	if flags.Changed("seed") {
		o.Seed = &g.seed
	}
	if flags.Changed("hosts") {
		o.Hosts = &g.hosts
	}
	if flags.Changed("steps") {
		o.RunSteps = &g.steps
	}
	if flags.Changed("verbose") {
		o.Verbose = &g.verbose
	}
	if flags.Changed("log-level") {
		o.LogLevel = &g.logLevel
	}
	if flags.Changed("db") {
		o.DBPath = &g.dbPath
	}
	return o
}

type runEnv struct {
	settings config.Settings
	log      *zap.Logger
	state    *campus.State
	runs     *store.RunRepository
}

// load reads the settings, the campus map and the room source.
func (g *globalOptions) load(cmd *cobra.Command) (*runEnv, error) {
	settings, err := config.Load(g.configPath, g.envFile)
	if err != nil {
		return nil, err
	}
	settings = g.collect(cmd).Apply(settings)

	log, err := logging.New(settings.Log.Level, g.logJSON || settings.Log.JSON)
	if err != nil {
		return nil, err
	}
	opts, err := settings.Options()
	if err != nil {
		return nil, err
	}

	m, err := mapfile.ReadFiles(settings.Timetable.MapFiles, opts.Origin)
	if err != nil {
		return nil, err
	}
	if !m.Connected() {
		log.Warn("campus map is not connected; some routes will fail", zap.Int("nodes", m.Len()))
	}
	rt := &runEnv{
		settings: settings,
		log:      log,
		state:    campus.NewState(m, mapfile.DijkstraPathFinder{}, campus.FileRoomSource(settings.Timetable.RoomMapping), opts, log),
	}
	if settings.Store.Path != "" {
		rt.runs, err = store.OpenMigrated(cmd.Context(), settings.Store.Path)
		if err != nil {
			return nil, err
		}
	}
	log.Debug("settings loaded",
		zap.String("config", g.configPath),
		zap.Int("nodes", m.Len()),
		zap.Int("hosts", opts.Hosts),
		zap.Int64("seed", opts.Seed))
	return rt, nil
}

// finish prints the report when verbose and stores it when a database is
// configured.
func (rt *runEnv) finish(ctx context.Context, out io.Writer, label string) error {
	if !rt.settings.Timetable.Verbose && rt.runs == nil {
		return nil
	}
	rep, err := rt.state.Report()
	if err != nil {
		return err
	}
	if rt.settings.Timetable.Verbose {
		if err := rep.WriteText(out); err != nil {
			return err
		}
	}
	if rt.runs != nil {
		run, err := rt.runs.SaveRun(ctx, label, rep)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "run stored as %s\n", run.ID)
	}
	return nil
}

func (rt *runEnv) close() {
	if rt.runs != nil {
		_ = rt.runs.Close()
	}
	_ = rt.log.Sync()
}
