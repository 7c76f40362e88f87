package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"TimetableSim/internal/campus"
	"TimetableSim/internal/server"
	"TimetableSim/internal/sim"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	rootCmd := &cobra.Command{
		Use:   "timetable",
		Short: "Campus timetable movement simulator",
		Long: `Timetable generates a daily schedule for every simulated person on a
campus map and walks them between entrances and rooms.

Room capacities are respected per time slot; a person who cannot be
seated stops the run with a capacity error.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.bind(rootCmd)

	rootCmd.AddCommand(runCmd(opts))
	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(scheduleCmd(opts))
	rootCmd.AddCommand(roomsCmd(opts))
	return rootCmd
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runCmd(g *globalOptions) *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation headless and print the report",
		Long: `Run spawns every host, steps the simulation to the configured end time
and prints the schedule table and room occupation.

Example:
  timetable run --config configs/timetable.yaml --seed 7
  timetable run --hosts 200 --db runs.db --label baseline`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := g.load(cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			ctx, cancel := signalContext()
			defer cancel()

			engine := rt.engine()
			if err := engine.Spawn(); err != nil {
				return err
			}
			if err := engine.Run(ctx, 0); err != nil {
				return err
			}
			frame := engine.Snapshot()
			rt.log.Info("run complete",
				zap.Float64("steps", frame.Now),
				zap.Int("hosts", len(frame.Hosts)),
				zap.Int("still_active", frame.Active))
			return rt.finish(ctx, cmd.OutOrStdout(), label)
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "label stored with the run")
	return cmd
}

func serveCmd(g *globalOptions) *cobra.Command {
	var addr string
	var pace float64
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the simulation and stream it to browsers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				g.overrides.Addr = &addr
			}
			rt, err := g.load(cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			ctx, cancel := signalContext()
			defer cancel()

			engine := rt.engine()
			if err := engine.Spawn(); err != nil {
				return err
			}
			cfg := server.AppConfigFromSettings(rt.settings.Server)
			if cmd.Flags().Changed("pace") {
				cfg.StepsPerSecond = pace
			}
			hub := server.NewHub(engine, rt.state, rt.runs, cfg, rt.log)
			if err := server.StartApp(ctx, hub); err != nil {
				return err
			}
			return rt.finish(context.Background(), cmd.OutOrStdout(), "serve")
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on (e.g., 127.0.0.1:8080)")
	cmd.Flags().Float64Var(&pace, "pace", 20, "simulation steps per wall-clock second, 0 for unpaced")
	return cmd
}

func scheduleCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Generate schedules without moving anyone",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := g.load(cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			hosts := rt.settings.Hosts()
			var prev campus.Movement
			for i := 0; i < hosts; i++ {
				var next campus.Movement
				if prev == nil {
					next, err = rt.state.NewMovement()
				} else {
					next, err = prev.Replicate()
				}
				if err != nil {
					return err
				}
				prev = next
			}
			rep, err := rt.state.Report()
			if err != nil {
				return err
			}
			return rep.WriteText(cmd.OutOrStdout())
		},
	}
}

func roomsCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "Print the parsed room description",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := g.load(cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			rooms, err := rt.state.Rooms()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "type\tlabel\tcapacity\tlocation")
			for _, t := range rooms.Types() {
				for _, rec := range rooms.Records(t) {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%v\n", t, rec.Label, rec.Capacity, rec.Location)
				}
			}
			return tw.Flush()
		},
	}
}

// engine builds the step driver for the loaded settings.
func (rt *runEnv) engine() *sim.Engine {
	s := rt.settings
	return sim.New(rt.state, sim.Config{
		StepSeconds:  s.Scenario.UpdateInterval,
		RunSteps:     s.Scenario.EndTime,
		Hosts:        s.Hosts(),
		ProgressStep: rt.state.Timing().StepsPerHour(),
	}, rt.log)
}
