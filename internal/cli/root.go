package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/Tabula/internal/config"
	"github.com/turtacn/Tabula/internal/monitor"
	"github.com/turtacn/Tabula/internal/simulator"
	"github.com/turtacn/Tabula/pkg/consts"
	"github.com/turtacn/Tabula/pkg/fsm"
	"github.com/turtacn/Tabula/pkg/logger"
)

type options struct {
	cfgFile   string
	envFiles  []string
	events    []string
	instances int
}

// dotenv returns the --env-file values, or the default .env when none were
// given and one exists in the working directory.
func (o *options) dotenv() []string {
	if len(o.envFiles) > 0 {
		return o.envFiles
	}
	if _, err := os.Stat(consts.DefaultEnvFile); err == nil {
		return []string{consts.DefaultEnvFile}
	}
	return nil
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "tabula",
		Short:         "Tabula: table-driven state machine engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&o.cfgFile, "config", "c", "tabula.yaml", "config file path")
	root.PersistentFlags().StringSliceVar(&o.envFiles, "env-file", nil, "dotenv files loaded before TABULA_* overrides")

	simulate := &cobra.Command{
		Use:   "simulate",
		Short: "Run the machine's event script and print the callback trace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, o)
		},
	}
	simulate.Flags().StringSliceVar(&o.events, "events", nil, "comma separated event names, replaces the configured script")
	simulate.Flags().IntVar(&o.instances, "instances", 0, "number of instances, overrides simulation.instances")

	inspect := &cobra.Command{
		Use:   "inspect",
		Short: "Print ranges, index eligibility and the sorted transition table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, o)
		},
	}

	root.AddCommand(simulate, inspect)
	return root
}

func runSimulate(cmd *cobra.Command, o *options) error {
	cfg, err := config.Load(o.cfgFile, o.dotenv()...)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("instances") {
		cfg.Simulation.Instances = o.instances
	}

	logger.InitLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	metrics := monitor.NewMetrics()
	if srv := metrics.Serve(cfg.Observability.MetricsPort); srv != nil {
		defer srv.Close()
	}

	sim, err := simulator.New(cfg, simulator.WithObserver(metrics))
	if err != nil {
		return err
	}
	var script []fsm.Event
	if len(o.events) > 0 {
		if script, err = sim.Machine().EventIDs(o.events); err != nil {
			return err
		}
	}

	logger.Log.Info("Booting Tabula simulation", "machine", cfg.Machine.Name, "backend", cfg.Engine.QueueBackend)
	rep, err := sim.Run(cmd.Context(), script, cfg.Simulation.Instances)
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), rep)
	return nil
}

func runInspect(cmd *cobra.Command, o *options) error {
	cfg, err := config.Load(o.cfgFile, o.dotenv()...)
	if err != nil {
		return err
	}
	m, err := simulator.Compile(cfg.Machine)
	if err != nil {
		return err
	}
	sum := m.Inspect(cfg.Engine.MaxIndexEntries)

	w := cmd.OutOrStdout()
	r := sum.Ranges
	fmt.Fprintf(w, "machine: %s\n", sum.Machine)
	fmt.Fprintf(w, "states: [%d, %d]  events: [%d, %d]\n", r.StateMin, r.StateMax, r.EventMin, r.EventMax)
	fmt.Fprintf(w, "index: eligible=%t cells=%d used=%t\n", sum.IndexEligible, sum.IndexCells, cfg.Engine.IndexedLookup && sum.Indexed)
	fmt.Fprintln(w, "transitions:")
	for _, row := range sum.Sorted {
		fmt.Fprintf(w, "  %s\n", row)
	}
	if len(sum.Unreachable) > 0 {
		fmt.Fprintf(w, "unreachable: %s\n", strings.Join(sum.Unreachable, ", "))
	}
	return nil
}

func printReport(w io.Writer, rep *simulator.Report) {
	fmt.Fprintf(w, "run %s machine %s\n", rep.RunID, rep.Machine)
	for _, e := range rep.Trace {
		fmt.Fprintln(w, e.String())
	}
	fmt.Fprintln(w, "final:")
	for i := 0; i < len(rep.Final); i++ {
		fmt.Fprintf(w, "  #%d %s\n", i, rep.Final[i])
	}
	fmt.Fprintf(w, "steps=%d rejected=%d truncated=%t\n", rep.Steps, rep.Rejected, rep.Truncated)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Personal.AI order the ending
