// Command lampsim runs the lamp program against the in-memory platform and
// draws the ring on the terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"lampring/internal/boards"
	"lampring/internal/config"
	"lampring/internal/core"
	"lampring/internal/events"
	"lampring/internal/lamps"
	"lampring/internal/logx"
	"lampring/internal/platform/sim"
	"lampring/internal/program"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

var (
	simOpts = struct {
		board   string
		ticks   int
		period  time.Duration
		start   int
		verbose bool
	}{}

	rootCmd = &cobra.Command{
		Use:   "lampsim",
		Short: "Simulate the lamp ring",
		Long:  "Run the lamp program on a simulated board and print the ring after every tick.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, ok := layouts[simOpts.board]
			if !ok {
				return fmt.Errorf("unknown board %q (want %s)", simOpts.board, strings.Join(boardNames(), ", "))
			}
			cfg := config.Default()
			cfg.TickBound = simOpts.ticks
			cfg.TickPeriod = simOpts.period
			cfg.StartRole = lamps.Role(simOpts.start)
			if simOpts.verbose {
				logx.SetLogLevel(slog.LevelDebug)
			} else {
				logx.SetLogLevel(cfg.LogLevel)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return simulate(ctx, cmd.OutOrStdout(), layout, cfg, clockwork.NewRealClock())
		},
	}
)

var layouts = map[string]boards.Layout{
	boards.F3Discovery.Name: boards.F3Discovery,
	boards.Pico.Name:        boards.Pico,
	boards.RaspberryPi.Name: boards.RaspberryPi,
}

func boardNames() []string {
	return []string{boards.F3Discovery.Name, boards.Pico.Name, boards.RaspberryPi.Name}
}

func init() {
	def := config.Default()
	rootCmd.Flags().StringVarP(&simOpts.board, "board", "b", boards.F3Discovery.Name, "board layout: "+strings.Join(boardNames(), ", "))
	rootCmd.Flags().IntVarP(&simOpts.ticks, "ticks", "n", def.TickBound, "ticks before shutdown")
	rootCmd.Flags().DurationVarP(&simOpts.period, "period", "p", 250*time.Millisecond, "tick period (0 spins instead)")
	rootCmd.Flags().IntVarP(&simOpts.start, "start", "s", int(def.StartRole), "first lamp lit (3..10)")
	rootCmd.Flags().BoolVarP(&simOpts.verbose, "verbose", "v", false, "debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// simulate runs one full program lifecycle and writes the ring after each
// tick followed by the final bank states.
func simulate(ctx context.Context, w io.Writer, layout boards.Layout, cfg config.Config, clk clockwork.Clock) error {
	width := layout.LampWidth
	if layout.ClockWidth > width {
		width = layout.ClockWidth
	}
	plat := sim.New(width)
	hub := events.NewHub(cfg.TickBound + 1)
	lit := hub.Subscribe(events.TopicLit)

	p, err := program.Initialize(plat, layout, cfg, program.DelayFor(cfg, clk), hub)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s  %s\n", pad("tick"), ringHeader())
	done := make(chan struct{})
	go func() {
		defer close(done)
		n := 0
		for m := range lit.Channel() {
			n++
			fmt.Fprintf(w, "%s  %s\n", pad(fmt.Sprint(n)), ringLine(m.Payload.(lamps.Role)))
		}
	}()

	runErr := p.Run(ctx)
	lit.Unsubscribe()
	<-done

	st := p.Status()
	fmt.Fprintf(w, "state=%s ticks=%d faults=%d\n", st.State, st.Ticks, st.Faults)
	writePorts(w, plat, layout)
	return runErr
}

func pad(s string) string { return fmt.Sprintf("%4s", s) }

func ringHeader() string {
	var b strings.Builder
	for i, r := range lamps.Ring(lamps.LD3) {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%-4s", r)
	}
	return strings.TrimRight(b.String(), " ")
}

// ringLine draws one tick in ring order, "#" for the lit lamp.
func ringLine(on lamps.Role) string {
	var b strings.Builder
	for i, r := range lamps.Ring(lamps.LD3) {
		if i > 0 {
			b.WriteByte(' ')
		}
		c := "."
		if r == on {
			c = "#"
		}
		fmt.Fprintf(&b, "%-4s", c)
	}
	return strings.TrimRight(b.String(), " ")
}

func writePorts(w io.Writer, plat *sim.Platform, layout boards.Layout) {
	ids := []core.PortID{layout.ClockPort}
	if !layout.SharedPort() {
		ids = append(ids, layout.LampPort)
	}
	for _, id := range ids {
		state := "inactive"
		if plat.Active(id) {
			state = "active"
		}
		configured := 0
		width := layout.ClockWidth
		if id == layout.LampPort {
			width = layout.LampWidth
		}
		for i := 0; i < width; i++ {
			if plat.Mode(core.PinRef{Port: id, Index: i}) != sim.ModeUnconfigured {
				configured++
			}
		}
		fmt.Fprintf(w, "port %s: %s, %d pin(s) configured\n", id, state, configured)
	}
}
