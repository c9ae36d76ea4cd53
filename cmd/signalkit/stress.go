package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/signalkit/pkg/logger"
	"github.com/dmitrymomot/signalkit/pkg/signal"
)

type stressOptions struct {
	emitters int
	emits    int
	slots    int
	churners int
	blocking bool
	format   string
}

// stressReport is the outcome of one stress run.
type stressReport struct {
	RunID          string       `json:"run_id" yaml:"run_id"`
	Mode           string       `json:"mode" yaml:"mode"`
	Emitters       int          `json:"emitters" yaml:"emitters"`
	Emits          int          `json:"emits" yaml:"emits"`
	Slots          int          `json:"slots" yaml:"slots"`
	Churners       int          `json:"churners" yaml:"churners"`
	Expected       int64        `json:"expected" yaml:"expected"`
	Delivered      int64        `json:"delivered" yaml:"delivered"`
	Churned        int64        `json:"churned" yaml:"churned"`
	Elapsed        string       `json:"elapsed" yaml:"elapsed"`
	EmitsPerSecond float64      `json:"emits_per_second" yaml:"emits_per_second"`
	Stats          signal.Stats `json:"stats" yaml:"stats"`
}

func stressCmd() *cobra.Command {
	opts := stressOptions{}

	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Emit concurrently against one signal and verify delivery",
		Long: `Connect a number of counting slots to one signal, emit from many
goroutines at once while other goroutines connect and disconnect throwaway
slots, then check that every counting slot saw every emission.

Examples:
  signalkit stress
  signalkit stress --emitters=16 --emits=50000 --slots=8
  signalkit stress --blocking --format=yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			runID := uuid.NewString()
			log := newLogger(cmd.ErrOrStderr(), cfg, runID)
			hub := signal.NewHub(hubOptions(cfg, log)...)
			defer hub.Close()

			report, runErr := runStress(cmd.Context(), hub, opts, log)
			if report != nil {
				report.RunID = runID
				if err := writeReport(cmd.OutOrStdout(), report, opts.format); err != nil {
					return err
				}
			}
			return runErr
		},
	}

	cmd.Flags().IntVarP(&opts.emitters, "emitters", "n", 8, "Number of emitting goroutines")
	cmd.Flags().IntVarP(&opts.emits, "emits", "m", 10_000, "Emissions per emitter")
	cmd.Flags().IntVarP(&opts.slots, "slots", "k", 4, "Number of counting slots")
	cmd.Flags().IntVarP(&opts.churners, "churners", "c", 2, "Goroutines connecting and disconnecting throwaway slots")
	cmd.Flags().BoolVar(&opts.blocking, "blocking", false, "Use BlockingEmit instead of Emit")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Report format: text, json or yaml")

	return cmd
}

// runStress drives one stress run against the "stress" signal of hub. The
// report is returned even when delivery does not match, together with
// ErrDeliveryMismatch.
func runStress(ctx context.Context, hub *signal.Hub, opts stressOptions, log *slog.Logger) (*stressReport, error) {
	if opts.emitters < 1 || opts.emits < 0 || opts.slots < 0 || opts.churners < 0 {
		return nil, fmt.Errorf("stress: emitters must be positive and other counts non-negative")
	}
	log = logger.OrDiscard(log)

	sig := signal.Get[int64](hub, "stress")
	defer signal.Remove[int64](hub, "stress")

	var delivered atomic.Int64
	for range opts.slots {
		sig.Connect(func(v int64) { delivered.Add(v) })
	}

	emit := sig.Emit
	mode := "emit"
	if opts.blocking {
		emit = sig.BlockingEmit
		mode = "blocking_emit"
	}

	log.Info("stress run started",
		logger.Signal(sig.Name()),
		slog.String("mode", mode),
		slog.Int("emitters", opts.emitters),
		slog.Int("emits", opts.emits),
		slog.Int("slots", opts.slots),
		slog.Int("churners", opts.churners),
	)

	stop := make(chan struct{})
	var churned atomic.Int64
	var churn errgroup.Group
	for range opts.churners {
		churn.Go(func() error {
			for {
				select {
				case <-stop:
					return nil
				default:
				}
				conn := sig.ConnectScoped(func(int64) {})
				conn.Disconnect()
				churned.Add(1)
			}
		})
	}

	start := time.Now()
	emitters, ectx := errgroup.WithContext(ctx)
	for range opts.emitters {
		emitters.Go(func() error {
			for i := range opts.emits {
				if i%1024 == 0 {
					if err := ectx.Err(); err != nil {
						return err
					}
				}
				emit(1)
			}
			return nil
		})
	}
	emitErr := emitters.Wait()
	elapsed := time.Since(start)

	close(stop)
	_ = churn.Wait()

	sig.ForceCleanup()

	total := opts.emitters * opts.emits
	report := &stressReport{
		Mode:      mode,
		Emitters:  opts.emitters,
		Emits:     opts.emits,
		Slots:     opts.slots,
		Churners:  opts.churners,
		Expected:  int64(total) * int64(opts.slots),
		Delivered: delivered.Load(),
		Churned:   churned.Load(),
		Elapsed:   elapsed.String(),
		Stats:     sig.Stats(),
	}
	if secs := elapsed.Seconds(); secs > 0 {
		report.EmitsPerSecond = float64(total) / secs
	}

	if emitErr != nil {
		log.Warn("stress run interrupted", logger.Error(emitErr))
		return report, emitErr
	}
	if report.Delivered != report.Expected {
		err := fmt.Errorf("%w: delivered %d, expected %d", ErrDeliveryMismatch, report.Delivered, report.Expected)
		log.Error("stress run failed", logger.Error(err))
		return report, err
	}

	log.Info("stress run finished",
		slog.Int64("delivered", report.Delivered),
		slog.Duration("elapsed", elapsed),
	)
	return report, nil
}

func validateFormat(format string) error {
	switch strings.ToLower(format) {
	case "text", "json", "yaml":
		return nil
	}
	return errors.Join(ErrInvalidFormat, fmt.Errorf("unknown format %q", format))
}

func writeReport(w io.Writer, r *stressReport, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}

	_, err := fmt.Fprintf(w, `run:        %s
mode:       %s
workload:   %d emitters x %d emits x %d slots, %d churners
delivered:  %d / %d
churned:    %d slots
elapsed:    %s (%.0f emits/s)
stats:      active=%d stored=%d pending=%d
`,
		r.RunID, r.Mode,
		r.Emitters, r.Emits, r.Slots, r.Churners,
		r.Delivered, r.Expected,
		r.Churned,
		r.Elapsed, r.EmitsPerSecond,
		r.Stats.Active, r.Stats.Stored, r.Stats.PendingDisconnects,
	)
	return err
}
