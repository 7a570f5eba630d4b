// Command byrefbench measures descriptor registration and erase/narrow
// round trips, optionally recording a cpu or memory profile.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/oliverbestmann/byref"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type options struct {
	Iterations int
	Workers    int
	Profile    string
	Verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:          "byrefbench",
		Short:        "Benchmark erased references",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Verbose {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}

			switch opts.Profile {
			case "":
			case "cpu":
				defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
			case "mem":
				defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
			default:
				return fmt.Errorf("unknown profile %q, expected cpu or mem", opts.Profile)
			}

			return run(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Iterations, "iterations", "n", 10_000_000, "round trips per worker")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", runtime.NumCPU(), "number of concurrent workers")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "record a profile: cpu or mem")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log descriptor registrations")

	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, opts options) error {
	if opts.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", opts.Workers)
	}

	startTime := time.Now()

	// all workers race for the first registration of the same types
	registered, err := registerConcurrently(ctx, opts.Workers)
	if err != nil {
		return err
	}

	slog.Info("Descriptors registered",
		slog.Int("count", registered),
		slog.Duration("duration", time.Since(startTime)),
	)

	startTime = time.Now()

	eg, ctx := errgroup.WithContext(ctx)
	for range opts.Workers {
		eg.Go(func() error {
			return roundTrips(ctx, opts.Iterations)
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}

	elapsed := time.Since(startTime)
	total := opts.Iterations * opts.Workers

	_, _ = fmt.Fprintf(cmd.OutOrStdout(),
		"%d round trips on %d workers in %s (%.2f ns/op)\n",
		total, opts.Workers, elapsed, float64(elapsed.Nanoseconds())/float64(max(total, 1)),
	)

	return nil
}

type (
	Position struct{ X, Y float64 }
	Velocity struct{ X, Y float64 }
	Name     string
	Health   uint16
)

func registerConcurrently(ctx context.Context, workers int) (int, error) {
	lookup := func() []*byref.Descriptor {
		return []*byref.Descriptor{
			byref.DescriptorOf[Position](),
			byref.DescriptorOf[Velocity](),
			byref.DescriptorOf[Name](),
			byref.DescriptorOf[Health](),
			byref.DescriptorOf[*Position](),
		}
	}

	results := make([][]*byref.Descriptor, workers)

	eg, _ := errgroup.WithContext(ctx)
	for idx := range workers {
		eg.Go(func() error {
			results[idx] = lookup()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return 0, err
	}

	for _, descriptors := range results[1:] {
		for idx, desc := range descriptors {
			if desc != results[0][idx] {
				return 0, fmt.Errorf("descriptor %s registered twice", desc)
			}
		}
	}

	return len(results[0]), nil
}

func roundTrips(ctx context.Context, iterations int) error {
	position := Position{X: 1, Y: 2}
	health := Health(100)

	refs := []byref.Erased{byref.Erase(&position), byref.Erase(&health)}

	for idx := range iterations {
		if idx%1_000_000 == 0 && ctx.Err() != nil {
			return ctx.Err()
		}

		ref := refs[idx%len(refs)]

		if target, ok := byref.TryGetTarget[Position](ref); ok {
			position.X = target.X + 1
			continue
		}

		target, err := byref.TargetAs[Health](ref)
		if err != nil {
			return err
		}

		*target -= 1
	}

	return nil
}
