package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vic/optinet/pkg/config"
	"github.com/vic/optinet/pkg/engine"
)

var reduceCmd = &cobra.Command{
	Use:   "reduce [file]",
	Short: "Reduce a lambda-calculus program to normal form",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReduce,
}

func runReduce(c *cobra.Command, args []string) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	source, err := readSource(args)
	if err != nil {
		return err
	}

	result, stats, err := reduceCached(c.Context(), source, cfg)
	if err != nil {
		return fmt.Errorf("optinet: %w", err)
	}

	fmt.Fprintln(c.OutOrStdout(), result)
	fmt.Fprintf(c.ErrOrStderr(), "run=%s loops=%d rules=%d (betas=%d dupls=%d annis=%d)\n",
		stats.RunID, stats.Loops, stats.Rules, stats.Betas, stats.Dupls, stats.Annis)
	return nil
}

func readSource(args []string) (string, error) {
	if len(args) == 1 {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		return string(b), nil
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(b), nil
}

func reduceOpts(cfg *config.Config) engine.Options {
	return engine.Options{
		Workers:       cfg.Workers,
		Budget:        uint64(cfg.Budget),
		TraceCapacity: cfg.TraceCapacity,
	}
}

func reduceCached(ctx context.Context, source string, cfg *config.Config) (string, engine.Stats, error) {
	if !cfg.CacheEnabled {
		return engine.Reduce(ctx, source, reduceOpts(cfg))
	}
	return cachedReduce(ctx, source, cfg)
}
