package main

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/progress"
)

var (
	batchFile  string
	batchLimit int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Batch enrich companies from a domains file",
	Long:  "Reads one entry per line: a domain, optionally followed by a comma and a company name hint. Blank lines and lines starting with # are skipped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		f, err := os.Open(batchFile)
		if err != nil {
			return eris.Wrap(err, "open domains file")
		}
		defer f.Close()

		targets, err := readTargets(f)
		if err != nil {
			return err
		}

		return processBatch(ctx, targets, batchLimit, cfg.Batch.Concurrency,
			func(ctx context.Context, tgt target) (*model.EnrichmentResult, error) {
				return env.Engine.Run(ctx, tgt.Domain, tgt.NameHint, progress.LogSink{})
			})
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "path to domains file (required)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of domains to process (0 = all)")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}

// target is one batch entry: a domain plus an optional name hint.
type target struct {
	Domain   string
	NameHint string
}

// readTargets parses the domains file. Each line is "domain" or
// "domain,name hint"; blank lines and #-comments are skipped.
func readTargets(r io.Reader) ([]target, error) {
	var targets []target
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		domain, hint, _ := strings.Cut(line, ",")
		targets = append(targets, target{
			Domain:   strings.TrimSpace(domain),
			NameHint: strings.TrimSpace(hint),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "read domains file")
	}
	return targets, nil
}

// enrichFunc is the callback signature for enriching one target.
type enrichFunc func(ctx context.Context, tgt target) (*model.EnrichmentResult, error)

// processBatch applies limit, then enriches targets concurrently. An
// individual failure is logged and counted without aborting the batch.
func processBatch(ctx context.Context, targets []target, limit, concurrency int, enrich enrichFunc) error {
	if len(targets) == 0 {
		zap.L().Info("no domains to process")
		return nil
	}

	if limit > 0 && len(targets) > limit {
		targets = targets[:limit]
	}
	if concurrency < 1 {
		concurrency = 1
	}

	zap.L().Info("processing batch",
		zap.Int("domains", len(targets)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for _, tgt := range targets {
		g.Go(func() error {
			log := zap.L().With(zap.String("domain", tgt.Domain))

			result, err := enrich(gctx, tgt)
			if err != nil {
				failed.Add(1)
				log.Error("enrichment failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			log.Info("enrichment complete",
				zap.String("revenue_band", string(result.RevenueBand)),
				zap.Bool("icp_match", result.ICPMatch),
				zap.Float64("cost_usd", result.Cost.TotalUSD),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}
