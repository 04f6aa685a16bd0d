// internal/appcore/core.go
package appcore

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"lastzrun/internal/apperr"
	"lastzrun/internal/cli"
	"lastzrun/internal/cmdutil"
	"lastzrun/internal/jobqueue"
	"lastzrun/internal/lastz"
	"lastzrun/internal/logging"
	"lastzrun/internal/metrics"
	"lastzrun/internal/output"
	"lastzrun/internal/partition"
	"lastzrun/internal/runner"
	"lastzrun/internal/runutil"
)

// Run executes one alignment run for validated options. Commands are
// printed to stdout in dry-run mode; logs go to stderr.
func Run(ctx context.Context, o cli.Options, stdout, stderr io.Writer) error {
	logger, err := logging.New(stderr, o.LogFormat, o.EffectiveLogLevel())
	if err != nil {
		return apperr.Configuration("logging", err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("run_id", ulid.Make().String()))

	cmds, err := Plan(ctx, o, logger)
	if err != nil {
		return err
	}

	if o.DryRun {
		return printCommands(stdout, cmds)
	}

	threads := runutil.EffectiveThreads(o.Threads)
	rec := metrics.NewRecorder()
	rec.SetPartitions(len(cmds))
	if o.MetricsFile != "" {
		defer func() {
			if err := rec.WriteTextfile(o.MetricsFile); err != nil {
				logger.Warn("could not write metrics file", zap.String("path", o.MetricsFile), zap.Error(err))
			}
		}()
	}

	agg, err := output.Open(o.Output)
	if err != nil {
		return err
	}
	defer agg.Close()

	logger.Info("starting run",
		zap.Int("partitions", len(cmds)), zap.Int("threads", threads), zap.String("output", agg.Path()))

	pool := &runner.Pool{
		Threads:  threads,
		Launcher: runner.NewExecLauncher(agg.File(), stderr),
		Observer: rec,
		Logger:   logger,
	}
	sum, runErr := pool.Run(ctx, jobqueue.New(cmds...))

	logger.Info("run finished",
		zap.Int("partitions", len(cmds)),
		zap.Int("attempted", sum.Attempted),
		zap.Int("succeeded", sum.Succeeded),
		zap.Int("nonzero", len(sum.NonZero)))

	if runErr != nil {
		logger.Warn("run stopped early; output may hold partial results",
			zap.String("output", agg.Path()), zap.Error(runErr))
		return runErr
	}
	if o.FailOnExitStatus && len(sum.NonZero) > 0 {
		first := sum.NonZero[0]
		return apperr.JobStatus("run", fmt.Errorf("%d of %d jobs exited non-zero (first: %s, exit %d)",
			len(sum.NonZero), sum.Attempted, first.Command.Partition, first.ExitCode))
	}
	return nil
}

// Plan enumerates partitions and builds one command per partition, in
// enumeration order.
func Plan(ctx context.Context, o cli.Options, logger *zap.Logger) ([]lastz.JobCommand, error) {
	src, err := partition.ParseSource(o.RefSource)
	if err != nil {
		return nil, apperr.Configuration("options", err)
	}
	format, err := lastz.ParseFormat(o.Format)
	if err != nil {
		return nil, apperr.Configuration("options", err)
	}
	ao, err := o.AlignmentOptions()
	if err != nil {
		return nil, apperr.Configuration("options", err)
	}
	tokens, err := lastz.ResolveOptions(ao)
	if err != nil {
		return nil, apperr.Configuration("resolve options", err)
	}

	plan, err := partition.New(logger).Enumerate(ctx, partition.Request{
		Source:        src,
		ReferencePath: o.Reference,
		DeclaredCount: o.RefSequences,
		IndexDir:      o.SeqsLocDir,
	})
	if err != nil {
		return nil, err
	}

	b := lastz.Builder{
		Executable:    o.Lastz,
		RefName:       o.RefName,
		ReferencePath: plan.ReferencePath,
		QueryPath:     o.Query,
		Options:       tokens,
		Filters:       o.Filters(),
		Output:        lastz.OutputSpec{Format: format, Path: o.Output},
	}
	if err := b.Validate(); err != nil {
		return nil, apperr.Configuration("build commands", err)
	}
	return b.BuildAll(plan.Partitions), nil
}

func printCommands(stdout io.Writer, cmds []lastz.JobCommand) error {
	w := bufio.NewWriter(stdout)
	for _, c := range cmds {
		if _, err := fmt.Fprintln(w, c.String()); err != nil {
			if cmdutil.IsBrokenPipe(err) {
				return nil
			}
			return err
		}
	}
	return cmdutil.Flush(w)
}
