// Package runner drains a jobqueue with a fixed number of workers, each
// running one external process at a time.
//
// The only contract to implement is Launcher. This keeps the pool
// testable without spawning processes.
package runner

import (
	"context"
	"sync"
	"time"

	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lastzrun/internal/apperr"
	"lastzrun/internal/jobqueue"
	"lastzrun/internal/lastz"
)

// Result describes one finished process.
type Result struct {
	ExitCode int
	Duration time.Duration
}

// Launcher starts cmd and waits for it. A non-nil error means the process
// could not be run at all; a non-zero exit is reported through Result.
type Launcher interface {
	Launch(ctx context.Context, cmd lastz.JobCommand) (Result, error)
}

// Observer is notified around every launch. Implementations must be safe
// for concurrent use.
type Observer interface {
	JobStarted(cmd lastz.JobCommand)
	JobFinished(cmd lastz.JobCommand, res Result, err error)
}

// JobStatus records a job that ran but exited non-zero.
type JobStatus struct {
	Command  lastz.JobCommand
	ExitCode int
}

type Summary struct {
	Attempted int
	Succeeded int
	NonZero   []JobStatus
}

// Pool runs Threads workers against a queue.
type Pool struct {
	Threads  int
	Launcher Launcher
	Observer Observer // optional
	Logger   *zap.Logger
}

// Run starts the workers and blocks until every worker has seen an empty
// queue and exited.
//
// The first launch failure cancels the group: running processes are left
// to finish, but no further commands are popped, and that error is
// returned. Cancelling ctx has the same effect and Run returns ctx.Err().
func (p *Pool) Run(ctx context.Context, q *jobqueue.Queue) (Summary, error) {
	threads := p.Threads
	if threads < 1 {
		threads = 1
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		mu  sync.Mutex
		sum Summary
	)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < threads; w++ {
		wlog := logger.With(zap.Int("worker", w))
		g.Go(func() error {
			for {
				if gctx.Err() != nil {
					return nil
				}
				cmd, ok := q.Pop()
				if !ok {
					return nil
				}
				if err := p.runOne(gctx, wlog, cmd, &mu, &sum); err != nil {
					return err
				}
			}
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return sum, err
}

func (p *Pool) runOne(ctx context.Context, logger *zap.Logger, cmd lastz.JobCommand, mu *sync.Mutex, sum *Summary) error {
	logger = logger.With(zap.Stringer("partition", cmd.Partition))
	logger.Debug("starting job", zap.String("command", cmd.String()))
	if p.Observer != nil {
		p.Observer.JobStarted(cmd)
	}

	var (
		res Result
		err error
	)
	if recovered := panics.Try(func() { res, err = p.Launcher.Launch(ctx, cmd) }); recovered != nil {
		res, err = Result{ExitCode: -1}, apperr.Launch(cmd.String(), recovered.AsError())
	}

	if p.Observer != nil {
		p.Observer.JobFinished(cmd, res, err)
	}

	mu.Lock()
	defer mu.Unlock()
	sum.Attempted++

	switch {
	case err != nil:
		logger.Error("job launch failed", zap.String("command", cmd.String()), zap.Error(err))
		return err
	case res.ExitCode != 0:
		sum.NonZero = append(sum.NonZero, JobStatus{Command: cmd, ExitCode: res.ExitCode})
		logger.Warn("job exited non-zero",
			zap.Int("exit_code", res.ExitCode), zap.Duration("duration", res.Duration))
	default:
		sum.Succeeded++
		logger.Info("job finished", zap.Duration("duration", res.Duration))
	}
	return nil
}
