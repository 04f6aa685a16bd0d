// Package appshell wires process signals and exit codes around a RunContext.
package appshell

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// RunFunc is the signature of app.RunContext.
type RunFunc func(ctx context.Context, argv []string, stdout, stderr io.Writer) int

// Main runs fn with a context cancelled on SIGINT/SIGTERM and exits with
// its code. The first signal stops new jobs and waits for running ones;
// a second signal exits at once with 130.
func Main(fn RunFunc) {
	os.Exit(run(fn, os.Args[1:], os.Stdout, os.Stderr, os.Exit))
}

func run(fn RunFunc, argv []string, stdout, stderr io.Writer, exit func(int)) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sigs:
		case <-done:
			return
		}
		_, _ = fmt.Fprintln(stderr, "interrupt: waiting for running jobs (interrupt again to exit now)")
		cancel()
		select {
		case <-sigs:
			exit(130)
		case <-done:
		}
	}()

	code := fn(ctx, argv, stdout, stderr)
	if ctx.Err() != nil && code == 0 {
		code = 130
	}
	return code
}
