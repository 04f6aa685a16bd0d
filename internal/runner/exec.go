package runner

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"lastzrun/internal/apperr"
	"lastzrun/internal/lastz"
)

// ExecLauncher runs commands with os/exec. Every child appends its stdout
// to Stdout, the shared output file opened with O_APPEND.
type ExecLauncher struct {
	Stdout *os.File
	Stderr io.Writer
}

// NewExecLauncher wires stdout and stderr for all children. A stderr that
// is not an *os.File is serialised, since exec copies into it from one
// goroutine per child.
func NewExecLauncher(stdout *os.File, stderr io.Writer) *ExecLauncher {
	if _, isFile := stderr.(*os.File); stderr != nil && !isFile {
		stderr = &lockedWriter{w: stderr}
	}
	return &ExecLauncher{Stdout: stdout, Stderr: stderr}
}

// Launch starts cmd and waits for it. In-flight processes are not tied to
// ctx and are never killed.
func (l *ExecLauncher) Launch(_ context.Context, cmd lastz.JobCommand) (Result, error) {
	if len(cmd.Args) == 0 {
		return Result{ExitCode: -1}, apperr.Launch("start", errors.New("empty command"))
	}

	c := exec.Command(cmd.Args[0], cmd.Args[1:]...)
	if l.Stdout != nil {
		c.Stdout = l.Stdout
	}
	if l.Stderr != nil {
		c.Stderr = l.Stderr
	}

	start := time.Now()
	if err := c.Start(); err != nil {
		return Result{ExitCode: -1}, apperr.Launch(cmd.String(), err)
	}
	err := c.Wait()
	res := Result{Duration: time.Since(start)}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		res.ExitCode = -1
		return res, apperr.Launch(cmd.String(), err)
	}
	return res, nil
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
