// pkg/runner/runner.go - supervised execution of uninstall processes.
//
// One child process per call: started hidden, awaited up to a bound, and
// force-terminated on timeout or cancellation. The caller always gets the
// child's exit code back, best-effort when the process had to be killed, and
// the child is never left running past the call.

package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"github.com/windowsadmins/hush/pkg/logging"
)

// DefaultTimeout bounds an uninstall process when the caller passes no
// explicit timeout.
const DefaultTimeout = 15 * time.Minute

var (
	// ErrTimeout reports that the process outlived its bound and was killed.
	ErrTimeout = errors.New("uninstall process exceeded its timeout")
	// ErrCancelled reports that the wait was interrupted and the process killed.
	ErrCancelled = errors.New("uninstall wait cancelled")
)

// Result describes one supervised uninstall process after it is gone.
type Result struct {
	PID       int
	ExitCode  int
	Output    string
	Duration  time.Duration
	TimedOut  bool
	Cancelled bool
}

// Run launches executable with args and blocks until the process exits, the
// timeout elapses, or ctx is cancelled. On timeout and cancellation the
// process tree is forcibly terminated before Run returns; both are reported
// as warnings, not fatal errors, with the best-effort exit code in Result.
func Run(ctx context.Context, executable string, args []string, timeout time.Duration) (Result, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cmd := exec.Command(executable, args...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	hideWindow(cmd)

	res := Result{ExitCode: -1}
	start := time.Now()

	if err := cmd.Start(); err != nil {
		return res, fmt.Errorf("starting %s: %w", executable, err)
	}
	res.PID = cmd.Process.Pid
	logging.Info("Uninstall process started", "command", executable, "pid", res.PID, "timeout", timeout)

	waitCh := make(chan error, 1)
	go func() {
		waitCh <- cmd.Wait()
	}()

	reaped := false
	defer func() {
		// The child must never outlive this call, whichever path returns.
		if !reaped {
			terminate(cmd)
			<-waitCh
		}
	}()

	select {
	case waitErr := <-waitCh:
		reaped = true
		res.ExitCode = exitCode(waitErr)
		res.Output = output.String()
		res.Duration = time.Since(start)
		if waitErr != nil && res.ExitCode < 0 {
			return res, fmt.Errorf("waiting for %s: %w", executable, waitErr)
		}
		logging.Info("Uninstall process exited", "pid", res.PID, "exit_code", res.ExitCode, "duration", res.Duration.Round(time.Millisecond))
		return res, nil

	case <-time.After(timeout):
		terminate(cmd)
		waitErr := <-waitCh
		reaped = true
		res.TimedOut = true
		res.ExitCode = exitCode(waitErr)
		res.Output = output.String()
		res.Duration = time.Since(start)
		logging.Warn("Uninstall process killed after timeout", "pid", res.PID, "timeout", timeout, "exit_code", res.ExitCode)
		return res, fmt.Errorf("%w (%s)", ErrTimeout, timeout)

	case <-ctx.Done():
		terminate(cmd)
		waitErr := <-waitCh
		reaped = true
		res.Cancelled = true
		res.ExitCode = exitCode(waitErr)
		res.Output = output.String()
		res.Duration = time.Since(start)
		logging.Warn("Uninstall wait cancelled, process killed", "pid", res.PID, "cause", ctx.Err(), "exit_code", res.ExitCode)
		return res, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	}
}

// exitCode maps a Wait result onto a best-effort numeric exit code. A killed
// process reports 128+signal where the OS exposes the signal and -1 where it
// does not.
func exitCode(waitErr error) int {
	if waitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code
		}
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal())
		}
	}
	return -1
}
