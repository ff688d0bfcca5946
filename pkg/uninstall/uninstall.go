// pkg/uninstall/uninstall.go - rewrite-and-run entry points for silent removals.
//
// Two paths out: msiexec command lines go through the forced-silent argument
// rewrite, everything else runs as recorded with optional caller-supplied
// silent switches. Both end in the same supervised launch.

package uninstall

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/windowsadmins/hush/pkg/cmdline"
	"github.com/windowsadmins/hush/pkg/exeargs"
	"github.com/windowsadmins/hush/pkg/inventory"
	"github.com/windowsadmins/hush/pkg/logging"
	"github.com/windowsadmins/hush/pkg/msiargs"
	"github.com/windowsadmins/hush/pkg/runner"
)

// ErrUnsupportedCommand reports that a command line expected to target
// msiexec could not be resolved to it. Nothing is launched; the caller
// decides whether to try another removal strategy.
var ErrUnsupportedCommand = errors.New("uninstall command does not resolve to msiexec")

// Options tune one removal invocation.
type Options struct {
	// Timeout bounds the uninstall process; zero means runner.DefaultTimeout.
	Timeout time.Duration
	// SilentArgs are appended to (or substituted for) a non-MSI uninstaller's
	// recorded arguments. Ignored on the msiexec path and for vendor quiet
	// strings, which are trusted as-is.
	SilentArgs []string
	// ReplaceArgs substitutes SilentArgs for the recorded arguments instead
	// of appending them.
	ReplaceArgs bool
	// DryRun logs the final command without launching anything.
	DryRun bool
}

// RunMsiexec rewrites rawCommand into a forced-silent msiexec uninstall and
// supervises it. The recorded executable must resolve to msiexec; a command
// that resolves elsewhere (or not at all) is reported as unsupported and
// never launched.
func RunMsiexec(ctx context.Context, rawCommand string, opts Options) (runner.Result, error) {
	cl, err := cmdline.Split(rawCommand)
	if err != nil {
		return runner.Result{ExitCode: -1}, err
	}

	resolved, err := exec.LookPath(cl.Executable)
	if err != nil {
		logging.Warn("Cannot resolve uninstall executable", "executable", cl.Executable, "error", err)
		return runner.Result{ExitCode: -1}, fmt.Errorf("%w: %v", ErrUnsupportedCommand, err)
	}
	if !msiargs.IsMsiexec(resolved) {
		logging.Warn("Uninstall command does not target msiexec, skipping", "executable", resolved)
		return runner.Result{ExitCode: -1}, ErrUnsupportedCommand
	}

	return launch(ctx, resolved, msiargs.Rewrite(cl.Args), opts)
}

// RunExecutable expands rawCommand and supervises it without rewriting. With
// empty SilentArgs the command runs exactly as recorded (quiet-string mode);
// otherwise the silent params are appended or, with ReplaceArgs, substituted.
func RunExecutable(ctx context.Context, rawCommand string, opts Options) (runner.Result, error) {
	cl, err := cmdline.Split(rawCommand)
	if err != nil {
		return runner.Result{ExitCode: -1}, err
	}

	return launch(ctx, cl.Executable, exeargs.Compose(cl.Args, opts.SilentArgs, opts.ReplaceArgs), opts)
}

// RunCommand routes a raw uninstall command line by its target: msiexec
// commands go through the forced-silent rewrite, anything else runs via
// RunExecutable.
func RunCommand(ctx context.Context, rawCommand string, opts Options) (runner.Result, error) {
	if targetsMsiexec(rawCommand) {
		return RunMsiexec(ctx, rawCommand, opts)
	}
	return RunExecutable(ctx, rawCommand, opts)
}

// RemoveProduct uninstalls by MSI product code through the msiexec rewrite
// path.
func RemoveProduct(ctx context.Context, productCode string, opts Options) (runner.Result, error) {
	return RunMsiexec(ctx, "msiexec.exe /X "+productCode, opts)
}

// Remove picks the best recorded command for an inventory entry: the
// vendor's QuietUninstallString when present, else the UninstallString,
// else the MSI product code. msiexec-targeted commands go through the
// rewrite; anything else runs via RunExecutable.
func Remove(ctx context.Context, ent inventory.Entry, opts Options) (runner.Result, error) {
	switch {
	case ent.QuietUninstallString != "":
		logging.Info("Using vendor quiet uninstall string", "name", ent.Name)
		quiet := opts
		quiet.SilentArgs = nil
		quiet.ReplaceArgs = false
		return RunCommand(ctx, ent.QuietUninstallString, quiet)

	case ent.UninstallString != "":
		return RunCommand(ctx, ent.UninstallString, opts)

	case ent.ProductCode() != "":
		logging.Info("No uninstall string recorded, using MSI product code", "name", ent.Name, "product_code", ent.ProductCode())
		return RemoveProduct(ctx, ent.ProductCode(), opts)

	default:
		return runner.Result{ExitCode: -1}, fmt.Errorf("no uninstall command recorded for %q", ent.Name)
	}
}

// targetsMsiexec checks the recorded executable's base name without
// resolving it. RunMsiexec re-checks after path resolution.
func targetsMsiexec(rawCommand string) bool {
	cl, err := cmdline.Split(rawCommand)
	return err == nil && msiargs.IsMsiexec(cl.Executable)
}

// launch hands the final command to the supervisor, or just logs it on a
// dry run.
func launch(ctx context.Context, executable string, args []string, opts Options) (runner.Result, error) {
	if opts.DryRun {
		logging.Info("Dry run, not launching", "command", executable, "args", strings.Join(args, " "))
		return runner.Result{}, nil
	}
	return runner.Run(ctx, executable, args, opts.Timeout)
}
