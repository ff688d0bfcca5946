package uninstall

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windowsadmins/hush/pkg/cmdline"
	"github.com/windowsadmins/hush/pkg/config"
	"github.com/windowsadmins/hush/pkg/inventory"
	"github.com/windowsadmins/hush/pkg/logging"
)

func TestMain(m *testing.M) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") == "1" {
		os.Exit(m.Run())
	}

	dir, err := os.MkdirTemp("", "hush-uninstall-test")
	if err == nil {
		cfg := config.GetDefaultConfig()
		cfg.LogDirPath = dir
		_ = logging.Init(cfg)
	}

	code := m.Run()

	logging.CloseLogger()
	if dir != "" {
		os.RemoveAll(dir)
	}
	os.Exit(code)
}

// TestHelperProcess stands in for an EXE uninstaller when re-executed.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}
	if len(args) == 0 {
		os.Exit(2)
	}

	switch args[0] {
	case "exit":
		code := 0
		if len(args) > 1 {
			code, _ = strconv.Atoi(args[1])
		}
		os.Exit(code)
	case "sleep":
		d, _ := time.ParseDuration(args[1])
		time.Sleep(d)
		os.Exit(0)
	}
	os.Exit(2)
}

// helperQuietString builds a quoted command line that re-executes this test
// binary as a fake uninstaller.
func helperQuietString(t *testing.T, args ...string) string {
	t.Helper()
	exe, err := os.Executable()
	require.NoError(t, err)
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")
	return `"` + exe + `" -test.run=TestHelperProcess -- ` + strings.Join(args, " ")
}

// fakeMsiexec drops a shell script named msiexec.exe onto PATH that records
// its arguments, one per line, into a side file.
func fakeMsiexec(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake msiexec shim is a shell script")
	}

	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")
	script := fmt.Sprintf("#!/bin/sh\nprintf '%%s\\n' \"$@\" > %s\nexit 0\n", argsFile)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "msiexec.exe"), []byte(script), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return argsFile
}

func recordedArgs(t *testing.T, argsFile string) []string {
	t.Helper()
	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestRunMsiexecRewritesAndRuns(t *testing.T) {
	argsFile := fakeMsiexec(t)

	res, err := RunMsiexec(context.Background(),
		"msiexec.exe /I {ABCD-1234} /quiet /norestart", Options{Timeout: 30 * time.Second})

	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, []string{"/X", "{ABCD-1234}", "/qn", "/norestart"}, recordedArgs(t, argsFile))
}

func TestRunMsiexecUnsupportedCommand(t *testing.T) {
	dir := t.TempDir()
	notepad := filepath.Join(dir, "notepad.exe")
	require.NoError(t, os.WriteFile(notepad, []byte("#!/bin/sh\nexit 0\n"), 0o755))

	res, err := RunMsiexec(context.Background(), `"`+notepad+`" /I {ABCD-1234}`, Options{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedCommand)
	assert.Equal(t, -1, res.ExitCode)
	assert.Equal(t, 0, res.PID, "no process may be launched for an unsupported command")
}

func TestRunMsiexecResolutionFailure(t *testing.T) {
	_, err := RunMsiexec(context.Background(), "no-such-tool-xyz /X {ABCD}", Options{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedCommand)
}

func TestRunMsiexecExpansionFailure(t *testing.T) {
	_, err := RunMsiexec(context.Background(), `"C:\unterminated /X {ABCD}`, Options{})

	require.Error(t, err)
	assert.ErrorIs(t, err, cmdline.ErrExpansion)
	assert.NotErrorIs(t, err, ErrUnsupportedCommand)
}

func TestRunCommandRoutesMsiexecThroughRewrite(t *testing.T) {
	argsFile := fakeMsiexec(t)

	res, err := RunCommand(context.Background(),
		"msiexec.exe /X {ABCD-1234}", Options{Timeout: 30 * time.Second})

	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, []string{"/X", "{ABCD-1234}", "/qn", "/norestart"}, recordedArgs(t, argsFile))
}

func TestRunCommandPassesOtherExecutablesThrough(t *testing.T) {
	raw := helperQuietString(t, "exit")

	res, err := RunCommand(context.Background(), raw,
		Options{Timeout: 30 * time.Second, SilentArgs: []string{"6"}})

	require.NoError(t, err)
	assert.Equal(t, 6, res.ExitCode)
}

func TestRunExecutableQuietString(t *testing.T) {
	raw := helperQuietString(t, "exit", "0")

	res, err := RunExecutable(context.Background(), raw, Options{Timeout: 30 * time.Second})

	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
}

func TestRunExecutableAppendsSilentArgs(t *testing.T) {
	// The recorded command is incomplete; the appended silent arg completes
	// it and determines the exit code, proving ordering.
	raw := helperQuietString(t, "exit")

	res, err := RunExecutable(context.Background(), raw,
		Options{Timeout: 30 * time.Second, SilentArgs: []string{"4"}})

	require.NoError(t, err)
	assert.Equal(t, 4, res.ExitCode)
}

func TestRunExecutableReplacesArgs(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")

	// Recorded args would exit 5; the replacement list exits 7.
	raw := `"` + exe + `" -test.run=TestHelperProcess -- exit 5`
	silent := []string{"-test.run=TestHelperProcess", "--", "exit", "7"}

	res, runErr := RunExecutable(context.Background(), raw,
		Options{Timeout: 30 * time.Second, SilentArgs: silent, ReplaceArgs: true})

	require.NoError(t, runErr)
	assert.Equal(t, 7, res.ExitCode)
}

func TestRunExecutableDryRun(t *testing.T) {
	res, err := RunExecutable(context.Background(),
		`"C:\Program Files\Ghost\uninstall.exe" /S`, Options{DryRun: true})

	require.NoError(t, err, "dry run must not touch the executable")
	assert.Equal(t, 0, res.PID)
}

func TestRemoveProductCode(t *testing.T) {
	argsFile := fakeMsiexec(t)

	res, err := RemoveProduct(context.Background(),
		"{90160000-008C-0000-1000-0000000FF1CE}", Options{Timeout: 30 * time.Second})

	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t,
		[]string{"/X", "{90160000-008C-0000-1000-0000000FF1CE}", "/qn", "/norestart"},
		recordedArgs(t, argsFile))
}

func TestRemovePrefersQuietString(t *testing.T) {
	ent := inventory.Entry{
		Name:                 "Helper App",
		QuietUninstallString: helperQuietString(t, "exit", "0"),
		// Would fail loudly if Remove picked it.
		UninstallString: "no-such-tool-xyz -i",
	}

	res, err := Remove(context.Background(), ent, Options{Timeout: 30 * time.Second})

	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
}

func TestRemoveQuietStringIgnoresSilentArgs(t *testing.T) {
	// Silent args apply to plain uninstall strings only; a vendor quiet
	// string is trusted as-is. Were the arg appended it would become the
	// helper's exit code.
	ent := inventory.Entry{
		Name:                 "Helper App",
		QuietUninstallString: helperQuietString(t, "exit"),
	}

	res, err := Remove(context.Background(), ent,
		Options{Timeout: 30 * time.Second, SilentArgs: []string{"9"}})

	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
}

func TestRemoveUninstallStringWithSilentArgs(t *testing.T) {
	ent := inventory.Entry{
		Name:            "Helper App",
		UninstallString: helperQuietString(t, "exit"),
	}

	res, err := Remove(context.Background(), ent,
		Options{Timeout: 30 * time.Second, SilentArgs: []string{"4"}})

	require.NoError(t, err)
	assert.Equal(t, 4, res.ExitCode)
}

func TestRemoveMsiEntryGoesThroughRewrite(t *testing.T) {
	argsFile := fakeMsiexec(t)

	ent := inventory.Entry{
		Name:            "MSI App",
		UninstallString: "msiexec.exe /I{ABCD-1234} /passive",
	}

	res, err := Remove(context.Background(), ent, Options{Timeout: 30 * time.Second})

	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, []string{"/X{ABCD-1234}", "/qn", "/norestart"}, recordedArgs(t, argsFile))
}

func TestRemoveFallsBackToProductCode(t *testing.T) {
	argsFile := fakeMsiexec(t)
	guid := "{11111111-2222-3333-4444-555555555555}"

	ent := inventory.Entry{
		Name: "Registry-less MSI App",
		Key:  `HKLM\Software\Microsoft\Windows\CurrentVersion\Uninstall\` + guid,
	}

	res, err := Remove(context.Background(), ent, Options{Timeout: 30 * time.Second})

	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, []string{"/X", guid, "/qn", "/norestart"}, recordedArgs(t, argsFile))
}

func TestRemoveNothingRecorded(t *testing.T) {
	_, err := Remove(context.Background(), inventory.Entry{Name: "Ghost"}, Options{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no uninstall command recorded")
}
