// cmd/hush/main.go

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/windowsadmins/hush/pkg/blocking"
	"github.com/windowsadmins/hush/pkg/config"
	"github.com/windowsadmins/hush/pkg/inventory"
	"github.com/windowsadmins/hush/pkg/logging"
	"github.com/windowsadmins/hush/pkg/msidb"
	"github.com/windowsadmins/hush/pkg/runner"
	"github.com/windowsadmins/hush/pkg/uninstall"
	"github.com/windowsadmins/hush/pkg/version"
)

func main() {
	patchArgs()
	enableANSIConsole()

	// Define command-line flags.
	listFlag := pflag.Bool("list", false, "List removable software and exit.")
	product := pflag.StringP("product", "p", "", "Display name (or substring) of the product to uninstall.")
	msiPath := pflag.String("msi", "", "Uninstall by the product code read from a local .msi file.")
	uninstallString := pflag.String("uninstall-string", "", "Run a raw uninstall command line with silent arguments applied.")
	quietString := pflag.String("quiet-string", "", "Run a vendor quiet uninstall command line exactly as recorded.")
	silentArgs := pflag.StringArray("silent-arg", nil, "Silent argument for non-MSI uninstallers; repeat for more than one.")
	replaceArgs := pflag.Bool("replace-args", false, "Replace the recorded arguments with the --silent-arg values instead of appending them.")
	timeout := pflag.Duration("timeout", 0, "Bound for one uninstall process (e.g. 10m); 0 uses the configured timeout.")
	olderThan := pflag.String("older-than", "", "Only uninstall matches whose version is older than this.")
	allMatches := pflag.Bool("all", false, "Uninstall every match instead of refusing an ambiguous name.")
	force := pflag.Bool("force", false, "Uninstall even when processes from the install location are still running.")
	dryRun := pflag.Bool("dry-run", false, "Log the final command without launching it.")
	showConfig := pflag.Bool("show-config", false, "Display the current configuration and exit.")
	versionFlag := pflag.Bool("version", false, "Print the version and exit.")

	var verbosity int
	pflag.CountVarP(&verbosity, "verbose", "v", "Increase verbosity (e.g. -v, -vv, -vvv)")
	pflag.Parse()

	if *versionFlag {
		version.Print()
		os.Exit(0)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if verbosity > 0 {
		cfg.Verbose = true
		if verbosity >= 3 {
			cfg.Debug = true
		}
	}

	if err := logging.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.CloseLogger()

	if *showConfig {
		out, yerr := yaml.Marshal(cfg)
		if yerr != nil {
			logging.Error("Failed to render configuration", "error", yerr)
			os.Exit(1)
		}
		fmt.Print(string(out))
		os.Exit(0)
	}

	// Cancellation flows into the process supervisor, which kills any child
	// before we exit.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-signalChan
		logging.Warn("Signal received, cancelling", "signal", sig.String())
		cancel()
	}()

	opts := uninstall.Options{
		Timeout:     cfg.UninstallTimeout(),
		SilentArgs:  cfg.SilentArgs,
		ReplaceArgs: *replaceArgs,
		DryRun:      *dryRun,
	}
	if *timeout > 0 {
		opts.Timeout = *timeout
	}
	if len(*silentArgs) > 0 {
		opts.SilentArgs = *silentArgs
	}

	if *listFlag {
		if err := listProducts(*product); err != nil {
			logging.Error("Failed to list installed software", "error", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Everything below launches uninstallers.
	if !*dryRun {
		admin, adminErr := adminCheck()
		if adminErr != nil || !admin {
			logging.Error("Administrative access required", "error", adminErr, "admin", admin)
			os.Exit(1)
		}
	}

	var runErr error
	switch {
	case *msiPath != "":
		runErr = removeByMsiFile(ctx, *msiPath, opts)
	case *uninstallString != "":
		runErr = runRawCommand(ctx, *uninstallString, opts, false)
	case *quietString != "":
		runErr = runRawCommand(ctx, *quietString, opts, true)
	default:
		patterns := pflag.Args()
		if *product != "" {
			patterns = append([]string{*product}, patterns...)
		}
		if len(patterns) == 0 {
			pflag.Usage()
			os.Exit(1)
		}
		runErr = removeProducts(ctx, patterns, *olderThan, *allMatches, *force, cfg, opts)
	}
	if runErr != nil {
		os.Exit(1)
	}
	os.Exit(0)
}

// listProducts prints the registry inventory as YAML, optionally filtered.
func listProducts(pattern string) error {
	entries, err := inventory.Collect()
	if err != nil {
		return err
	}
	if pattern != "" {
		entries = inventory.Filter(entries, pattern)
	}
	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})

	out, err := yaml.Marshal(entries)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	logging.Info("Listed installed software", "count", len(entries))
	return nil
}

// removeByMsiFile reads the product code out of a local MSI and uninstalls
// whatever that package installed.
func removeByMsiFile(ctx context.Context, path string, opts uninstall.Options) error {
	code, err := msidb.ProductCode(path)
	if err != nil {
		logging.Error("Cannot read product code from MSI", "path", path, "error", err)
		return err
	}
	logging.Info("Uninstalling product code from MSI", "path", path, "product_code", code)
	res, err := uninstall.RemoveProduct(ctx, code, opts)
	return report(path, res, err)
}

// runRawCommand executes a caller-supplied uninstall command line. Quiet
// strings run exactly as given; otherwise the silent arguments apply.
func runRawCommand(ctx context.Context, raw string, opts uninstall.Options, quiet bool) error {
	if quiet {
		opts.SilentArgs = nil
		opts.ReplaceArgs = false
	}
	res, err := uninstall.RunCommand(ctx, raw, opts)
	return report(raw, res, err)
}

// removeProducts resolves each pattern against the installed-software
// inventory and uninstalls the matches.
func removeProducts(ctx context.Context, patterns []string, olderThan string, all, force bool, cfg *config.Configuration, opts uninstall.Options) error {
	entries, err := inventory.Collect()
	if err != nil {
		logging.Error("Cannot read installed software", "error", err)
		return err
	}

	failed := false
	for _, pattern := range patterns {
		matches := inventory.Filter(entries, pattern)
		if len(matches) == 0 {
			// Some MSI installs never write an Uninstall key; ask Windows
			// Installer itself before giving up.
			wmiMatches, wmiErr := inventory.ProductsByName(pattern)
			if wmiErr != nil {
				logging.Debug("WMI product lookup failed", "pattern", pattern, "error", wmiErr)
			}
			matches = wmiMatches
		}
		if olderThan != "" {
			matches, err = inventory.OlderThan(matches, olderThan)
			if err != nil {
				logging.Error("Invalid version bound", "older_than", olderThan, "error", err)
				return err
			}
		}

		switch {
		case len(matches) == 0:
			logging.Warn("No installed product matches", "pattern", pattern)
			failed = true
			continue
		case len(matches) > 1 && !all:
			names := make([]string, len(matches))
			for i, m := range matches {
				names[i] = m.Name
			}
			logging.Error("Pattern matches more than one product; pass --all to uninstall every match",
				"pattern", pattern, "matches", strings.Join(names, ", "))
			failed = true
			continue
		}

		for _, ent := range matches {
			if cfg.BlockingProcessCheck && !force {
				if blockers := blocking.RunningBlockers(ent); len(blockers) > 0 {
					logging.Warn("Skipping uninstall while blocking processes run; pass --force to override",
						"name", ent.Name, "processes", strings.Join(blockers, ", "))
					failed = true
					continue
				}
			}

			res, err := uninstall.Remove(ctx, ent, opts)
			if report(ent.Name, res, err) != nil {
				failed = true
			}
			if ctx.Err() != nil {
				logging.Warn("Cancelled, leaving remaining products installed")
				return ctx.Err()
			}
		}
	}

	if failed {
		return errors.New("one or more uninstalls failed")
	}
	return nil
}

// report logs one removal outcome and passes the error through.
func report(target string, res runner.Result, err error) error {
	switch {
	case err == nil:
		logging.Info("Uninstall complete", "target", target, "exit_code", res.ExitCode)
		return nil
	case errors.Is(err, runner.ErrTimeout), errors.Is(err, runner.ErrCancelled):
		logging.Warn("Uninstall did not finish", "target", target, "error", err, "exit_code", res.ExitCode)
		return err
	default:
		logging.Error("Uninstall failed", "target", target, "error", err, "exit_code", res.ExitCode)
		return err
	}
}
