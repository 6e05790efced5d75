package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/openhrv/openhrv"
	"github.com/openhrv/openhrv/clientcli"
	"github.com/openhrv/openhrv/config"
)

var version = "dev"

// app holds the flag values and loaded settings for one invocation.
type app struct {
	cfgFile string
	calc    calcFlags

	cfg       *config.Config
	formatter clientcli.Formatter
	stderr    io.Writer
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "openhrv -f <file> -s <rate> -d <PPG|ECG|RRS> [-sg -l <seconds> -o <overlap>]",
		Version: version,
		Short:   "Send a PPG, ECG or RR-interval recording to the HRV web service",
		Long: `openhrv uploads a signal file to the HRV web service and prints the result.

The file must be .bin, .dat or .csv. With --segments (-sg) the recording is
split into overlapping windows of --segment-length seconds and HRV is computed
per window on the segmented endpoint.

Examples:
  # Whole-recording HRV from a 250 Hz ECG
  openhrv -f ecg.csv -s 250 -d ECG

  # 30 second windows with 50% overlap
  openhrv -f ecg.csv -s 250 -d ECG -sg -l 30 -o 0.5

  # Use a saved endpoint profile and print JSON
  openhrv --profile lab --json -f ppg.bin -s 64 -d PPG`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return &usageError{err: err}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.loadConfig(cmd)
		},
		RunE: a.runCalculate,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: ./openhrv.yaml or ~/.openhrv/openhrv.yaml)")
	pf.String("profile", "", "endpoint profile to use (env: OPENHRV_PROFILE)")
	pf.String("profiles", "", "profiles file (default: ~/.openhrv/profiles.yaml)")
	pf.String("endpoint", "", "HRV service base URL (env: OPENHRV_ENDPOINT_URL)")
	pf.Duration("timeout", 0, "request timeout, 0 for none (env: OPENHRV_ENDPOINT_TIMEOUT)")
	pf.Bool("json", false, "output as JSON")
	pf.BoolP("quiet", "q", false, "print only the response body")
	pf.String("log-level", "", "log level: debug, info, warn, error (default: warn)")

	a.calc.register(rootCmd)

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	rootCmd.AddCommand(newConfigureCmd(a))

	return rootCmd
}

// loadConfig resolves settings and logging before any command runs.
func (a *app) loadConfig(cmd *cobra.Command) error {
	var files []string
	if a.cfgFile != "" {
		files = []string{a.cfgFile}
	}

	cfg, err := config.Load(files, cmd.Flags())
	if err != nil {
		return err
	}

	setupLogging(cfg, a.stderr)
	a.cfg = cfg
	a.formatter = clientcli.NewFormatter(cfg.Output.JSON, cfg.Output.Quiet)
	cmd.SetContext(config.WithContext(cmd.Context(), cfg))
	return nil
}

// usageError marks errors caused by malformed command-line input.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func isUsageError(err error) bool {
	var uerr *usageError
	return errors.As(err, &uerr) || errors.Is(err, openhrv.ErrInvalidParams)
}

// run executes the command tree and returns the process exit code.
// Every failure is printed once to stderr and yields exit code 1.
func run(args []string, stdout, stderr io.Writer) int {
	a := &app{stderr: stderr}
	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(normalizeArgs(args))
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	cmd, err := rootCmd.ExecuteC()
	if err == nil {
		return 0
	}

	formatter := a.formatter
	if formatter == nil {
		formatter = clientcli.NewFormatter(false, false)
	}
	_ = formatter.FormatError(stderr, err)

	jsonOutput := a.cfg != nil && a.cfg.Output.JSON
	if isUsageError(err) && !jsonOutput && cmd != nil {
		_, _ = fmt.Fprintln(stderr)
		_, _ = fmt.Fprint(stderr, cmd.UsageString())
	}
	return 1
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
