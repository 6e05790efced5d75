package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openhrv/openhrv"
	"github.com/openhrv/openhrv/clientcli"
	"github.com/openhrv/openhrv/config"
)

// calcFlags are the root command's local flags.
type calcFlags struct {
	file          string
	samplingRate  int
	dataType      dataTypeValue
	segments      bool
	segmentLength int
	overlap       float64
}

// requiredFlags must be given on every calculation.
var requiredFlags = []string{"file", "sampling-rate", "data-type"}

func (f *calcFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.file, "file", "f", "", "signal file (.bin, .dat or .csv)")
	flags.IntVarP(&f.samplingRate, "sampling-rate", "s", 0, "sampling rate in Hz")
	flags.VarP(&f.dataType, "data-type", "d", "data type: "+openhrv.DataTypeNames(", "))
	flags.BoolVarP(&f.segments, "segments", "g", false, "compute HRV per window (also -sg)")
	flags.IntVarP(&f.segmentLength, "segment-length", "l", 0, "window length in seconds (required with --segments)")
	flags.Float64VarP(&f.overlap, "overlap", "o", 0, "window overlap between 0 and 1 (required with --segments)")
}

// dataTypeValue is a pflag.Value that only accepts known data types.
type dataTypeValue openhrv.DataType

func (d *dataTypeValue) String() string { return string(*d) }
func (d *dataTypeValue) Type() string   { return "type" }

func (d *dataTypeValue) Set(s string) error {
	dt, err := openhrv.ParseDataType(s)
	if err != nil {
		return err
	}
	*d = dataTypeValue(dt)
	return nil
}

// normalizeArgs rewrites the two-letter single-dash -sg into --segments.
// Arguments after a bare "--" are left alone.
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i, arg := range out {
		if arg == "--" {
			break
		}
		if arg == "-sg" {
			out[i] = "--segments"
		}
	}
	return out
}

// params turns the parsed flags into validated request parameters.
func (f *calcFlags) params(cmd *cobra.Command) (openhrv.Params, error) {
	var missing []string
	for _, name := range requiredFlags {
		if !cmd.Flags().Changed(name) {
			missing = append(missing, strconv.Quote(name))
		}
	}
	if len(missing) > 0 {
		return openhrv.Params{}, &usageError{err: fmt.Errorf("required flag(s) %s not set", strings.Join(missing, ", "))}
	}

	p := openhrv.Params{
		FilePath:     f.file,
		SamplingRate: f.samplingRate,
		DataType:     openhrv.DataType(f.dataType),
		Segmented:    f.segments,
	}

	if f.segments {
		p.SegmentLength = f.segmentLength
		if cmd.Flags().Changed("overlap") {
			o := f.overlap
			p.Overlap = &o
		}
	} else if cmd.Flags().Changed("segment-length") || cmd.Flags().Changed("overlap") {
		slog.Warn("segment length and overlap are ignored without --segments")
	}

	if err := p.Validate(); err != nil {
		return openhrv.Params{}, err
	}
	return p, nil
}

func (a *app) runCalculate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	params, err := a.calc.params(cmd)
	if err != nil {
		return err
	}

	clientCfg, err := clientConfig(cfg)
	if err != nil {
		return err
	}

	client, err := clientcli.New(clientCfg)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	result, err := client.Calculate(cmd.Context(), params)
	if err != nil {
		return err
	}

	slog.Info("calculation complete",
		"mode", result.Mode,
		"status", result.StatusCode,
		"duration", result.Duration,
		"request_id", result.RequestID,
	)

	return a.formatter.FormatResult(cmd.OutOrStdout(), result)
}

// clientConfig resolves the endpoint: built-in default < selected profile <
// config file and environment < --endpoint flag. Viper already orders the
// last two, so only explicitly set values are layered over the profile.
func clientConfig(cfg *config.Config) (*clientcli.Config, error) {
	profile, err := selectProfile(cfg)
	if err != nil {
		return nil, err
	}

	var layers []*clientcli.Config
	if profile != nil {
		slog.Debug("using profile", "name", profile.Name, "endpoint", profile.Endpoint)
		layers = append(layers, clientcli.ConfigFromProfile(profile))
	}
	layers = append(layers, cfg.EndpointOverrides())

	return clientcli.MergeConfig(layers...), nil
}

// selectProfile returns the requested profile, the default profile when none
// was requested, or nil when there is no profiles file.
func selectProfile(cfg *config.Config) (*clientcli.Profile, error) {
	path := cfg.ProfilesPath()
	if path == "" {
		if cfg.Profile != "" {
			return nil, fmt.Errorf("profile %q requested but no profiles file location is known", cfg.Profile)
		}
		return nil, nil
	}

	file, err := clientcli.LoadConfigFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && cfg.Profile == "" {
			return nil, nil
		}
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	if len(file.Profiles) == 0 && cfg.Profile == "" {
		return nil, nil
	}
	return file.GetProfile(cfg.Profile)
}
