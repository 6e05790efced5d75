package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/openhrv/openhrv/clientcli"
)

// EnvPrefix is prepended to every environment variable (OPENHRV_ENDPOINT_URL, ...).
const EnvPrefix = "OPENHRV"

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for the openhrv command.
type Config struct {
	Env          string         `mapstructure:"env"`
	Profile      string         `mapstructure:"profile"`
	ProfilesFile string         `mapstructure:"profiles_file"`
	Endpoint     EndpointConfig `mapstructure:"endpoint"`
	Log          LogConfig      `mapstructure:"log"`
	Output       OutputConfig   `mapstructure:"output"`

	// explicit holds the endpoint keys given by a config file, the
	// environment or a flag, as opposed to built-in defaults.
	explicit map[string]bool
}

// EndpointConfig locates the HRV web service.
type EndpointConfig struct {
	URL           string        `mapstructure:"url" validate:"required,url"`
	PlainPath     string        `mapstructure:"plain_path" validate:"required,startswith=/"`
	SegmentedPath string        `mapstructure:"segmented_path" validate:"required,startswith=/"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"min=0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// OutputConfig selects how results are printed.
type OutputConfig struct {
	JSON  bool `mapstructure:"json"`
	Quiet bool `mapstructure:"quiet"`
}

// ClientConfig converts the endpoint settings for clientcli.
func (e EndpointConfig) ClientConfig() *clientcli.Config {
	return &clientcli.Config{
		Endpoint:      e.URL,
		PlainPath:     e.PlainPath,
		SegmentedPath: e.SegmentedPath,
		Timeout:       e.Timeout,
	}
}

// endpointKeys lists the endpoint settings that can override a profile.
var endpointKeys = []string{
	"endpoint.url",
	"endpoint.plain_path",
	"endpoint.segmented_path",
	"endpoint.timeout",
}

// EndpointOverrides returns only the endpoint settings that were set
// explicitly; defaulted fields are left empty so that a profile shows through
// when merged with clientcli.MergeConfig.
func (c *Config) EndpointOverrides() *clientcli.Config {
	out := &clientcli.Config{}
	if c.explicit["endpoint.url"] {
		out.Endpoint = c.Endpoint.URL
	}
	if c.explicit["endpoint.plain_path"] {
		out.PlainPath = c.Endpoint.PlainPath
	}
	if c.explicit["endpoint.segmented_path"] {
		out.SegmentedPath = c.Endpoint.SegmentedPath
	}
	if c.explicit["endpoint.timeout"] {
		out.Timeout = c.Endpoint.Timeout
	}
	return out
}

// ProfilesPath returns the profiles file to use, falling back to the default location.
func (c *Config) ProfilesPath() string {
	if c.ProfilesFile != "" {
		return c.ProfilesFile
	}
	return clientcli.DefaultConfigPath()
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"endpoint":  "endpoint.url",
	"timeout":   "endpoint.timeout",
	"log-level": "log.level",
	"json":      "output.json",
	"quiet":     "output.quiet",
	"profiles":  "profiles_file",
}

// bindFlags binds explicitly set flags that correspond to configuration keys.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		if f.Changed && v.IsSet(viperKey) {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// explicitKeys reports which endpoint keys came from a config file, an
// OPENHRV_ environment variable or an explicitly set flag.
func explicitKeys(v *viper.Viper, flags *pflag.FlagSet) map[string]bool {
	set := make(map[string]bool, len(endpointKeys))
	for _, key := range endpointKeys {
		env := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if _, ok := os.LookupEnv(env); ok || v.InConfig(key) {
			set[key] = true
		}
	}

	if flags != nil {
		flags.Visit(func(f *pflag.Flag) {
			if key, ok := flagToViperKey[f.Name]; ok && strings.HasPrefix(key, "endpoint.") {
				set[key] = true
			}
		})
	}
	return set
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("profile", "")
	v.SetDefault("profiles_file", "")

	v.SetDefault("endpoint.url", clientcli.DefaultEndpoint)
	v.SetDefault("endpoint.plain_path", clientcli.DefaultPlainPath)
	v.SetDefault("endpoint.segmented_path", clientcli.DefaultSegmentedPath)
	v.SetDefault("endpoint.timeout", time.Duration(0)) // 0 means no timeout

	v.SetDefault("log.level", "warn")

	v.SetDefault("output.json", false)
	v.SetDefault("output.quiet", false)
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones);
//     when empty, ./openhrv.yaml and ~/.openhrv/openhrv.yaml are searched
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFiles[0], err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("merge config file %s: %w", cf, err)
			}
		}
	} else {
		v.SetConfigName("openhrv")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".openhrv"))
		}

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	cfg.explicit = explicitKeys(v, flags)

	return &cfg, nil
}
