package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhrv/openhrv"
	"github.com/openhrv/openhrv/hrvtest"
)

const signalCSV = "812,790,805,799,820\n"

type result struct {
	code   int
	stdout string
	stderr string
}

// execute runs the CLI with HOME pointed at a temporary directory so that no
// user config or profiles leak into the test.
func execute(t *testing.T, home string, args ...string) result {
	t.Helper()
	t.Setenv("HOME", home)

	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeSignal(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(signalCSV), 0o600))
	return path
}

func TestRun_PlainCalculation(t *testing.T) {
	srv := hrvtest.New(t)
	file := writeSignal(t, "ecg.csv")

	res := execute(t, t.TempDir(), "-f", file, "-s", "250", "-d", "ECG", "--endpoint", srv.URL)

	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Request sent successfully. Response status code: 200")
	assert.Contains(t, res.stdout, "Response content: "+hrvtest.DefaultBody)

	req, ok := srv.LastRequest()
	require.True(t, ok)
	assert.Equal(t, hrvtest.PlainPath, req.Path)
	assert.Equal(t, map[string]string{"sampling_rate": "250", "data_type": "ECG"}, req.Fields)
	assert.Equal(t, "ecg.csv", req.FileName)
	assert.Equal(t, signalCSV, string(req.FileContent))
}

func TestRun_SegmentedCalculation(t *testing.T) {
	tests := []struct {
		name string
		flag string
	}{
		{name: "two-letter spelling", flag: "-sg"},
		{name: "long flag", flag: "--segments"},
		{name: "shorthand", flag: "-g"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := hrvtest.New(t)
			file := writeSignal(t, "ecg.csv")

			res := execute(t, t.TempDir(),
				"-f", file, "-s", "250", "-d", "ECG", tt.flag, "-l", "30", "-o", "0.5",
				"--endpoint", srv.URL)

			require.Equal(t, 0, res.code, res.stderr)

			req, ok := srv.LastRequest()
			require.True(t, ok)
			assert.Equal(t, hrvtest.SegmentedPath, req.Path)
			assert.Equal(t, map[string]string{
				"sampling_rate":   "250",
				"data_type":       "ECG",
				"segment_length":  "30",
				"segment_overlap": "0.5",
			}, req.Fields)
		})
	}
}

func TestRun_SegmentFlagsIgnoredWithoutSegments(t *testing.T) {
	srv := hrvtest.New(t)
	file := writeSignal(t, "ppg.bin")

	res := execute(t, t.TempDir(), "-f", file, "-s", "64", "-d", "PPG", "-l", "30", "-o", "0.5", "--endpoint", srv.URL)

	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stderr, "ignored without --segments")

	req, ok := srv.LastRequest()
	require.True(t, ok)
	assert.Equal(t, hrvtest.PlainPath, req.Path)
	assert.NotContains(t, req.Fields, "segment_length")
	assert.NotContains(t, req.Fields, "segment_overlap")
}

func TestRun_UsageErrors(t *testing.T) {
	csv := writeSignal(t, "ecg.csv")
	txt := writeSignal(t, "ecg.txt")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "disallowed extension",
			args:    []string{"-f", txt, "-s", "250", "-d", "ECG"},
			wantErr: "file extension must be one of .bin, .dat, .csv",
		},
		{
			name:    "unknown data type",
			args:    []string{"-f", csv, "-s", "250", "-d", "HRV"},
			wantErr: "data type must be one of PPG, ECG, RRS",
		},
		{
			name:    "lowercase data type",
			args:    []string{"-f", csv, "-s", "250", "-d", "ecg"},
			wantErr: "data type must be one of PPG, ECG, RRS",
		},
		{
			name:    "non-integer sampling rate",
			args:    []string{"-f", csv, "-s", "abc", "-d", "ECG"},
			wantErr: "invalid argument",
		},
		{
			name:    "zero sampling rate",
			args:    []string{"-f", csv, "-s", "0", "-d", "ECG"},
			wantErr: "sampling rate must be a positive integer",
		},
		{
			name:    "missing required flags",
			args:    []string{"-f", csv},
			wantErr: `required flag(s) "sampling-rate", "data-type" not set`,
		},
		{
			name:    "segments without length",
			args:    []string{"-f", csv, "-s", "250", "-d", "ECG", "-sg", "-o", "0.5"},
			wantErr: "segment length must be a positive number",
		},
		{
			name:    "segments without overlap",
			args:    []string{"-f", csv, "-s", "250", "-d", "ECG", "-sg", "-l", "30"},
			wantErr: "overlap is required when segmenting",
		},
		{
			name:    "overlap out of range",
			args:    []string{"-f", csv, "-s", "250", "-d", "ECG", "-sg", "-l", "30", "-o", "1.5"},
			wantErr: "overlap must be between 0 and 1",
		},
		{
			name:    "positional argument",
			args:    []string{"-f", csv, "-s", "250", "-d", "ECG", "extra"},
			wantErr: "unknown command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := hrvtest.New(t)
			args := append(tt.args, "--endpoint", srv.URL)

			res := execute(t, t.TempDir(), args...)

			assert.Equal(t, 1, res.code)
			assert.Empty(t, res.stdout)
			assert.Contains(t, res.stderr, "Error: ")
			assert.Contains(t, res.stderr, tt.wantErr)
			assert.Contains(t, res.stderr, "Usage:")
			assert.Empty(t, srv.Requests())
		})
	}
}

func TestRun_ConnectionRefused(t *testing.T) {
	srv := hrvtest.NewServer()
	endpoint := srv.URL
	srv.Close()
	file := writeSignal(t, "ecg.csv")

	res := execute(t, t.TempDir(), "-f", file, "-s", "250", "-d", "ECG", "--endpoint", endpoint)

	assert.Equal(t, 1, res.code)
	assert.Empty(t, res.stdout)
	assert.Equal(t, 1, strings.Count(res.stderr, "Error: "))
	assert.Contains(t, res.stderr, "error sending request")
	assert.Contains(t, res.stderr, "connection refused")
	assert.NotContains(t, res.stderr, "Usage:")
}

func TestRun_ServerError(t *testing.T) {
	srv := hrvtest.New(t)
	srv.Respond(http.StatusInternalServerError, "boom")
	file := writeSignal(t, "ecg.csv")

	res := execute(t, t.TempDir(), "-f", file, "-s", "250", "-d", "ECG", "--endpoint", srv.URL)

	assert.Equal(t, 1, res.code)
	assert.Empty(t, res.stdout)
	assert.Equal(t, 1, strings.Count(res.stderr, "Error: "))
	assert.Contains(t, res.stderr, "error sending request")
	assert.Contains(t, res.stderr, "500 Internal Server Error - boom")
	assert.NotContains(t, res.stderr, "Usage:")
}

func TestRun_MissingFile(t *testing.T) {
	srv := hrvtest.New(t)
	missing := filepath.Join(t.TempDir(), "absent.csv")

	res := execute(t, t.TempDir(), "-f", missing, "-s", "250", "-d", "ECG", "--endpoint", srv.URL)

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "open file")
	assert.NotContains(t, res.stderr, "error sending request")
	assert.Empty(t, srv.Requests())
}

func TestRun_JSONOutput(t *testing.T) {
	srv := hrvtest.New(t)
	file := writeSignal(t, "ecg.csv")

	res := execute(t, t.TempDir(), "--json", "-f", file, "-s", "250", "-d", "ECG", "-sg", "-l", "30", "-o", "0.5", "--endpoint", srv.URL)
	require.Equal(t, 0, res.code, res.stderr)

	var out struct {
		StatusCode int    `json:"status_code"`
		Endpoint   string `json:"endpoint"`
		Mode       string `json:"mode"`
		RequestID  string `json:"request_id"`
		Body       string `json:"body"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.Equal(t, http.StatusOK, out.StatusCode)
	assert.Equal(t, srv.URL+hrvtest.SegmentedPath, out.Endpoint)
	assert.Equal(t, "segmented", out.Mode)
	assert.Equal(t, hrvtest.DefaultBody, out.Body)

	req, ok := srv.LastRequest()
	require.True(t, ok)
	assert.Equal(t, out.RequestID, req.Header.Get("X-Request-ID"))
}

func TestRun_JSONError(t *testing.T) {
	file := writeSignal(t, "ecg.txt")

	res := execute(t, t.TempDir(), "--json", "-f", file, "-s", "250", "-d", "ECG")

	assert.Equal(t, 1, res.code)

	var out struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stderr), &out))
	assert.Contains(t, out.Error, "file extension must be one of")
}

func TestRun_QuietOutput(t *testing.T) {
	srv := hrvtest.New(t)
	file := writeSignal(t, "ecg.csv")

	res := execute(t, t.TempDir(), "-q", "-f", file, "-s", "250", "-d", "ECG", "--endpoint", srv.URL)

	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, hrvtest.DefaultBody, res.stdout)
}

func TestRun_EndpointFromEnvironment(t *testing.T) {
	srv := hrvtest.New(t)
	file := writeSignal(t, "ecg.csv")
	t.Setenv("OPENHRV_ENDPOINT_URL", srv.URL)

	res := execute(t, t.TempDir(), "-f", file, "-s", "250", "-d", "ECG")

	require.Equal(t, 0, res.code, res.stderr)
	assert.Len(t, srv.Requests(), 1)
}

func TestRun_EndpointFromConfigFile(t *testing.T) {
	srv := hrvtest.New(t)
	file := writeSignal(t, "ecg.csv")

	cfgPath := filepath.Join(t.TempDir(), "openhrv.yaml")
	cfgYAML := "endpoint:\n  url: " + srv.URL + "\n  plain_path: /v2/calculate\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o600))

	res := execute(t, t.TempDir(), "--config", cfgPath, "-f", file, "-s", "250", "-d", "ECG")

	// The fake service only routes the default paths.
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "404 Not Found")
	assert.Empty(t, srv.Requests())
}

func TestRun_MissingConfigFile(t *testing.T) {
	file := writeSignal(t, "ecg.csv")

	res := execute(t, t.TempDir(), "--config", filepath.Join(t.TempDir(), "nope.yaml"), "-f", file, "-s", "250", "-d", "ECG")

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "read config file")
}

func TestRun_Profiles(t *testing.T) {
	home := t.TempDir()
	lab := hrvtest.New(t)
	staging := hrvtest.New(t)
	file := writeSignal(t, "ecg.csv")

	res := execute(t, home, "configure", "add", "lab", "--url", lab.URL)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Testing connection... OK")
	assert.Contains(t, res.stdout, "Profile 'lab' added.")
	assert.Contains(t, res.stdout, "Set as default profile.")

	res = execute(t, home, "configure", "add", "staging", "--url", staging.URL)
	require.Equal(t, 0, res.code, res.stderr)
	assert.NotContains(t, res.stdout, "Set as default profile.")

	t.Run("default profile used", func(t *testing.T) {
		res := execute(t, home, "-f", file, "-s", "250", "-d", "ECG")
		require.Equal(t, 0, res.code, res.stderr)
		assert.Len(t, lab.Requests(), 1)
		assert.Empty(t, staging.Requests())
	})

	t.Run("profile flag", func(t *testing.T) {
		res := execute(t, home, "--profile", "staging", "-f", file, "-s", "250", "-d", "ECG")
		require.Equal(t, 0, res.code, res.stderr)
		assert.Len(t, staging.Requests(), 1)
	})

	t.Run("profile from environment", func(t *testing.T) {
		t.Setenv("OPENHRV_PROFILE", "staging")
		res := execute(t, home, "-f", file, "-s", "250", "-d", "ECG")
		require.Equal(t, 0, res.code, res.stderr)
		assert.Len(t, staging.Requests(), 2)
	})

	t.Run("endpoint flag overrides profile", func(t *testing.T) {
		direct := hrvtest.New(t)
		res := execute(t, home, "--profile", "staging", "--endpoint", direct.URL, "-f", file, "-s", "250", "-d", "ECG")
		require.Equal(t, 0, res.code, res.stderr)
		assert.Len(t, direct.Requests(), 1)
		assert.Len(t, staging.Requests(), 2)
	})

	t.Run("unknown profile", func(t *testing.T) {
		res := execute(t, home, "--profile", "nope", "-f", file, "-s", "250", "-d", "ECG")
		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stderr, "profile not found: nope")
	})

	t.Run("list", func(t *testing.T) {
		res := execute(t, home, "configure", "list")
		require.Equal(t, 0, res.code, res.stderr)
		assert.Contains(t, res.stdout, "* lab")
		assert.Contains(t, res.stdout, "staging")
		assert.Contains(t, res.stdout, staging.URL)
	})

	t.Run("set-default and show", func(t *testing.T) {
		res := execute(t, home, "configure", "set-default", "staging")
		require.Equal(t, 0, res.code, res.stderr)
		assert.Contains(t, res.stdout, "Default profile set to 'staging'.")

		res = execute(t, home, "--json", "configure", "show")
		require.Equal(t, 0, res.code, res.stderr)

		var out struct {
			Name      string `json:"name"`
			Endpoint  string `json:"endpoint"`
			PlainPath string `json:"plain_path"`
			Default   bool   `json:"default"`
		}
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
		assert.Equal(t, "staging", out.Name)
		assert.Equal(t, staging.URL, out.Endpoint)
		assert.Equal(t, "/calculate", out.PlainPath)
		assert.True(t, out.Default)
	})

	t.Run("remove", func(t *testing.T) {
		res := execute(t, home, "configure", "remove", "lab", "--yes")
		require.Equal(t, 0, res.code, res.stderr)
		assert.Contains(t, res.stdout, "Profile 'lab' removed.")

		res = execute(t, home, "configure", "show", "lab")
		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stderr, "profile not found: lab")
	})
}

func TestRun_SettingsOverrideDefaultProfile(t *testing.T) {
	home := t.TempDir()
	file := writeSignal(t, "ecg.csv")

	stale := hrvtest.NewServer()
	staleURL := stale.URL
	stale.Close()

	res := execute(t, home, "configure", "add", "old", "--url", staleURL, "--yes")
	require.Equal(t, 0, res.code, res.stderr)

	t.Run("profile alone", func(t *testing.T) {
		res := execute(t, home, "-f", file, "-s", "250", "-d", "ECG")
		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stderr, "connection refused")
	})

	t.Run("environment", func(t *testing.T) {
		srv := hrvtest.New(t)
		t.Setenv("OPENHRV_ENDPOINT_URL", srv.URL)

		res := execute(t, home, "-f", file, "-s", "250", "-d", "ECG")
		require.Equal(t, 0, res.code, res.stderr)
		assert.Len(t, srv.Requests(), 1)
	})

	t.Run("config file", func(t *testing.T) {
		srv := hrvtest.New(t)
		cfgPath := filepath.Join(t.TempDir(), "openhrv.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("endpoint:\n  url: "+srv.URL+"\n"), 0o600))

		res := execute(t, home, "--config", cfgPath, "-f", file, "-s", "250", "-d", "ECG")
		require.Equal(t, 0, res.code, res.stderr)
		assert.Len(t, srv.Requests(), 1)
	})
}

func TestDataTypeValue(t *testing.T) {
	var d dataTypeValue
	require.NoError(t, d.Set("RRS"))
	assert.Equal(t, "RRS", d.String())

	err := d.Set("rrs")
	require.Error(t, err)
	assert.ErrorIs(t, err, openhrv.ErrInvalidDataType)
	assert.Equal(t, "RRS", d.String(), "rejected value must not replace the current one")
}

func TestConfigure_ProfilesFlag(t *testing.T) {
	srv := hrvtest.New(t)
	profiles := filepath.Join(t.TempDir(), "nested", "profiles.yaml")

	res := execute(t, t.TempDir(), "--profiles", profiles, "configure", "add", "lab", "--url", srv.URL+"/")
	require.Equal(t, 0, res.code, res.stderr)

	data, err := os.ReadFile(profiles)
	require.NoError(t, err)
	assert.Contains(t, string(data), "endpoint: "+srv.URL+"\n")
}

func TestConfigure_AddUnreachable(t *testing.T) {
	srv := hrvtest.NewServer()
	endpoint := srv.URL
	srv.Close()
	home := t.TempDir()

	res := execute(t, home, "configure", "add", "lab", "--url", endpoint)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stdout, "FAILED")
	assert.Contains(t, res.stderr, "use --yes to save anyway")

	res = execute(t, home, "configure", "add", "lab", "--url", endpoint, "--yes")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Profile 'lab' added.")
}

func TestConfigure_AddInvalidURL(t *testing.T) {
	res := execute(t, t.TempDir(), "configure", "add", "lab", "--url", "ftp://example.com")

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "URL must start with http:// or https://")
}

func TestConfigure_ListEmpty(t *testing.T) {
	res := execute(t, t.TempDir(), "configure", "list")

	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "No profiles configured.")
}

func TestNormalizeArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "rewrites -sg", in: []string{"-f", "a.csv", "-sg"}, want: []string{"-f", "a.csv", "--segments"}},
		{name: "leaves other flags", in: []string{"-s", "250", "-g"}, want: []string{"-s", "250", "-g"}},
		{name: "stops at terminator", in: []string{"--", "-sg"}, want: []string{"--", "-sg"}},
		{name: "empty", in: []string{}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := make([]string, len(tt.in))
			copy(in, tt.in)
			assert.Equal(t, tt.want, normalizeArgs(tt.in))
			assert.Equal(t, in, tt.in, "input must not be modified")
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("debug").String())
	assert.Equal(t, "INFO", parseLevel(" INFO ").String())
	assert.Equal(t, "WARN", parseLevel("").String())
	assert.Equal(t, "ERROR", parseLevel("error").String())
}
