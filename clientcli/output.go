package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Formatter formats results for output.
type Formatter interface {
	FormatResult(w io.Writer, result *Result) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
// Colours are only emitted when w is a colour-capable terminal.
type HumanFormatter struct {
	Quiet bool
}

type humanStyles struct {
	success lipgloss.Style
	failure lipgloss.Style
	label   lipgloss.Style
}

func stylesFor(w io.Writer) humanStyles {
	r := lipgloss.NewRenderer(w)
	return humanStyles{
		success: r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		failure: r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		label:   r.NewStyle().Bold(true),
	}
}

// FormatResult prints the status line and the raw response body.
// In quiet mode only the body is written, byte for byte.
func (f *HumanFormatter) FormatResult(w io.Writer, result *Result) error {
	if f.Quiet {
		_, err := w.Write(result.Body)
		return err
	}

	st := stylesFor(w)
	_, _ = fmt.Fprintf(w, "%s Response status code: %d\n", st.success.Render("Request sent successfully."), result.StatusCode)
	_, _ = fmt.Fprintf(w, "%s ", st.label.Render("Response content:"))
	if _, err := w.Write(result.Body); err != nil {
		return err
	}
	if len(result.Body) == 0 || result.Body[len(result.Body)-1] != '\n' {
		_, _ = fmt.Fprintln(w)
	}
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	st := stylesFor(w)
	_, _ = fmt.Fprintf(w, "%s %v\n", st.failure.Render("Error:"), err)
	return nil
}

// FormatProfileList formats a list of profiles as a table; the default is marked with *.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	if len(profiles) == 0 {
		_, _ = fmt.Fprintln(w, "No profiles configured.")
		return nil
	}

	maxNameLen := 4 // "NAME"
	for i := range profiles {
		if len(profiles[i].Name) > maxNameLen {
			maxNameLen = len(profiles[i].Name)
		}
	}
	if maxNameLen > 20 {
		maxNameLen = 20
	}

	_, _ = fmt.Fprintf(w, "  %-*s  %s\n", maxNameLen, "NAME", "ENDPOINT")
	_, _ = fmt.Fprintf(w, "  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", 40))

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}

		name := p.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s %-*s  %s\n", marker, maxNameLen, name, p.Endpoint)
	}

	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	_, _ = fmt.Fprintf(w, "Name:           %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Endpoint:       %s\n", profile.Endpoint)
	_, _ = fmt.Fprintf(w, "Plain path:     %s\n", orDefault(profile.PlainPath, DefaultPlainPath))
	_, _ = fmt.Fprintf(w, "Segmented path: %s\n", orDefault(profile.SegmentedPath, DefaultSegmentedPath))
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatResult formats a result as JSON. The body is emitted as a string, unparsed.
func (f *JSONFormatter) FormatResult(w io.Writer, result *Result) error {
	output := struct {
		StatusCode  int    `json:"status_code"`
		Endpoint    string `json:"endpoint"`
		Mode        string `json:"mode"`
		RequestID   string `json:"request_id"`
		ContentType string `json:"content_type,omitempty"`
		DurationMS  int64  `json:"duration_ms"`
		Body        string `json:"body"`
	}{
		StatusCode:  result.StatusCode,
		Endpoint:    result.Endpoint,
		Mode:        string(result.Mode),
		RequestID:   result.RequestID.String(),
		ContentType: result.ContentType,
		DurationMS:  result.Duration.Milliseconds(),
		Body:        string(result.Body),
	}
	return writeJSON(w, output)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	type jsonProfile struct {
		Name          string `json:"name"`
		Endpoint      string `json:"endpoint"`
		PlainPath     string `json:"plain_path"`
		SegmentedPath string `json:"segmented_path"`
		Default       bool   `json:"default,omitempty"`
	}

	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, len(profiles)),
	}

	for i := range profiles {
		p := &profiles[i]
		output.Profiles[i] = jsonProfile{
			Name:          p.Name,
			Endpoint:      p.Endpoint,
			PlainPath:     orDefault(p.PlainPath, DefaultPlainPath),
			SegmentedPath: orDefault(p.SegmentedPath, DefaultSegmentedPath),
			Default:       p.Name == defaultName,
		}
	}

	return writeJSON(w, output)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	output := struct {
		Name          string `json:"name"`
		Endpoint      string `json:"endpoint"`
		PlainPath     string `json:"plain_path"`
		SegmentedPath string `json:"segmented_path"`
		Default       bool   `json:"default"`
	}{
		Name:          profile.Name,
		Endpoint:      profile.Endpoint,
		PlainPath:     orDefault(profile.PlainPath, DefaultPlainPath),
		SegmentedPath: orDefault(profile.SegmentedPath, DefaultSegmentedPath),
		Default:       isDefault,
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
