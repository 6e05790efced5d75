package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/openhrv/openhrv/clientcli"
)

// profileInput carries the non-interactive flags of "configure add".
type profileInput struct {
	url           string
	plainPath     string
	segmentedPath string
	makeDefault   bool
	yes           bool
}

func newConfigureCmd(a *app) *cobra.Command {
	configureCmd := &cobra.Command{
		Use:   "configure",
		Short: "Manage HRV service profiles",
		Long: `Manage endpoint profiles in the profiles file.

Profiles save the address of an HRV service (for example a self-hosted
instance) under a name. Select one with --profile or OPENHRV_PROFILE;
without either, the default profile is used when the file exists.

Profiles are stored in ~/.openhrv/profiles.yaml`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all configured profiles",
		Long: `List all profiles configured in the profiles file.

The default profile is marked with an asterisk (*).`,
		Args: cobra.NoArgs,
		RunE: a.runConfigureList,
	}

	var in profileInput
	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add or update a profile",
		Long: `Add a profile, interactively unless --url is given.

You will be prompted for:
  - Endpoint URL
  - Whether to set as default

The endpoint is probed before saving.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigureAdd(cmd, args[0], in)
		},
	}
	addCmd.Flags().StringVar(&in.url, "url", "", "endpoint URL (skips prompts)")
	addCmd.Flags().StringVar(&in.plainPath, "plain-path", "", "path of the plain endpoint (default: /calculate)")
	addCmd.Flags().StringVar(&in.segmentedPath, "segmented-path", "", "path of the segmented endpoint (default: /calculate_segments)")
	addCmd.Flags().BoolVar(&in.makeDefault, "default", false, "set as default profile")
	addCmd.Flags().BoolVarP(&in.yes, "yes", "y", false, "save even if the endpoint is unreachable")

	var removeYes bool
	removeCmd := &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove a profile",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigureRemove(cmd, args[0], removeYes)
		},
	}
	removeCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "do not ask for confirmation")

	setDefaultCmd := &cobra.Command{
		Use:   "set-default <name>",
		Short: "Set the default profile",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runConfigureSetDefault,
	}

	showCmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Show profile details",
		Long: `Show details for a profile.

If no name is provided, shows the default profile.`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.runConfigureShow,
	}

	configureCmd.AddCommand(listCmd, addCmd, removeCmd, setDefaultCmd, showCmd)
	return configureCmd
}

func (a *app) runConfigureList(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	cfg, err := clientcli.LoadConfigFile(a.cfg.ProfilesPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			_, _ = fmt.Fprintln(out, "No profiles configured.")
			_, _ = fmt.Fprintln(out, "Run 'openhrv configure add <name>' to create one.")
			return nil
		}
		return fmt.Errorf("load profiles: %w", err)
	}

	return a.formatter.FormatProfileList(out, cfg.Profiles, cfg.DefaultName())
}

func (a *app) runConfigureAdd(cmd *cobra.Command, name string, in profileInput) error {
	out := cmd.OutOrStdout()
	configPath := a.cfg.ProfilesPath()
	interactive := in.url == ""

	cfg, err := clientcli.LoadConfigFile(configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load profiles: %w", err)
		}
		cfg = &clientcli.ConfigFile{}
	}

	existingProfile, _ := cfg.GetProfile(name)
	if existingProfile != nil && interactive {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Profile '%s' already exists. Update it", name),
			IsConfirm: true,
		}
		if _, promptErr := prompt.Run(); promptErr != nil {
			_, _ = fmt.Fprintln(out, "Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	}

	endpointURL := in.url
	setAsDefault := in.makeDefault || len(cfg.Profiles) == 0

	if interactive {
		endpointPrompt := promptui.Prompt{
			Label:    "Endpoint URL",
			Default:  clientcli.DefaultEndpoint,
			Validate: validateEndpointURL,
		}
		endpointURL, err = endpointPrompt.Run()
		if err != nil {
			return handlePromptError(err)
		}

		if !setAsDefault {
			defaultPrompt := promptui.Prompt{
				Label:     "Set as default profile",
				IsConfirm: true,
			}
			if _, promptErr := defaultPrompt.Run(); promptErr == nil {
				setAsDefault = true
			}
		}
	} else if err := validateEndpointURL(endpointURL); err != nil {
		return &usageError{err: err}
	}

	_, _ = fmt.Fprint(out, "Testing connection... ")
	if connErr := testServerConnection(cmd.Context(), endpointURL); connErr != nil {
		_, _ = fmt.Fprintln(out, "FAILED")
		_, _ = fmt.Fprintf(out, "Warning: Could not connect to server: %v\n", connErr)

		if !in.yes {
			if !interactive {
				return fmt.Errorf("endpoint unreachable (use --yes to save anyway): %w", connErr)
			}
			continuePrompt := promptui.Prompt{
				Label:     "Save profile anyway",
				IsConfirm: true,
			}
			if _, promptErr := continuePrompt.Run(); promptErr != nil {
				_, _ = fmt.Fprintln(out, "Cancelled.")
				return nil //nolint:nilerr // User cancelled, not an error
			}
		}
	} else {
		_, _ = fmt.Fprintln(out, "OK")
	}

	newProfile := clientcli.Profile{
		Name:          name,
		Endpoint:      strings.TrimSuffix(endpointURL, "/"),
		PlainPath:     in.plainPath,
		SegmentedPath: in.segmentedPath,
	}

	if existingProfile != nil {
		newProfile.Default = existingProfile.Default
		if err := cfg.UpdateProfile(newProfile); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
	} else if err := cfg.AddProfile(newProfile); err != nil {
		return fmt.Errorf("add profile: %w", err)
	}

	if setAsDefault {
		if err := cfg.SetDefault(name); err != nil {
			return err
		}
	}

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("save profiles: %w", err)
	}

	if existingProfile != nil {
		_, _ = fmt.Fprintf(out, "Profile '%s' updated.\n", name)
	} else {
		_, _ = fmt.Fprintf(out, "Profile '%s' added.\n", name)
	}
	if setAsDefault {
		_, _ = fmt.Fprintln(out, "Set as default profile.")
	}

	return nil
}

func (a *app) runConfigureRemove(cmd *cobra.Command, name string, yes bool) error {
	out := cmd.OutOrStdout()
	configPath := a.cfg.ProfilesPath()

	cfg, err := clientcli.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}

	if _, err = cfg.GetProfile(name); err != nil {
		return err
	}

	if !yes {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Remove profile '%s'", name),
			IsConfirm: true,
		}
		if _, promptErr := prompt.Run(); promptErr != nil {
			_, _ = fmt.Fprintln(out, "Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	}

	if err := cfg.RemoveProfile(name); err != nil {
		return fmt.Errorf("remove profile: %w", err)
	}

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("save profiles: %w", err)
	}

	_, _ = fmt.Fprintf(out, "Profile '%s' removed.\n", name)
	return nil
}

func (a *app) runConfigureSetDefault(cmd *cobra.Command, args []string) error {
	name := args[0]
	configPath := a.cfg.ProfilesPath()

	cfg, err := clientcli.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}

	if err := cfg.SetDefault(name); err != nil {
		return err
	}

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("save profiles: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Default profile set to '%s'.\n", name)
	return nil
}

func (a *app) runConfigureShow(cmd *cobra.Command, args []string) error {
	cfg, err := clientcli.LoadConfigFile(a.cfg.ProfilesPath())
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	p, err := cfg.GetProfile(name)
	if err != nil {
		return err
	}

	isDefault := p.Name == cfg.DefaultName()
	return a.formatter.FormatProfileShow(cmd.OutOrStdout(), *p, isDefault)
}

func validateEndpointURL(input string) error {
	if input == "" {
		return errors.New("endpoint URL is required")
	}
	parsedURL, err := url.Parse(input)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.New("URL must start with http:// or https://")
	}
	return nil
}

// testServerConnection tests if the server is reachable.
// Any HTTP response counts as success; the calculation routes only accept POST.
func testServerConnection(ctx context.Context, endpointURL string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpointURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

// handlePromptError handles promptui errors.
func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		_, _ = fmt.Fprintln(os.Stderr, "\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		_, _ = fmt.Fprintln(os.Stderr, "Cancelled.")
		return nil
	}
	return err
}
