package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/teranos/corrfill/am"
	"github.com/teranos/corrfill/display"
	"github.com/teranos/corrfill/errors"
	"github.com/teranos/corrfill/sym"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: sym.AM + " Manage corrfill configuration",
	Long: sym.AM + ` am - Manage corrfill configuration ("I am")

Display and manage corrfill configuration settings.

Configuration sources (in order of precedence):
1. Command line flags
2. --config file
3. Environment variables (CORRFILL_* prefix)
4. Project config (./am.toml, searched upward)
5. User config (~/.corrfill/am.toml)
6. System config (/etc/corrfill/am.toml)
7. Default values

Examples:
  corrfill am show                    # Show current configuration
  corrfill am show --format json      # Show configuration in JSON format
  corrfill am get cds.base_url        # Get specific config value
  corrfill am validate                # Validate current configuration
  corrfill am where                   # Show which file each setting came from
  corrfill am init                    # Write ~/.corrfill/am.toml with the defaults`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the effective corrfill configuration from all sources",
	Args:  cobra.NoArgs,
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., cds.base_url, fill.concurrency)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Long:  "Validate that the current corrfill configuration is valid",
	Args:  cobra.NoArgs,
	RunE:  runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	Long: `Show the configuration cascade and which files were checked.

Lists all configuration files in order of precedence, showing which exist,
then every setting with the layer it came from.`,
	Args: cobra.NoArgs,
	RunE: runAmWhere,
}

var amInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file holding the defaults",
	Long: `Write an am.toml holding every default setting, ready to edit.

The file goes to ~/.corrfill/am.toml unless --path names another. An
existing file is only replaced with --force, and is kept as .back1.`,
	Args: cobra.NoArgs,
	RunE: runAmInit,
}

var (
	configFormat string
	initPath     string
	initForce    bool
)

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", am.FormatTOML, "Output format: toml, json, yaml")
	amWhereCmd.Flags().Bool("json", false, "Output settings as JSON")
	amInitCmd.Flags().StringVar(&initPath, "path", "", "Where to write the file (default: ~/.corrfill/am.toml)")
	amInitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
	AmCmd.AddCommand(amInitCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	v, err := am.GetViper()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	data, err := am.Render(v.AllSettings(), configFormat)
	if err != nil {
		return err
	}
	if configFormat != am.FormatJSON {
		fmt.Fprintln(cmd.OutOrStdout(), "# corrfill configuration")
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runAmGet(cmd *cobra.Command, args []string) error {
	value, err := am.Get(args[0])
	if err != nil {
		return errors.WithHint(err, "run 'corrfill am where' to list every key")
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}

	display.Success(cmd.OutOrStdout(), "%s Configuration is valid", sym.AM)
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	settings, err := am.GetConfigIntrospection()
	if err != nil {
		return errors.Wrap(err, "failed to get config introspection")
	}
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), settings)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Configuration cascade (later overrides earlier):")
	fmt.Fprintf(w, "  [%-11s] built-in defaults\n", am.SourceDefault)
	envLine := func() {
		fmt.Fprintf(w, "  [%-11s] %s_* environment variables\n", am.SourceEnvironment, am.EnvPrefix)
	}
	envShown := false
	for _, file := range am.CascadeFiles() {
		state := "missing"
		if _, err := os.Stat(file.Path); err == nil {
			state = "found"
		}
		// --config sits above the environment
		if file.Source == am.SourceExplicit && !envShown {
			envLine()
			envShown = true
		}
		fmt.Fprintf(w, "  [%-11s] %s (%s)\n", file.Source, file.Path, state)
	}
	if !envShown {
		envLine()
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Active configuration:")
	for _, s := range settings {
		value := fmt.Sprintf("%v", s.Value)
		if len(value) > 50 {
			value = value[:47] + "..."
		}
		from := string(s.Source)
		if s.SourcePath != "" {
			from += " " + s.SourcePath
		}
		fmt.Fprintf(w, "  %s = %s  (%s)\n", s.Key, value, from)
	}
	return nil
}

func runAmInit(cmd *cobra.Command, args []string) error {
	path := initPath
	if path == "" {
		dir := am.UserConfigDir()
		if dir == "" {
			return errors.WithHint(
				errors.New("cannot determine the home directory"),
				"pass --path",
			)
		}
		path = filepath.Join(dir, "am.toml")
	}
	path = am.ExpandHome(path)

	if err := am.WriteDefaultConfig(path, initForce); err != nil {
		return err
	}
	display.Success(cmd.OutOrStdout(), "%s Wrote %s", sym.AM, path)
	return nil
}
