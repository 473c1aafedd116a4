package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/entrhq/tangent/pkg/config"
	"github.com/entrhq/tangent/pkg/logging"
)

const version = "0.1.0"

// rootOptions holds the persistent flags shared by all subcommands.
type rootOptions struct {
	configFile   string
	identifier   string
	appDataDir   string
	documentsDir string
	settingsPath string
	logLevel     string
	logFormat    string
	logDir       string
	verbose      bool

	launch *config.LaunchConfig
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "tangent-bridge",
		Short: "Notebook file bridge for the Tangent UI",
		Long: `tangent-bridge reads and writes notebook files, keeps the recent-files
list and resolves the default save folder on behalf of the Tangent UI.

Without a subcommand it serves newline-delimited JSON requests on stdio.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "YAML launch configuration file")
	flags.StringVar(&opts.identifier, "identifier", "", "application identifier (default com.tangent.notebook)")
	flags.StringVar(&opts.appDataDir, "app-data-dir", "", "override the application data directory")
	flags.StringVar(&opts.documentsDir, "documents-dir", "", "override the documents directory")
	flags.StringVar(&opts.settingsPath, "settings", "", "settings file (default <app-data-dir>/settings.json)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: console or json")
	flags.StringVar(&opts.logDir, "log-dir", "", "log directory (default <app-data-dir>/logs)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newStdioCmd(opts),
		newServeCmd(opts),
		newInvokeCmd(opts),
		newPathsCmd(opts),
		newSettingsCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

// load reads the launch configuration, applies flag overrides and sets up
// logging.
func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.LoadLaunchConfig(o.configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	override := func(name string, dst *string, value string) {
		if flags.Changed(name) {
			*dst = value
		}
	}
	override("identifier", &cfg.Identifier, o.identifier)
	override("app-data-dir", &cfg.AppDataDir, o.appDataDir)
	override("documents-dir", &cfg.DocumentsDir, o.documentsDir)
	override("settings", &cfg.SettingsPath, o.settingsPath)
	override("log-level", &cfg.Logging.Level, o.logLevel)
	override("log-format", &cfg.Logging.Format, o.logFormat)
	override("log-dir", &cfg.Logging.Dir, o.logDir)
	if o.verbose {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logDir := cfg.Logging.Dir
	if logDir == "" {
		// Left empty on failure; the logger then falls back to stderr.
		if appData, err := cfg.Resolver().AppDataDir(); err == nil {
			logDir = filepath.Join(appData, "logs")
		}
	}
	if err := logging.Configure(logging.Config{
		Dir:    logDir,
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}); err != nil {
		return err
	}

	o.launch = cfg
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tangent-bridge v%s\n", version)
		},
	}
}
