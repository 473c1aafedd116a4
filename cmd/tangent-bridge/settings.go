package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/entrhq/tangent/pkg/config"
	"github.com/entrhq/tangent/pkg/logging"
)

// settingsView is the printed form of one settings section.
type settingsView struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data"`
}

func newSettingsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the persisted bridge settings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print every settings section and its values",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				settings, path, err := openSettings(opts.launch)
				if err != nil {
					return err
				}

				out := struct {
					Path     string         `json:"path"`
					Sections []settingsView `json:"sections"`
				}{Path: path}
				for _, section := range settings.GetSections() {
					out.Sections = append(out.Sections, settingsView{
						ID:          section.ID(),
						Title:       section.Title(),
						Description: section.Description(),
						Data:        section.Data(),
					})
				}

				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			},
		},
		&cobra.Command{
			Use:   "set <section.key> <value>",
			Short: "Change one setting",
			Long: `Change one setting and save the file. The value is parsed as JSON when
it is valid JSON and used as a plain string otherwise.`,
			Example: `  tangent-bridge settings set recent_files.capacity 20
  tangent-bridge settings set notebooks.save_folder_name "My Notebooks"
  tangent-bridge settings set notebooks.denied_patterns '["**/.git/**"]'`,
			Args: cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				sectionID, key, ok := strings.Cut(args[0], ".")
				if !ok || sectionID == "" || key == "" {
					return fmt.Errorf("expected <section.key>, got %q", args[0])
				}

				settings, path, err := openSettings(opts.launch)
				if err != nil {
					return err
				}
				section, ok := settings.GetSection(sectionID)
				if !ok {
					return fmt.Errorf("unknown settings section %q", sectionID)
				}
				if _, ok := section.Data()[key]; !ok {
					return fmt.Errorf("unknown setting %q in section %s", key, sectionID)
				}

				if err := section.SetData(map[string]interface{}{key: parseSettingValue(args[1])}); err != nil {
					return err
				}
				if err := section.Validate(); err != nil {
					return fmt.Errorf("invalid settings in section %s: %w", sectionID, err)
				}
				if err := settings.SaveAll(); err != nil {
					return err
				}

				logSettingsChange("set %s.%s in %s", sectionID, key, path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "reset [section]",
			Short: "Restore defaults for one section or all of them",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				settings, path, err := openSettings(opts.launch)
				if err != nil {
					return err
				}

				if len(args) == 1 {
					section, ok := settings.GetSection(args[0])
					if !ok {
						return fmt.Errorf("unknown settings section %q", args[0])
					}
					section.Reset()
				} else {
					settings.ResetAll()
				}
				if err := settings.SaveAll(); err != nil {
					return err
				}

				logSettingsChange("reset settings in %s", path)
				return nil
			},
		},
	)

	return cmd
}

// openSettings loads the settings file named by the launch configuration.
func openSettings(launch *config.LaunchConfig) (*config.Settings, string, error) {
	appDataDir, err := launch.Resolver().AppDataDir()
	if err != nil {
		return nil, "", err
	}
	path := settingsFile(launch, appDataDir)
	settings, err := config.OpenSettings(path)
	if err != nil {
		return nil, "", err
	}
	return settings, path, nil
}

func logSettingsChange(format string, v ...interface{}) {
	// NewLogger falls back to stderr when the log file cannot be opened.
	logger, _ := logging.NewLogger("settings")
	logger.Infof(format, v...)
	_ = logger.Sync()
	_ = logger.Close()
}

func parseSettingValue(raw string) interface{} {
	var value interface{}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return raw
	}
	return value
}
