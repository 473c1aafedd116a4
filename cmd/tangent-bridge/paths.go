package main

import (
	"encoding/json"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/entrhq/tangent/pkg/logging"
)

// resolvedPaths lists where the bridge keeps its files.
type resolvedPaths struct {
	AppDataDir        string `json:"app_data_dir"`
	SettingsFile      string `json:"settings_file"`
	RecentFilesStore  string `json:"recent_files_store"`
	LogDir            string `json:"log_dir,omitempty"`
	LogFile           string `json:"log_file,omitempty"`
	DocumentsDir      string `json:"documents_dir,omitempty"`
	DefaultSaveFolder string `json:"default_save_folder,omitempty"`
}

func newPathsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print the resolved data, settings and documents paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.launch, "paths")
			if err != nil {
				return err
			}
			defer a.Close()

			paths := resolvedPaths{
				AppDataDir:       a.appDataDir,
				SettingsFile:     a.settingsPath,
				RecentFilesStore: a.store.Path(),
				LogFile:          a.logger.LogPath(),
			}
			if dir, err := logging.GetLogDirectory(); err == nil {
				paths.LogDir = dir
			}
			if docs, err := a.resolver.DocumentsDir(); err == nil {
				paths.DocumentsDir = docs
				paths.DefaultSaveFolder = filepath.Join(docs, a.settings.Notebooks.SaveFolder())
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(paths)
		},
	}
}
