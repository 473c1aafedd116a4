package bridge

import (
	"context"
	"encoding/json"

	"github.com/entrhq/tangent/pkg/types"
)

const (
	CmdReadNotebookFile        = "read_notebook_file"
	CmdWriteNotebookFile       = "write_notebook_file"
	CmdGetRecentFiles          = "get_recent_files"
	CmdAddRecentFile           = "add_recent_file"
	CmdGetDefaultSaveDirectory = "get_default_save_directory"
	CmdRemoveRecentFile        = "remove_recent_file"
	CmdClearRecentFiles        = "clear_recent_files"
)

// pathArgs is shared by commands that take only a path.
type pathArgs struct {
	Path *string `json:"path"`
}

func (a pathArgs) require(op string) (string, error) {
	if a.Path == nil {
		return "", invalidArgs(op, "missing required argument: path")
	}
	return *a.Path, nil
}

type readNotebookFileCommand struct{ b *Bridge }

func (c *readNotebookFileCommand) Name() string { return CmdReadNotebookFile }

func (c *readNotebookFileCommand) Description() string {
	return "Read a notebook file and return its text content."
}

func (c *readNotebookFileCommand) Schema() map[string]interface{} {
	return argsSchema(map[string]interface{}{
		"path": stringProperty("Path of the notebook file"),
	}, []string{"path"})
}

func (c *readNotebookFileCommand) Execute(ctx context.Context, args json.RawMessage) (any, error) {
	var in pathArgs
	if err := decodeArgs(c.Name(), args, &in); err != nil {
		return nil, err
	}
	path, err := in.require(c.Name())
	if err != nil {
		return nil, err
	}
	return c.b.ReadNotebookFile(ctx, path)
}

type writeNotebookFileCommand struct{ b *Bridge }

func (c *writeNotebookFileCommand) Name() string { return CmdWriteNotebookFile }

func (c *writeNotebookFileCommand) Description() string {
	return "Write text content to a notebook file, replacing any existing content."
}

func (c *writeNotebookFileCommand) Schema() map[string]interface{} {
	return argsSchema(map[string]interface{}{
		"path":    stringProperty("Path of the notebook file"),
		"content": stringProperty("Full text content to write"),
	}, []string{"path", "content"})
}

func (c *writeNotebookFileCommand) Execute(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		pathArgs
		Content *string `json:"content"`
	}
	if err := decodeArgs(c.Name(), args, &in); err != nil {
		return nil, err
	}
	path, err := in.require(c.Name())
	if err != nil {
		return nil, err
	}
	if in.Content == nil {
		return nil, invalidArgs(c.Name(), "missing required argument: content")
	}
	return nil, c.b.WriteNotebookFile(ctx, path, *in.Content)
}

type getRecentFilesCommand struct{ b *Bridge }

func (c *getRecentFilesCommand) Name() string { return CmdGetRecentFiles }

func (c *getRecentFilesCommand) Description() string {
	return "List recently opened notebooks, most recent first."
}

func (c *getRecentFilesCommand) Schema() map[string]interface{} {
	return argsSchema(map[string]interface{}{}, nil)
}

func (c *getRecentFilesCommand) Execute(ctx context.Context, _ json.RawMessage) (any, error) {
	return c.b.GetRecentFiles(ctx)
}

type addRecentFileCommand struct{ b *Bridge }

func (c *addRecentFileCommand) Name() string { return CmdAddRecentFile }

func (c *addRecentFileCommand) Description() string {
	return "Record a notebook as most recently opened."
}

func (c *addRecentFileCommand) Schema() map[string]interface{} {
	return argsSchema(map[string]interface{}{
		"path": stringProperty("Path of the notebook file"),
		"name": stringProperty("Display name"),
		"timestamp": map[string]interface{}{
			"type":        "integer",
			"minimum":     0,
			"description": "Last access time in milliseconds since the Unix epoch",
		},
	}, []string{"path", "name", "timestamp"})
}

func (c *addRecentFileCommand) Execute(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		pathArgs
		Name      *string `json:"name"`
		Timestamp *uint64 `json:"timestamp"`
	}
	if err := decodeArgs(c.Name(), args, &in); err != nil {
		return nil, err
	}
	path, err := in.require(c.Name())
	if err != nil {
		return nil, err
	}
	if in.Name == nil {
		return nil, invalidArgs(c.Name(), "missing required argument: name")
	}
	if in.Timestamp == nil {
		return nil, invalidArgs(c.Name(), "missing required argument: timestamp")
	}
	return nil, c.b.AddRecentFile(ctx, path, *in.Name, *in.Timestamp)
}

type getDefaultSaveDirectoryCommand struct{ b *Bridge }

func (c *getDefaultSaveDirectoryCommand) Name() string { return CmdGetDefaultSaveDirectory }

func (c *getDefaultSaveDirectoryCommand) Description() string {
	return "Return the default notebook folder, creating it if needed."
}

func (c *getDefaultSaveDirectoryCommand) Schema() map[string]interface{} {
	return argsSchema(map[string]interface{}{}, nil)
}

func (c *getDefaultSaveDirectoryCommand) Execute(ctx context.Context, _ json.RawMessage) (any, error) {
	return c.b.GetDefaultSaveDirectory(ctx)
}

type removeRecentFileCommand struct{ b *Bridge }

func (c *removeRecentFileCommand) Name() string { return CmdRemoveRecentFile }

func (c *removeRecentFileCommand) Description() string {
	return "Forget a notebook from the recent list."
}

func (c *removeRecentFileCommand) Schema() map[string]interface{} {
	return argsSchema(map[string]interface{}{
		"path": stringProperty("Path of the notebook file"),
	}, []string{"path"})
}

func (c *removeRecentFileCommand) Execute(ctx context.Context, args json.RawMessage) (any, error) {
	var in pathArgs
	if err := decodeArgs(c.Name(), args, &in); err != nil {
		return nil, err
	}
	path, err := in.require(c.Name())
	if err != nil {
		return nil, err
	}
	return nil, c.b.RemoveRecentFile(ctx, path)
}

type clearRecentFilesCommand struct{ b *Bridge }

func (c *clearRecentFilesCommand) Name() string { return CmdClearRecentFiles }

func (c *clearRecentFilesCommand) Description() string {
	return "Empty the recent list."
}

func (c *clearRecentFilesCommand) Schema() map[string]interface{} {
	return argsSchema(map[string]interface{}{}, nil)
}

func (c *clearRecentFilesCommand) Execute(ctx context.Context, _ json.RawMessage) (any, error) {
	return nil, c.b.ClearRecentFiles(ctx)
}

// recentFilesResult keeps an empty list serialized as [] rather than null.
func recentFilesResult(files []types.RecentFile) []types.RecentFile {
	if files == nil {
		return []types.RecentFile{}
	}
	return files
}
