// Package bridge exposes the notebook and recent-file operations as named
// commands. Each command takes a JSON arguments object and yields either a
// result or a human-readable error with a kind.
//
// Calls are independent and may run concurrently. Updates to the recent-file
// list are serialized by the recent.Store; notebook reads and writes are not
// coordinated with each other.
package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/tangent/pkg/logging"
	"github.com/entrhq/tangent/pkg/metrics"
	"github.com/entrhq/tangent/pkg/notebook"
	"github.com/entrhq/tangent/pkg/platform"
	"github.com/entrhq/tangent/pkg/recent"
	"github.com/entrhq/tangent/pkg/types"
)

// Options wires a Bridge to its collaborators.
type Options struct {
	Files    *notebook.Files
	Recent   *recent.Store
	Resolver *platform.Resolver

	// SaveFolder is the folder name under the documents directory.
	// Empty means notebook.DefaultSaveFolder.
	SaveFolder string

	Logger *logging.Logger
}

// Bridge dispatches commands to the notebook and recent-file packages.
type Bridge struct {
	files      *notebook.Files
	recent     *recent.Store
	resolver   *platform.Resolver
	saveFolder string
	logger     *logging.Logger

	commands map[string]Command
	order    []string
	mu       sync.RWMutex
}

// New creates a bridge with the built-in commands registered.
func New(opts Options) (*Bridge, error) {
	if opts.Files == nil || opts.Recent == nil || opts.Resolver == nil {
		return nil, fmt.Errorf("bridge requires files, recent store and resolver")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	saveFolder := opts.SaveFolder
	if saveFolder == "" {
		saveFolder = notebook.DefaultSaveFolder
	}

	b := &Bridge{
		files:      opts.Files,
		recent:     opts.Recent,
		resolver:   opts.Resolver,
		saveFolder: saveFolder,
		logger:     logger,
		commands:   make(map[string]Command),
	}

	for _, cmd := range []Command{
		&readNotebookFileCommand{b: b},
		&writeNotebookFileCommand{b: b},
		&getRecentFilesCommand{b: b},
		&addRecentFileCommand{b: b},
		&getDefaultSaveDirectoryCommand{b: b},
		&removeRecentFileCommand{b: b},
		&clearRecentFilesCommand{b: b},
	} {
		if err := b.RegisterCommand(cmd); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// RegisterCommand adds a command. Names must be unique.
func (b *Bridge) RegisterCommand(cmd Command) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	name := cmd.Name()
	if _, exists := b.commands[name]; exists {
		return fmt.Errorf("command %q already registered", name)
	}
	b.commands[name] = cmd
	b.order = append(b.order, name)
	return nil
}

// Command returns the command registered under name.
func (b *Bridge) Command(name string) (Command, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	cmd, ok := b.commands[name]
	return cmd, ok
}

// Commands returns all registered commands in registration order.
func (b *Bridge) Commands() []Command {
	b.mu.RLock()
	defer b.mu.RUnlock()

	cmds := make([]Command, 0, len(b.order))
	for _, name := range b.order {
		cmds = append(cmds, b.commands[name])
	}
	return cmds
}

// Invoke runs req and builds the response. It never returns nil.
func (b *Bridge) Invoke(ctx context.Context, req *types.Request) *types.Response {
	if logging.RequestID(ctx) == "" {
		ctx = logging.WithRequestID(ctx, logging.NewRequestID())
	}
	log := b.logger.WithContext(ctx)

	cmd, ok := b.Command(req.Cmd)
	if !ok {
		log.Warnf("unknown command %q", req.Cmd)
		metrics.RecordCommand("unknown", 0, false)
		return types.NewError(req.ID, types.ErrorKindUnknownCommand,
			fmt.Sprintf("%s: %s", ErrUnknownCommand, req.Cmd))
	}

	start := time.Now()
	result, err := cmd.Execute(ctx, req.Args)
	elapsed := time.Since(start)
	metrics.RecordCommand(cmd.Name(), elapsed, err == nil)

	if err != nil {
		be := wrap(cmd.Name(), err)
		log.Warnf("%s failed (%s) after %s: %v", cmd.Name(), be.Kind, elapsed, be.Err)
		return types.NewError(req.ID, be.Kind, be.Message())
	}

	log.Debugf("%s completed in %s", cmd.Name(), elapsed)
	return types.NewResult(req.ID, result)
}

// ReadNotebookFile returns the text content of the file at path.
func (b *Bridge) ReadNotebookFile(ctx context.Context, path string) (string, error) {
	content, err := b.files.Read(path)
	if err != nil {
		return "", wrap(CmdReadNotebookFile, err)
	}
	metrics.RecordNotebookRead(len(content))
	b.logger.WithContext(ctx).Debugf("read %d bytes from %s", len(content), path)
	return content, nil
}

// WriteNotebookFile replaces the content of the file at path. Parent
// directories are not created.
func (b *Bridge) WriteNotebookFile(ctx context.Context, path, content string) error {
	if err := b.files.Write(path, content); err != nil {
		return wrap(CmdWriteNotebookFile, err)
	}
	metrics.RecordNotebookWrite(len(content))
	b.logger.WithContext(ctx).Debugf("wrote %d bytes to %s", len(content), path)
	return nil
}

// GetRecentFiles returns the recent list, most recent first. A missing
// store yields an empty list.
func (b *Bridge) GetRecentFiles(ctx context.Context) ([]types.RecentFile, error) {
	files, err := b.recent.List()
	if err != nil {
		return nil, wrap(CmdGetRecentFiles, err)
	}
	metrics.SetRecentFiles(len(files))
	return recentFilesResult(files), nil
}

// AddRecentFile moves or inserts path at the front of the recent list.
func (b *Bridge) AddRecentFile(ctx context.Context, path, name string, timestamp uint64) error {
	err := b.recent.Add(types.RecentFile{Path: path, Name: name, Timestamp: timestamp})
	if err != nil {
		return wrap(CmdAddRecentFile, err)
	}
	b.logger.WithContext(ctx).Infof("recorded recent file %s", path)
	b.refreshRecentGauge()
	return nil
}

// RemoveRecentFile drops path from the recent list if present.
func (b *Bridge) RemoveRecentFile(ctx context.Context, path string) error {
	if err := b.recent.Remove(path); err != nil {
		return wrap(CmdRemoveRecentFile, err)
	}
	b.logger.WithContext(ctx).Infof("removed recent file %s", path)
	b.refreshRecentGauge()
	return nil
}

// ClearRecentFiles empties the recent list.
func (b *Bridge) ClearRecentFiles(ctx context.Context) error {
	if err := b.recent.Clear(); err != nil {
		return wrap(CmdClearRecentFiles, err)
	}
	b.logger.WithContext(ctx).Infof("cleared recent files")
	metrics.SetRecentFiles(0)
	return nil
}

// GetDefaultSaveDirectory returns the default notebook folder inside the
// documents directory, creating it if needed.
func (b *Bridge) GetDefaultSaveDirectory(ctx context.Context) (string, error) {
	docs, err := b.resolver.DocumentsDir()
	if err != nil {
		return "", wrap(CmdGetDefaultSaveDirectory, err)
	}

	dir, err := notebook.EnsureSaveDirectory(docs, b.saveFolder)
	if err != nil {
		return "", wrap(CmdGetDefaultSaveDirectory, err)
	}
	return dir, nil
}

func (b *Bridge) refreshRecentGauge() {
	if files, err := b.recent.List(); err == nil {
		metrics.SetRecentFiles(len(files))
	}
}
