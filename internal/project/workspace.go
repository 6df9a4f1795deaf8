package project

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/phuslu/log"

	"cmkit/internal/cmakecache"
	"cmkit/internal/compdb"
	"cmkit/internal/config"
	"cmkit/internal/driver"
	"cmkit/internal/expand"
	"cmkit/internal/paths"
)

// Workspace is an opened cmkit workspace: resolved locations, the effective
// configuration, and the cache driver bound in the registry for its root.
type Workspace struct {
	Paths    paths.WorkspacePaths
	Config   config.Config
	Registry *driver.Registry
	Driver   *driver.CacheDriver

	vars map[string]string
	env  map[string]string
}

// Open resolves the configured templates, creates a cache driver for the
// build directory and registers it for pp.Root. Close releases the binding.
func Open(ctx context.Context, pp paths.WorkspacePaths, cfg config.Config, registry *driver.Registry, logger *log.Logger) (*Workspace, error) {
	if registry == nil {
		registry = driver.NewRegistry()
	}

	ws := &Workspace{
		Paths:    pp,
		Config:   cfg,
		Registry: registry,
		vars:     ContextVars(pp, cfg),
	}

	// The build directory and environment cannot see the cmake namespace:
	// the cache they would read lives in the directory being resolved.
	pre := expand.Options{Vars: ws.vars, Contexts: cfg.Contexts}

	buildDir, err := expand.Expand(ctx, cfg.BuildDirectory, pre)
	if err != nil {
		return nil, fmt.Errorf("expand build_directory: %w", err)
	}
	ws.Paths = ws.Paths.WithBuildDir(buildDir)
	ws.vars["buildDirectory"] = ws.Paths.BuildDir

	ws.env, err = expand.ExpandMap(ctx, cfg.Environment, pre)
	if err != nil {
		return nil, fmt.Errorf("expand environment: %w", err)
	}

	ws.Driver = driver.NewCacheDriver(ws.Paths.CacheFile, logger)
	registry.Register(ws.Paths.Root, ws.Driver)

	compileCommands, err := ws.Expand(ctx, cfg.CompileCommands)
	if err != nil {
		ws.Close()
		return nil, fmt.Errorf("expand compile_commands: %w", err)
	}
	ws.Paths = ws.Paths.WithCompileCommands(compileCommands)

	if logger != nil {
		logger.Info().
			Str("root", ws.Paths.Root).
			Str("build_dir", ws.Paths.BuildDir).
			Str("compile_commands", ws.Paths.CompileCommandsFile).
			Msg("workspace opened")
	}
	return ws, nil
}

// Close unregisters the workspace driver.
func (w *Workspace) Close() {
	if w == nil || w.Registry == nil {
		return
	}
	if current, ok := w.Registry.Get(w.Paths.Root); ok && current == driver.Driver(w.Driver) {
		w.Registry.Unregister(w.Paths.Root)
	}
}

// Options returns the expansion snapshot for this workspace.
func (w *Workspace) Options() expand.Options {
	vars := make(map[string]string, len(w.vars))
	for k, v := range w.vars {
		vars[k] = v
	}
	env := make(map[string]string, len(w.env))
	for k, v := range w.env {
		env[k] = v
	}
	return expand.Options{
		Vars:        vars,
		Contexts:    w.Config.Contexts,
		EnvOverride: env,
		Registry:    w.Registry,
		Workspace:   w.Paths.Root,
	}
}

// Expand resolves template against the workspace, including ${cmake:...}.
func (w *Workspace) Expand(ctx context.Context, template string) (string, error) {
	return expand.Expand(ctx, template, w.Options())
}

// Cache returns the active configure cache.
func (w *Workspace) Cache(ctx context.Context) (*cmakecache.Cache, error) {
	return w.Driver.Cache(ctx)
}

// CompilationDatabase loads the configured compile_commands.json.
func (w *Workspace) CompilationDatabase() (*compdb.Index, error) {
	return compdb.Load(w.Paths.CompileCommandsFile)
}

// ContextVars returns the variables available as ${name} placeholders.
func ContextVars(pp paths.WorkspacePaths, cfg config.Config) map[string]string {
	sum := sha256.Sum256([]byte(pp.Root))
	base := filepath.Base(pp.Root)
	home, _ := os.UserHomeDir()

	return map[string]string{
		"workspaceFolder":         pp.Root,
		"workspaceFolderBasename": base,
		"workspaceRoot":           pp.Root,
		"workspaceRootFolderName": base,
		"workspaceHash":           hex.EncodeToString(sum[:4]),
		"sourceDir":               pp.Root,
		"userHome":                home,
		"buildType":               cfg.BuildType,
		"buildKit":                cfg.Kit,
		"generator":               cfg.Generator,
	}
}
