package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	ConfigFileName      = "cmkit.yaml"
	TOMLConfigFileName  = "cmkit.toml"
	CacheFileName       = "CMakeCache.txt"
	CompileCommandsName = "compile_commands.json"
)

// WorkspacePaths captures canonical locations for a cmkit workspace.
type WorkspacePaths struct {
	Root                string
	ConfigFile          string
	MetaDir             string
	LogsDir             string
	BuildDir            string
	CacheFile           string
	CompileCommandsFile string
}

// Resolve determines the workspace root using the optional --project flag or
// the current working directory when the flag is empty.
func Resolve(projectFlag string) (WorkspacePaths, error) {
	var (
		root string
		err  error
	)

	if projectFlag != "" {
		root, err = filepath.Abs(projectFlag)
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return WorkspacePaths{}, fmt.Errorf("resolve workspace root: %w", err)
	}

	return newWorkspacePaths(root), nil
}

func newWorkspacePaths(root string) WorkspacePaths {
	metaDir := filepath.Join(root, ".cmkit")
	buildDir := filepath.Join(root, "build")

	configFile := filepath.Join(root, ConfigFileName)
	if ok, _ := FileExists(configFile); !ok {
		if ok, _ := FileExists(filepath.Join(root, TOMLConfigFileName)); ok {
			configFile = filepath.Join(root, TOMLConfigFileName)
		}
	}

	return WorkspacePaths{
		Root:                root,
		ConfigFile:          configFile,
		MetaDir:             metaDir,
		LogsDir:             filepath.Join(metaDir, "logs"),
		BuildDir:            buildDir,
		CacheFile:           filepath.Join(buildDir, CacheFileName),
		CompileCommandsFile: filepath.Join(buildDir, CompileCommandsName),
	}
}

// WithBuildDir points the build directory, and the cache file inside it, at
// dir. Relative values are resolved against the workspace root. The
// compilation database follows only when it still sits in the old build dir.
func (p WorkspacePaths) WithBuildDir(dir string) WorkspacePaths {
	if dir == "" {
		return p
	}
	resolved := resolveWorkspacePath(p.Root, dir)
	if p.CompileCommandsFile == filepath.Join(p.BuildDir, CompileCommandsName) {
		p.CompileCommandsFile = filepath.Join(resolved, CompileCommandsName)
	}
	p.BuildDir = resolved
	p.CacheFile = filepath.Join(resolved, CacheFileName)
	return p
}

// WithCompileCommands overrides the compilation database location.
func (p WorkspacePaths) WithCompileCommands(path string) WorkspacePaths {
	if path == "" {
		return p
	}
	p.CompileCommandsFile = resolveWorkspacePath(p.Root, path)
	return p
}

func resolveWorkspacePath(root, value string) string {
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}

// EnsureMetaDirs creates the hidden .cmkit directory and its logs directory.
func (p WorkspacePaths) EnsureMetaDirs() error {
	for _, dir := range []string{p.MetaDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
