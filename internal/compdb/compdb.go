package compdb

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/text/cases"
)

// CompilationInfo is one record of compile_commands.json.
type CompilationInfo struct {
	Directory string `json:"directory"`
	Command   string `json:"command"`
	File      string `json:"file"`
}

// ParseError reports a compilation database that is not a JSON array of
// command objects.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse compilation database: %v", e.Err)
	}
	return fmt.Sprintf("parse compilation database %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var errNotArray = errors.New("top-level value is not an array")

// Index maps normalized absolute source paths to their compile commands.
type Index struct {
	Path     string
	entries  map[string]indexed
	foldCase bool
}

type indexed struct {
	file string
	info CompilationInfo
}

// Load reads a compilation database from disk and indexes it.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read compilation database: %w", err)
	}
	idx, err := Parse(data)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}
	idx.Path = path
	return idx, nil
}

// Parse indexes an in-memory compilation database. Relative file entries are
// resolved against their directory, and later records replace earlier ones
// that normalize to the same path.
func Parse(data []byte) (*Index, error) {
	return parse(data, hostFoldsCase())
}

func parse(data []byte, foldCase bool) (*Index, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &ParseError{Err: errNotArray}
	}

	var records []CompilationInfo
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, &ParseError{Err: err}
	}

	idx := &Index{entries: make(map[string]indexed, len(records)), foldCase: foldCase}
	for _, rec := range records {
		if rec.File == "" {
			continue
		}
		file := rec.File
		if !filepath.IsAbs(file) {
			file = filepath.Join(rec.Directory, file)
		}
		idx.entries[idx.key(file)] = indexed{
			file: filepath.Clean(filepath.FromSlash(file)),
			info: rec,
		}
	}
	return idx, nil
}

// Lookup returns the compile command recorded for an absolute source path.
func (idx *Index) Lookup(path string) (CompilationInfo, bool) {
	if idx == nil || path == "" {
		return CompilationInfo{}, false
	}
	e, ok := idx.entries[idx.key(path)]
	return e.info, ok
}

// Len returns the number of indexed sources.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Files returns the resolved source paths in sorted order, spelled as the
// database records them.
func (idx *Index) Files() []string {
	if idx == nil {
		return nil
	}
	files := make([]string, 0, len(idx.entries))
	for _, e := range idx.entries {
		files = append(files, e.file)
	}
	sort.Strings(files)
	return files
}

func (idx *Index) key(path string) string {
	key := filepath.Clean(filepath.FromSlash(path))
	if idx.foldCase {
		key = cases.Fold().String(key)
	}
	return key
}

func hostFoldsCase() bool {
	return runtime.GOOS == "windows"
}
