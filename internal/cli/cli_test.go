package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"cmkit/internal/cmakecache"
	"cmkit/internal/config"
	"cmkit/internal/tools"
)

const fixtureCache = `# This is the CMakeCache file.
//Build the testing tree.
BUILD_TESTING:BOOL=ON

//Path to a program.
CMAKE_AR:FILEPATH=/usr/bin/ar

//Choose the type of build
CMAKE_BUILD_TYPE:STRING=Debug

Project_LANGUAGES:STRING=C;CXX

//ADVANCED property for variable: CMAKE_AR
CMAKE_AR-ADVANCED:INTERNAL=1
CMAKE_GENERATOR:INTERNAL=Ninja
`

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// newWorkspace lays out a configured build tree and returns its root.
func newWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	build := filepath.Join(root, "build")
	writeFile(t, filepath.Join(build, "CMakeCache.txt"), fixtureCache)

	records := []map[string]string{
		{"directory": filepath.ToSlash(build), "command": "/usr/bin/c++ -g -o main.o -c ../src/main.cpp", "file": "../src/main.cpp"},
		{"directory": filepath.ToSlash(build), "command": "/usr/bin/cc -c " + filepath.ToSlash(filepath.Join(root, "src", "util.c")), "file": filepath.ToSlash(filepath.Join(root, "src", "util.c"))},
	}
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	writeFile(t, filepath.Join(build, "compile_commands.json"), string(data))
	return root
}

func TestInitCreatesConfig(t *testing.T) {
	root := filepath.Join(t.TempDir(), "ws")

	out, err := runCLI(t, "", "init", "--project", root)
	if err != nil {
		t.Fatalf("init: %v\n%s", err, out)
	}
	if !strings.Contains(out, "created cmkit.yaml") {
		t.Fatalf("unexpected output: %s", out)
	}
	cfg, err := config.Load(filepath.Join(root, "cmkit.yaml"))
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if cfg.BuildDirectory != config.DefaultBuildDirectory {
		t.Fatalf("build_directory = %q", cfg.BuildDirectory)
	}

	out, err = runCLI(t, "", "init", "--project", root)
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	if !strings.Contains(out, "already initialized") {
		t.Fatalf("expected idempotent init, got: %s", out)
	}
}

func TestInitTOML(t *testing.T) {
	root := t.TempDir()
	if _, err := runCLI(t, "", "init", "--toml", "--project", root); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "cmkit.toml")); err != nil {
		t.Fatalf("expected cmkit.toml: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "cmkit.yaml")); !os.IsNotExist(err) {
		t.Fatalf("did not expect cmkit.yaml, err=%v", err)
	}
}

func TestResolveInitDir(t *testing.T) {
	cwd, _ := os.Getwd()

	tests := []struct {
		name string
		flag string
		args []string
		want string
	}{
		{name: "project flag takes precedence", flag: "/custom/path", args: []string{"ignored"}, want: "/custom/path"},
		{name: "no args uses cwd", want: cwd},
		{name: "dot uses cwd", args: []string{"."}, want: cwd},
		{name: "named arg is relative to cwd", args: []string{"my-project"}, want: filepath.Join(cwd, "my-project")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveInitDir(tt.flag, tt.args)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCacheListHidesAdvanced(t *testing.T) {
	root := newWorkspace(t)

	out, err := runCLI(t, "", "cache", "list", "--project", root)
	if err != nil {
		t.Fatalf("cache list: %v\n%s", err, out)
	}
	if !strings.Contains(out, "CMAKE_BUILD_TYPE") || !strings.Contains(out, "Debug") {
		t.Fatalf("expected build type row: %s", out)
	}
	if strings.Contains(out, "/usr/bin/ar") {
		t.Fatalf("advanced CMAKE_AR should be hidden: %s", out)
	}

	out, err = runCLI(t, "", "cache", "list", "--advanced", "--project", root)
	if err != nil {
		t.Fatalf("cache list --advanced: %v", err)
	}
	if !strings.Contains(out, "/usr/bin/ar") {
		t.Fatalf("expected advanced entry with --advanced: %s", out)
	}
}

func TestCacheListJSON(t *testing.T) {
	root := newWorkspace(t)

	out, err := runCLI(t, "", "cache", "list", "--json", "--filter", "build_type", "--project", root)
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}

	var payload struct {
		Path    string             `json:"path"`
		Entries []cmakecache.Entry `json:"entries"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if payload.Path != filepath.Join(root, "build", "CMakeCache.txt") {
		t.Fatalf("path = %s", payload.Path)
	}
	if len(payload.Entries) != 1 || payload.Entries[0].Key != "CMAKE_BUILD_TYPE" {
		t.Fatalf("entries = %+v", payload.Entries)
	}
}

func TestCacheGet(t *testing.T) {
	root := newWorkspace(t)

	tests := []struct {
		key  string
		want string
	}{
		{"CMAKE_BUILD_TYPE", "Debug"},
		{"BUILD_TESTING", "ON"},
		{"Project_LANGUAGES", "C;CXX"},
	}
	for _, tt := range tests {
		cmd := newRootCmd()
		var stdout, stderr bytes.Buffer
		cmd.SetOut(&stdout)
		cmd.SetErr(&stderr)
		cmd.SetArgs([]string{"cache", "get", tt.key, "--project", root})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("cache get %s: %v", tt.key, err)
		}
		if got := strings.TrimSpace(stdout.String()); got != tt.want {
			t.Fatalf("cache get %s = %q, want %q", tt.key, got, tt.want)
		}
	}

	if _, err := runCLI(t, "", "cache", "get", "NOPE", "--project", root); err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func TestCacheFileFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CMakeCache.txt")
	writeFile(t, path, "FOO:STRING=bar\n")

	out, err := runCLI(t, "", "cache", "get", "FOO", "--file", path)
	if err != nil {
		t.Fatalf("cache get: %v", err)
	}
	if strings.TrimSpace(out) != "bar" {
		t.Fatalf("got %q", out)
	}
}

func TestCacheMissingWorkspaceCache(t *testing.T) {
	if _, err := runCLI(t, "", "cache", "list", "--project", t.TempDir()); err == nil {
		t.Fatalf("expected error when the build tree is not configured")
	}
}

const consoleOutput = `[1/2] Building CXX object CMakeFiles/app.dir/src/main.cpp.o
/src/main.cpp:4:6: warning: unused variable 'x' [-Wunused-variable]
    4 |   int x;
      |       ^
/src/main.cpp:9:3: error: 'foo' was not declared in this scope
/src/util.h:2:1: note: 'foo' declared here
main.o:main.cpp: undefined reference to 'bar'
`

func TestDiagnoseStdin(t *testing.T) {
	root := t.TempDir()

	out, err := runCLI(t, consoleOutput, "diagnose", "--project", root)
	if err == nil {
		t.Fatalf("expected non-zero exit when errors are present")
	}
	for _, want := range []string{
		"/src/main.cpp:4:6: ",
		"unused variable 'x' [-Wunused-variable]",
		"/src/main.cpp:9:3: ",
		"/src/util.h:2:1: ",
		"1 error, 1 warning, 0 remark, 1 note",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "undefined reference") {
		t.Fatalf("GNU ld line should not parse without a line number:\n%s", out)
	}
}

func TestDiagnoseDialectFlag(t *testing.T) {
	root := t.TempDir()
	input := "/src/a.c:1:2: warning: gcc line\n/src/lib.c:12: undefined reference to `x'\n"

	out, err := runCLI(t, input, "diagnose", "--json", "--dialect", "gnuld", "--project", root)
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}

	var results []struct {
		Path        string `json:"path"`
		Diagnostics []struct {
			File     string `json:"file"`
			Line     int    `json:"line"`
			Severity string `json:"severity"`
			Dialect  string `json:"dialect"`
		} `json:"diagnostics"`
	}
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(results) != 1 || len(results[0].Diagnostics) != 1 {
		t.Fatalf("unexpected results: %+v", results)
	}
	got := results[0].Diagnostics[0]
	if got.File != "/src/lib.c" || got.Line != 11 || got.Severity != "error" || got.Dialect != "gnuld" {
		t.Fatalf("unexpected diagnostic: %+v", got)
	}
}

func TestDiagnoseDialectFromConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "cmkit.yaml"), "diagnostics:\n  dialect: ghs\n")

	out, err := runCLI(t, "/src/a.c:1:2: warning: gcc line\n", "diagnose", "--project", root)
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	if !strings.Contains(out, "0 error, 0 warning") {
		t.Fatalf("expected GCC line ignored under ghs: %s", out)
	}
}

func TestDiagnoseFiles(t *testing.T) {
	root := t.TempDir()
	logA := filepath.Join(root, "a.log")
	logB := filepath.Join(root, "b.log")
	writeFile(t, logA, "/src/a.c:1:1: warning: first\n")
	writeFile(t, logB, "\"C:\\src\\b.c\", line 3 (col. 2): remark #1: second\r\n")

	out, err := runCLI(t, "", "diagnose", logA, logB, "--project", root)
	if err != nil {
		t.Fatalf("diagnose: %v\n%s", err, out)
	}
	if !strings.Contains(out, "/src/a.c:1:1: ") || !strings.Contains(out, "C:\\src\\b.c:3:2: ") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "0 error, 1 warning, 1 remark, 0 note") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
}

func TestDiagnoseUnknownDialect(t *testing.T) {
	if _, err := runCLI(t, "", "diagnose", "--dialect", "msvc", "--project", t.TempDir()); err == nil {
		t.Fatalf("expected error for unknown dialect")
	}
}

func TestResolveDialect(t *testing.T) {
	tests := []struct {
		flag, cfg string
		want      string
	}{
		{"", "", ""},
		{"", "auto", ""},
		{"AUTO", "gcc", ""},
		{"", "gcc", "gcc"},
		{"ld", "gcc", "gnuld"},
	}
	for _, tt := range tests {
		got, err := resolveDialect(tt.flag, tt.cfg)
		if err != nil {
			t.Fatalf("resolveDialect(%q, %q): %v", tt.flag, tt.cfg, err)
		}
		if string(got) != tt.want {
			t.Fatalf("resolveDialect(%q, %q) = %q, want %q", tt.flag, tt.cfg, got, tt.want)
		}
	}
}

func TestCompdbLookup(t *testing.T) {
	root := newWorkspace(t)

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"compdb", "lookup", "src/main.cpp", "--project", root})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("compdb lookup: %v\n%s", err, stderr.String())
	}
	if got := strings.TrimSpace(stdout.String()); got != "/usr/bin/c++ -g -o main.o -c ../src/main.cpp" {
		t.Fatalf("command = %q", got)
	}

	if _, err := runCLI(t, "", "compdb", "lookup", "src/missing.cpp", "--project", root); err == nil {
		t.Fatalf("expected error for unknown source")
	}
}

func TestCompdbList(t *testing.T) {
	root := newWorkspace(t)

	out, err := runCLI(t, "", "compdb", "list", "--json", "--project", root)
	if err != nil {
		t.Fatalf("compdb list: %v", err)
	}
	var files []string
	if err := json.Unmarshal([]byte(out), &files); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	want := []string{filepath.Join(root, "src", "main.cpp"), filepath.Join(root, "src", "util.c")}
	if len(files) != len(want) || files[0] != want[0] || files[1] != want[1] {
		t.Fatalf("files = %v, want %v", files, want)
	}
}

func TestCompdbMalformed(t *testing.T) {
	db := filepath.Join(t.TempDir(), "compile_commands.json")
	writeFile(t, db, `{"file": "x"}`)

	_, err := runCLI(t, "", "compdb", "list", "--db", db)
	if err == nil || !strings.Contains(err.Error(), "parse compilation database") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestExpandCommand(t *testing.T) {
	root := newWorkspace(t)

	out, err := runCLI(t, "", "expand",
		"${cmake:CMAKE_BUILD_TYPE}",
		"${env:CMKIT_TEST_VAR}/${cmake:MISSING:fallback}",
		"${workspaceFolderBasename}",
		"--env", "CMKIT_TEST_VAR=from-flag",
		"--project", root,
	)
	if err != nil {
		t.Fatalf("expand: %v\n%s", err, out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	want := []string{"Debug", "from-flag/fallback", filepath.Base(root)}
	if len(lines) != len(want) {
		t.Fatalf("lines = %q", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestExpandUsesConfigContexts(t *testing.T) {
	root := newWorkspace(t)
	writeFile(t, filepath.Join(root, "cmkit.yaml"), "build_type: Release\ncontexts:\n  kit:\n    name: GCC 13\nenvironment:\n  OUT: ${buildDirectory}\n")

	out, err := runCLI(t, "", "expand", "--json", "${kit:name} ${buildType} ${env:OUT}", "--project", root)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	var results []expansion
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	want := "GCC 13 Release " + filepath.Join(root, "build")
	if len(results) != 1 || results[0].Value != want {
		t.Fatalf("results = %+v, want value %q", results, want)
	}
}

func TestParseEnvAssignments(t *testing.T) {
	env, err := parseEnvAssignments([]string{"A=1", "B=x=y", "C="})
	if err != nil {
		t.Fatalf("parseEnvAssignments: %v", err)
	}
	if env["A"] != "1" || env["B"] != "x=y" || env["C"] != "" {
		t.Fatalf("env = %v", env)
	}
	for _, bad := range []string{"NOEQUALS", "=value"} {
		if _, err := parseEnvAssignments([]string{bad}); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestConfigShow(t *testing.T) {
	root := t.TempDir()
	out, err := runCLI(t, "", "config", "show", "--project", root)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "build_directory:") || !strings.Contains(out, "${workspaceFolder}/build") {
		t.Fatalf("unexpected yaml:\n%s", out)
	}

	out, err = runCLI(t, "", "config", "show", "--toml", "--project", root)
	if err != nil {
		t.Fatalf("config show --toml: %v", err)
	}
	if !strings.Contains(out, `build_directory = "${workspaceFolder}/build"`) {
		t.Fatalf("unexpected toml:\n%s", out)
	}
}

func TestConfigValidate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "cmkit.yaml"), "diagnostics:\n  dialect: msvc\n")

	out, err := runCLI(t, "", "config", "validate", "--project", root)
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	if !strings.Contains(out, "msvc") {
		t.Fatalf("expected dialect finding, got: %s", out)
	}

	clean := t.TempDir()
	if _, err := runCLI(t, "", "config", "validate", "--project", clean); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestCheckConfig(t *testing.T) {
	if got := checkConfig(config.Config{}, os.ErrPermission); got.Status != "error" || got.Name != "Config" {
		t.Fatalf("got %+v, want Config error", got)
	}
	if got := checkConfig(config.Default(), nil); got.Status != "ok" {
		t.Fatalf("got %+v, want ok", got)
	}
	bad := config.Default()
	bad.Contexts = map[string]map[string]string{"env": {"A": "b"}}
	if got := checkConfig(bad, nil); got.Status != "warning" {
		t.Fatalf("got %+v, want warning", got)
	}
}

func TestDoctor(t *testing.T) {
	orig := tools.LookPath
	tools.LookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	t.Cleanup(func() { tools.LookPath = orig })

	root := newWorkspace(t)
	out, err := runCLI(t, "", "doctor", "--json", "--project", root)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}

	var checks []healthCheck
	if err := json.Unmarshal([]byte(out), &checks); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	got := map[string]healthCheck{}
	for _, c := range checks {
		got[c.Name] = c
	}
	if got["Config"].Status != "ok" {
		t.Fatalf("config check = %+v", got["Config"])
	}
	if c := got["Cache"]; c.Status != "ok" || !strings.Contains(c.Summary, "Ninja") || !strings.Contains(c.Summary, "Debug") {
		t.Fatalf("cache check = %+v", c)
	}
	if c := got["Compile DB"]; c.Status != "ok" || c.Summary != "2 sources" {
		t.Fatalf("compile db check = %+v", c)
	}
	if c := got["Tools"]; c.Status != "error" || !strings.Contains(c.Summary, "cmake") {
		t.Fatalf("tools check = %+v", c)
	}
}

func TestDoctorUnconfigured(t *testing.T) {
	orig := tools.LookPath
	tools.LookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	t.Cleanup(func() { tools.LookPath = orig })

	out, err := runCLI(t, "", "doctor", "--project", t.TempDir())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if !strings.Contains(out, "not configured") || !strings.Contains(out, "missing:") {
		t.Fatalf("expected warnings for missing cache and compile db:\n%s", out)
	}
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "cmkit "+Version) {
		t.Fatalf("unexpected version output: %q", out)
	}
}
