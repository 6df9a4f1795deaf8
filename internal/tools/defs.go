package tools

import (
	"runtime"
	"sort"
)

var toolDefinitions = map[string]ToolDefinition{
	"cmake": {
		Name:           "cmake",
		MinimumVersion: "3.15",
		Required:       true,
		Candidates:     []string{"cmake"},
		VersionSwitch:  "--version",
	},
	"ninja": {
		Name:          "ninja",
		Candidates:    []string{"ninja", "ninja-build"},
		VersionSwitch: "--version",
	},
	"make": {
		Name:          "make",
		Candidates:    []string{"make", "gmake", "mingw32-make"},
		VersionSwitch: "--version",
	},
	"cc": {
		Name:          "cc",
		Candidates:    []string{"cc", "gcc", "clang"},
		VersionSwitch: "--version",
	},
	"c++": {
		Name:          "c++",
		Candidates:    []string{"c++", "g++", "clang++"},
		VersionSwitch: "--version",
	},
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

// KnownTools returns the list of probed tool names.
func KnownTools() []string {
	names := make([]string, 0, len(toolDefinitions))
	for name := range toolDefinitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definition returns the tool definition for the provided name.
func Definition(name string) (ToolDefinition, bool) {
	def, ok := toolDefinitions[name]
	return def, ok
}
