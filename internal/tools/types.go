package tools

// Status captures the resolved state for a toolchain program.
type Status struct {
	Tool      string   `json:"tool"`
	Version   string   `json:"version,omitempty"`
	Minimum   string   `json:"minimum,omitempty"`
	Path      string   `json:"path,omitempty"`
	Required  bool     `json:"required"`
	Satisfied bool     `json:"satisfied"`
	Error     string   `json:"error,omitempty"`
	Notes     []string `json:"notes,omitempty"`
}

// ToolDefinition describes how to find and version a program. Candidates
// are tried in order and the first one found on PATH wins.
type ToolDefinition struct {
	Name           string
	MinimumVersion string
	Required       bool
	Candidates     []string
	VersionSwitch  string
}
