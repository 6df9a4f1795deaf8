// Package diagnostics turns compiler and linker console output into
// structured records. Each dialect parser inspects a single physical line and
// keeps no state between calls.
package diagnostics

// Severity is the normalized importance of a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityRemark  Severity = "remark"
	SeverityNote    Severity = "note"
)

// Related points at a secondary location attached to a diagnostic, such as a
// GCC note following a warning.
type Related struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

// Diagnostic is one parsed diagnostic. Line and Column are zero-based.
type Diagnostic struct {
	File     string    `json:"file"`
	Line     int       `json:"line"`
	Column   int       `json:"column"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	Dialect  Dialect   `json:"dialect"`
	Related  []Related `json:"related,omitempty"`
}
