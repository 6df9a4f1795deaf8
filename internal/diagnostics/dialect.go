package diagnostics

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// Dialect names one compiler or linker diagnostic grammar.
type Dialect string

const (
	DialectGCC   Dialect = "gcc"
	DialectGHS   Dialect = "ghs"
	DialectGNULD Dialect = "gnuld"
)

// Dialects lists every supported dialect in the order ParseLine tries them.
// GCC comes before GNU ld because a compiler line would otherwise also
// satisfy the looser linker grammar.
var Dialects = []Dialect{DialectGCC, DialectGHS, DialectGNULD}

// ParseDialect resolves a dialect name.
func ParseDialect(name string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(name))); d {
	case DialectGCC, DialectGHS, DialectGNULD:
		return d, nil
	case "ld", "gnu-ld":
		return DialectGNULD, nil
	case "clang":
		return DialectGCC, nil
	}
	return "", fmt.Errorf("unknown diagnostic dialect %q", name)
}

// Parse runs the dialect's parser against one line.
func (d Dialect) Parse(line string) (Diagnostic, bool) {
	switch d {
	case DialectGCC:
		return ParseGCC(line)
	case DialectGHS:
		return ParseGHS(line)
	case DialectGNULD:
		return ParseGNULD(line)
	}
	return Diagnostic{}, false
}

// ParseLine tries each dialect in Dialects order and returns the first match.
func ParseLine(line string) (Diagnostic, bool) {
	for _, d := range Dialects {
		if diag, ok := d.Parse(line); ok {
			return diag, true
		}
	}
	return Diagnostic{}, false
}

var (
	gccPattern   = regexp.MustCompile(`^(.+?):(\d+):(\d+):\s+(?:fatal\s+)?(error|warning|note):\s*(.*)$`)
	gnuldPattern = regexp.MustCompile(`^([^:]+):(\d+):\s+(.+)$`)
	ghsPattern   = regexp.MustCompile(`^"(.+)",\s+(?:line\s+(\d+)(?:\s+\(col\.\s+(\d+)\))?|At end of source):\s+(?:fatal\s+)?(remark|warning|error)\s+(.*)$`)
	winAbsolute  = regexp.MustCompile(`^(?:[A-Za-z]:[\\/]|\\\\)`)
)

// ParseGCC parses `<path>:<line>:<col>: <severity>: <message>` as printed by
// GCC and Clang. The path must be an absolute POSIX path.
func ParseGCC(line string) (Diagnostic, bool) {
	m := gccPattern.FindStringSubmatch(strings.TrimRight(line, "\r\n"))
	if m == nil || !path.IsAbs(m[1]) {
		return Diagnostic{}, false
	}
	return Diagnostic{
		File:     m[1],
		Line:     zeroBased(m[2]),
		Column:   zeroBased(m[3]),
		Severity: Severity(m[4]),
		Message:  strings.TrimSpace(m[5]),
		Dialect:  DialectGCC,
	}, true
}

// ParseGNULD parses `<path>:<line>: <message>` linker errors. The linker
// grammar carries neither a column nor a severity, so every match is an error.
func ParseGNULD(line string) (Diagnostic, bool) {
	m := gnuldPattern.FindStringSubmatch(strings.TrimRight(line, "\r\n"))
	if m == nil || !path.IsAbs(m[1]) {
		return Diagnostic{}, false
	}
	return Diagnostic{
		File:     m[1],
		Line:     zeroBased(m[2]),
		Severity: SeverityError,
		Message:  strings.TrimSpace(m[3]),
		Dialect:  DialectGNULD,
	}, true
}

// ParseGHS parses Green Hills diagnostics in both the
// `"<path>", line N (col. M): <severity> <code>: <message>` form and the
// `"<path>", At end of source: ...` form. Paths use drive-letter notation.
func ParseGHS(line string) (Diagnostic, bool) {
	m := ghsPattern.FindStringSubmatch(strings.TrimRight(line, "\r\n"))
	if m == nil || !winAbsolute.MatchString(m[1]) {
		return Diagnostic{}, false
	}
	return Diagnostic{
		File:     m[1],
		Line:     zeroBased(m[2]),
		Column:   zeroBased(m[3]),
		Severity: Severity(m[4]),
		Message:  strings.TrimSpace(m[5]),
		Dialect:  DialectGHS,
	}, true
}

// zeroBased converts a 1-based number from console text. Missing or
// non-positive values map to 0.
func zeroBased(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0
	}
	return n - 1
}
