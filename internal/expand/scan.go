package expand

import (
	"strings"
)

type reference struct {
	namespace    string
	name         string
	defaultValue string
	hasDefault   bool
}

type segment struct {
	text string
	ref  *reference
}

// scan splits template into literal runs and placeholders, left to right.
// Placeholders do not nest. Inside a default value `\}` stands for a literal
// brace. When a `${` does not open a valid placeholder only those two bytes
// are kept as literal text and scanning resumes right after them.
func scan(template string) []segment {
	var (
		segments []segment
		literal  strings.Builder
	)
	flush := func() {
		if literal.Len() > 0 {
			segments = append(segments, segment{text: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(template); {
		if template[i] != '$' || i+1 >= len(template) || template[i+1] != '{' {
			literal.WriteByte(template[i])
			i++
			continue
		}

		body, end, ok := readBody(template, i+2)
		var ref reference
		if ok {
			ref, ok = parseReference(body)
		}
		if !ok {
			literal.WriteString("${")
			i += 2
			continue
		}
		flush()
		segments = append(segments, segment{ref: &ref})
		i = end
	}
	flush()
	return segments
}

// readBody collects placeholder text starting at start up to the closing
// brace. end is the index just past that brace. Another `${` before the
// brace means there is no placeholder here.
func readBody(template string, start int) (body string, end int, ok bool) {
	var b strings.Builder
	colons := 0
	for j := start; j < len(template); j++ {
		c := template[j]
		if c == '$' && j+1 < len(template) && template[j+1] == '{' {
			return "", 0, false
		}
		if c == ':' {
			colons++
		}
		if colons >= 2 && c == '\\' && j+1 < len(template) && template[j+1] == '}' {
			b.WriteByte('}')
			j++
			continue
		}
		if c == '}' {
			return b.String(), j + 1, true
		}
		b.WriteByte(c)
	}
	return "", 0, false
}

func parseReference(body string) (reference, bool) {
	namespace, rest, hasNamespace := strings.Cut(body, ":")
	if !hasNamespace {
		if !isIdentifier(body) {
			return reference{}, false
		}
		return reference{name: body}, true
	}
	if !isIdentifier(namespace) {
		return reference{}, false
	}

	name, def, hasDefault := strings.Cut(rest, ":")
	if name == "" {
		return reference{}, false
	}
	return reference{
		namespace:    namespace,
		name:         name,
		defaultValue: def,
		hasDefault:   hasDefault,
	}, true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c == '_':
		case c >= '0' && c <= '9', c == '.', c == '-':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
