package cmakecache

import (
	"strings"
)

var falsyValues = map[string]struct{}{
	"0":        {},
	"":         {},
	"NO":       {},
	"FALSE":    {},
	"OFF":      {},
	"IGNORE":   {},
	"N":        {},
	"NOTFOUND": {},
}

// IsTruthy applies CMake's if() truthiness rules to a value. Strings are
// compared case-insensitively; numbers are truthy when non-zero.
func IsTruthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		upper := strings.ToUpper(v)
		if _, ok := falsyValues[upper]; ok {
			return false
		}
		return !strings.HasSuffix(upper, "-NOTFOUND")
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case []string:
		return IsTruthy(strings.Join(v, ";"))
	default:
		return true
	}
}
