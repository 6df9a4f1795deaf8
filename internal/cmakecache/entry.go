package cmakecache

import (
	"strings"
)

// EntryType enumerates the value types CMake records for a cache entry.
type EntryType string

const (
	TypeBool          EntryType = "BOOL"
	TypeString        EntryType = "STRING"
	TypePath          EntryType = "PATH"
	TypeFilePath      EntryType = "FILEPATH"
	TypeInternal      EntryType = "INTERNAL"
	TypeStatic        EntryType = "STATIC"
	TypeUninitialized EntryType = "UNINITIALIZED"
)

var knownTypes = map[string]EntryType{
	string(TypeBool):          TypeBool,
	string(TypeString):        TypeString,
	string(TypePath):          TypePath,
	string(TypeFilePath):      TypeFilePath,
	string(TypeInternal):      TypeInternal,
	string(TypeStatic):        TypeStatic,
	string(TypeUninitialized): TypeUninitialized,
}

// ParseEntryType maps a type token to its EntryType. Matching is case-sensitive.
func ParseEntryType(token string) (EntryType, bool) {
	t, ok := knownTypes[token]
	return t, ok
}

// Entry is a single typed cache item.
//
// Value holds a bool for BOOL entries and the raw string for every other type.
type Entry struct {
	Key      string    `json:"key"`
	Type     EntryType `json:"type"`
	Value    any       `json:"value"`
	Raw      string    `json:"raw"`
	Doc      string    `json:"doc,omitempty"`
	Advanced bool      `json:"advanced,omitempty"`
}

func newEntry(key string, typ EntryType, raw, doc string) Entry {
	entry := Entry{Key: key, Type: typ, Raw: raw, Doc: doc}
	if typ == TypeBool {
		entry.Value = IsTruthy(raw)
	} else {
		entry.Value = raw
	}
	return entry
}

// Bool reports the truthiness of the entry value.
func (e Entry) Bool() bool {
	return IsTruthy(e.Value)
}

// String renders the value the way it is substituted into templates: booleans
// become ON/OFF and lists are joined with semicolons.
func (e Entry) String() string {
	return Stringify(e.Value)
}

// List splits the value on CMake's list separator.
func (e Entry) List() []string {
	switch v := e.Value.(type) {
	case []string:
		return append([]string(nil), v...)
	default:
		s := Stringify(v)
		if s == "" {
			return nil
		}
		return strings.Split(s, ";")
	}
}

// Stringify converts a cache value payload into text.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return "ON"
		}
		return "OFF"
	case string:
		return v
	case []string:
		return strings.Join(v, ";")
	default:
		return ""
	}
}
