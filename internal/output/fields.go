package output

import (
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
)

type Field struct {
	Key    string
	Header string
}

var fieldRegistry = map[string]string{
	"category": "CATEGORY",
	"file":     "FILE",
	"line":     "LINE",
	"col":      "COL",
	"location": "LOCATION",
	"start":    "START",
	"end":      "END",
	"text":     "TEXT",
}

// DefaultFields is the column set used when none is requested.
var DefaultFields = []string{"category", "location", "text"}

// ResolveFields parses a comma separated list of field keys. An empty list
// selects DefaultFields.
func ResolveFields(raw string) ([]Field, error) {
	keys := DefaultFields
	if strings.TrimSpace(raw) != "" {
		keys = strings.Split(raw, ",")
	}
	fields := make([]Field, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		header, ok := fieldRegistry[k]
		if !ok {
			return nil, errors.Errorf("unknown field: %s", k)
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		fields = append(fields, Field{Key: k, Header: header})
	}
	if len(fields) == 0 {
		return nil, errors.New("no fields selected")
	}
	return fields, nil
}

func Headers(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Header
	}
	return out
}

func RowValues(r Row, fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = fieldValue(r, f.Key)
	}
	return out
}

func fieldValue(r Row, key string) string {
	switch key {
	case "category":
		return r.Category
	case "file":
		return r.File
	case "line":
		return strconv.Itoa(r.Range.Start.Line + 1)
	case "col":
		return strconv.Itoa(r.Range.Start.Col + 1)
	case "location":
		return r.Location()
	case "start":
		return strconv.Itoa(r.Start)
	case "end":
		return strconv.Itoa(r.End)
	case "text":
		return r.Text
	default:
		return ""
	}
}
