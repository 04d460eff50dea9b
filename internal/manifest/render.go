package manifest

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v2"

	"github.com/vvka-141/wingetrel/pkg/wingetrel"
)

func init() {
	// Long URLs and descriptions stay on one line.
	yaml.FutureLineWrap()
}

// Render emits doc with its fields in fieldOrder. Fields in fieldOrder that
// the document lacks become "# Key:" placeholders; document fields missing
// from fieldOrder follow in document order. The output starts with the two
// header comment lines and a blank line, and uses LF line endings.
func Render(doc Document, fieldOrder []string, toolVersion string) ([]byte, error) {
	h := HeaderOf(doc)
	fields := doc.Fields()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Created using %s %s\n", wingetrel.ToolName, toolVersion)
	fmt.Fprintf(&buf, "# yaml-language-server: $schema="+wingetrel.SchemaReferenceURLFormat+"\n\n",
		doc.Type(), h.ManifestVersion)

	emitted := make(map[string]bool, len(fieldOrder))
	for _, key := range fieldOrder {
		if emitted[key] {
			continue
		}
		emitted[key] = true

		value, ok := fields.Get(key)
		if !ok {
			fmt.Fprintf(&buf, "# %s:\n", key)
			continue
		}
		if err := writeField(&buf, key, value); err != nil {
			return nil, err
		}
	}

	for _, key := range fields.Keys() {
		if emitted[key] {
			continue
		}
		value, _ := fields.Get(key)
		if err := writeField(&buf, key, value); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func writeField(buf *bytes.Buffer, key string, value any) error {
	out, err := yaml.Marshal(yaml.MapSlice{{Key: key, Value: value}})
	if err != nil {
		return fmt.Errorf("render %s: %w", key, err)
	}
	buf.Write(out)
	return nil
}

// JSONValue returns the document as a JSON-compatible tree for schema
// validation.
func JSONValue(doc Document) map[string]any {
	fields := doc.Fields()
	out := make(map[string]any, fields.Len())
	for _, key := range fields.Keys() {
		value, _ := fields.Get(key)
		out[key] = jsonValue(value)
	}
	return out
}

func jsonValue(v any) any {
	switch t := v.(type) {
	case yaml.MapSlice:
		m := make(map[string]any, len(t))
		for _, kv := range t {
			m[fmt.Sprint(kv.Key)] = jsonValue(kv.Value)
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = jsonValue(item)
		}
		return out
	}
	return v
}
