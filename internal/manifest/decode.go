package manifest

import (
	"errors"
	"fmt"
	"strconv"

	yamlv2 "gopkg.in/yaml.v2"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/wingetrel/pkg/wingetrel"
)

// ParseError reports a document that could not be decoded or classified.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("manifest %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse decodes one manifest document. path is only used in errors.
// A ManifestType outside the four kinds is reported as
// wingetrel.ErrUnknownManifestType.
func Parse(path string, data []byte) (Document, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, &ParseError{Path: path, Err: errors.New("document is not a mapping")}
	}

	top, err := mappingFields(doc.Content[0])
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	rawType, _ := top.Get(KeyManifestType)
	typeStr, _ := scalarString(rawType)
	manifestType := wingetrel.ManifestType(typeStr)
	if !manifestType.Valid() {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("%w: %q", wingetrel.ErrUnknownManifestType, typeStr)}
	}

	h := Header{ManifestType: manifestType}
	h.PackageIdentifier = takeString(top, KeyPackageIdentifier).Str
	h.PackageVersion = takeString(top, KeyPackageVersion).Str
	h.ManifestVersion = takeString(top, KeyManifestVersion).Str
	top.Delete(KeyManifestType)

	switch manifestType {
	case wingetrel.ManifestTypeInstaller:
		m := &InstallerManifest{Header: h}
		m.ReleaseDate = takeString(top, KeyReleaseDate)
		m.InstallerType = takeString(top, KeyInstallerType)
		m.PackageFamilyName = takeString(top, KeyPackageFamilyName)
		if raw, ok := top.Get(KeyInstallers); ok {
			installers, err := parseInstallers(raw)
			if err != nil {
				return nil, &ParseError{Path: path, Err: err}
			}
			m.Installers = installers
			top.Delete(KeyInstallers)
		}
		m.Extra = *top
		return m, nil

	case wingetrel.ManifestTypeDefaultLocale:
		m := &DefaultLocaleManifest{Header: h, LocaleFields: takeLocale(top)}
		m.Extra = *top
		return m, nil

	case wingetrel.ManifestTypeLocale:
		m := &LocaleManifest{Header: h, LocaleFields: takeLocale(top)}
		m.Extra = *top
		return m, nil

	default:
		m := &VersionManifest{Header: h}
		m.DefaultLocale = takeString(top, KeyDefaultLocale)
		m.Extra = *top
		return m, nil
	}
}

func takeLocale(f *Fields) LocaleFields {
	return LocaleFields{
		PackageLocale:   takeString(f, KeyPackageLocale),
		ReleaseNotes:    takeString(f, KeyReleaseNotes),
		ReleaseNotesUrl: takeString(f, KeyReleaseNotesUrl),
	}
}

// takeString moves a scalar key out of f into a Value. A null value is
// taken out as None. Other non-scalar values stay in f untouched.
func takeString(f *Fields, key string) Value {
	raw, ok := f.Get(key)
	if !ok {
		return None
	}
	if raw == nil {
		f.Delete(key)
		return None
	}
	s, ok := scalarString(raw)
	if !ok {
		return None
	}
	f.Delete(key)
	return Some(s)
}

func parseInstallers(raw any) ([]*Installer, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s is not a list", KeyInstallers)
	}

	out := make([]*Installer, 0, len(items))
	for i, item := range items {
		entry, ok := item.(yamlv2.MapSlice)
		if !ok {
			return nil, fmt.Errorf("%s[%d] is not a mapping", KeyInstallers, i)
		}

		in := &Installer{order: make([]string, 0, len(entry))}
		for _, kv := range entry {
			key := kv.Key.(string)
			in.order = append(in.order, key)

			if v, typed := in.typed(key); typed {
				if kv.Value == nil {
					continue
				}
				if s, ok := scalarString(kv.Value); ok {
					*v = Some(s)
					continue
				}
			}
			in.Extra.Set(key, kv.Value)
		}
		out = append(out, in)
	}
	return out, nil
}

// mappingFields converts a mapping node into ordered top-level Fields.
func mappingFields(n *yaml.Node) (*Fields, error) {
	v, err := nodeValue(n)
	if err != nil {
		return nil, err
	}

	var f Fields
	for _, kv := range v.(yamlv2.MapSlice) {
		key := kv.Key.(string)
		if f.Has(key) {
			return nil, fmt.Errorf("duplicate key %q", key)
		}
		f.Set(key, kv.Value)
	}
	return &f, nil
}

// nodeValue converts a YAML node into the value tree the emitter takes:
// mappings become yaml.v2 MapSlices (ordered), sequences []any, and scalars
// string, int64, bool or nil. Floats, timestamps and non-canonical numbers
// keep their source text since every such winget field is a string.
func nodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return nodeValue(n.Content[0])

	case yaml.AliasNode:
		return nodeValue(n.Alias)

	case yaml.MappingNode:
		out := make(yamlv2.MapSlice, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping key is not a scalar", k.Line)
			}
			v, err := nodeValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out = append(out, yamlv2.MapItem{Key: k.Value, Value: v})
		}
		return out, nil

	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeValue(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil

	case yaml.ScalarNode:
		return scalarValue(n), nil
	}

	return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}

func scalarValue(n *yaml.Node) any {
	switch n.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		if b, err := strconv.ParseBool(n.Value); err == nil && strconv.FormatBool(b) == n.Value {
			return b
		}
	case "!!int":
		// Only canonical decimals become numbers; "007" or "0x10" keep their text.
		if i, err := strconv.ParseInt(n.Value, 10, 64); err == nil && strconv.FormatInt(i, 10) == n.Value {
			return i
		}
	}
	return n.Value
}

// scalarString renders a decoded scalar as a string.
func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case int64:
		return strconv.FormatInt(s, 10), true
	case bool:
		return strconv.FormatBool(s), true
	}
	return "", false
}
