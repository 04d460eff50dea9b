package manifest

import (
	"gopkg.in/yaml.v2"

	"github.com/vvka-141/wingetrel/pkg/wingetrel"
)

// Top-level keys with typed fields.
const (
	KeyPackageIdentifier = "PackageIdentifier"
	KeyPackageVersion    = "PackageVersion"
	KeyManifestType      = "ManifestType"
	KeyManifestVersion   = "ManifestVersion"
	KeyReleaseDate       = "ReleaseDate"
	KeyInstallerType     = "InstallerType"
	KeyPackageFamilyName = "PackageFamilyName"
	KeyInstallers        = "Installers"
	KeyPackageLocale     = "PackageLocale"
	KeyReleaseNotes      = "ReleaseNotes"
	KeyReleaseNotesUrl   = "ReleaseNotesUrl"
	KeyDefaultLocale     = "DefaultLocale"
)

// Installer entry keys with typed fields.
const (
	KeyInstallerUrl    = "InstallerUrl"
	KeyInstallerSha256 = "InstallerSha256"
	KeyProductCode     = "ProductCode"
	KeySignatureSha256 = "SignatureSha256"
)

// Header holds the keys every manifest kind has.
type Header struct {
	PackageIdentifier string
	PackageVersion    string
	ManifestType      wingetrel.ManifestType
	ManifestVersion   string
}

func (h *Header) header() *Header { return h }

func (h *Header) fields() *Fields {
	var f Fields
	if h.PackageIdentifier != "" {
		f.Set(KeyPackageIdentifier, h.PackageIdentifier)
	}
	if h.PackageVersion != "" {
		f.Set(KeyPackageVersion, h.PackageVersion)
	}
	f.Set(KeyManifestType, string(h.ManifestType))
	if h.ManifestVersion != "" {
		f.Set(KeyManifestVersion, h.ManifestVersion)
	}
	return &f
}

// Document is one manifest document. It is implemented only by the four
// manifest kinds of this package.
type Document interface {
	// Type returns the manifest kind.
	Type() wingetrel.ManifestType

	// Fields returns every top-level key of the document with its current
	// value: typed fields first, then Extra in source order.
	Fields() *Fields

	header() *Header
}

// HeaderOf returns the common header of d for reading and updating.
func HeaderOf(d Document) *Header {
	return d.header()
}

// ExtraOf returns the untyped top-level fields of d.
func ExtraOf(d Document) *Fields {
	switch m := d.(type) {
	case *InstallerManifest:
		return &m.Extra
	case *DefaultLocaleManifest:
		return &m.Extra
	case *LocaleManifest:
		return &m.Extra
	case *VersionManifest:
		return &m.Extra
	}
	return nil
}

// InstallerManifest is the installer document of a package version.
type InstallerManifest struct {
	Header
	ReleaseDate Value

	// InstallerType is the document-level default for entries without one.
	InstallerType Value

	// PackageFamilyName is the document-level value shared by all entries.
	PackageFamilyName Value

	Installers []*Installer
	Extra      Fields
}

func (m *InstallerManifest) Type() wingetrel.ManifestType { return wingetrel.ManifestTypeInstaller }

func (m *InstallerManifest) Fields() *Fields {
	f := m.Header.fields()
	f.setValue(KeyReleaseDate, m.ReleaseDate)
	f.setValue(KeyInstallerType, m.InstallerType)
	f.setValue(KeyPackageFamilyName, m.PackageFamilyName)

	installers := make([]any, len(m.Installers))
	for i, in := range m.Installers {
		installers[i] = in.MapSlice()
	}
	f.Set(KeyInstallers, installers)

	appendExtra(f, &m.Extra)
	return f
}

// LocaleFields are the typed keys shared by defaultLocale and locale documents.
type LocaleFields struct {
	PackageLocale   Value
	ReleaseNotes    Value
	ReleaseNotesUrl Value
}

func (l *LocaleFields) apply(f *Fields) {
	f.setValue(KeyPackageLocale, l.PackageLocale)
	f.setValue(KeyReleaseNotes, l.ReleaseNotes)
	f.setValue(KeyReleaseNotesUrl, l.ReleaseNotesUrl)
}

// DefaultLocaleManifest is the default locale document of a package version.
type DefaultLocaleManifest struct {
	Header
	LocaleFields
	Extra Fields
}

func (m *DefaultLocaleManifest) Type() wingetrel.ManifestType {
	return wingetrel.ManifestTypeDefaultLocale
}

func (m *DefaultLocaleManifest) Fields() *Fields {
	f := m.Header.fields()
	m.LocaleFields.apply(f)
	appendExtra(f, &m.Extra)
	return f
}

// LocaleManifest is an additional locale document.
type LocaleManifest struct {
	Header
	LocaleFields
	Extra Fields
}

func (m *LocaleManifest) Type() wingetrel.ManifestType { return wingetrel.ManifestTypeLocale }

func (m *LocaleManifest) Fields() *Fields {
	f := m.Header.fields()
	m.LocaleFields.apply(f)
	appendExtra(f, &m.Extra)
	return f
}

// VersionManifest is the version document of a package version.
type VersionManifest struct {
	Header
	DefaultLocale Value
	Extra         Fields
}

func (m *VersionManifest) Type() wingetrel.ManifestType { return wingetrel.ManifestTypeVersion }

func (m *VersionManifest) Fields() *Fields {
	f := m.Header.fields()
	f.setValue(KeyDefaultLocale, m.DefaultLocale)
	appendExtra(f, &m.Extra)
	return f
}

func appendExtra(dst, extra *Fields) {
	for _, k := range extra.keys {
		dst.Set(k, extra.values[k])
	}
}

// Installer is one entry of the Installers list.
type Installer struct {
	InstallerUrl      Value
	InstallerType     Value
	InstallerSha256   Value
	ProductCode       Value
	SignatureSha256   Value
	PackageFamilyName Value

	// Extra holds every other key of the entry.
	Extra Fields

	// order is the key order of the entry as read.
	order []string
}

// appendedKeys is the order in which typed keys missing from the source
// entry are added.
var appendedKeys = []string{
	KeyInstallerUrl,
	KeyInstallerType,
	KeyInstallerSha256,
	KeyProductCode,
	KeySignatureSha256,
	KeyPackageFamilyName,
}

// EffectiveType returns the entry's InstallerType, or docDefault when the
// entry has none.
func (in *Installer) EffectiveType(docDefault Value) string {
	if in.InstallerType.IsSet() {
		return in.InstallerType.Str
	}
	return docDefault.Str
}

func (in *Installer) typed(key string) (*Value, bool) {
	switch key {
	case KeyInstallerUrl:
		return &in.InstallerUrl, true
	case KeyInstallerType:
		return &in.InstallerType, true
	case KeyInstallerSha256:
		return &in.InstallerSha256, true
	case KeyProductCode:
		return &in.ProductCode, true
	case KeySignatureSha256:
		return &in.SignatureSha256, true
	case KeyPackageFamilyName:
		return &in.PackageFamilyName, true
	}
	return nil, false
}

// MapSlice returns the entry as an ordered YAML mapping: keys in source
// order, then typed keys that were added.
func (in *Installer) MapSlice() yaml.MapSlice {
	out := make(yaml.MapSlice, 0, len(in.order)+len(appendedKeys))
	seen := make(map[string]bool, len(in.order))

	for _, key := range in.order {
		seen[key] = true
		if v, ok := in.typed(key); ok {
			if v.Set {
				out = append(out, yaml.MapItem{Key: key, Value: v.Str})
			}
			continue
		}
		if value, ok := in.Extra.Get(key); ok {
			out = append(out, yaml.MapItem{Key: key, Value: value})
		}
	}

	for _, key := range appendedKeys {
		if seen[key] {
			continue
		}
		if v, _ := in.typed(key); v.Set {
			out = append(out, yaml.MapItem{Key: key, Value: v.Str})
		}
	}

	// Extra keys added after parsing.
	for _, key := range in.Extra.keys {
		if !seen[key] {
			out = append(out, yaml.MapItem{Key: key, Value: in.Extra.values[key]})
		}
	}

	return out
}
