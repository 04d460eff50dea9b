// Package msix reads signature and identity data from MSIX and APPX packages
// and their bundles. Packages are plain zip archives; only the signature
// member and the manifest are read.
package msix

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/vvka-141/wingetrel/internal/checksum"
	"github.com/vvka-141/wingetrel/internal/familyname"
	"github.com/vvka-141/wingetrel/pkg/wingetrel"
)

// Well-known archive members.
const (
	SignatureMember      = "AppxSignature.p7x"
	PackageManifest      = "AppxManifest.xml"
	BundleManifestMember = "AppxMetadata/AppxBundleManifest.xml"
)

// Identity is the <Identity> element of a package or bundle manifest.
type Identity struct {
	Name                  string `xml:"Name,attr"`
	Publisher             string `xml:"Publisher,attr"`
	Version               string `xml:"Version,attr"`
	ProcessorArchitecture string `xml:"ProcessorArchitecture,attr"`
}

// FamilyName returns the package family name for this identity.
func (id Identity) FamilyName() string {
	return familyname.Compute(id.Name, id.Publisher)
}

type manifestDocument struct {
	Identity *Identity `xml:"Identity"`
}

// Package is an opened MSIX, APPX, MSIXBUNDLE or APPXBUNDLE archive.
type Package struct {
	zr     *zip.ReadCloser
	path   string
	bundle bool
}

// Open opens the archive at path.
// Non-zip input is reported as wingetrel.ErrUnsupportedFormat.
func Open(path string) (*Package, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s is not an MSIX/APPX archive: %v", wingetrel.ErrUnsupportedFormat, path, err)
	}

	p := &Package{zr: zr, path: path}
	if f, err := zr.Open(BundleManifestMember); err == nil {
		f.Close()
		p.bundle = true
	}
	return p, nil
}

// Close releases the archive.
func (p *Package) Close() error {
	return p.zr.Close()
}

// IsBundle reports whether the archive is a bundle of packages.
func (p *Package) IsBundle() bool {
	return p.bundle
}

// SignatureSha256 returns the upper-case hex SHA-256 of the signature member.
func (p *Package) SignatureSha256() (string, error) {
	f, err := p.member(SignatureMember)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return checksum.New().Sum(f)
}

// Identity parses the identity from the package or bundle manifest.
func (p *Package) Identity() (Identity, error) {
	name := PackageManifest
	if p.bundle {
		name = BundleManifestMember
	}

	f, err := p.member(name)
	if err != nil {
		return Identity{}, err
	}
	defer f.Close()

	var doc manifestDocument
	if err := xml.NewDecoder(f).Decode(&doc); err != nil {
		return Identity{}, fmt.Errorf("%w: %s: parse %s: %v", wingetrel.ErrUnsupportedFormat, p.path, name, err)
	}
	if doc.Identity == nil {
		return Identity{}, fmt.Errorf("%w: %s: %s has no Identity element", wingetrel.ErrUnsupportedFormat, p.path, name)
	}
	if doc.Identity.Name == "" || doc.Identity.Publisher == "" {
		return Identity{}, fmt.Errorf("%w: %s: Identity in %s lacks Name or Publisher", wingetrel.ErrUnsupportedFormat, p.path, name)
	}

	return *doc.Identity, nil
}

func (p *Package) member(name string) (io.ReadCloser, error) {
	f, err := p.zr.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: missing %s", wingetrel.ErrUnsupportedFormat, p.path, name)
	}
	return f, nil
}

// SignatureSha256 opens the archive at path and hashes its signature member.
func SignatureSha256(path string) (string, error) {
	p, err := Open(path)
	if err != nil {
		return "", err
	}
	defer p.Close()

	return p.SignatureSha256()
}

// FamilyName opens the archive at path and derives its package family name.
func FamilyName(path string) (string, error) {
	p, err := Open(path)
	if err != nil {
		return "", err
	}
	defer p.Close()

	id, err := p.Identity()
	if err != nil {
		return "", err
	}
	return id.FamilyName(), nil
}
