package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/wingetrel/internal/files/filesystem"
	"github.com/vvka-141/wingetrel/internal/logging"
	"github.com/vvka-141/wingetrel/internal/reconcile"
	"github.com/vvka-141/wingetrel/internal/schema"
	"github.com/vvka-141/wingetrel/pkg/wingetrel"
)

const sourceDir = "manifests/c/Contoso/App/1.0.0"

var fieldOrder = schema.Order{
	wingetrel.ManifestTypeInstaller: {
		"PackageIdentifier", "PackageVersion", "ReleaseDate", "InstallerType",
		"Installers", "ManifestType", "ManifestVersion",
	},
	wingetrel.ManifestTypeDefaultLocale: {
		"PackageIdentifier", "PackageVersion", "PackageLocale", "Publisher",
		"ReleaseNotes", "ReleaseNotesUrl", "ManifestType", "ManifestVersion",
	},
	wingetrel.ManifestTypeLocale: {
		"PackageIdentifier", "PackageVersion", "PackageLocale",
		"ReleaseNotes", "ReleaseNotesUrl", "ManifestType", "ManifestVersion",
	},
	wingetrel.ManifestTypeVersion: {
		"PackageIdentifier", "PackageVersion", "DefaultLocale", "ManifestType", "ManifestVersion",
	},
}

// schemaJSON builds a permissive draft-07 schema requiring the given keys.
func schemaJSON(required ...string) []byte {
	quoted := make([]string, len(required))
	for i, r := range required {
		quoted[i] = fmt.Sprintf("%q", r)
	}
	return []byte(fmt.Sprintf(`{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": [%s]
}`, strings.Join(quoted, ", ")))
}

func testSchemaSet(required ...string) *schema.Set {
	raw := make(map[wingetrel.ManifestType][]byte, len(wingetrel.ManifestTypes))
	for _, t := range wingetrel.ManifestTypes {
		raw[t] = schemaJSON(append([]string{"PackageIdentifier", "ManifestType"}, required...)...)
	}
	return &schema.Set{Order: fieldOrder, Raw: raw}
}

const installerYAML = `PackageIdentifier: Contoso.App
PackageVersion: 1.0.0
InstallerType: msi
Installers:
- Architecture: x64
  InstallerUrl: https://example.com/v1/app-x64.msi
  InstallerSha256: OLD64
  ProductCode: '{OLD}'
- Architecture: arm64
  InstallerUrl: https://example.com/v1/app-arm64.msi
  InstallerSha256: OLDARM
  ProductCode: '{OLD}'
ManifestType: installer
ManifestVersion: 1.4.0
`

const defaultLocaleYAML = `PackageIdentifier: Contoso.App
PackageVersion: 1.0.0
PackageLocale: en-US
Publisher: Contoso
ReleaseNotes: Fixed bugs.
ReleaseNotesUrl: https://example.com/v1/notes
ManifestType: defaultLocale
ManifestVersion: 1.4.0
`

const localeYAML = `PackageIdentifier: Contoso.App
PackageVersion: 1.0.0
PackageLocale: de-DE
ReleaseNotes: Fehler behoben.
ManifestType: locale
ManifestVersion: 1.4.0
`

const versionYAML = `PackageIdentifier: Contoso.App
PackageVersion: 1.0.0
DefaultLocale: en-US
ManifestType: version
ManifestVersion: 1.4.0
`

func newTestFS() *filesystem.MemoryFileSystem {
	mfs := filesystem.NewMemoryFileSystem("/repo")
	mfs.AddFile(sourceDir+"/Contoso.App.installer.yaml", installerYAML)
	mfs.AddFile(sourceDir+"/Contoso.App.locale.en-US.yaml", defaultLocaleYAML)
	mfs.AddFile(sourceDir+"/Contoso.App.locale.de-DE.yaml", localeYAML)
	mfs.AddFile(sourceDir+"/Contoso.App.yaml", versionYAML)
	mfs.AddFile(sourceDir+"/README.md", "not a manifest")
	return mfs
}

func validConfig() wingetrel.UpdateConfig {
	return wingetrel.UpdateConfig{
		SourceDir:      sourceDir,
		TargetDir:      "manifests/c/Contoso/App/2.0.0",
		PackageVersion: "2.0.0",
		InstallerURLs: []string{
			"https://example.com/v2/app-arm64.msi",
			"https://example.com/v2/app-x64.msi",
		},
		ReleaseNotesURL: "https://example.com/v2/notes",
		ReleaseDate:     "2026-10-19",
		ManifestVersion: "1.6.0",
	}
}

type fixture struct {
	fs        *filesystem.MemoryFileSystem
	loader    *mockSchemaLoader
	extractor *stubExtractor
	approver  *mockApprover
	service   *UpdateService
}

func newFixture() *fixture {
	f := &fixture{
		fs:        newTestFS(),
		loader:    &mockSchemaLoader{set: testSchemaSet()},
		extractor: &stubExtractor{},
		approver:  &mockApprover{approve: true},
	}
	logger := logging.NewNullLogger()
	f.service = NewUpdateService(f.fs, f.loader, reconcile.NewReconciler(f.extractor, logger), f.approver, logger, "1.2.3")
	return f
}

func (f *fixture) read(t *testing.T, name string) string {
	t.Helper()
	data, err := f.fs.ReadFile("manifests/c/Contoso/App/2.0.0/" + name)
	require.NoError(t, err)
	return string(data)
}

func TestNewUpdateService_PanicsOnNil(t *testing.T) {
	fs := filesystem.NewMemoryFileSystem("/")
	loader := &mockSchemaLoader{set: testSchemaSet()}
	logger := logging.NewNullLogger()
	rec := reconcile.NewReconciler(&stubExtractor{}, logger)
	approver := &mockApprover{}

	assert.PanicsWithValue(t, "fs cannot be nil", func() {
		NewUpdateService(nil, loader, rec, approver, logger, "")
	})
	assert.PanicsWithValue(t, "schemas cannot be nil", func() {
		NewUpdateService(fs, nil, rec, approver, logger, "")
	})
	assert.PanicsWithValue(t, "reconciler cannot be nil", func() {
		NewUpdateService(fs, loader, nil, approver, logger, "")
	})
	assert.PanicsWithValue(t, "approver cannot be nil", func() {
		NewUpdateService(fs, loader, rec, nil, logger, "")
	})
	assert.PanicsWithValue(t, "logger cannot be nil", func() {
		NewUpdateService(fs, loader, rec, approver, nil, "")
	})
}

func TestUpdate_RewritesAllManifests(t *testing.T) {
	f := newFixture()

	result, err := f.service.Update(context.Background(), validConfig())
	require.NoError(t, err)

	require.Len(t, result.Files, 4)
	for _, file := range result.Files {
		assert.True(t, file.Written, file.Name)
	}
	assert.Equal(t, 4, f.fs.Writes())
	assert.True(t, f.approver.called)
	assert.Equal(t, "manifests/c/Contoso/App/2.0.0", f.approver.targetDir)
	assert.Equal(t, []string{
		"Contoso.App.installer.yaml",
		"Contoso.App.locale.de-DE.yaml",
		"Contoso.App.locale.en-US.yaml",
		"Contoso.App.yaml",
	}, f.approver.files)

	installer := f.read(t, "Contoso.App.installer.yaml")
	assert.True(t, strings.HasPrefix(installer,
		"# Created using wingetrel 1.2.3\n"+
			"# yaml-language-server: $schema=https://aka.ms/winget-manifest.installer.1.6.0.schema.json\n\n"))
	assert.Contains(t, installer, "PackageVersion: 2.0.0\n")
	assert.Contains(t, installer, "ReleaseDate: \"2026-10-19\"\n")
	assert.Contains(t, installer, "ManifestVersion: 1.6.0\n")
	assert.Contains(t, installer, "InstallerUrl: https://example.com/v2/app-x64.msi")
	assert.Contains(t, installer, "InstallerUrl: https://example.com/v2/app-arm64.msi")
	assert.Contains(t, installer, "ProductCode: '{NEW-PRODUCT-CODE}'")
	assert.NotContains(t, installer, "/v1/")
	assert.NotContains(t, installer, "\r")

	require.Len(t, result.Installers, 2)
	// Entries pair up by sorted URL order, old with new.
	assert.Equal(t, "https://example.com/v1/app-arm64.msi", result.Installers[0].OldURL)
	assert.Equal(t, "https://example.com/v2/app-arm64.msi", result.Installers[0].NewURL)
}

func TestUpdate_LocaleReleaseNotes(t *testing.T) {
	f := newFixture()

	_, err := f.service.Update(context.Background(), validConfig())
	require.NoError(t, err)

	defaultLocale := f.read(t, "Contoso.App.locale.en-US.yaml")
	assert.Contains(t, defaultLocale, "ReleaseNotesUrl: https://example.com/v2/notes\n")
	assert.Contains(t, defaultLocale, "# ReleaseNotes:\n")
	assert.NotContains(t, defaultLocale, "Fixed bugs.")
	assert.Contains(t, defaultLocale, "Publisher: Contoso\n")

	locale := f.read(t, "Contoso.App.locale.de-DE.yaml")
	assert.Contains(t, locale, "ReleaseNotesUrl: https://example.com/v2/notes\n")
	assert.NotContains(t, locale, "Fehler behoben.")

	version := f.read(t, "Contoso.App.yaml")
	assert.Contains(t, version, "PackageVersion: 2.0.0\n")
	assert.Contains(t, version, "DefaultLocale: en-US\n")
}

func TestUpdate_KeepsReleaseNotesWithoutURL(t *testing.T) {
	f := newFixture()
	cfg := validConfig()
	cfg.ReleaseNotesURL = ""
	cfg.ReleaseDate = ""

	_, err := f.service.Update(context.Background(), cfg)
	require.NoError(t, err)

	locale := f.read(t, "Contoso.App.locale.de-DE.yaml")
	assert.Contains(t, locale, "ReleaseNotes: Fehler behoben.\n")
	assert.Contains(t, locale, "# ReleaseNotesUrl:\n")

	installer := f.read(t, "Contoso.App.installer.yaml")
	assert.Contains(t, installer, "# ReleaseDate:\n")
}

func TestUpdate_InPlace(t *testing.T) {
	f := newFixture()
	cfg := validConfig()
	cfg.TargetDir = ""

	result, err := f.service.Update(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, sourceDir, result.TargetDir)

	data, err := f.fs.ReadFile(sourceDir + "/Contoso.App.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "PackageVersion: 2.0.0\n")
}

func TestUpdate_DryRun(t *testing.T) {
	f := newFixture()
	cfg := validConfig()
	cfg.DryRun = true

	result, err := f.service.Update(context.Background(), cfg)
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	require.Len(t, result.Files, 4)
	assert.NotEmpty(t, result.Files[0].Content)
	assert.False(t, result.Files[0].Written)
	assert.False(t, f.approver.called)
	assert.Equal(t, 0, f.fs.Writes())
}

func TestUpdate_Validation(t *testing.T) {
	t.Run("passes", func(t *testing.T) {
		f := newFixture()
		cfg := validConfig()
		cfg.ValidateSchema = true

		_, err := f.service.Update(context.Background(), cfg)
		require.NoError(t, err)
	})

	t.Run("fails before any write", func(t *testing.T) {
		f := newFixture()
		f.loader.set = testSchemaSet("Moniker")
		cfg := validConfig()
		cfg.ValidateSchema = true

		_, err := f.service.Update(context.Background(), cfg)
		require.ErrorIs(t, err, wingetrel.ErrSchemaValidation)
		assert.Equal(t, 0, f.fs.Writes())
		assert.False(t, f.approver.called)
	})
}

func TestUpdate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(f *fixture, cfg *wingetrel.UpdateConfig)
		wantErr error
	}{
		{
			name:    "invalid config",
			setup:   func(_ *fixture, cfg *wingetrel.UpdateConfig) { cfg.PackageVersion = "" },
			wantErr: wingetrel.ErrInvalidConfig,
		},
		{
			name: "schema unavailable",
			setup: func(f *fixture, _ *wingetrel.UpdateConfig) {
				f.loader.err = fmt.Errorf("%w: 404", wingetrel.ErrSchemaUnavailable)
			},
			wantErr: wingetrel.ErrSchemaUnavailable,
		},
		{
			name:    "missing directory",
			setup:   func(_ *fixture, cfg *wingetrel.UpdateConfig) { cfg.SourceDir = "nowhere" },
			wantErr: wingetrel.ErrInvalidConfig,
		},
		{
			name: "unknown manifest type",
			setup: func(f *fixture, _ *wingetrel.UpdateConfig) {
				f.fs.AddFile(sourceDir+"/Contoso.App.singleton.yaml", "PackageIdentifier: Contoso.App\nManifestType: singleton\n")
			},
			wantErr: wingetrel.ErrUnknownManifestType,
		},
		{
			name: "no installer manifest",
			setup: func(f *fixture, cfg *wingetrel.UpdateConfig) {
				f.fs.AddFile("only-version/Contoso.App.yaml", versionYAML)
				cfg.SourceDir = "only-version"
			},
			wantErr: wingetrel.ErrInvalidConfig,
		},
		{
			name: "count mismatch",
			setup: func(_ *fixture, cfg *wingetrel.UpdateConfig) {
				cfg.InstallerURLs = cfg.InstallerURLs[:1]
			},
			wantErr: wingetrel.ErrCountMismatch,
		},
		{
			name: "download failure",
			setup: func(f *fixture, _ *wingetrel.UpdateConfig) {
				f.extractor.fail = fmt.Errorf("%w: 404", wingetrel.ErrDownload)
			},
			wantErr: wingetrel.ErrDownload,
		},
		{
			name:    "approval denied",
			setup:   func(f *fixture, _ *wingetrel.UpdateConfig) { f.approver.approve = false },
			wantErr: wingetrel.ErrApprovalDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			cfg := validConfig()
			tt.setup(f, &cfg)

			result, err := f.service.Update(context.Background(), cfg)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, result)
			assert.Equal(t, 0, f.fs.Writes(), "nothing is written on failure")
		})
	}
}

func TestUpdate_ApproverError(t *testing.T) {
	f := newFixture()
	f.approver.err = errBoom

	_, err := f.service.Update(context.Background(), validConfig())
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 0, f.fs.Writes())
}
