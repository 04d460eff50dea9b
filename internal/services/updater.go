package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vvka-141/wingetrel/internal/files/filesystem"
	"github.com/vvka-141/wingetrel/internal/manifest"
	"github.com/vvka-141/wingetrel/internal/reconcile"
	"github.com/vvka-141/wingetrel/internal/schema"
	"github.com/vvka-141/wingetrel/pkg/wingetrel"
)

// SchemaLoader loads the schema set of one manifest version.
type SchemaLoader interface {
	Load(ctx context.Context, manifestVersion string) (*schema.Set, error)
}

// InstallerReconciler refreshes the installers of an installer manifest.
type InstallerReconciler interface {
	Reconcile(ctx context.Context, doc *manifest.InstallerManifest, newURLs []string) (*reconcile.Result, error)
}

// FileResult is the outcome for one manifest file.
type FileResult struct {
	Name    string
	Type    wingetrel.ManifestType
	Content []byte
	Written bool
}

// UpdateResult summarizes one update run.
type UpdateResult struct {
	SourceDir  string
	TargetDir  string
	Files      []FileResult
	Installers []reconcile.Change
	DryRun     bool
}

// UpdateService rewrites the manifests of a package version for a new release.
// Thread-Safety: NOT safe for concurrent Update() calls on the same instance.
type UpdateService struct {
	fs          filesystem.FileSystemProvider
	schemas     SchemaLoader
	reconciler  InstallerReconciler
	approver    wingetrel.Approver
	logger      wingetrel.Logger
	toolVersion string
}

// NewUpdateService creates an UpdateService with all dependencies injected.
// Panics on nil dependencies; runtime failures are returned by Update.
func NewUpdateService(
	fs filesystem.FileSystemProvider,
	schemas SchemaLoader,
	reconciler InstallerReconciler,
	approver wingetrel.Approver,
	logger wingetrel.Logger,
	toolVersion string,
) *UpdateService {
	if fs == nil {
		panic("fs cannot be nil")
	}
	if schemas == nil {
		panic("schemas cannot be nil")
	}
	if reconciler == nil {
		panic("reconciler cannot be nil")
	}
	if approver == nil {
		panic("approver cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &UpdateService{
		fs:          fs,
		schemas:     schemas,
		reconciler:  reconciler,
		approver:    approver,
		logger:      logger,
		toolVersion: toolVersion,
	}
}

// loadedDocument is a parsed manifest and the file it came from.
type loadedDocument struct {
	name string
	doc  manifest.Document
}

// Update runs the whole rewrite. Either every manifest is written or none is.
func (s *UpdateService) Update(ctx context.Context, cfg wingetrel.UpdateConfig) (*UpdateResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	set, err := s.schemas.Load(ctx, cfg.ManifestVersion)
	if err != nil {
		return nil, err
	}

	docs, err := s.loadDocuments(cfg.SourceDir)
	if err != nil {
		return nil, err
	}

	result := &UpdateResult{
		SourceDir: cfg.SourceDir,
		TargetDir: cfg.Target(),
		DryRun:    cfg.DryRun,
	}

	for _, ld := range docs {
		changes, err := s.mutate(ctx, ld.doc, cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ld.name, err)
		}
		result.Installers = append(result.Installers, changes...)
	}

	var validator *schema.Validator
	if cfg.ValidateSchema {
		if validator, err = schema.NewValidator(set); err != nil {
			return nil, err
		}
	}

	for _, ld := range docs {
		order, err := set.Order.Fields(ld.doc.Type())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ld.name, err)
		}

		content, err := manifest.Render(ld.doc, order, s.toolVersion)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ld.name, err)
		}

		if validator != nil {
			if err := validator.Validate(ld.doc.Type(), manifest.JSONValue(ld.doc)); err != nil {
				return nil, fmt.Errorf("%s: %w", ld.name, err)
			}
		}

		result.Files = append(result.Files, FileResult{Name: ld.name, Type: ld.doc.Type(), Content: content})
	}

	if cfg.DryRun {
		s.logger.Verbose("Dry run: %d manifests rendered, nothing written", len(result.Files))
		return result, nil
	}

	if err := s.write(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// loadDocuments parses every manifest in dir. Documents with an unknown
// ManifestType are reported together after the scan.
func (s *UpdateService) loadDocuments(dir string) ([]loadedDocument, error) {
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read manifest directory %s: %w", wingetrel.ErrInvalidConfig, dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && isManifestFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var (
		docs         []loadedDocument
		unknown      []string
		hasInstaller bool
	)
	for _, name := range names {
		data, err := s.fs.ReadFile(joinPath(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		doc, err := manifest.Parse(name, data)
		if errors.Is(err, wingetrel.ErrUnknownManifestType) {
			s.logger.Error("Skipping %s: %v", name, err)
			unknown = append(unknown, name)
			continue
		}
		if err != nil {
			return nil, err
		}

		s.logger.Verbose("Loaded %s (%s)", name, doc.Type())
		hasInstaller = hasInstaller || doc.Type() == wingetrel.ManifestTypeInstaller
		docs = append(docs, loadedDocument{name: name, doc: doc})
	}

	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", wingetrel.ErrUnknownManifestType, strings.Join(unknown, ", "))
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no manifests found in %s", wingetrel.ErrInvalidConfig, dir)
	}
	if !hasInstaller {
		return nil, fmt.Errorf("%w: no installer manifest found in %s", wingetrel.ErrInvalidConfig, dir)
	}

	return docs, nil
}

// mutate applies the release to one document.
func (s *UpdateService) mutate(ctx context.Context, doc manifest.Document, cfg wingetrel.UpdateConfig) ([]reconcile.Change, error) {
	h := manifest.HeaderOf(doc)
	h.PackageVersion = cfg.PackageVersion
	h.ManifestVersion = cfg.ManifestVersion

	switch m := doc.(type) {
	case *manifest.InstallerManifest:
		if cfg.ReleaseDate != "" {
			m.ReleaseDate = manifest.Some(cfg.ReleaseDate)
		}
		result, err := s.reconciler.Reconcile(ctx, m, cfg.InstallerURLs)
		if err != nil {
			return nil, err
		}
		return result.Changes, nil

	case *manifest.DefaultLocaleManifest:
		applyReleaseNotes(&m.LocaleFields, cfg.ReleaseNotesURL)
	case *manifest.LocaleManifest:
		applyReleaseNotes(&m.LocaleFields, cfg.ReleaseNotesURL)
	}

	return nil, nil
}

// applyReleaseNotes points the locale at the new release notes; notes text
// written for the previous release no longer applies.
func applyReleaseNotes(l *manifest.LocaleFields, url string) {
	if url == "" {
		return
	}
	l.ReleaseNotesUrl = manifest.Some(url)
	l.ReleaseNotes = manifest.None
}

func (s *UpdateService) write(ctx context.Context, result *UpdateResult) error {
	names := make([]string, len(result.Files))
	for i, f := range result.Files {
		names[i] = f.Name
	}

	approved, err := s.approver.RequestApproval(ctx, result.TargetDir, names)
	if err != nil {
		return fmt.Errorf("approval failed: %w", err)
	}
	if !approved {
		return wingetrel.ErrApprovalDenied
	}

	if err := s.fs.MkdirAll(result.TargetDir); err != nil {
		return fmt.Errorf("failed to create %s: %w", result.TargetDir, err)
	}

	for i := range result.Files {
		f := &result.Files[i]
		if err := s.fs.WriteFile(joinPath(result.TargetDir, f.Name), f.Content); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
		f.Written = true
		s.logger.Verbose("Wrote %s", f.Name)
	}

	s.logger.Info("Updated %d manifests in %s", len(result.Files), result.TargetDir)
	return nil
}

func isManifestFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// joinPath joins with the separator style already used by dir, so that
// in-memory trees keep forward slashes on every platform.
func joinPath(dir, name string) string {
	if strings.Contains(dir, "\\") {
		return filepath.Join(dir, name)
	}
	return path.Join(dir, name)
}
