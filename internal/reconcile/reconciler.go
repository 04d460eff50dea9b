package reconcile

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vvka-141/wingetrel/internal/manifest"
	"github.com/vvka-141/wingetrel/pkg/wingetrel"
)

// Change describes one rewritten installer entry.
type Change struct {
	OldURL    string
	NewURL    string
	Sha256    string
	Duplicate bool
}

// Result lists the changes of one reconciliation in output order.
type Result struct {
	Changes     []Change
	Extractions int
}

// Reconciler refreshes the installers of an installer manifest.
type Reconciler struct {
	extractor   wingetrel.Extractor
	logger      wingetrel.Logger
	concurrency int
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithConcurrency bounds the number of concurrent extractions.
// Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(r *Reconciler) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// NewReconciler creates a reconciler.
// Panics if extractor or logger is nil.
func NewReconciler(extractor wingetrel.Extractor, logger wingetrel.Logger, opts ...Option) *Reconciler {
	if extractor == nil {
		panic("extractor cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	r := &Reconciler{
		extractor:   extractor,
		logger:      logger,
		concurrency: wingetrel.DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile pairs the installers of doc with newURLs and refreshes their
// derived fields. doc is modified only when every extraction succeeded; its
// Installers end up sorted by old URL.
func (r *Reconciler) Reconcile(ctx context.Context, doc *manifest.InstallerManifest, newURLs []string) (*Result, error) {
	plan, err := NewPlan(doc, newURLs)
	if err != nil {
		return nil, err
	}
	r.logger.Verbose("Planned %d installer entries into %d slots", len(plan.Entries), len(plan.Slots))

	metadata, err := r.extract(ctx, plan)
	if err != nil {
		return nil, err
	}

	result := apply(plan, metadata)
	result.Extractions = len(plan.Slots)
	doc.Installers = plan.Entries
	return result, nil
}

// extract runs one extraction per slot. Results are indexed by slot.
func (r *Reconciler) extract(ctx context.Context, plan *Plan) ([]*wingetrel.ArtifactMetadata, error) {
	results := make([]*wingetrel.ArtifactMetadata, len(plan.Slots))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, slot := range plan.Slots {
		g.Go(func() error {
			r.logger.Verbose("Extracting %s (%s)", slot.NewURL, slot.Request.InstallerType)
			md, err := r.extractor.Extract(gctx, slot.NewURL, slot.Request)
			if err != nil {
				return err
			}
			if md == nil {
				return fmt.Errorf("extractor returned no metadata for %s", slot.NewURL)
			}
			results[i] = md
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func apply(plan *Plan, metadata []*wingetrel.ArtifactMetadata) *Result {
	result := &Result{Changes: make([]Change, 0, len(plan.Entries))}

	for i, entry := range plan.Entries {
		slot := plan.Slots[plan.SlotOf[i]]

		if plan.IsLeader(i) {
			applyLeader(entry, slot.Request, metadata[plan.SlotOf[i]])
		} else {
			copyFromPrevious(entry, plan.Entries[i-1])
		}

		result.Changes = append(result.Changes, Change{
			OldURL:    slot.OldURL,
			NewURL:    entry.InstallerUrl.Str,
			Sha256:    entry.InstallerSha256.Str,
			Duplicate: !plan.IsLeader(i),
		})
	}

	return result
}

func applyLeader(entry *manifest.Installer, req wingetrel.ExtractRequest, md *wingetrel.ArtifactMetadata) {
	t := req.InstallerType

	entry.InstallerUrl = manifest.Some(md.URL)
	entry.InstallerSha256 = manifest.Some(md.Sha256)

	// An existing code is kept when the artifact holds no MSI database.
	if req.ProductCode && md.ProductCode != "" {
		entry.ProductCode = manifest.Some(md.ProductCode)
	}

	if wingetrel.IsMSIX(t) {
		entry.SignatureSha256 = manifest.Some(md.SignatureSha256)
		if req.PackageFamilyName && md.PackageFamilyName != "" {
			entry.PackageFamilyName = manifest.Some(md.PackageFamilyName)
		}
	} else {
		entry.SignatureSha256 = manifest.None
	}
}

func copyFromPrevious(entry, prev *manifest.Installer) {
	entry.InstallerUrl = prev.InstallerUrl
	entry.InstallerSha256 = prev.InstallerSha256
	entry.ProductCode = prev.ProductCode
	entry.SignatureSha256 = prev.SignatureSha256
	if prev.PackageFamilyName.IsSet() {
		entry.PackageFamilyName = prev.PackageFamilyName
	}
}
