package reconcile

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vvka-141/wingetrel/internal/manifest"
	"github.com/vvka-141/wingetrel/pkg/wingetrel"
)

// Slot is one distinct old installer URL paired with its new URL.
type Slot struct {
	OldURL  string
	NewURL  string
	Request wingetrel.ExtractRequest
}

// Plan is the outcome of matching entries to new URLs.
type Plan struct {
	// Entries are the installer entries in output (sorted) order.
	Entries []*manifest.Installer

	// SlotOf maps each index of Entries to its slot.
	SlotOf []int

	// Slots are ordered by old URL.
	Slots []Slot
}

// IsLeader reports whether Entries[i] opens its slot.
func (p *Plan) IsLeader(i int) bool {
	return i == 0 || p.SlotOf[i] != p.SlotOf[i-1]
}

// NewPlan matches the entries of doc to newURLs. It does not modify doc.
// newURLs must be distinct and as many as the distinct old URLs.
func NewPlan(doc *manifest.InstallerManifest, newURLs []string) (*Plan, error) {
	distinct := make(map[string]struct{}, len(doc.Installers))
	for _, in := range doc.Installers {
		distinct[in.InstallerUrl.Str] = struct{}{}
	}
	if len(distinct) != len(newURLs) {
		return nil, fmt.Errorf("%w: manifest has %d distinct installer URLs, release has %d",
			wingetrel.ErrCountMismatch, len(distinct), len(newURLs))
	}

	urls := slices.Clone(newURLs)
	slices.Sort(urls)
	for i := 1; i < len(urls); i++ {
		if urls[i] == urls[i-1] {
			return nil, fmt.Errorf("%w: release installer URL %s is given more than once",
				wingetrel.ErrCountMismatch, urls[i])
		}
	}

	entries := slices.Clone(doc.Installers)
	slices.SortStableFunc(entries, func(a, b *manifest.Installer) int {
		return strings.Compare(a.InstallerUrl.Str, b.InstallerUrl.Str)
	})

	plan := &Plan{
		Entries: entries,
		SlotOf:  make([]int, len(entries)),
		Slots:   make([]Slot, 0, len(urls)),
	}

	cursor := 0
	for i, entry := range entries {
		if i > 0 && entry.InstallerUrl.Str == entries[i-1].InstallerUrl.Str {
			plan.SlotOf[i] = len(plan.Slots) - 1
			continue
		}

		plan.Slots = append(plan.Slots, Slot{
			OldURL:  entry.InstallerUrl.Str,
			NewURL:  urls[cursor],
			Request: requestFor(doc, entry),
		})
		plan.SlotOf[i] = len(plan.Slots) - 1
		cursor++
	}

	return plan, nil
}

// requestFor decides which identity fields the slot leader needs.
func requestFor(doc *manifest.InstallerManifest, leader *manifest.Installer) wingetrel.ExtractRequest {
	t := leader.EffectiveType(doc.InstallerType)
	msix := wingetrel.IsMSIX(t)

	return wingetrel.ExtractRequest{
		InstallerType:     t,
		ProductCode:       wingetrel.IsMSIFamily(t) && leader.ProductCode.IsSet(),
		SignatureSha256:   msix,
		PackageFamilyName: msix && !doc.PackageFamilyName.IsSet() && !leader.PackageFamilyName.IsSet(),
	}
}
