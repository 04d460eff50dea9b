package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vvka-141/wingetrel/internal/schema"
	"github.com/vvka-141/wingetrel/pkg/wingetrel"
)

// mockApprover records the approval request and returns a fixed decision.
type mockApprover struct {
	approve   bool
	err       error
	called    bool
	targetDir string
	files     []string
}

func (m *mockApprover) RequestApproval(_ context.Context, targetDir string, files []string) (bool, error) {
	m.called = true
	m.targetDir = targetDir
	m.files = files
	return m.approve, m.err
}

// mockSchemaLoader serves a fixed schema set.
type mockSchemaLoader struct {
	set *schema.Set
	err error
}

func (m *mockSchemaLoader) Load(_ context.Context, manifestVersion string) (*schema.Set, error) {
	if m.err != nil {
		return nil, m.err
	}
	set := *m.set
	set.Version = manifestVersion
	return &set, nil
}

// stubExtractor returns deterministic metadata for every URL.
type stubExtractor struct {
	mu    sync.Mutex
	calls []string
	fail  error
}

func (s *stubExtractor) Extract(_ context.Context, url string, req wingetrel.ExtractRequest) (*wingetrel.ArtifactMetadata, error) {
	s.mu.Lock()
	s.calls = append(s.calls, url)
	s.mu.Unlock()

	if s.fail != nil {
		return nil, s.fail
	}
	md := &wingetrel.ArtifactMetadata{URL: url, Sha256: fmt.Sprintf("SHA-%d", len(url))}
	if req.ProductCode {
		md.ProductCode = "{NEW-PRODUCT-CODE}"
	}
	return md, nil
}

var errBoom = errors.New("boom")
