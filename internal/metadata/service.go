package metadata

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/vvka-141/wingetrel/internal/checksum"
	"github.com/vvka-141/wingetrel/internal/msi"
	"github.com/vvka-141/wingetrel/internal/msix"
	"github.com/vvka-141/wingetrel/pkg/wingetrel"
)

// Service downloads installers and derives their metadata.
// Safe for concurrent Extract calls.
type Service struct {
	downloader wingetrel.Downloader
	hasher     checksum.Calculator
	logger     wingetrel.Logger
	runDir     string
}

// NewService creates an extractor with its own temporary run directory.
// Panics if any dependency is nil.
func NewService(downloader wingetrel.Downloader, hasher checksum.Calculator, logger wingetrel.Logger) (*Service, error) {
	if downloader == nil {
		panic("downloader cannot be nil")
	}
	if hasher == nil {
		panic("hasher cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	dir, err := os.MkdirTemp("", "wingetrel-run-")
	if err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	return &Service{
		downloader: downloader,
		hasher:     hasher,
		logger:     logger,
		runDir:     dir,
	}, nil
}

// RunDir returns the directory transient downloads are written to.
func (s *Service) RunDir() string {
	return s.runDir
}

// Close removes the run directory and anything left in it.
func (s *Service) Close() error {
	return os.RemoveAll(s.runDir)
}

// Extract downloads url and derives the fields requested by req.
func (s *Service) Extract(ctx context.Context, url string, req wingetrel.ExtractRequest) (*wingetrel.ArtifactMetadata, error) {
	path, err := s.downloader.Download(ctx, url, s.runDir)
	if err != nil {
		return nil, &ArtifactError{URL: url, Op: OpDownload, Err: err}
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Verbose("Failed to remove %s: %v", path, err)
		}
	}()

	return s.ExtractFile(url, path, req)
}

// ExtractFile derives the fields requested by req from an already local file.
// url is only recorded in the result and in errors.
func (s *Service) ExtractFile(url, path string, req wingetrel.ExtractRequest) (*wingetrel.ArtifactMetadata, error) {
	sum, err := s.hasher.SumFile(path)
	if err != nil {
		return nil, &ArtifactError{URL: url, Op: OpHash, Err: err}
	}

	result := &wingetrel.ArtifactMetadata{URL: url, Sha256: sum}
	s.logger.Verbose("%s: InstallerSha256 %s", url, sum)

	if req.ProductCode && wingetrel.IsMSIFamily(req.InstallerType) {
		code, err := msi.ProductCode(path)
		switch {
		case err == nil:
			result.ProductCode = code
			s.logger.Verbose("%s: ProductCode %s", url, code)
		case !wingetrel.IsMSIContainer(req.InstallerType) && errors.Is(err, wingetrel.ErrUnsupportedFormat):
			// Burn bundles and packages are not MSI databases.
			s.logger.Verbose("%s: no MSI database, ProductCode not derived", url)
		default:
			return nil, s.fail(url, OpProductCode, req.InstallerType, err)
		}
	}

	if wingetrel.IsMSIX(req.InstallerType) && (req.SignatureSha256 || req.PackageFamilyName) {
		if err := s.extractPackage(url, path, req, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (s *Service) extractPackage(url, path string, req wingetrel.ExtractRequest, result *wingetrel.ArtifactMetadata) error {
	pkg, err := msix.Open(path)
	if err != nil {
		op := OpSignature
		if !req.SignatureSha256 {
			op = OpPackageFamilyName
		}
		return s.fail(url, op, req.InstallerType, err)
	}
	defer pkg.Close()

	if req.SignatureSha256 {
		sig, err := pkg.SignatureSha256()
		if err != nil {
			return s.fail(url, OpSignature, req.InstallerType, err)
		}
		result.SignatureSha256 = sig
		s.logger.Verbose("%s: SignatureSha256 %s", url, sig)
	}

	if req.PackageFamilyName {
		id, err := pkg.Identity()
		if err != nil {
			return s.fail(url, OpPackageFamilyName, req.InstallerType, err)
		}
		result.PackageFamilyName = id.FamilyName()
		s.logger.Verbose("%s: PackageFamilyName %s", url, result.PackageFamilyName)
	}

	return nil
}

func (s *Service) fail(url, op, installerType string, err error) error {
	ae := &ArtifactError{URL: url, Op: op, Err: err}
	if errors.Is(err, wingetrel.ErrUnsupportedFormat) {
		ae.Hint = hintFor(op, installerType)
	}
	return ae
}

var _ wingetrel.Extractor = (*Service)(nil)
