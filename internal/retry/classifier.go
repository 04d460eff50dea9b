package retry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/vvka-141/wingetrel/internal/download"
	"github.com/vvka-141/wingetrel/pkg/wingetrel"
)

// fatalKinds never succeed on a second attempt: the inputs or the artifacts
// themselves are wrong.
var fatalKinds = []error{
	wingetrel.ErrInvalidConfig,
	wingetrel.ErrApprovalDenied,
	wingetrel.ErrCountMismatch,
	wingetrel.ErrUnsupportedFormat,
	wingetrel.ErrUnknownManifestType,
	wingetrel.ErrSchemaValidation,
}

// ReleaseErrorClassifier implements ErrorClassifier for update runs.
// Network failures, throttling and server errors while downloading installers
// or fetching schemas are transient; everything else is fatal.
type ReleaseErrorClassifier struct{}

// NewReleaseErrorClassifier creates a new update-run error classifier.
func NewReleaseErrorClassifier() *ReleaseErrorClassifier {
	return &ReleaseErrorClassifier{}
}

// IsTransient determines if an error is temporary and retryable.
func (c *ReleaseErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	for _, kind := range fatalKinds {
		if errors.Is(err, kind) {
			return false
		}
	}

	// HTTP status of a failed download
	var dlErr *download.Error
	if errors.As(err, &dlErr) && dlErr.StatusCode != 0 {
		return isTransientStatus(dlErr.StatusCode)
	}

	// The resolver already knows whether the lookup may succeed later.
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Timeout() || dnsErr.Temporary()
	}

	if c.isNetworkError(err) {
		return true
	}

	return c.isTransientMessage(err)
}

// isTransientStatus reports whether an HTTP status may clear up on its own.
func isTransientStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return code >= 500 && code <= 599
}

// isNetworkError checks for network-level errors.
func (c *ReleaseErrorClassifier) isNetworkError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return true
		}
		if opErr.Err != nil {
			return errors.Is(opErr.Err, syscall.ECONNREFUSED) ||
				errors.Is(opErr.Err, syscall.ECONNRESET) ||
				errors.Is(opErr.Err, syscall.ENETUNREACH) ||
				errors.Is(opErr.Err, syscall.EHOSTUNREACH)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}

// isTransientMessage matches failures that reach us only as text, such as a
// schema host answering with a server error.
func (c *ReleaseErrorClassifier) isTransientMessage(err error) bool {
	errMsg := strings.ToLower(err.Error())

	transientPatterns := []string{
		"connection refused",
		"connection reset",
		"no such host",
		"network is unreachable",
		"i/o timeout",
		"tls handshake timeout",
		"broken pipe",
		"unexpected eof",
		"http 408",
		"http 429",
		"http 500",
		"http 502",
		"http 503",
		"http 504",
	}

	for _, pattern := range transientPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	return false
}

var _ wingetrel.ErrorClassifier = (*ReleaseErrorClassifier)(nil)
