package download

import (
	"fmt"

	"github.com/vvka-141/wingetrel/pkg/wingetrel"
)

// Error describes a failed download. It matches wingetrel.ErrDownload with
// errors.Is and also unwraps to the underlying cause, if any.
type Error struct {
	URL        string // URL that failed (the current hop when following redirects)
	StatusCode int    // HTTP status (0 if no response was received)
	Err        error  // Underlying transport or I/O error, if any
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("download %s: HTTP %d: %v", e.URL, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("download %s: unexpected HTTP status %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("download %s: %v", e.URL, e.Err)
	}
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{wingetrel.ErrDownload}
	}
	return []error{wingetrel.ErrDownload, e.Err}
}
