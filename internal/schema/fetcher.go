package schema

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vvka-141/wingetrel/pkg/wingetrel"
)

// maxSchemaSize bounds a single schema download.
const maxSchemaSize = 4 << 20

// URL returns the location of the schema for a manifest type and version.
func URL(baseURL string, manifestType wingetrel.ManifestType, manifestVersion string) string {
	return fmt.Sprintf("%s/v%s/manifest.%s.%s.json",
		strings.TrimSuffix(baseURL, "/"), manifestVersion, manifestType, manifestVersion)
}

// HTTPFetcher fetches schemas over HTTP from a base URL.
type HTTPFetcher struct {
	client  *http.Client
	baseURL string
}

// NewHTTPFetcher creates a fetcher for baseURL. A nil client uses http.DefaultClient.
func NewHTTPFetcher(client *http.Client, baseURL string) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{client: client, baseURL: baseURL}
}

// FetchSchema downloads one schema document.
func (f *HTTPFetcher) FetchSchema(ctx context.Context, manifestType wingetrel.ManifestType, manifestVersion string) ([]byte, error) {
	url := URL(f.baseURL, manifestType, manifestVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", wingetrel.ErrSchemaUnavailable, url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", wingetrel.ErrSchemaUnavailable, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: HTTP %d", wingetrel.ErrSchemaUnavailable, url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSchemaSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", wingetrel.ErrSchemaUnavailable, url, err)
	}
	return data, nil
}

var _ wingetrel.SchemaFetcher = (*HTTPFetcher)(nil)
