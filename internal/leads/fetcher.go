// Package leads fetches contacts from the external lead source.
package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/starford/leadsync/internal/apperr"
	"github.com/starford/leadsync/internal/models"
)

// DefaultURL is the demo contacts source.
const DefaultURL = "https://jsonplaceholder.typicode.com/users"

const maxBodyBytes = 10 << 20

// Fetcher reads leads from a JSON contacts endpoint.
type Fetcher struct {
	url    string
	client *http.Client
}

// NewFetcher creates a Fetcher for url. A nil client gets a 10s timeout.
func NewFetcher(url string, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Fetcher{url: url, client: client}
}

// FetchLeads issues one GET and maps every record into a Lead.
// Every failure wraps apperr.ErrFetch, including a record with a malformed
// email: bad upstream data is a fetch failure, not a client input error.
func (f *Fetcher) FetchLeads(ctx context.Context) ([]models.Lead, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", apperr.ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: unexpected status %s", apperr.ErrFetch, resp.Status)
	}

	var records []map[string]any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", apperr.ErrFetch, err)
	}

	leads := make([]models.Lead, 0, len(records))
	for i, rec := range records {
		lead := models.Lead{
			Name:  field(rec, "name"),
			Email: field(rec, "email"),
			Phone: field(rec, "phone"),
		}
		if err := lead.Validate(); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", apperr.ErrFetch, i, err)
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

// field reads a loosely typed value, defaulting to "".
func field(rec map[string]any, key string) string {
	switch v := rec[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
