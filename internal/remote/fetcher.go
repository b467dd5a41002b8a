package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/cbout22/randl/internal/logging"
	"github.com/cbout22/randl/internal/repository"
)

// maxErrorBody caps how much of a failed response is quoted in an error.
const maxErrorBody = 512

// Fetcher retrieves repository bodies over HTTP.
type Fetcher struct {
	client *http.Client
}

// New creates a Fetcher with the given HTTP client.
func New(client *http.Client) *Fetcher {
	return &Fetcher{client: client}
}

// FetchRaw performs a GET and returns the body of a successful response.
func (f *Fetcher) FetchRaw(ctx context.Context, url string) ([]byte, error) {
	log := logging.GetLogger("remote")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	log.Debug().Str("url", url).Int("status", resp.StatusCode).Msg("Fetched repository")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if len(body) == 0 {
			return nil, fmt.Errorf("fetching %s: HTTP %d", url, resp.StatusCode)
		}
		return nil, fmt.Errorf("fetching %s: HTTP %d — %s", url, resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", url, err)
	}

	return data, nil
}

// FetchLines downloads a nested repository and returns its comment-free lines,
// split the same way as local repository files.
func (f *Fetcher) FetchLines(ctx context.Context, url string) ([]string, error) {
	data, err := f.FetchRaw(ctx, url)
	if err != nil {
		return nil, err
	}
	return repository.ParseLines(string(data)), nil
}
