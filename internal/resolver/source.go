package resolver

import (
	"context"

	"github.com/cbout22/randl/internal/download"
)

// Fetcher retrieves the comment-free lines of a nested repository.
type Fetcher interface {
	FetchLines(ctx context.Context, url string) ([]string, error)
}

// Downloader materializes a direct target. See download.Downloader.Download
// for the meaning of the result.
type Downloader interface {
	Download(ctx context.Context, url string) (download.Result, error)
}

// Sampler returns a uniformly random index in [0, n).
type Sampler func(n int) int
