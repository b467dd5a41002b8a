package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/cbout22/randl/internal/config"
	"github.com/cbout22/randl/internal/logging"
	"github.com/cbout22/randl/internal/prompt"
)

// bufferSize is the chunk size of the transfer loop.
const bufferSize = 8192

// ConfirmQuestion is asked before any payload byte is transferred.
const ConfirmQuestion = "Download this reward?"

// Result tells a caller how a download attempt ended when it returned no error.
type Result int

const (
	Failed    Result = iota // Returned alongside a non-nil error
	Declined                // The user refused the confirmation
	Completed               // The file was written
)

func (r Result) String() string {
	switch r {
	case Declined:
		return "declined"
	case Completed:
		return "completed"
	default:
		return "failed"
	}
}

// Options configures a Downloader.
type Options struct {
	OutputDir        string
	DefaultFilename  string
	ProgressInterval int64
	Out              io.Writer
	Files            FileWriter
}

// Downloader probes, confirms and streams a single URL to disk.
type Downloader struct {
	client    *http.Client
	confirmer prompt.Confirmer
	opts      Options
}

// New creates a Downloader. Zero options fall back to the config defaults.
func New(client *http.Client, confirmer prompt.Confirmer, opts Options) *Downloader {
	if opts.OutputDir == "" {
		opts.OutputDir = config.DefaultOutputDir
	}
	if opts.DefaultFilename == "" {
		opts.DefaultFilename = config.DefaultFilename
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = config.DefaultProgressInterval
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Files == nil {
		opts.Files = &OSFileWriter{}
	}
	return &Downloader{client: client, confirmer: confirmer, opts: opts}
}

// Download fetches rawURL into the output directory after asking the user.
// A declined confirmation returns (Declined, nil). An unanswerable prompt
// returns an error wrapping prompt.ErrUnavailable. Every other failure,
// HTTP status, transport or filesystem, returns (Failed, err).
func (d *Downloader) Download(ctx context.Context, rawURL string) (Result, error) {
	log := logging.GetLogger("download")
	out := d.opts.Out

	name := FileName(rawURL, d.opts.DefaultFilename)
	size, err := d.probe(ctx, rawURL)
	if err != nil {
		return Failed, err
	}
	log.Debug().Str("url", rawURL).Str("file", name).Int64("size", size).Msg("Probed download")

	fmt.Fprintf(out, "  File: %s\n  Size: %s\n", name, FormatSize(size))

	answer, err := d.confirmer.Confirm(ConfirmQuestion)
	if err != nil {
		return Failed, fmt.Errorf("confirming download: %w", err)
	}
	if answer != prompt.Confirmed {
		return Declined, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Failed, fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return Failed, fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Failed, fmt.Errorf("downloading %s: HTTP %d", rawURL, resp.StatusCode)
	}
	if size < 0 {
		size = resp.ContentLength
	}

	if err := d.opts.Files.MkdirAll(d.opts.OutputDir); err != nil {
		return Failed, fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(d.opts.OutputDir, name)
	if err := d.save(path, resp.Body, size); err != nil {
		if rmErr := d.opts.Files.Remove(path); rmErr != nil {
			log.Warn().Err(rmErr).Str("path", path).Msg("Failed to remove partial download")
		}
		return Failed, err
	}

	fmt.Fprintf(out, "\rSaved to %s\n", path)
	log.Info().Str("url", rawURL).Str("path", path).Msg("Download completed")
	return Completed, nil
}

// probe issues a HEAD request and returns the advertised size, or -1.
func (d *Downloader) probe(ctx context.Context, rawURL string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return -1, fmt.Errorf("probing %s: %w", rawURL, err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return -1, fmt.Errorf("probing %s: %w", rawURL, err)
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return -1, nil
	}
	return resp.ContentLength, nil
}

func (d *Downloader) save(path string, body io.Reader, size int64) error {
	f, err := d.opts.Files.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	fmt.Fprintf(d.opts.Out, "Downloading %s...\n", filepath.Base(path))

	p := newProgress(d.opts.Out, size, d.opts.ProgressInterval)
	if _, err := io.CopyBuffer(io.MultiWriter(f, p), body, make([]byte, bufferSize)); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// FileName derives a local file name from the last non-empty path segment of
// rawURL, ignoring query and fragment. fallback is used when there is none.
func FileName(rawURL, fallback string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	} else {
		p, _, _ = strings.Cut(p, "?")
	}

	segments := strings.Split(p, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		switch segments[i] {
		case "":
			continue
		case ".", "..":
			return fallback
		default:
			return segments[i]
		}
	}
	return fallback
}
