package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/rs/zerolog"

	"github.com/cbout22/randl/internal/download"
	"github.com/cbout22/randl/internal/logging"
	"github.com/cbout22/randl/internal/prompt"
	"github.com/cbout22/randl/internal/repository"
)

// ErrEmptyRepository is returned when a repository has no candidate lines.
var ErrEmptyRepository = errors.New("repository has no lines")

// RetryQuestion is asked when the nesting limit is exceeded.
const RetryQuestion = "Retry?"

// Outcome is how a resolution attempt ended when it returned no error.
type Outcome int

const (
	Resolved  Outcome = iota // A download completed
	Abandoned                // The user gave up at the depth limit
	Restart                  // Start over from the top-level repository
)

func (o Outcome) String() string {
	switch o {
	case Resolved:
		return "resolved"
	case Abandoned:
		return "abandoned"
	case Restart:
		return "restart"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Resolver turns a repository into one downloaded file by random sampling,
// following nested repositories up to MaxDepth hops.
type Resolver struct {
	fetcher    Fetcher
	downloader Downloader
	confirmer  prompt.Confirmer
	maxDepth   int
	sample     Sampler
	out        io.Writer
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithSampler replaces the random index source.
func WithSampler(s Sampler) Option {
	return func(r *Resolver) { r.sample = s }
}

// WithOutput sets where user-facing messages are printed.
func WithOutput(w io.Writer) Option {
	return func(r *Resolver) { r.out = w }
}

// New creates a Resolver. maxDepth == 0 means nesting is unbounded.
func New(fetcher Fetcher, downloader Downloader, confirmer prompt.Confirmer, maxDepth int, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher:    fetcher,
		downloader: downloader,
		confirmer:  confirmer,
		maxDepth:   maxDepth,
		sample:     rand.IntN,
		out:        io.Discard,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Pull resolves the top-level repository lines until a download completes or
// the user abandons. A Restart starts again from lines at depth 1.
func (r *Resolver) Pull(ctx context.Context, lines []string) error {
	log := logging.GetLogger("resolver")
	for attempt := 1; ; attempt++ {
		outcome, err := r.Resolve(ctx, lines, 1)
		if err != nil {
			return err
		}
		log.Debug().Int("attempt", attempt).Stringer("outcome", outcome).Msg("Resolution finished")
		if outcome != Restart {
			return nil
		}
	}
}

// Resolve resolves one repository level. depth starts at 1 and grows by one
// per nested hop. A level deeper than maxDepth is still sampled; only a nested
// entry there trips the depth guard. Recoverable failures resample at the same
// depth without refetching. A failed nested fetch, an empty repository or an
// unanswerable prompt end the whole attempt with an error.
func (r *Resolver) Resolve(ctx context.Context, lines []string, depth int) (Outcome, error) {
	log := logging.GetLogger("resolver").With().Int("depth", depth).Logger()

	if len(lines) == 0 {
		return Abandoned, fmt.Errorf("depth %d: %w", depth, ErrEmptyRepository)
	}

	for {
		if err := ctx.Err(); err != nil {
			return Abandoned, err
		}

		line := lines[r.sample(len(lines))]
		entry := repository.Classify(line)
		log.Debug().Str("line", line).Stringer("kind", entry.Kind).Msg("Sampled entry")

		switch entry.Kind {
		case repository.Direct:
			res, err := r.downloader.Download(ctx, entry.URL)
			switch {
			case errors.Is(err, prompt.ErrUnavailable):
				return Abandoned, err
			case err != nil:
				fmt.Fprintf(r.out, "❌ Download failed: %s\n🎲 Retrying...\n", err)
				log.Warn().Err(err).Str("url", entry.URL).Msg("Download failed")
			case res == download.Completed:
				return Resolved, nil
			default:
				fmt.Fprintln(r.out, "🎲 Re-rolling...")
			}

		case repository.Nested:
			if r.maxDepth > 0 && depth > r.maxDepth {
				return r.depthExceeded(log)
			}
			fmt.Fprintf(r.out, "📂 Following nested repository %s\n", entry.URL)
			nested, err := r.fetcher.FetchLines(ctx, entry.URL)
			if err != nil {
				return Abandoned, fmt.Errorf("fetching nested repository: %w", err)
			}
			return r.Resolve(ctx, nested, depth+1)

		default:
			fmt.Fprintf(r.out, "⚠️  Unrecognised line format %q, retrying...\n", line)
		}
	}
}

// depthExceeded asks whether to restart from the top-level repository.
func (r *Resolver) depthExceeded(log zerolog.Logger) (Outcome, error) {
	fmt.Fprintln(r.out, "⚠️  Max depth reached.")
	answer, err := r.confirmer.Confirm(RetryQuestion)
	if err != nil {
		return Abandoned, fmt.Errorf("asking to retry: %w", err)
	}
	if answer == prompt.Confirmed {
		log.Debug().Msg("Depth limit exceeded, restarting")
		return Restart, nil
	}
	log.Debug().Msg("Depth limit exceeded, abandoned")
	return Abandoned, nil
}
