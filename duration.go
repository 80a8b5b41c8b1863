package oggseek

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// Duration returns the position in units of the end of the source: the
// largest position of the pages found near the end.
//
// A metric is required; with codec detection on, read the headers first.
// The result is cached until the source changes size or, for files,
// modification time.
func (r *Reader) Duration() (int64, error) {
	if err := r.check("duration", CapSeek); err != nil {
		return -1, err
	}
	if !r.hasMetric() {
		return -1, newError(CodeBadMetric, "duration")
	}
	if err := r.refreshCache(); err != nil {
		return -1, err
	}
	if r.cache.unitEnd < 0 {
		return -1, newError(CodeBadMetric, "duration")
	}
	return r.cache.unitEnd, nil
}

// ProbeDuration opens path, reads its stream headers and returns its
// duration. Units are those of codec detection, milliseconds.
func ProbeDuration(ctx context.Context, path string, opts ...Option) (time.Duration, error) {
	r, err := Open(path, append(opts, WithAutoDetect(true))...)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	// Every stream's headers start on a BOS page; the first other page ends them.
	if err := r.SetPageHandler(func(_ *Reader, p *Page, _ uint32) Status {
		if !p.BOS() {
			return StopOK
		}
		return Continue
	}); err != nil {
		return 0, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		n, err := r.Read(chunkSize)
		if errors.Is(err, ErrStopOK) || errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}
		if n == 0 {
			break
		}
	}

	ms, err := r.Duration()
	if err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// DurationMany measures multiple files concurrently.
//
// Files are read in parallel using up to runtime.NumCPU() goroutines,
// each on its own Reader. Results are returned in the same order as the
// input paths. The first failure cancels the rest and is returned.
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//
//	durations, err := oggseek.DurationMany(ctx, paths...)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for i, d := range durations {
//		fmt.Printf("%s: %s\n", paths[i], d)
//	}
func DurationMany(ctx context.Context, paths ...string) ([]time.Duration, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([]time.Duration, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			d, err := ProbeDuration(ctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = d
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
