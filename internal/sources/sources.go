package sources

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/lehigh-university-libraries/reconciler/internal/records"
)

// Source fetches one provider's raw metadata for an ISBN. A nil record
// with a nil error means the provider has no data for that ISBN.
type Source interface {
	Name() string
	Lookup(ctx context.Context, isbn string) (*records.RawRecord, error)
}

// Fetcher fans an ISBN lookup out to every configured source. Fetching
// is best-effort: a failing source is logged and contributes nothing, so
// the result may hold zero records. Retry, backoff, and rate limiting
// are deliberately not handled here.
type Fetcher struct {
	sources []Source
}

// NewFetcher builds a fetcher over the given sources.
func NewFetcher(sources ...Source) *Fetcher {
	return &Fetcher{sources: sources}
}

// Fetch queries all sources concurrently and returns whatever they had.
func (f *Fetcher) Fetch(ctx context.Context, isbn string) []records.RawRecord {
	var (
		mu  sync.Mutex
		out []records.RawRecord
		wg  sync.WaitGroup
	)
	for _, src := range f.sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			rec, err := src.Lookup(ctx, isbn)
			if err != nil {
				slog.Warn("Source lookup failed", "source", src.Name(), "isbn", isbn, "err", err)
				return
			}
			if rec == nil {
				slog.Debug("Source has no record", "source", src.Name(), "isbn", isbn)
				return
			}
			mu.Lock()
			out = append(out, *rec)
			mu.Unlock()
		}(src)
	}
	wg.Wait()
	return out
}

// parseYear pulls a four-digit year off a date string such as
// "1996-09-01", "1996", or "Sep 01, 1996".
func parseYear(s string) int {
	s = strings.TrimSpace(s)
	if len(s) < 4 {
		return 0
	}
	if year, err := strconv.Atoi(s[:4]); err == nil {
		return year
	}
	if year, err := strconv.Atoi(s[len(s)-4:]); err == nil {
		return year
	}
	return 0
}
