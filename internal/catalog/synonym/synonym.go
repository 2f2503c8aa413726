// Package synonym implements the Synonym Resolver (spec component B):
// a term -> canonical-term dictionary consulted by the query parser
// before it probes the lookup dictionary cache. Database-backed with
// the same single-writer atomic publish-then-swap discipline as the
// lookup package, falling back to a small compiled-in dictionary if
// the very first load fails (spec §4.B).
package synonym

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/brandeduk/catalog-search/internal/database"
	"github.com/brandeduk/catalog-search/internal/metrics"
)

// fallback is the compiled-in dictionary used before the first
// successful load and whenever a load finds the synonyms table empty —
// keeps the service usable against an empty or unreachable table.
var fallback = map[string]string{
	"tee":       "t-shirt",
	"tees":      "t-shirt",
	"tshirt":    "t-shirt",
	"t shirt":   "t-shirt",
	"hoody":     "hoodie",
	"hoodies":   "hoodie",
	"jumper":    "sweatshirt",
	"jumpers":   "sweatshirt",
	"pullover":  "sweatshirt",
	"sleeveless": "vest",
	"footy":     "football",
	"soccer":    "football",
	"polo shirt": "polo",
}

type snapshot struct {
	terms   map[string]string
	builtAt time.Time
}

// Resolver holds the currently-published synonym snapshot.
type Resolver struct {
	db     *database.DB
	logger zerolog.Logger
	ptr    atomic.Pointer[snapshot]
}

// New constructs a Resolver bound to db. The fallback dictionary is
// published immediately so Resolve is always usable before the first
// Refresh completes.
func New(db *database.DB, logger zerolog.Logger) *Resolver {
	r := &Resolver{db: db, logger: logger}
	r.ptr.Store(&snapshot{terms: fallback, builtAt: time.Time{}})
	return r
}

const synonymQuery = `SELECT term, canonical_term FROM synonyms`

// Refresh reloads the synonym table and atomically swaps the snapshot.
// On failure, the previous snapshot (fallback or last-good DB load) is
// retained.
func (r *Resolver) Refresh(ctx context.Context) error {
	rows, err := r.db.Pool.Query(ctx, synonymQuery)
	if err != nil {
		metrics.RefreshFailures.WithLabelValues("synonym").Inc()
		r.logger.Warn().Err(err).Msg("synonym refresh failed, retaining previous snapshot")
		return nil
	}
	defer rows.Close()

	terms := make(map[string]string)
	for rows.Next() {
		var term, canonical string
		if err := rows.Scan(&term, &canonical); err != nil {
			metrics.RefreshFailures.WithLabelValues("synonym").Inc()
			r.logger.Warn().Err(err).Msg("synonym refresh scan failed, retaining previous snapshot")
			return nil
		}
		terms[strings.ToLower(strings.TrimSpace(term))] = strings.ToLower(strings.TrimSpace(canonical))
	}
	if err := rows.Err(); err != nil {
		metrics.RefreshFailures.WithLabelValues("synonym").Inc()
		r.logger.Warn().Err(err).Msg("synonym refresh iteration failed, retaining previous snapshot")
		return nil
	}

	if len(terms) == 0 {
		terms = fallback
	}

	r.ptr.Store(&snapshot{terms: terms, builtAt: time.Now()})
	metrics.SynonymSnapshotAgeSeconds.Set(0)
	return nil
}

// Run loops Refresh on interval until ctx is cancelled.
func (r *Resolver) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil {
				r.logger.Error().Err(err).Msg("synonym refresh failed")
			}
			if snap := r.ptr.Load(); snap != nil && !snap.builtAt.IsZero() {
				metrics.SynonymSnapshotAgeSeconds.Set(time.Since(snap.builtAt).Seconds())
			}
		}
	}
}

// Resolve maps a single term to its canonical form, returning the
// input unchanged if there is no entry.
func (r *Resolver) Resolve(term string) string {
	snap := r.ptr.Load()
	key := strings.ToLower(strings.TrimSpace(term))
	if canon, ok := snap.terms[key]; ok {
		return canon
	}
	return key
}

// ResolveTokens walks tokens left to right, greedily trying a 2-token
// phrase before falling back to a single token, consuming whichever
// matches the dictionary first (spec §4.B: "phrase lookups take
// priority over single-token lookups").
func (r *Resolver) ResolveTokens(tokens []string) []string {
	snap := r.ptr.Load()
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		if i+1 < len(tokens) {
			phrase := strings.ToLower(tokens[i]) + " " + strings.ToLower(tokens[i+1])
			if canon, ok := snap.terms[phrase]; ok {
				out = append(out, canon)
				i += 2
				continue
			}
		}
		single := strings.ToLower(tokens[i])
		if canon, ok := snap.terms[single]; ok {
			out = append(out, canon)
		} else {
			out = append(out, single)
		}
		i++
	}
	return out
}
