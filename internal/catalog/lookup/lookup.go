// Package lookup implements the Lookup Dictionary Cache (spec component
// A): case-folded, trademark-glyph-stripped sets for every controlled
// vocabulary dimension (brand, product type, colour, sleeve, neckline,
// fit, fabric, sector, sport, feature), refreshed on an interval with a
// single-writer publish-then-swap discipline so readers never observe a
// half-built snapshot. Slug normalization is grounded directly on the
// teacher's makeSlug helper (internal/handlers/handlers.go).
package lookup

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/rs/zerolog"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/brandeduk/catalog-search/internal/database"
	"github.com/brandeduk/catalog-search/internal/metrics"
)

// Dimension names a controlled vocabulary set within the snapshot.
type Dimension string

const (
	Brand       Dimension = "brand"
	ProductType Dimension = "product_type"
	Colour      Dimension = "colour"
	Sleeve      Dimension = "sleeve"
	Neckline    Dimension = "neckline"
	Fit         Dimension = "fit"
	Fabric      Dimension = "fabric"
	Sector      Dimension = "sector"
	Sport       Dimension = "sport"
	Feature     Dimension = "feature"
)

// All lists every dimension the cache loads, in the fixed probing order
// the query parser consults them (spec §4.C).
var All = []Dimension{Brand, ProductType, Sport, Fit, Sleeve, Neckline, Fabric, Sector, Colour, Feature}

// Entry is one member of a dimension's set: its canonical slug plus its
// display name.
type Entry struct {
	Slug string
	Name string
}

// snapshot is the immutable, fully-built dictionary state. Readers only
// ever see a complete snapshot, never a partially-populated one.
type snapshot struct {
	sets      map[Dimension]map[string]Entry // slug -> entry, for membership + display name
	builtAt   time.Time
}

// Cache is the published, atomically-swapped lookup dictionary. The
// zero value is not usable; construct with New.
type Cache struct {
	db     *database.DB
	logger zerolog.Logger
	ptr    atomic.Pointer[snapshot]
}

// New constructs a Cache bound to db. Call Refresh once synchronously
// before serving traffic (spec §4.A: "fatal on empty first load").
func New(db *database.DB, logger zerolog.Logger) *Cache {
	return &Cache{db: db, logger: logger}
}

// NewWithEntries builds a Cache with a snapshot published directly
// from in-memory entries, bypassing the database. Used by tests of
// downstream packages (query parser, predicate builders) that need a
// populated dictionary without a live connection.
func NewWithEntries(entries map[Dimension][]Entry) *Cache {
	sets := make(map[Dimension]map[string]Entry, len(entries))
	for d, es := range entries {
		set := make(map[string]Entry, len(es))
		for _, e := range es {
			set[makeSlug(e.Slug)] = e
		}
		sets[d] = set
	}
	c := &Cache{}
	c.ptr.Store(&snapshot{sets: sets, builtAt: time.Now()})
	return c
}

// makeSlug case-folds s and strips combining marks (accents) and the
// trademark glyphs ®, ™ and ©, matching the teacher's handlers.makeSlug.
func makeSlug(s string) string {
	trademark := runes.Predicate(func(r rune) bool { return r == '®' || r == '™' || r == '©' })
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), runes.Remove(trademark), norm.NFC)
	r, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return r
}

const dimensionQuery = `
SELECT 'brand' AS dim, slug, name FROM brands
UNION ALL SELECT 'product_type', slug, name FROM product_types
UNION ALL SELECT 'colour', slug, name FROM colours
UNION ALL SELECT 'sleeve', slug, name FROM sleeve_types
UNION ALL SELECT 'neckline', slug, name FROM neckline_types
UNION ALL SELECT 'fit', slug, name FROM fit_types
UNION ALL SELECT 'fabric', slug, name FROM fabric_types
UNION ALL SELECT 'sector', slug, name FROM sectors
UNION ALL SELECT 'sport', slug, name FROM sports
UNION ALL SELECT 'feature', slug, name FROM features
`

// Refresh loads every dimension in one round trip, builds a fresh
// snapshot and atomically swaps it in. On query failure the previous
// snapshot (if any) is retained and the failure is logged and counted;
// if there is no previous snapshot this is the fatal first-load case
// the caller must treat as a startup error.
func (c *Cache) Refresh(ctx context.Context) error {
	rows, err := c.db.Pool.Query(ctx, dimensionQuery)
	if err != nil {
		metrics.RefreshFailures.WithLabelValues("lookup").Inc()
		if c.ptr.Load() == nil {
			return fmt.Errorf("initial lookup load: %w", err)
		}
		c.logger.Warn().Err(err).Msg("lookup refresh failed, retaining previous snapshot")
		return nil
	}
	defer rows.Close()

	sets := make(map[Dimension]map[string]Entry, len(All))
	for _, d := range All {
		sets[d] = make(map[string]Entry)
	}

	err = func() error {
		for rows.Next() {
			var dim, slug, name string
			if err := rows.Scan(&dim, &slug, &name); err != nil {
				return err
			}
			d := Dimension(dim)
			if _, ok := sets[d]; !ok {
				continue
			}
			normalized := makeSlug(slug)
			sets[d][normalized] = Entry{Slug: normalized, Name: name}
		}
		return rows.Err()
	}()
	if err != nil {
		metrics.RefreshFailures.WithLabelValues("lookup").Inc()
		if c.ptr.Load() == nil {
			return fmt.Errorf("initial lookup load: %w", err)
		}
		c.logger.Warn().Err(err).Msg("lookup refresh scan failed, retaining previous snapshot")
		return nil
	}

	for _, d := range All {
		if len(sets[d]) == 0 && c.ptr.Load() == nil {
			return fmt.Errorf("initial lookup load: dimension %s empty", d)
		}
	}

	c.ptr.Store(&snapshot{sets: sets, builtAt: time.Now()})
	metrics.LookupSnapshotAgeSeconds.Set(0)
	return nil
}

// Run loops Refresh on interval until ctx is cancelled, logging and
// counting (but never panicking on) refresh failures.
func (c *Cache) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				c.logger.Error().Err(err).Msg("lookup refresh failed")
			}
			if snap := c.ptr.Load(); snap != nil {
				metrics.LookupSnapshotAgeSeconds.Set(time.Since(snap.builtAt).Seconds())
			}
		}
	}
}

// Lookup resolves token (already lowercased) against dimension d,
// returning its canonical entry and whether it matched.
func (c *Cache) Lookup(d Dimension, token string) (Entry, bool) {
	snap := c.ptr.Load()
	if snap == nil {
		return Entry{}, false
	}
	set, ok := snap.sets[d]
	if !ok {
		return Entry{}, false
	}
	e, ok := set[makeSlug(token)]
	return e, ok
}

// DisplayName resolves a stored slug to its human display name for
// facet responses, falling back to the slug itself if unknown.
func (c *Cache) DisplayName(d Dimension, slug string) string {
	if e, ok := c.Lookup(d, slug); ok {
		return e.Name
	}
	return slug
}

// Entries returns a copy of a dimension's entries from the current
// snapshot, deduplicated by slug and in no particular order.
func (c *Cache) Entries(d Dimension) []Entry {
	snap := c.ptr.Load()
	if snap == nil {
		return nil
	}
	set, ok := snap.sets[d]
	if !ok {
		return nil
	}
	out := make([]Entry, 0, len(set))
	for _, e := range set {
		out = append(out, e)
	}
	return out
}
