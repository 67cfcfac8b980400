// ABOUTME: Navigation controller: ties a route slug to a resolved record
// ABOUTME: Drives the Idle/Resolving/Fetching/Resolved/Error state machine with a stale-response guard
package nav

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/adrata/pipenav/cache"
	"github.com/adrata/pipenav/fetch"
	"github.com/adrata/pipenav/models"
	"github.com/adrata/pipenav/slug"
	"github.com/adrata/pipenav/workingset"
)

// State is the controller's phase for the current record-view session.
type State int

const (
	StateIdle State = iota
	StateResolving
	StateFetching
	StateResolved
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateFetching:
		return "fetching"
	case StateResolved:
		return "resolved"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Fetcher is the network collaborator. *fetch.Client satisfies it.
type Fetcher interface {
	FetchRecord(ctx context.Context, section models.Section, id string) (models.Record, error)
	FetchCollection(ctx context.Context, section models.Section, limit int) ([]models.Record, int, error)
	Forget(section models.Section, id string)
}

// Controller orchestrates slug decoding, layered-cache lookup, fetching,
// and working-set navigation for one section.
type Controller struct {
	mu sync.Mutex

	section models.Section
	cache   *cache.LayeredCache
	fetcher Fetcher
	bus     *cache.Bus
	onURL   func(canonicalSlug string)

	filter workingset.Filter
	sort   workingset.Sort
	set    workingset.WorkingSet
	total  int

	state    State
	current  models.Record
	hasRec   bool
	lastSlug string
	err      error

	// gen guards against a superseded in-flight resolution landing after a
	// newer navigation started: results for an old generation are discarded.
	gen uint64
}

// New creates a controller for a section. onURL, when non-nil, receives the
// record's canonical slug on every successful resolution (the visible-URL
// update); bus, when non-nil, is used to publish refresh signals on edits.
func New(section models.Section, lc *cache.LayeredCache, f Fetcher, bus *cache.Bus, onURL func(string)) *Controller {
	return &Controller{
		section: section,
		cache:   lc,
		fetcher: f,
		bus:     bus,
		onURL:   onURL,
		state:   StateIdle,
	}
}

// Section returns the section this controller navigates. The UI's
// back-to-list affordance routes here on terminal errors.
func (c *Controller) Section() models.Section { return c.section }

// State returns the current machine state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the terminal error for the current slug, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Current returns the displayed record. During Resolving/Fetching this is
// still the previously resolved record, so in-working-set navigation never
// blanks the view.
func (c *Controller) Current() (models.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.hasRec
}

// Position returns the 1-based "record N of M" for the displayed record.
// n is 0 when the record is not in the working set (not navigable).
func (c *Controller) Position() (n, m int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m = c.total
	if len(c.set.Records) > m {
		m = len(c.set.Records)
	}
	if !c.hasRec {
		return 0, m
	}
	i := c.set.IndexOf(c.current.ID)
	if i < 0 {
		return 0, m
	}
	return i + 1, m
}

// WorkingSet returns the current ordered working set.
func (c *Controller) WorkingSet() workingset.WorkingSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.set
}

// LoadCollection fetches the section's collection and rebuilds the working
// set under the active filter and sort.
func (c *Controller) LoadCollection(ctx context.Context, limit int) error {
	records, total, err := c.fetcher.FetchCollection(ctx, c.section, limit)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total = total
	c.set = workingset.Build(c.section, records, c.filter, c.sort)
	return nil
}

// SetFilter replaces the active filter and rebuilds the working set from the
// collection snapshot.
func (c *Controller) SetFilter(f workingset.Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = f
	c.rebuildLocked()
}

// SetSort replaces the active sort and rebuilds the working set.
func (c *Controller) SetSort(s workingset.Sort) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sort = s
	c.rebuildLocked()
}

// Filter returns the active filter.
func (c *Controller) Filter() workingset.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

func (c *Controller) rebuildLocked() {
	if c.cache == nil {
		return
	}
	collection, total, ok := c.cache.Collection(c.section)
	if !ok {
		return
	}
	c.total = total
	c.set = workingset.Build(c.section, collection, c.filter, c.sort)
}

// Resolve runs the full resolution chain for a route slug: decode, layered
// cache lookup, fetch on miss, display-name fallback on NotFound. On success
// the visible URL is updated to the record's canonical slug.
func (c *Controller) Resolve(ctx context.Context, routeSlug string) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.state = StateResolving
	c.err = nil
	c.lastSlug = routeSlug
	c.mu.Unlock()

	id, err := slug.Decode(routeSlug)
	if err != nil {
		return c.fail(gen, err)
	}

	if rec, ok := c.cache.Lookup(c.section, id); ok {
		return c.succeed(gen, rec)
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return nil
	}
	c.state = StateFetching
	c.mu.Unlock()

	rec, err := c.fetcher.FetchRecord(ctx, c.section, id)
	if err == nil {
		return c.succeed(gen, rec)
	}

	if errors.Is(err, fetch.ErrNotFound) {
		// Stale links carry a usable name even when the id moved; one local
		// recovery attempt against the loaded working set, no second fetch.
		if rec, ok := c.fallbackByName(routeSlug, id); ok {
			log.Printf("nav: %s/%s not found, recovered by display name", c.section, id)
			return c.succeed(gen, rec)
		}
	}
	return c.fail(gen, err)
}

// fallbackByName matches the slug's name fragment against the working set.
func (c *Controller) fallbackByName(routeSlug, id string) (models.Record, bool) {
	fragment := strings.TrimSuffix(routeSlug, "-"+id)
	if fragment == "" || fragment == id {
		return models.Record{}, false
	}
	c.mu.Lock()
	set := c.set
	c.mu.Unlock()
	return set.FindByName(fragment)
}

func (c *Controller) succeed(gen uint64, rec models.Record) error {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return nil
	}
	c.state = StateResolved
	c.current = rec
	c.hasRec = true
	c.err = nil
	c.mu.Unlock()

	if c.onURL != nil {
		c.onURL(slug.Build(rec.DisplayName(), rec.ID))
	}
	return nil
}

func (c *Controller) fail(gen uint64, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return nil
	}
	c.state = StateError
	c.err = err
	return err
}

// Next navigates to the nearest valid following record in the working set.
// A missing current index or boundary is a no-op; the displayed record stays
// up while the neighbor resolves.
func (c *Controller) Next(ctx context.Context) error {
	return c.step(ctx, +1)
}

// Prev navigates to the nearest valid preceding record.
func (c *Controller) Prev(ctx context.Context) error {
	return c.step(ctx, -1)
}

func (c *Controller) step(ctx context.Context, dir int) error {
	c.mu.Lock()
	if !c.hasRec {
		c.mu.Unlock()
		return nil
	}
	i := c.set.IndexOf(c.current.ID)
	if i < 0 {
		c.mu.Unlock()
		return nil
	}
	var (
		neighbor models.Record
		ok       bool
	)
	if dir > 0 {
		neighbor, _, ok = c.set.Next(i)
	} else {
		neighbor, _, ok = c.set.Prev(i)
	}
	c.mu.Unlock()

	if !ok {
		return nil
	}
	return c.Resolve(ctx, slug.Build(neighbor.DisplayName(), neighbor.ID))
}

// Retry re-enters Resolving for the failed slug, clearing the fetch
// debounce window so the network is actually consulted again.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	last := c.lastSlug
	c.mu.Unlock()
	if last == "" {
		return nil
	}
	if id, err := slug.Decode(last); err == nil {
		c.fetcher.Forget(c.section, id)
	}
	return c.Resolve(ctx, last)
}

// RecordEdited applies a local optimistic edit: the updated record is
// written through the cache with a bumped edit-version and the refresh
// signal is published so other views drop their stale copies.
func (c *Controller) RecordEdited(rec models.Record) {
	version := c.cache.LatestVersion(c.section, rec.ID) + 1
	c.cache.Store(c.section, rec.ID, rec, version)

	c.mu.Lock()
	if c.hasRec && c.current.ID == rec.ID {
		c.current = rec
	}
	c.mu.Unlock()

	if c.bus != nil {
		c.bus.Publish(c.section, rec.ID)
	}
}
