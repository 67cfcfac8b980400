// ABOUTME: Tests for the navigation controller state machine
// ABOUTME: Covers resolution chain, fallback, neighbors, stale-response guard, and edits
package nav

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrata/pipenav/cache"
	"github.com/adrata/pipenav/fetch"
	"github.com/adrata/pipenav/models"
	"github.com/adrata/pipenav/slug"
	"github.com/adrata/pipenav/workingset"
)

// fakeFetcher serves records from a map and counts calls.
type fakeFetcher struct {
	mu      sync.Mutex
	records map[string]models.Record
	calls   int
	forgets int
	block   chan struct{} // when non-nil, FetchRecord waits on it
	err     error
}

func (f *fakeFetcher) FetchRecord(ctx context.Context, section models.Section, id string) (models.Record, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if f.err != nil {
		return models.Record{}, f.err
	}
	rec, ok := f.records[id]
	if !ok {
		return models.Record{}, fmt.Errorf("%w: %s", fetch.ErrNotFound, id)
	}
	return rec, nil
}

func (f *fakeFetcher) FetchCollection(ctx context.Context, section models.Section, limit int) ([]models.Record, int, error) {
	var out []models.Record
	for _, r := range f.records {
		out = append(out, r)
	}
	return out, len(out), nil
}

func (f *fakeFetcher) Forget(section models.Section, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forgets++
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestCache(t *testing.T) *cache.LayeredCache {
	t.Helper()
	store, err := cache.OpenStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return cache.New(store, nil)
}

func person(id, name, rank string) models.Record {
	return models.NewRecord(id, map[string]any{"fullName": name, "rank": rank})
}

func TestResolveInvalidSlugNeverFetches(t *testing.T) {
	f := &fakeFetcher{}
	c := New(models.SectionPeople, newTestCache(t), f, nil, nil)

	err := c.Resolve(context.Background(), "john-doe-undefined")
	assert.ErrorIs(t, err, slug.ErrInvalidSlug)
	assert.Equal(t, StateError, c.State())
	assert.Equal(t, 0, f.callCount(), "invalid slug must not reach the fetcher")
}

func TestResolveCacheHitSkipsFetch(t *testing.T) {
	lc := newTestCache(t)
	lc.Store(models.SectionPeople, "p1", person("p1", "Ada Lovelace", "1"), 1)

	f := &fakeFetcher{}
	c := New(models.SectionPeople, lc, f, nil, nil)

	require.NoError(t, c.Resolve(context.Background(), "ada-lovelace-p1"))
	assert.Equal(t, StateResolved, c.State())
	assert.Equal(t, 0, f.callCount())

	rec, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "Ada Lovelace", rec.DisplayName())
}

func TestResolveFetchesOnMissAndUpdatesURL(t *testing.T) {
	var gotSlug string
	f := &fakeFetcher{records: map[string]models.Record{
		"p1": person("p1", "Ada Lovelace", "1"),
	}}
	c := New(models.SectionPeople, newTestCache(t), f, nil, func(s string) { gotSlug = s })

	require.NoError(t, c.Resolve(context.Background(), "stale-name-p1"))
	assert.Equal(t, StateResolved, c.State())
	assert.Equal(t, 1, f.callCount())
	assert.Equal(t, "ada-lovelace-p1", gotSlug, "visible URL must become the canonical slug")
}

func TestNotFoundFallsBackToDisplayName(t *testing.T) {
	f := &fakeFetcher{records: map[string]models.Record{}}
	c := New(models.SectionPeople, newTestCache(t), f, nil, nil)

	c.mu.Lock()
	c.set = workingset.Build(models.SectionPeople, []models.Record{
		person("p7", "John Doe", "1"),
	}, workingset.Filter{}, workingset.Sort{})
	c.mu.Unlock()

	require.NoError(t, c.Resolve(context.Background(), "john-doe-x1"))
	assert.Equal(t, StateResolved, c.State())
	assert.Equal(t, 1, f.callCount(), "fallback must not issue a second fetch")

	rec, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "p7", rec.ID)
}

func TestNotFoundWithoutFallbackIsTerminal(t *testing.T) {
	f := &fakeFetcher{records: map[string]models.Record{}}
	c := New(models.SectionPeople, newTestCache(t), f, nil, nil)

	err := c.Resolve(context.Background(), "nobody-here-x1")
	assert.ErrorIs(t, err, fetch.ErrNotFound)
	assert.Equal(t, StateError, c.State())
}

func TestExternalIDRejectionIsImmediate(t *testing.T) {
	f := &fakeFetcher{err: fetch.ErrExternalID}
	c := New(models.SectionPeople, newTestCache(t), f, nil, nil)

	err := c.Resolve(context.Background(), "someone-ext-11")
	assert.Error(t, err)
	assert.Equal(t, StateError, c.State())
}

func TestPrevNextScenario(t *testing.T) {
	a, b, cc := person("A", "Alpha", "1"), person("B", "Beta", "2"), person("C", "Gamma", "3")
	f := &fakeFetcher{records: map[string]models.Record{"A": a, "B": b, "C": cc}}
	lc := newTestCache(t)
	lc.SetCollection(models.SectionLeads, []models.Record{a, b, cc}, 3)

	c := New(models.SectionLeads, lc, f, nil, nil)
	c.SetFilter(workingset.Filter{}) // rebuilds the working set from the snapshot

	ctx := context.Background()
	require.NoError(t, c.Resolve(ctx, "beta-B"))

	n, m := c.Position()
	assert.Equal(t, 2, n)
	assert.Equal(t, 3, m)

	require.NoError(t, c.Prev(ctx))
	rec, _ := c.Current()
	assert.Equal(t, "A", rec.ID)

	// Previous at index 0 is a no-op.
	require.NoError(t, c.Prev(ctx))
	rec, _ = c.Current()
	assert.Equal(t, "A", rec.ID)

	require.NoError(t, c.Next(ctx))
	rec, _ = c.Current()
	assert.Equal(t, "B", rec.ID)

	require.NoError(t, c.Next(ctx))
	require.NoError(t, c.Next(ctx)) // at C: no-op
	rec, _ = c.Current()
	assert.Equal(t, "C", rec.ID)
}

func TestStaleResponseDiscarded(t *testing.T) {
	slow := person("slow", "Slow Record", "1")
	lc := newTestCache(t)
	lc.Store(models.SectionPeople, "quick", person("quick", "Quick Record", "2"), 1)

	block := make(chan struct{})
	f := &fakeFetcher{records: map[string]models.Record{"slow": slow}, block: block}
	c := New(models.SectionPeople, lc, f, nil, nil)

	done := make(chan struct{})
	go func() {
		_ = c.Resolve(context.Background(), "slow-record-slow")
		close(done)
	}()

	// Wait for the first resolution to reach the fetcher, then supersede it.
	for f.callCount() == 0 {
		time.Sleep(time.Millisecond)
	}
	require.NoError(t, c.Resolve(context.Background(), "quick-record-quick"))

	close(block)
	<-done

	rec, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "quick", rec.ID, "superseded fetch result must be discarded")
	assert.Equal(t, StateResolved, c.State())
}

func TestRetryForgetsDebounceWindow(t *testing.T) {
	f := &fakeFetcher{err: &fetch.TransientError{Status: 502, Body: "bad gateway"}}
	c := New(models.SectionPeople, newTestCache(t), f, nil, nil)

	err := c.Resolve(context.Background(), "someone-p1")
	var transient *fetch.TransientError
	require.True(t, errors.As(err, &transient))
	assert.Equal(t, StateError, c.State())

	f.err = nil
	f.records = map[string]models.Record{"p1": person("p1", "Someone", "1")}
	require.NoError(t, c.Retry(context.Background()))
	assert.Equal(t, StateResolved, c.State())
	assert.Equal(t, 1, f.forgets)
}

func TestRecordEditedStoresAndSignals(t *testing.T) {
	bus := cache.NewBus()
	var signaled []cache.RefreshSignal
	bus.Subscribe(func(s cache.RefreshSignal) { signaled = append(signaled, s) })

	lc := newTestCache(t)
	f := &fakeFetcher{records: map[string]models.Record{"p1": person("p1", "Before", "1")}}
	c := New(models.SectionPeople, lc, f, bus, nil)

	require.NoError(t, c.Resolve(context.Background(), "before-p1"))

	edited := person("p1", "After", "1")
	c.RecordEdited(edited)

	rec, _ := c.Current()
	assert.Equal(t, "After", rec.DisplayName())
	assert.Equal(t, int64(1), lc.LatestVersion(models.SectionPeople, "p1"))

	require.Len(t, signaled, 1)
	assert.Equal(t, "p1", signaled[0].ID)
}
