// ABOUTME: Per-key fetch coalescing with a short repeat window
// ABOUTME: Concurrent callers share one in-flight call; repeats inside the window reuse its result
package fetch

import (
	"sync"
	"time"

	"github.com/adrata/pipenav/models"
)

// DebounceWindow is how long a completed fetch suppresses repeats for the
// same (section, id).
const DebounceWindow = 2 * time.Second

type call struct {
	done chan struct{}
	rec  models.Record
	err  error
}

type completed struct {
	at  time.Time
	rec models.Record
	err error
}

// coalescer serializes fetches per key. While a call is in flight, new
// callers wait on it. After a call completes, repeats within the window get
// the completed result instead of issuing a duplicate network call.
type coalescer struct {
	mu       sync.Mutex
	window   time.Duration
	inflight map[string]*call
	recent   map[string]completed
	now      func() time.Time
}

func newCoalescer(window time.Duration) *coalescer {
	return &coalescer{
		window:   window,
		inflight: make(map[string]*call),
		recent:   make(map[string]completed),
		now:      time.Now,
	}
}

func (g *coalescer) do(key string, fn func() (models.Record, error)) (models.Record, error) {
	g.mu.Lock()
	if c, ok := g.inflight[key]; ok {
		g.mu.Unlock()
		<-c.done
		return c.rec, c.err
	}
	if prev, ok := g.recent[key]; ok && g.now().Sub(prev.at) < g.window {
		g.mu.Unlock()
		return prev.rec, prev.err
	}

	c := &call{done: make(chan struct{})}
	g.inflight[key] = c
	g.mu.Unlock()

	c.rec, c.err = fn()

	g.mu.Lock()
	delete(g.inflight, key)
	g.recent[key] = completed{at: g.now(), rec: c.rec, err: c.err}
	g.mu.Unlock()

	close(c.done)
	return c.rec, c.err
}

// forget clears the completed-call record for key so the next fetch goes to
// the network regardless of the window. Used after invalidation.
func (g *coalescer) forget(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.recent, key)
}
