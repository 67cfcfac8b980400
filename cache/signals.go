// ABOUTME: In-process refresh signal bus for cross-view cache invalidation
// ABOUTME: Views publish (section, id) after an edit; subscribers invalidate before next read
package cache

import (
	"sync"

	"github.com/adrata/pipenav/models"
)

// RefreshSignal identifies a record whose server state changed out of band.
type RefreshSignal struct {
	Section models.Section
	ID      string
}

// Bus delivers refresh signals synchronously to all subscribers. One bus per
// client session.
type Bus struct {
	mu   sync.Mutex
	subs []func(RefreshSignal)
}

// NewBus creates an empty signal bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for future refresh signals.
func (b *Bus) Subscribe(fn func(RefreshSignal)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

// Publish delivers a force-refresh signal for (section, id) to every
// subscriber.
func (b *Bus) Publish(section models.Section, id string) {
	b.mu.Lock()
	subs := make([]func(RefreshSignal), len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	sig := RefreshSignal{Section: section, ID: id}
	for _, fn := range subs {
		fn(sig)
	}
}
