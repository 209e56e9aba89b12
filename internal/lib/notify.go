// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package lib

import (
	"net/netip"
	"sync"

	"grimm.is/mplsd/internal/label"
)

// Subscriber receives local binding updates. The dynamic label
// distribution protocol subscribes here to learn static local bindings
// it must advertise.
type Subscriber interface {
	// WantsMPLSUpdates gates delivery; subscribers that return false are
	// skipped.
	WantsMPLSUpdates() bool

	// PrefixInLabel delivers the new selected incoming label of a prefix.
	PrefixInLabel(pfx netip.Prefix, in label.Optional)
}

// Bus fans binding updates out to subscribers. Delivery is synchronous
// and fire-and-forget: the engine never learns whether anyone listened.
type Bus struct {
	mu   sync.RWMutex
	subs []Subscriber
}

// NewBus creates an empty bus.
func NewBus() *Bus { return &Bus{} }

// Subscribe registers a subscriber.
func (b *Bus) Subscribe(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, s)
}

func (b *Bus) broadcast(pfx netip.Prefix, in label.Optional) {
	if b == nil {
		return
	}

	b.mu.RLock()
	subs := make([]Subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		if s.WantsMPLSUpdates() {
			s.PrefixInLabel(pfx, in)
		}
	}
}
