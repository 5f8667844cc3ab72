package bruteforce

import (
	"sync"
	"sync/atomic"

	"github.com/lcalzada-xor/wbrute/internal/core/domain"
)

// Broker fans attack events out to subscribers. Publish never blocks: a
// subscriber whose buffer is full misses the event.
type Broker struct {
	mu      sync.RWMutex
	subs    map[chan domain.AttackEvent]struct{}
	buffer  int
	dropped atomic.Uint64
}

func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = 256
	}
	return &Broker{
		subs:   make(map[chan domain.AttackEvent]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a new listener. The returned function unsubscribes and
// closes the channel; it is safe to call more than once.
func (b *Broker) Subscribe() (<-chan domain.AttackEvent, func()) {
	ch := make(chan domain.AttackEvent, b.buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *Broker) Publish(ev domain.AttackEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.dropped.Add(1)
		}
	}
}

// Dropped is the number of deliveries skipped because a subscriber was full.
func (b *Broker) Dropped() uint64 {
	return b.dropped.Load()
}
