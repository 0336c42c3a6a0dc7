package storage

import (
	"context"
	"sync"

	"github.com/mmynk/groupledger/internal/metrics"
)

// RecordKind names the kind of record a Change is about.
type RecordKind string

const (
	KindGroup      RecordKind = "group"
	KindExpense    RecordKind = "expense"
	KindSettlement RecordKind = "settlement"
)

// Op is the mutation that produced a Change.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Change describes one committed mutation.
type Change struct {
	GroupID  string
	Kind     RecordKind
	Op       Op
	RecordID string
}

// Broker fans committed changes out to per-group watchers.
// Sends never block: a watcher whose buffer is full misses the change, which
// is harmless because every change means "re-read the group".
type Broker struct {
	mu     sync.Mutex
	subs   map[string]map[chan Change]struct{}
	buffer int
	closed bool
}

// NewBroker creates a Broker whose watcher channels hold buffer changes.
func NewBroker(buffer int) *Broker {
	if buffer < 1 {
		buffer = 1
	}
	return &Broker{
		subs:   make(map[string]map[chan Change]struct{}),
		buffer: buffer,
	}
}

// Watch subscribes to changes for groupID until ctx is done.
func (b *Broker) Watch(ctx context.Context, groupID string) <-chan Change {
	ch := make(chan Change, b.buffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch
	}
	if b.subs[groupID] == nil {
		b.subs[groupID] = make(map[chan Change]struct{})
	}
	b.subs[groupID][ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.unsubscribe(groupID, ch)
	}()

	return ch
}

func (b *Broker) unsubscribe(groupID string, ch chan Change) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.subs[groupID]
	if !ok {
		return
	}
	if _, ok := subs[ch]; !ok {
		return
	}
	delete(subs, ch)
	if len(subs) == 0 {
		delete(b.subs, groupID)
	}
	close(ch)
}

// Publish delivers c to every watcher of c.GroupID.
func (b *Broker) Publish(c Change) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs[c.GroupID] {
		select {
		case ch <- c:
		default:
			metrics.DroppedNotifications.Inc()
		}
	}
}

// Close closes every watcher channel. Later Watch calls return closed channels.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for groupID, subs := range b.subs {
		for ch := range subs {
			close(ch)
		}
		delete(b.subs, groupID)
	}
	b.closed = true
}
