package storage

import (
	"context"
	"testing"
	"time"
)

func receive(t *testing.T, ch <-chan Change) (Change, bool) {
	t.Helper()
	select {
	case c, ok := <-ch:
		return c, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change")
		return Change{}, false
	}
}

func TestBroker_DeliversToGroupWatchers(t *testing.T) {
	b := NewBroker(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g1 := b.Watch(ctx, "g1")
	g2 := b.Watch(ctx, "g2")

	b.Publish(Change{GroupID: "g1", Kind: KindExpense, Op: OpCreate, RecordID: "e1"})

	c, ok := receive(t, g1)
	if !ok || c.RecordID != "e1" || c.Kind != KindExpense || c.Op != OpCreate {
		t.Errorf("unexpected change %+v (ok=%v)", c, ok)
	}

	select {
	case c := <-g2:
		t.Errorf("g2 should not see g1 changes, got %+v", c)
	default:
	}
}

func TestBroker_UnsubscribesOnCancel(t *testing.T) {
	b := NewBroker(1)
	ctx, cancel := context.WithCancel(context.Background())

	ch := b.Watch(ctx, "g1")
	other := b.Watch(context.Background(), "g1")

	cancel()
	if _, ok := receive(t, ch); ok {
		t.Error("expected channel to be closed after cancel")
	}

	// The remaining watcher still gets changes.
	b.Publish(Change{GroupID: "g1", RecordID: "e1"})
	if c, ok := receive(t, other); !ok || c.RecordID != "e1" {
		t.Errorf("other watcher got %+v (ok=%v)", c, ok)
	}

	// Publishing to a group with no watchers is a no-op.
	b.Publish(Change{GroupID: "g2"})
}

func TestBroker_DropsWhenFull(t *testing.T) {
	b := NewBroker(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Watch(ctx, "g1")
	b.Publish(Change{GroupID: "g1", RecordID: "first"})
	b.Publish(Change{GroupID: "g1", RecordID: "second"})

	c, _ := receive(t, ch)
	if c.RecordID != "first" {
		t.Errorf("got %s, want first", c.RecordID)
	}
	select {
	case c := <-ch:
		t.Errorf("expected second change to be dropped, got %+v", c)
	default:
	}
}

func TestBroker_Close(t *testing.T) {
	b := NewBroker(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Watch(ctx, "g1")
	b.Close()
	if _, ok := receive(t, ch); ok {
		t.Error("expected closed channel")
	}

	late := b.Watch(ctx, "g1")
	if _, ok := receive(t, late); ok {
		t.Error("watch after close should return a closed channel")
	}
}
