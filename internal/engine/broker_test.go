package engine_test

import (
	"testing"

	"github.com/seantiz/textlife/internal/engine"
)

func TestBrokerSingleSubscriber(t *testing.T) {
	b := engine.NewBroker()
	ch, unsub := b.Subscribe()
	defer unsub()

	events := []engine.Event{
		{Type: engine.EventStepStarted, StepID: "s1"},
		{Type: engine.EventCellUpdated, StepID: "s1", X: 1, Y: 2, Text: "hi"},
		{Type: engine.EventStepCompleted, StepID: "s1"},
	}
	for _, ev := range events {
		b.Publish(ev)
	}
	b.Close()

	var got []engine.Event
	for ev := range ch {
		got = append(got, ev)
	}

	if len(got) != len(events) {
		t.Fatalf("got %d events, want %d", len(got), len(events))
	}
	for i, ev := range got {
		if ev != events[i] {
			t.Errorf("event[%d] = %+v, want %+v", i, ev, events[i])
		}
	}
}

func TestBrokerMultipleSubscribers(t *testing.T) {
	b := engine.NewBroker()
	ch1, unsub1 := b.Subscribe()
	defer unsub1()
	ch2, unsub2 := b.Subscribe()
	defer unsub2()

	b.Publish(engine.Event{Type: engine.EventGridResized, Cols: 4, Rows: 4})
	b.Close()

	for i, ch := range []<-chan engine.Event{ch1, ch2} {
		var got []engine.Event
		for ev := range ch {
			got = append(got, ev)
		}
		if len(got) != 1 || got[0].Type != engine.EventGridResized {
			t.Errorf("subscriber %d got %v, want one grid_resized event", i+1, got)
		}
	}
}

func TestBrokerUnsubscribeStopsDelivery(t *testing.T) {
	b := engine.NewBroker()
	ch, unsub := b.Subscribe()
	unsub()

	b.Publish(engine.Event{Type: engine.EventCellUpdated})
	b.Close()

	select {
	case ev, ok := <-ch:
		if ok {
			t.Errorf("got unexpected event %+v after unsubscribe", ev)
		}
	default:
		// No data, as expected.
	}
}

func TestBrokerLateSubscriberMissesEarlierEvents(t *testing.T) {
	b := engine.NewBroker()
	ch1, unsub1 := b.Subscribe()
	defer unsub1()

	b.Publish(engine.Event{Type: engine.EventStepStarted, StepID: "s1"})

	ch2, unsub2 := b.Subscribe()
	defer unsub2()

	b.Publish(engine.Event{Type: engine.EventStepCompleted, StepID: "s1"})
	b.Close()

	var got1, got2 []engine.Event
	for ev := range ch1 {
		got1 = append(got1, ev)
	}
	for ev := range ch2 {
		got2 = append(got2, ev)
	}

	if len(got1) != 2 {
		t.Errorf("subscriber 1 got %d events, want 2", len(got1))
	}
	if len(got2) != 1 || got2[0].Type != engine.EventStepCompleted {
		t.Errorf("late subscriber got %v, want [step_completed]", got2)
	}
}

func TestBrokerSubscribeAfterClose(t *testing.T) {
	b := engine.NewBroker()
	b.Close()

	ch, unsub := b.Subscribe()
	defer unsub()

	if _, ok := <-ch; ok {
		t.Error("subscriber after Close should get a closed channel")
	}

	// Publish and a second Close after shutdown must not panic.
	b.Publish(engine.Event{Type: engine.EventCellUpdated})
	b.Close()
}
