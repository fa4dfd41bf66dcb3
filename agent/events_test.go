package agent

import "testing"

func TestEventEmitterDeliversToAllListeners(t *testing.T) {
	e := NewEventEmitter()
	var gotA, gotB map[string]any

	e.On(EventPaymentStarted, func(data map[string]any) { gotA = data })
	e.On(EventPaymentStarted, func(data map[string]any) { gotB = data })

	e.Emit(EventPaymentStarted, map[string]any{"price": "100"})

	if gotA == nil || gotA["price"] != "100" {
		t.Errorf("listener A did not receive event: %v", gotA)
	}
	if gotB == nil || gotB["price"] != "100" {
		t.Errorf("listener B did not receive event: %v", gotB)
	}
}

func TestEventEmitterIsolatesPanickingListener(t *testing.T) {
	e := NewEventEmitter()
	called := false

	e.On(EventPaymentFailed, func(data map[string]any) { panic("boom") })
	e.On(EventPaymentFailed, func(data map[string]any) { called = true })

	e.Emit(EventPaymentFailed, map[string]any{"error": "x"})

	if !called {
		t.Error("expected second listener to still run after first panicked")
	}
}

func TestEventEmitterNoListenersIsNoop(t *testing.T) {
	e := NewEventEmitter()
	e.Emit(EventPaymentSuccess, map[string]any{})
}
