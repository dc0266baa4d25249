package renderbridge

import (
	"testing"
)

func TestLooperState_String(t *testing.T) {
	cases := map[LooperState]string{
		StateAwake:       "Awake",
		StateRunning:     "Running",
		StateSleeping:    "Sleeping",
		StateTerminating: "Terminating",
		StateTerminated:  "Terminated",
		LooperState(99):  "Unknown",
	}
	for state, expected := range cases {
		if got := state.String(); got != expected {
			t.Errorf("LooperState(%d).String() = %q, expected %q", state, got, expected)
		}
	}
}

func TestLooperState_TryTransition(t *testing.T) {
	var s looperState

	if s.Load() != StateAwake {
		t.Fatalf("zero value should be StateAwake, got %s", s.Load())
	}

	if !s.TryTransition(StateAwake, StateRunning) {
		t.Fatal("Awake→Running should succeed")
	}
	if s.TryTransition(StateAwake, StateRunning) {
		t.Fatal("Awake→Running should fail once already Running")
	}
	if !s.TryTransition(StateRunning, StateSleeping) {
		t.Fatal("Running→Sleeping should succeed")
	}

	s.Store(StateTerminated)
	if s.Load() != StateTerminated {
		t.Fatalf("expected Terminated, got %s", s.Load())
	}
	if s.TryTransition(StateSleeping, StateRunning) {
		t.Fatal("transition from stale observed state should fail")
	}
}

func TestFrameState_String(t *testing.T) {
	cases := map[FrameState]string{
		FrameIdle:      "Idle",
		FrameStarted:   "Started",
		FrameAdvanced:  "Advanced",
		FrameFlushed:   "Flushed",
		FrameState(42): "Unknown",
	}
	for state, expected := range cases {
		if got := state.String(); got != expected {
			t.Errorf("FrameState(%d).String() = %q, expected %q", state, got, expected)
		}
	}
}

func TestFrameState_Cycle(t *testing.T) {
	var s frameState

	transitions := [][2]FrameState{
		{FrameIdle, FrameStarted},
		{FrameStarted, FrameAdvanced},
		{FrameAdvanced, FrameFlushed},
		{FrameFlushed, FrameIdle},
	}
	// Two full cycles; the machine must return to idle cleanly.
	for cycle := 0; cycle < 2; cycle++ {
		for _, tr := range transitions {
			if !s.TryTransition(tr[0], tr[1]) {
				t.Fatalf("cycle %d: %s→%s failed (state %s)", cycle, tr[0], tr[1], s.Load())
			}
		}
	}

	if s.TryTransition(FrameStarted, FrameAdvanced) {
		t.Fatal("out-of-order transition should fail")
	}
}
