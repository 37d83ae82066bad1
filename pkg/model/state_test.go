package model

import "testing"

func TestSyncPhase_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from  SyncPhase
		to    SyncPhase
		valid bool
	}{
		// Valid transitions
		{SyncPhaseIdle, SyncPhaseRunning, true},
		{SyncPhaseRunning, SyncPhaseCompleted, true},
		{SyncPhaseRunning, SyncPhaseFailed, true},
		{SyncPhaseCompleted, SyncPhaseRunning, true},
		{SyncPhaseFailed, SyncPhaseRunning, true},

		// Invalid transitions
		{SyncPhaseIdle, SyncPhaseCompleted, false},
		{SyncPhaseIdle, SyncPhaseFailed, false},
		{SyncPhaseCompleted, SyncPhaseFailed, false},
		{SyncPhaseFailed, SyncPhaseCompleted, false},
		{SyncPhaseRunning, SyncPhaseIdle, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.valid {
			t.Errorf("SyncPhase(%q).CanTransitionTo(%q) = %v, want %v", tt.from, tt.to, got, tt.valid)
		}
	}
}

func TestSchedulerPhase_String(t *testing.T) {
	if SchedulerRunning.String() != "running" {
		t.Errorf("SchedulerRunning = %q", SchedulerRunning.String())
	}
	if SchedulerIdle.String() != "idle" {
		t.Errorf("SchedulerIdle = %q", SchedulerIdle.String())
	}
}
