package model

// SyncPhase is the phase of the most recent sync cycle.
type SyncPhase string

const (
	SyncPhaseIdle      SyncPhase = "idle"
	SyncPhaseRunning   SyncPhase = "running"
	SyncPhaseCompleted SyncPhase = "completed"
	SyncPhaseFailed    SyncPhase = "failed"
)

// String returns the string representation of the phase.
func (p SyncPhase) String() string {
	return string(p)
}

// ValidSyncTransitions defines the allowed phase transitions of a SyncStatus.
var ValidSyncTransitions = map[SyncPhase][]SyncPhase{
	SyncPhaseIdle:      {SyncPhaseRunning},
	SyncPhaseRunning:   {SyncPhaseCompleted, SyncPhaseFailed},
	SyncPhaseCompleted: {SyncPhaseRunning},
	SyncPhaseFailed:    {SyncPhaseRunning},
}

// CanTransitionTo returns true if moving from the current phase to next is valid.
func (p SyncPhase) CanTransitionTo(next SyncPhase) bool {
	for _, allowed := range ValidSyncTransitions[p] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SchedulerPhase reports whether a recurring job is armed.
type SchedulerPhase string

const (
	SchedulerRunning SchedulerPhase = "running"
	SchedulerIdle    SchedulerPhase = "idle"
)

// String returns the string representation of the scheduler phase.
func (p SchedulerPhase) String() string {
	return string(p)
}

// Trigger records what started a sync cycle.
type Trigger string

const (
	TriggerWarmup Trigger = "warmup"
	TriggerTick   Trigger = "tick"
)
