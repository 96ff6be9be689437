package syncer

// Status is the observable synchronization state.
type Status string

const (
	// StatusInitializing holds until the first window is installed.
	StatusInitializing Status = "initializing"
	// StatusSyncing holds while a backfill or refresh is in flight.
	StatusSyncing Status = "syncing"
	// StatusStable holds while the window is installed and nothing is in flight.
	StatusStable Status = "stable"
)

// PollState is the busy-guard of poll passes.
type PollState int32

const (
	// PollIdle means no poll pass is running.
	PollIdle PollState = iota
	// PollReconciling means a poll pass owns the busy guard.
	PollReconciling
)

func (s PollState) String() string {
	switch s {
	case PollIdle:
		return "idle"
	case PollReconciling:
		return "reconciling"
	default:
		return "unknown"
	}
}

// TickOutcome reports what a poll tick did.
type TickOutcome string

const (
	// TickBusy skips a tick while the previous pass still runs.
	TickBusy TickOutcome = "busy"
	// TickSuppressed skips a tick while a filter is active or a refresh is in flight.
	TickSuppressed TickOutcome = "suppressed"
	// TickEmpty skips a tick because no window is installed yet.
	TickEmpty TickOutcome = "empty"
	// TickUpToDate means the window top already matches the aligned head.
	TickUpToDate TickOutcome = "up_to_date"
	// TickHeadFailed means the chain head could not be fetched.
	TickHeadFailed TickOutcome = "head_error"
	// TickBackfilled means at least one missed height was merged.
	TickBackfilled TickOutcome = "backfilled"
	// TickFailed means every missed height failed to fetch.
	TickFailed TickOutcome = "failed"
	// TickStale means a refresh overtook the pass and its blocks were dropped.
	TickStale TickOutcome = "stale"
)
