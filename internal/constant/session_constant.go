package constant

// Session FSM states. Stored lowercase in the sessions table.
const (
	StateIdle                = "idle"
	StateTaskSelection       = "task_selection"
	StateAwaitingAction      = "awaiting_action"
	StateCollectingData      = "collecting_data"
	StateConfirmationPending = "confirmation_pending"
	StateCompleted           = "completed"
	StateAbandoned           = "abandoned"
)

// Closure reasons recorded when a session reaches a terminal state.
const (
	ClosureCompleted         = "completed"
	ClosureUserCancelled     = "user_cancelled"
	ClosureInactivityExpired = "inactivity_expired"
	ClosureOrphanedOnRestart = "orphaned_on_restart"
)

// Clarification statuses.
const (
	ClarificationPending   = "pending"
	ClarificationAnswered  = "answered"
	ClarificationExpired   = "expired"
	ClarificationCancelled = "cancelled"
)
