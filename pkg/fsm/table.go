package fsm

import "biz-assistant-be/internal/apperror"

// State is a session FSM state. Values match the strings stored in the
// sessions table.
type State string

const (
	StateIdle                State = "idle"
	StateTaskSelection       State = "task_selection"
	StateAwaitingAction      State = "awaiting_action"
	StateCollectingData      State = "collecting_data"
	StateConfirmationPending State = "confirmation_pending"
	StateCompleted           State = "completed"
	StateAbandoned           State = "abandoned"
)

type Trigger string

const (
	TriggerStartTaskFlow Trigger = "start_task_flow"
	TriggerTaskChosen    Trigger = "task_chosen"
	TriggerActionChosen  Trigger = "action_chosen"
	TriggerDataComplete  Trigger = "data_complete"
	TriggerNeedsData     Trigger = "needs_data"
	TriggerConfirm       Trigger = "confirm"
	TriggerRejectConfirm Trigger = "reject_confirm"
	TriggerClarifyNeeded Trigger = "clarify_needed"
	TriggerClarified     Trigger = "clarified"
	TriggerCancel        Trigger = "cancel"
	TriggerReset         Trigger = "reset"
	TriggerTimeout       Trigger = "timeout"
	TriggerForceAbandon  Trigger = "force_abandon"
)

type transitionKey struct {
	From    State
	Trigger Trigger
}

// transitionTable is the static transition data. Wildcard rules (reset,
// timeout, force_abandon from any non-terminal state) are handled in
// Validate, not listed per state.
var transitionTable = map[transitionKey]State{
	{StateIdle, TriggerStartTaskFlow}: StateTaskSelection,

	{StateTaskSelection, TriggerTaskChosen}:    StateAwaitingAction,
	{StateTaskSelection, TriggerClarifyNeeded}: StateTaskSelection,
	{StateTaskSelection, TriggerClarified}:     StateAwaitingAction,
	{StateTaskSelection, TriggerCancel}:        StateIdle,

	{StateAwaitingAction, TriggerActionChosen}:  StateCollectingData,
	{StateAwaitingAction, TriggerDataComplete}:  StateConfirmationPending,
	{StateAwaitingAction, TriggerClarifyNeeded}: StateAwaitingAction,
	{StateAwaitingAction, TriggerClarified}:     StateCollectingData,
	{StateAwaitingAction, TriggerCancel}:        StateIdle,

	{StateCollectingData, TriggerNeedsData}:     StateCollectingData,
	{StateCollectingData, TriggerDataComplete}:  StateConfirmationPending,
	{StateCollectingData, TriggerClarifyNeeded}: StateCollectingData,
	{StateCollectingData, TriggerClarified}:     StateCollectingData,
	{StateCollectingData, TriggerCancel}:        StateIdle,

	{StateConfirmationPending, TriggerConfirm}:       StateCompleted,
	{StateConfirmationPending, TriggerRejectConfirm}: StateCollectingData,
	{StateConfirmationPending, TriggerCancel}:        StateIdle,
}

// IsTerminal reports whether a state accepts no further transitions.
func IsTerminal(s State) bool {
	return s == StateCompleted || s == StateAbandoned
}

// Validate resolves (from, trigger) against the transition table. Pure: it
// never touches storage. Unknown pairs reject with a validation error.
func Validate(from State, trigger Trigger) (State, error) {
	if IsTerminal(from) {
		return "", apperror.Validation("state %s is terminal, trigger %s rejected", from, trigger)
	}

	// Wildcard rules apply from any non-terminal state.
	switch trigger {
	case TriggerTimeout, TriggerForceAbandon:
		return StateAbandoned, nil
	case TriggerReset:
		return StateIdle, nil
	}

	to, ok := transitionTable[transitionKey{From: from, Trigger: trigger}]
	if !ok {
		return "", apperror.Validation("no transition from %s on trigger %s", from, trigger)
	}
	return to, nil
}

// States lists every FSM state, for exhaustive checks and admin surfaces.
func States() []State {
	return []State{
		StateIdle,
		StateTaskSelection,
		StateAwaitingAction,
		StateCollectingData,
		StateConfirmationPending,
		StateCompleted,
		StateAbandoned,
	}
}
