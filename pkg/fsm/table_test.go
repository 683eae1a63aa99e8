package fsm

import (
	"testing"

	"biz-assistant-be/internal/apperror"

	"github.com/stretchr/testify/assert"
)

func TestValidateHappyPath(t *testing.T) {
	cases := []struct {
		from    State
		trigger Trigger
		want    State
	}{
		{StateIdle, TriggerStartTaskFlow, StateTaskSelection},
		{StateTaskSelection, TriggerTaskChosen, StateAwaitingAction},
		{StateAwaitingAction, TriggerActionChosen, StateCollectingData},
		{StateAwaitingAction, TriggerDataComplete, StateConfirmationPending},
		{StateCollectingData, TriggerNeedsData, StateCollectingData},
		{StateCollectingData, TriggerDataComplete, StateConfirmationPending},
		{StateConfirmationPending, TriggerConfirm, StateCompleted},
		{StateConfirmationPending, TriggerRejectConfirm, StateCollectingData},
		{StateConfirmationPending, TriggerCancel, StateIdle},
		{StateTaskSelection, TriggerClarifyNeeded, StateTaskSelection},
		{StateTaskSelection, TriggerClarified, StateAwaitingAction},
	}

	for _, tc := range cases {
		got, err := Validate(tc.from, tc.trigger)
		assert.NoError(t, err, "%s on %s", tc.from, tc.trigger)
		assert.Equal(t, tc.want, got, "%s on %s", tc.from, tc.trigger)
	}
}

func TestValidateWildcards(t *testing.T) {
	for _, from := range []State{StateIdle, StateTaskSelection, StateAwaitingAction, StateCollectingData, StateConfirmationPending} {
		got, err := Validate(from, TriggerTimeout)
		assert.NoError(t, err)
		assert.Equal(t, StateAbandoned, got)

		got, err = Validate(from, TriggerForceAbandon)
		assert.NoError(t, err)
		assert.Equal(t, StateAbandoned, got)

		got, err = Validate(from, TriggerReset)
		assert.NoError(t, err)
		assert.Equal(t, StateIdle, got)
	}
}

func TestValidateTerminalStatesRejectEverything(t *testing.T) {
	triggers := []Trigger{
		TriggerStartTaskFlow, TriggerTaskChosen, TriggerActionChosen,
		TriggerDataComplete, TriggerNeedsData, TriggerConfirm,
		TriggerRejectConfirm, TriggerClarifyNeeded, TriggerClarified,
		TriggerCancel, TriggerReset, TriggerTimeout, TriggerForceAbandon,
	}

	for _, terminal := range []State{StateCompleted, StateAbandoned} {
		for _, trigger := range triggers {
			_, err := Validate(terminal, trigger)
			assert.Error(t, err, "%s on %s should reject", terminal, trigger)
			assert.True(t, apperror.IsValidation(err))
		}
	}
}

func TestValidateUnknownPairsReject(t *testing.T) {
	cases := []struct {
		from    State
		trigger Trigger
	}{
		{StateIdle, TriggerConfirm},
		{StateIdle, TriggerTaskChosen},
		{StateTaskSelection, TriggerConfirm},
		{StateCollectingData, TriggerStartTaskFlow},
		{StateConfirmationPending, TriggerTaskChosen},
	}

	for _, tc := range cases {
		_, err := Validate(tc.from, tc.trigger)
		assert.Error(t, err, "%s on %s should reject", tc.from, tc.trigger)
		assert.True(t, apperror.IsValidation(err))
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(StateCompleted))
	assert.True(t, IsTerminal(StateAbandoned))
	for _, s := range []State{StateIdle, StateTaskSelection, StateAwaitingAction, StateCollectingData, StateConfirmationPending} {
		assert.False(t, IsTerminal(s))
	}
}
