package pipeline

import (
	"context"
	"testing"

	"biz-assistant-be/internal/constant"
	"biz-assistant-be/internal/entity"
	"biz-assistant-be/pkg/fsm"
	"biz-assistant-be/pkg/intent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchOption(t *testing.T) {
	options := []string{"update_progress", "add_comment", "create_incident"}

	choice, ok := matchOption(options, "add_comment")
	assert.True(t, ok)
	assert.Equal(t, "add_comment", choice)

	choice, ok = matchOption(options, "  Update_Progress ")
	assert.True(t, ok)
	assert.Equal(t, "update_progress", choice)

	choice, ok = matchOption(options, "3")
	assert.True(t, ok)
	assert.Equal(t, "create_incident", choice)

	_, ok = matchOption(options, "0")
	assert.False(t, ok)

	_, ok = matchOption(options, "4")
	assert.False(t, ok)

	_, ok = matchOption(options, "something else entirely")
	assert.False(t, ok)

	_, ok = matchOption(options, "")
	assert.False(t, ok)
}

func TestClarificationPrompt(t *testing.T) {
	prompt, options := clarificationPrompt([]intent.CandidateIntent{
		{Name: "add_comment", Confidence: 0.52},
		{Name: "create_incident", Confidence: 0.48},
	})

	assert.Equal(t, []string{"add_comment", "create_incident"}, options)
	assert.Contains(t, prompt, "add comment")
	assert.Contains(t, prompt, "create incident")
}

func TestClarificationPromptCapsOptions(t *testing.T) {
	_, options := clarificationPrompt([]intent.CandidateIntent{
		{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}, {Name: "e"},
	})
	assert.Len(t, options, 3)
}

func TestClarificationPromptNoCandidates(t *testing.T) {
	prompt, options := clarificationPrompt(nil)
	assert.NotEmpty(t, prompt)
	assert.Empty(t, options)
}

func TestDefaultRegistryCoversClosedSet(t *testing.T) {
	r := DefaultRegistry()
	for _, name := range []string{
		constant.IntentCancel, constant.IntentHelp, constant.IntentStartTask,
		constant.IntentSelectTask, constant.IntentUpdateProgress,
		constant.IntentAddComment, constant.IntentCreateIncident,
		constant.IntentProvideData, constant.IntentConfirm,
	} {
		assert.NotNil(t, r.Handler(name), "missing handler for %s", name)
	}
	// Chit-chat always takes the full reasoning path.
	assert.Nil(t, r.Handler(constant.IntentSmallTalk))
}

func handlerCtx(state string, in intent.CandidateIntent) *HandlerContext {
	return &HandlerContext{
		Session: &entity.Session{FsmState: state},
		Intent:  in,
	}
}

func TestHandleCancelIdleIsNoop(t *testing.T) {
	out, err := handleCancel(context.Background(), handlerCtx(constant.StateIdle, intent.CandidateIntent{Name: constant.IntentCancel}))
	require.NoError(t, err)
	assert.Empty(t, out.Trigger)
	assert.NotEmpty(t, out.Text)
}

func TestHandleCancelMidFlow(t *testing.T) {
	out, err := handleCancel(context.Background(), handlerCtx(constant.StateCollectingData, intent.CandidateIntent{Name: constant.IntentCancel}))
	require.NoError(t, err)
	assert.Equal(t, fsm.TriggerCancel, out.Trigger)
	require.NotNil(t, out.Patch.ExpectingResponse)
	assert.False(t, *out.Patch.ExpectingResponse)
}

func TestHandleStartTask(t *testing.T) {
	out, err := handleStartTask(context.Background(), handlerCtx(constant.StateIdle, intent.CandidateIntent{Name: constant.IntentStartTask}))
	require.NoError(t, err)
	assert.Equal(t, fsm.TriggerStartTaskFlow, out.Trigger)
	assert.Contains(t, out.Patch.AvailableNextActions, constant.IntentSelectTask)

	// Already mid-flow: no trigger, just a nudge.
	out, err = handleStartTask(context.Background(), handlerCtx(constant.StateCollectingData, intent.CandidateIntent{Name: constant.IntentStartTask}))
	require.NoError(t, err)
	assert.Empty(t, out.Trigger)
}

func TestHandleSelectTaskCarriesTaskParam(t *testing.T) {
	out, err := handleSelectTask(context.Background(), handlerCtx(constant.StateTaskSelection, intent.CandidateIntent{
		Name:       constant.IntentSelectTask,
		Parameters: map[string]interface{}{"task": "deploy-v2"},
	}))
	require.NoError(t, err)
	assert.Equal(t, fsm.TriggerTaskChosen, out.Trigger)
	assert.Equal(t, "deploy-v2", out.Patch.Extra["task"])
	assert.Contains(t, out.Text, "deploy-v2")
}

func TestHandleProvideData(t *testing.T) {
	out, err := handleProvideData(context.Background(), handlerCtx(constant.StateCollectingData, intent.CandidateIntent{
		Name:       constant.IntentProvideData,
		Parameters: map[string]interface{}{"complete": false},
	}))
	require.NoError(t, err)
	assert.Equal(t, fsm.TriggerNeedsData, out.Trigger)

	out, err = handleProvideData(context.Background(), handlerCtx(constant.StateCollectingData, intent.CandidateIntent{
		Name:       constant.IntentProvideData,
		Parameters: map[string]interface{}{"complete": true},
	}))
	require.NoError(t, err)
	assert.Equal(t, fsm.TriggerDataComplete, out.Trigger)
	assert.Contains(t, out.Patch.AvailableNextActions, constant.IntentConfirm)
}

func TestHandleConfirmClosesSession(t *testing.T) {
	out, err := handleConfirm(context.Background(), handlerCtx(constant.StateConfirmationPending, intent.CandidateIntent{Name: constant.IntentConfirm}))
	require.NoError(t, err)
	assert.Equal(t, fsm.TriggerConfirm, out.Trigger)
	assert.Equal(t, constant.ClosureCompleted, out.ClosureReason)
}
