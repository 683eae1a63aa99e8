package pipeline

import (
	"context"
	"fmt"

	"biz-assistant-be/internal/constant"
	"biz-assistant-be/pkg/fsm"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

// stringParam pulls a string parameter out of the classifier's extraction.
func stringParam(params map[string]interface{}, key string) string {
	if params == nil {
		return ""
	}
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

func boolParam(params map[string]interface{}, key string) bool {
	if params == nil {
		return false
	}
	if v, ok := params[key].(bool); ok {
		return v
	}
	return false
}

// DefaultRegistry wires the fast-path handlers for the closed intent set.
// small_talk is deliberately absent: chit-chat always takes the full
// reasoning path.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(constant.IntentCancel, HandlerFunc(handleCancel))
	r.Register(constant.IntentHelp, HandlerFunc(handleHelp))
	r.Register(constant.IntentStartTask, HandlerFunc(handleStartTask))
	r.Register(constant.IntentSelectTask, HandlerFunc(handleSelectTask))
	r.Register(constant.IntentUpdateProgress, HandlerFunc(handleAction(constant.IntentUpdateProgress, "What's the new progress?")))
	r.Register(constant.IntentAddComment, HandlerFunc(handleAction(constant.IntentAddComment, "What should the comment say?")))
	r.Register(constant.IntentCreateIncident, HandlerFunc(handleAction(constant.IntentCreateIncident, "Describe the incident, please.")))
	r.Register(constant.IntentProvideData, HandlerFunc(handleProvideData))
	r.Register(constant.IntentConfirm, HandlerFunc(handleConfirm))
	return r
}

func handleCancel(ctx context.Context, hc *HandlerContext) (*Outcome, error) {
	if hc.Session.FsmState == constant.StateIdle {
		return &Outcome{Text: "Nothing in progress to cancel."}, nil
	}
	return &Outcome{
		Text:    "Okay, cancelled. What would you like to do next?",
		Trigger: fsm.TriggerCancel,
		Patch: fsm.MetadataPatch{
			ExpectingResponse:    boolPtr(false),
			LastAction:           strPtr(constant.IntentCancel),
			AvailableNextActions: []string{},
		},
	}, nil
}

func handleHelp(ctx context.Context, hc *HandlerContext) (*Outcome, error) {
	return &Outcome{
		Text: "I can help you work with tasks: start or pick a task, update its progress, " +
			"add comments, report incidents, or cancel whatever is in progress. Just tell me what you need.",
	}, nil
}

func handleStartTask(ctx context.Context, hc *HandlerContext) (*Outcome, error) {
	if hc.Session.FsmState != constant.StateIdle {
		return &Outcome{Text: "You already have something in progress. Say \"cancel\" first if you want to switch."}, nil
	}
	return &Outcome{
		Text:    "Sure. Which task are we working on?",
		Trigger: fsm.TriggerStartTaskFlow,
		Patch: fsm.MetadataPatch{
			ExpectingResponse:    boolPtr(true),
			LastAction:           strPtr(constant.IntentStartTask),
			AvailableNextActions: []string{constant.IntentSelectTask, constant.IntentCancel},
		},
	}, nil
}

func handleSelectTask(ctx context.Context, hc *HandlerContext) (*Outcome, error) {
	task := stringParam(hc.Intent.Parameters, "task")
	text := "Got it. What do you want to do with it?"
	if task != "" {
		text = fmt.Sprintf("Got it, working on %q. What do you want to do with it?", task)
	}
	patch := fsm.MetadataPatch{
		ExpectingResponse: boolPtr(true),
		LastAction:        strPtr(constant.IntentSelectTask),
		AvailableNextActions: []string{
			constant.IntentUpdateProgress,
			constant.IntentAddComment,
			constant.IntentCreateIncident,
			constant.IntentCancel,
		},
	}
	if task != "" {
		patch.Extra = map[string]string{"task": task}
	}
	return &Outcome{Text: text, Trigger: fsm.TriggerTaskChosen, Patch: patch}, nil
}

// handleAction builds a handler for the action-choosing intents; they all
// move into data collection and differ only in prompt and recorded action.
func handleAction(action, prompt string) func(ctx context.Context, hc *HandlerContext) (*Outcome, error) {
	return func(ctx context.Context, hc *HandlerContext) (*Outcome, error) {
		return &Outcome{
			Text:    prompt,
			Trigger: fsm.TriggerActionChosen,
			Patch: fsm.MetadataPatch{
				ExpectingResponse:    boolPtr(true),
				LastAction:           strPtr(action),
				AvailableNextActions: []string{constant.IntentProvideData, constant.IntentCancel},
			},
		}, nil
	}
}

func handleProvideData(ctx context.Context, hc *HandlerContext) (*Outcome, error) {
	if boolParam(hc.Intent.Parameters, "complete") {
		return &Outcome{
			Text:    "Thanks, that's everything I need. Shall I go ahead?",
			Trigger: fsm.TriggerDataComplete,
			Patch: fsm.MetadataPatch{
				ExpectingResponse:    boolPtr(true),
				LastAction:           strPtr(constant.IntentProvideData),
				AvailableNextActions: []string{constant.IntentConfirm, constant.IntentCancel},
			},
		}, nil
	}
	return &Outcome{
		Text:    "Noted. Anything else to add?",
		Trigger: fsm.TriggerNeedsData,
		Patch: fsm.MetadataPatch{
			ExpectingResponse:    boolPtr(true),
			LastAction:           strPtr(constant.IntentProvideData),
			AvailableNextActions: []string{constant.IntentProvideData, constant.IntentConfirm, constant.IntentCancel},
		},
	}, nil
}

func handleConfirm(ctx context.Context, hc *HandlerContext) (*Outcome, error) {
	return &Outcome{
		Text:          "Done! The update has been recorded.",
		ClosureReason: constant.ClosureCompleted,
		Trigger:       fsm.TriggerConfirm,
		Patch: fsm.MetadataPatch{
			ExpectingResponse:    boolPtr(false),
			LastAction:           strPtr(constant.IntentConfirm),
			AvailableNextActions: []string{},
		},
	}, nil
}
