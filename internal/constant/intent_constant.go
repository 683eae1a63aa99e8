package constant

// Intent names produced by the classifier. The pipeline dispatches on these
// as a closed set; anything else falls through to the full reasoning path.
const (
	IntentCancel         = "cancel"
	IntentHelp           = "help"
	IntentStartTask      = "start_task"
	IntentSelectTask     = "select_task"
	IntentUpdateProgress = "update_progress"
	IntentAddComment     = "add_comment"
	IntentCreateIncident = "create_incident"
	IntentProvideData    = "provide_data"
	IntentConfirm        = "confirm"
	IntentSmallTalk      = "small_talk"
)

// ChatRole values for conversation turns.
const (
	ChatRoleUser  = "user"
	ChatRoleModel = "model"
)
