package pipeline

// User-facing notices. The host adds its own prefix.
const (
	MsgNoWorkspace      = "Couldn’t find workspace."
	MsgNoActiveFile     = "No active file to create the template next to."
	MsgNoTemplates      = "No templates found!"
	MsgNoSelection      = "No template selected"
	MsgAborted          = "Aborted"
	MsgTargetPrompt     = "Enter a path relative to project root where your template should be created"
	MsgPickTitle        = "Which template would you like to use?"
	MsgPickPlaceHolder  = "Pick a template"
	MsgRerunLabelFormat = "Rerun %s with the same answers"
	MsgRerunDetail      = "Reuses the answers given last time without asking again"
)
