package tpig

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Scaffold files from templates that live in your workspace"
	MsgUseShort        = "Apply a template to a target folder"
	MsgListShort       = "List the available templates"
	MsgListLong        = "List shows the templates found in the workspace templates path and the global templates path, in the order they are offered."
	MsgNewShort        = "Create a new template"
	MsgConfigShort     = "Print the effective configuration"
	MsgSessionShort    = "Apply templates repeatedly, remembering the last answers"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	// Status messages
	MsgDryRunNotice      = "DRY RUN MODE - No changes were made"
	MsgTemplateCreated   = "Created template '%s' in %s\n"
	MsgTemplateExists    = "template %q already exists in %s"
	MsgSessionAgain      = "Apply another template?"
	MsgVersionFormat     = "tpig version %s\n  commit: %s\n  built:  %s\n"
	MsgNoGlobalTemplates = "no global templates path configured"

	// Error messages
	MsgErrLoadConfig = "failed to load configuration: %w"
	MsgErrRun        = "template run did not complete"

	// Flag descriptions
	MsgFlagVerbose    = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun     = "Preview changes without writing them"
	MsgFlagWorkspace  = "Workspace root (default: nearest folder with a workspace marker)"
	MsgFlagTemplates  = "Templates folder, relative to the workspace (overrides templates_path)"
	MsgFlagActiveFile = "File backing the __current target (default $TPIG_ACTIVE_FILE)"
	MsgFlagOutput     = "Output format: auto, term, text, json or yaml"
	MsgFlagLong       = "Show template descriptions"
	MsgFlagGlobal     = "Create the template in the global templates path"
	MsgFlagNoOpen     = "Do not open written documents"

	// Environment
	EnvActiveFile = "TPIG_ACTIVE_FILE"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/use-long.txt
	msgUseLongRaw string
	MsgUseLong    = strings.TrimSpace(msgUseLongRaw)

	//go:embed msgs/use-example.txt
	msgUseExampleRaw string
	MsgUseExample    = strings.TrimRight(msgUseExampleRaw, "\n")

	//go:embed msgs/list-example.txt
	msgListExampleRaw string
	MsgListExample    = strings.TrimRight(msgListExampleRaw, "\n")

	//go:embed msgs/new-long.txt
	msgNewLongRaw string
	MsgNewLong    = strings.TrimSpace(msgNewLongRaw)

	//go:embed msgs/session-long.txt
	msgSessionLongRaw string
	MsgSessionLong    = strings.TrimSpace(msgSessionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
