package repatch

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Apply byte-exact, idempotent patch sets to files"
	MsgApplyShort      = "Apply patch sets to their targets"
	MsgCheckShort      = "Show what apply would do without writing"
	MsgCheckLong       = "Check runs the same steps as apply --dry-run: the target is located, loaded and patched in memory, and nothing is backed up or written."
	MsgLintShort       = "Validate patch set files"
	MsgLocateShort     = "Show which file a patch set targets"
	MsgLocateLong      = "Locate lists every path a patch set would try, in order, and marks the one that exists."
	MsgGenConfigShort  = "Print the default configuration"
	MsgGenConfigLong   = "Print the default configuration file. Save it to the path shown by --config's default to customise repatch."
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Generate the man page"

	// Status messages
	MsgVersionFormat = "repatch version %s\n  commit: %s\n  built:  %s\n"
	MsgIncomplete    = "%d of %d rules were skipped or only partially applied"
	MsgConfigPath    = "# Default location: %s\n"
	MsgSummary       = "%d patch sets: %d %s, %d unchanged"

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig  = "Configuration file (default $XDG_CONFIG_HOME/repatch/config.toml)"
	MsgFlagFormat  = "Output format: auto, term, text or json (default from config)"
	MsgFlagTarget  = "Patch this file instead of searching for the target"
	MsgFlagDryRun  = "Apply in memory only, without backing up or writing"
	MsgFlagVar     = "Value for a templated rule, as key=value (repeatable)"
	MsgFlagRetry   = "Retry a busy write this many times (default from config)"
	MsgFlagStrict  = "Exit with status 2 when a rule is skipped or partial"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/apply-long.txt
	msgApplyLongRaw string
	MsgApplyLong    = strings.TrimSpace(msgApplyLongRaw)

	//go:embed msgs/apply-example.txt
	msgApplyExampleRaw string
	MsgApplyExample    = strings.TrimRight(msgApplyExampleRaw, "\n")

	//go:embed msgs/lint-long.txt
	msgLintLongRaw string
	MsgLintLong    = strings.TrimSpace(msgLintLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
