package logger

// OutputCategory defines a category of output that can be enabled/disabled.
//
// Unlike log levels (which filter by severity), output categories control
// WHAT types of information are displayed regardless of severity.
type OutputCategory int

const (
	// Level 0 (default) - Always shown
	OutputResults    OutputCategory = iota // Resolved documents, run tables
	OutputErrors                           // Errors with hints
	OutputUserStatus                       // Final success/failure status

	// Level 1 (-v) - Informational
	OutputRunSummary // Per-run leaf counts
	OutputFetch      // CDS requests made
	OutputWatch      // Watcher events

	// Level 2 (-vv) - Detailed
	OutputTiming         // Operation timing
	OutputConfig         // Config values loaded/applied
	OutputUnresolvedLeaf // Paths of leaves that resolved to nothing

	// Level 3 (-vvv) - Trace
	OutputTokenTrace // Every token with its strategy and outcome
	OutputSQLQueries // Run ledger statements

	// Level 4 (-vvvv) - Full dump
	OutputRecordDump   // Full CDS record
	OutputDocumentDump // Full template before resolution
)

// categoryLevels maps each output category to its minimum verbosity level
var categoryLevels = map[OutputCategory]int{
	OutputResults:    VerbosityUser,
	OutputErrors:     VerbosityUser,
	OutputUserStatus: VerbosityUser,

	OutputRunSummary: VerbosityInfo,
	OutputFetch:      VerbosityInfo,
	OutputWatch:      VerbosityInfo,

	OutputTiming:         VerbosityDebug,
	OutputConfig:         VerbosityDebug,
	OutputUnresolvedLeaf: VerbosityDebug,

	OutputTokenTrace: VerbosityTrace,
	OutputSQLQueries: VerbosityTrace,

	OutputRecordDump:   VerbosityAll,
	OutputDocumentDump: VerbosityAll,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		// Unknown category, default to highest verbosity required
		return verbosity >= VerbosityAll
	}
	return verbosity >= minLevel
}

var categoryNames = map[OutputCategory]string{
	OutputResults:        "results",
	OutputErrors:         "errors",
	OutputUserStatus:     "status",
	OutputRunSummary:     "run-summary",
	OutputFetch:          "fetch",
	OutputWatch:          "watch",
	OutputTiming:         "timing",
	OutputConfig:         "config",
	OutputUnresolvedLeaf: "unresolved",
	OutputTokenTrace:     "tokens",
	OutputSQLQueries:     "sql",
	OutputRecordDump:     "record-dump",
	OutputDocumentDump:   "document-dump",
}

// CategoryName returns the human-readable name for an output category
func CategoryName(category OutputCategory) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "unknown"
}
