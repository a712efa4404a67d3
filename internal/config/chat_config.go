package config

import "time"

const (
	// Typing presence
	// TypingQuietWindow is the caller-side debounce: one "stopped typing"
	// write per pause, not one write per keystroke.
	TypingQuietWindow = 2 * time.Second
	// TypingStaleWindow is the passive expiry: indicators older than this
	// are excluded from "is typing" views even if the delete was lost.
	TypingStaleWindow = 10 * time.Second
	// TypingSweepInterval is how often the hub removes stale rows server-side.
	TypingSweepInterval = 30 * time.Second

	// Chat
	MaxMessageLength  = 4000
	DefaultInboxLimit = 50

	// Moderation
	InitialReputation      = 1000
	SuspendThreshold       = 500
	ReportFrequencyLimit   = 5
	ReportFrequencyWindow  = 24 * time.Hour
	SuspendLevel1Duration  = 30 * time.Minute
	SuspendLevel2Duration  = 6 * time.Hour
	SuspendLevel3Duration  = 24 * time.Hour
)

// ReportWeights maps a report reason to its reputation cost.
var ReportWeights = map[string]int{
	"spam":       5,
	"harassment": 50,
	"scam":       250,
}
