package model

import "time"

// Shared defaults used by both the server and TUI binaries.
const (
	DefaultBinCount     = 25
	DefaultScatterBins  = 50
	DefaultProfileLimit = 100 // max category buckets included in a profile
	DefaultRefresh      = 5 * time.Second
)
