package model

import "time"

// Shared defaults used by the CLI and the dispatcher.
const (
	DefaultLogPrefix  = "log"
	DefaultDeadline   = 10 * time.Second
	DefaultReportName = "Statistic.txt"
	DefaultMode       = "basic"
)
