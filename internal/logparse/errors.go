package logparse

import "errors"

var errMissingHour = errors.New("timestamp pattern has no hour group")
