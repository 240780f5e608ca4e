package logparse

import (
	"regexp"
	"strings"
)

const (
	// GCOverheadMarker is the JVM message for garbage-collector overhead
	// exhaustion.
	GCOverheadMarker = "GC overhead limit exceeded"

	// OutOfMemoryError is the identifier reported for GCOverheadMarker.
	OutOfMemoryError = "java.lang.OutOfMemoryError"
)

// ExceptionRegex matches a package-qualified Java identifier ending in
// "Exception", e.g. java.lang.NullPointerException or java.lang.Exception.
var ExceptionRegex = regexp.MustCompile(`(?:[A-Za-z_$][\w$]*\.)+(?:[A-Za-z_$][\w$]*)?Exception\b`)

// ExceptionClassifier resolves the exception identifier named by a record.
type ExceptionClassifier struct{}

// NewExceptionClassifier creates a classifier.
func NewExceptionClassifier() *ExceptionClassifier {
	return &ExceptionClassifier{}
}

// Classify returns the exception identifier for rawText. The GC overhead
// marker takes priority over any exception name in the same text. It
// returns false when the text names no exception.
func (c *ExceptionClassifier) Classify(rawText string) (string, bool) {
	if strings.Contains(rawText, GCOverheadMarker) {
		return OutOfMemoryError, true
	}
	if name := ExceptionRegex.FindString(rawText); name != "" {
		return name, true
	}
	return "", false
}
