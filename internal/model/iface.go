package model

// SnapshotSource provides the sorted aggregate a report is rendered from.
type SnapshotSource interface {
	Snapshot() []Entry
}

// Classifier maps the free text of one record to an exception identifier.
type Classifier interface {
	Classify(rawText string) (string, bool)
}
