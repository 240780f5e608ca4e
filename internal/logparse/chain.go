package logparse

// Chain is an ordered list of matchers. The first matcher whose header
// occurs in a file parses that whole file; matchers are never mixed
// within one file.
type Chain struct {
	matchers []*LineMatcher
}

// NewChain builds a chain that tries matchers in the given order.
func NewChain(matchers ...*LineMatcher) *Chain {
	return &Chain{matchers: matchers}
}

// DefaultChain returns the built-in formats in priority order. Formats
// with a date come before time-only ones so a time-only pattern never
// claims the time portion of a dated line. The headers are mutually
// exclusive, so the order only matters for files that mix formats.
func DefaultChain() *Chain {
	return NewChain(dateTimeThreadMatcher, dateTimeMatcher, timeThreadMatcher, timeLevelMatcher)
}

// Select returns the matcher that owns text, or false when no format
// matches.
func (c *Chain) Select(text string) (*LineMatcher, bool) {
	for _, m := range c.matchers {
		if m.Matches(text) {
			return m, true
		}
	}
	return nil, false
}

// Names lists the format names in priority order.
func (c *Chain) Names() []string {
	names := make([]string, 0, len(c.matchers))
	for _, m := range c.matchers {
		names = append(names, m.name)
	}
	return names
}
