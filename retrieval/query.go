package retrieval

import (
	"strings"

	"github.com/poiesic/advisor/resolve"
)

// weightedQuery builds the text embedded for semantic search. When courses
// were resolved their variations lead and the upper-cased query is repeated
// twice to keep its words in play.
func weightedQuery(query string, resolution resolve.Resolution) string {
	upper := strings.ToUpper(query)
	if resolution.IsEmpty() {
		return upper
	}
	parts := make([]string, 0, len(resolution.Variations)+2)
	parts = append(parts, resolution.Variations...)
	parts = append(parts, upper, upper)
	return strings.Join(parts, " ")
}

// collector accumulates documents, dropping repeated texts and anything
// beyond the limit.
type collector struct {
	limit int
	docs  []string
	seen  map[string]bool
}

func newCollector(limit int) *collector {
	return &collector{limit: limit, seen: make(map[string]bool)}
}

// add appends text if it is new and there is room, reporting whether it was kept.
func (c *collector) add(text string) bool {
	if c.seen[text] || c.full() {
		return false
	}
	c.seen[text] = true
	c.docs = append(c.docs, text)
	return true
}

// addUnbounded appends text if it is new, ignoring the limit.
func (c *collector) addUnbounded(text string) {
	if c.seen[text] {
		return
	}
	c.seen[text] = true
	c.docs = append(c.docs, text)
}

func (c *collector) full() bool {
	return len(c.docs) >= c.limit
}

func (c *collector) documents() []string {
	if len(c.docs) > c.limit {
		return c.docs[:c.limit]
	}
	return c.docs
}
