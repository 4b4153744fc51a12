package retrieval

import (
	"github.com/poiesic/advisor/core"
	"github.com/poiesic/advisor/resolve"
)

// Monitor provides hooks to observe the retrieval process.
type Monitor interface {
	Start(query string, level core.Level)
	AfterResolve(resolution resolve.Resolution)
	AfterExactMatch(course core.CourseID, docs []*core.CourseDocument, byRawNumber bool)
	AfterTitleSearch(weightedQuery string, matches []*core.DocumentMatch)
	AfterFullSearch(matches []*core.DocumentMatch)
	Finish(result *Result)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ core.Level)                                      {}
func (n *noopMonitor) AfterResolve(_ resolve.Resolution)                                 {}
func (n *noopMonitor) AfterExactMatch(_ core.CourseID, _ []*core.CourseDocument, _ bool) {}
func (n *noopMonitor) AfterTitleSearch(_ string, _ []*core.DocumentMatch)                {}
func (n *noopMonitor) AfterFullSearch(_ []*core.DocumentMatch)                           {}
func (n *noopMonitor) Finish(_ *Result)                                                  {}
