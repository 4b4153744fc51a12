package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/advisor/core"
	"github.com/poiesic/advisor/resolve"
	"github.com/poiesic/advisor/retrieval"
	"github.com/urfave/cli/v2"
)

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Run retrieval for a query and show each tier",
		ArgsUsage: "<query>",
		Action:    searchAction,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "results",
				Aliases: []string{"n"},
				Usage:   "Number of documents to retrieve",
				Value:   retrieval.DefaultResultCount,
			},
			&cli.StringFlag{
				Name:  "level",
				Usage: "Student level (undergraduate or graduate)",
				Value: core.LevelUndergraduate.String(),
			},
		},
	}
}

func searchAction(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("a query is required")
	}

	level, err := core.ParseLevel(strings.ToLower(c.String("level")))
	if err != nil {
		return err
	}

	adv, err := openAdvisor(c)
	if err != nil {
		return err
	}
	defer adv.Close()

	// A throwaway session carries the level into retrieval
	sessionID := "search"
	adv.Sessions().SetStudentLevel(sessionID, level)

	result, err := adv.Engine().RetrieveWithMonitor(c.Context, query, sessionID, c.Int("results"), &printMonitor{out: c.App.Writer})
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "\nFound %d documents\n", len(result.Documents))
	for i, doc := range result.Documents {
		fmt.Fprintf(c.App.Writer, "\n%d:\n%s\n", i, doc)
	}
	return nil
}

// printMonitor writes each retrieval tier as it happens.
type printMonitor struct {
	out io.Writer
}

var _ retrieval.Monitor = (*printMonitor)(nil)

func (m *printMonitor) Start(query string, level core.Level) {
	fmt.Fprintf(m.out, "Query: %q (%s)\n", query, level)
}

func (m *printMonitor) AfterResolve(r resolve.Resolution) {
	if r.IsEmpty() {
		fmt.Fprintln(m.out, "Resolved: no course numbers")
		return
	}
	source := "query"
	if r.FromContext {
		source = "conversation"
	}
	fmt.Fprintf(m.out, "Resolved from %s: %v\n", source, r.Courses)
}

func (m *printMonitor) AfterExactMatch(course core.CourseID, docs []*core.CourseDocument, byRawNumber bool) {
	field := "number"
	if byRawNumber {
		field = "number_raw"
	}
	fmt.Fprintf(m.out, "Exact match %s by %s: %d documents\n", course, field, len(docs))
}

func (m *printMonitor) AfterTitleSearch(weightedQuery string, matches []*core.DocumentMatch) {
	fmt.Fprintf(m.out, "Title search %q:\n", weightedQuery)
	m.printMatches(matches)
}

func (m *printMonitor) AfterFullSearch(matches []*core.DocumentMatch) {
	fmt.Fprintln(m.out, "Full search:")
	m.printMatches(matches)
}

func (m *printMonitor) Finish(result *retrieval.Result) {
	fmt.Fprintf(m.out, "Exact match: %v\n", result.ExactMatch)
}

func (m *printMonitor) printMatches(matches []*core.DocumentMatch) {
	for i, match := range matches {
		fmt.Fprintf(m.out, "  %d: %s [%0.3f]\n", i, match.Document.Number, match.Score)
	}
}
