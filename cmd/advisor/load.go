package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/poiesic/advisor/catalog"
	"github.com/poiesic/advisor/core"
	"github.com/urfave/cli/v2"
)

func loadCommand() *cli.Command {
	return &cli.Command{
		Name:   "load",
		Usage:  "Rebuild the course collections from a catalog JSON file",
		Action: loadAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "courses",
				Aliases:  []string{"c"},
				Usage:    "Path to the scraped course catalog JSON",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Number of documents embedded per request",
				Value: catalog.DefaultBatchSize,
			},
			&cli.IntFlag{
				Name:  "pool-size",
				Usage: "Number of batches embedded concurrently",
				Value: max(runtime.NumCPU()/2, 1),
			},
			&cli.IntFlag{
				Name:  "max-retries",
				Usage: "Maximum attempts per embedding batch",
				Value: catalog.DefaultMaxRetries,
			},
			&cli.DurationFlag{
				Name:  "retry-delay",
				Usage: "Base delay for exponential backoff",
				Value: catalog.DefaultRetryDelay,
			},
			&cli.StringSliceFlag{
				Name:  "verify",
				Usage: "Course numbers to look up after loading",
				Value: cli.NewStringSlice("CSE3901", "CSE3902", "CSE3241"),
			},
		},
	}
}

func loadAction(c *cli.Context) error {
	ctx := context.Background()

	if c.Int("batch-size") <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if c.Int("max-retries") <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	var verify []core.CourseID
	for _, raw := range c.StringSlice("verify") {
		number, ok := core.NormalizeCourseID(raw)
		if !ok {
			return fmt.Errorf("invalid course number %q", raw)
		}
		verify = append(verify, number)
	}

	f, err := os.Open(c.String("courses"))
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	courses, err := catalog.ReadCourses(f)
	if err != nil {
		return err
	}

	adv, err := openAdvisor(c)
	if err != nil {
		return err
	}
	defer adv.Close()

	loader, err := adv.NewLoader(
		catalog.WithBatchSize(c.Int("batch-size")),
		catalog.WithPoolSize(c.Int("pool-size")),
		catalog.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
		catalog.WithProgress(os.Stderr),
	)
	if err != nil {
		return err
	}
	defer loader.Release()

	out := c.App.Writer
	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Catalog: %s (%d courses)\n", c.String("courses"), len(courses))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	start := time.Now()
	counts, err := loader.Load(ctx, courses)
	if err != nil {
		return fmt.Errorf("loading failed: %w", err)
	}

	for _, collection := range core.AllCollections() {
		fmt.Fprintf(out, "Added %d documents to %s\n", counts[collection], collection.Name())
	}
	fmt.Fprintf(out, "Loaded in %s\n", time.Since(start).Round(time.Millisecond))

	results, err := loader.Verify(ctx, verify...)
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Found {
			fmt.Fprintf(out, "Found %s (%s): %s\n", r.Number, r.Level, r.Heading)
		} else {
			fmt.Fprintf(out, "Missing %s\n", r.Number)
		}
	}
	return nil
}
