// Package catalog turns the scraped course catalog into the four searchable
// collections used by retrieval.
//
// Loading reads the catalog JSON, assigns each course a level, renders the
// title and full documents, embeds them in batches on a worker pool with
// retry and exponential backoff, normalizes the vectors so that dot product
// equals cosine similarity, and stores them. Verify checks afterwards that
// known course numbers resolve by exact match.
package catalog
