// Package pagination collects every page of a paginated list endpoint.
//
// List responses carry a pagination block with totalPages (or total and
// limit). The collector fetches page 1 to learn the page count, then fetches
// the remaining pages in parallel with bounded concurrency and returns the
// items in page order.
//
// Example usage:
//
//	collector := pagination.NewCollector(c.ListVideos, pagination.DefaultConfig())
//	result, err := collector.FetchAll(ctx, client.ListParams{Category: "research", Limit: 100})
//
// The collector:
//   - Fetches the first page to determine total pages
//   - Runs at most MaxConcurrency page requests at once (errgroup)
//   - Stops at MaxPages and marks the result as truncated
//   - Fails as a whole when any page fails; no partial data is returned
//
// Every page goes through the caching client, so collecting the same filter
// twice within the cache TTL issues no requests.
package pagination
