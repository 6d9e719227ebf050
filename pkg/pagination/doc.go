// Package pagination fetches a cursor-paginated listing into flattened
// records.
//
// Pages are requested strictly one after another. After every page that
// carries a next cursor the fetcher pauses for a fixed delay, then checks
// whether the target count has been reached. Because the check happens
// after a whole page is appended, the last page may over-fetch by up to
// PageSize-1 records, which are truncated before returning.
//
// Example usage:
//
//	pages, _ := client.New(client.DefaultConfig("my-app/1.0"))
//	fetcher := pagination.NewFetcher(pages, pagination.DefaultConfig())
//	result, err := fetcher.Fetch(ctx, "championsleague", 1000)
//	if err != nil {
//		// invalid arguments, nothing was requested
//	}
//	if result.Err != nil {
//		// a page failed; result.Records holds the pages before it
//	}
//
// The fetcher terminates when:
//   - the accumulated count reaches the target (target_reached)
//   - a page has no items (empty_page)
//   - a page has no next cursor (no_cursor)
//   - a page request fails (page_failed, partial result)
//   - Config.MaxPages requests have been made (page_limit)
package pagination
