package driven

import "context"

// DocumentSource fetches raw documentation pages.
//
// A failed fetch for one href is isolated: ingestion logs the failure and
// continues with the remaining pages.
type DocumentSource interface {
	// Fetch retrieves the raw body of the page at href.
	Fetch(ctx context.Context, href string) ([]byte, error)
}
