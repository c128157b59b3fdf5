package feed

import "time"

// Format selectors accepted on the feed endpoint. Anything unrecognized
// falls through to RSS.
const (
	FormatRSS  = "rss"
	FormatAtom = "atom"
	FormatJSON = "json"
)

// Feed is the renderer-agnostic document assembled by the feed handler.
type Feed struct {
	Title       string
	SiteURL     string
	Description string
	// Link points back into the admin record list, filtered to the
	// newest record. Empty when the feed has no records.
	Link string
	// Updated is the newest record's timestamp, nil when empty.
	Updated *time.Time
	Items   []Item
}

// Item is one record entry in a rendered feed.
type Item struct {
	ID        string
	Title     string
	Link      string
	Author    string
	Connector string
	Context   string
	Action    string
	Created   time.Time
}
