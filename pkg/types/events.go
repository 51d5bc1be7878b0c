package types

import "net/url"

// AddedEvent reports a successful add for the presentation layer.
type AddedEvent struct {
	Name     string `json:"name"`
	Added    int    `json:"added"`
	NewTotal int    `json:"new_total"`
}

// DepletedEvent reports that a remove drove an item's quantity to zero.
// It is returned once by the operation that caused the depletion and is
// not stored anywhere; the presentation layer consumes it immediately.
// SearchLinks are restock search queries the operator can follow by hand.
type DepletedEvent struct {
	Name        string   `json:"name"`
	SearchLinks []string `json:"search_links"`
}

// SearchLinks builds two search-engine query URLs for restocking the
// named item. Pure string construction; no network calls.
func SearchLinks(name string) []string {
	q := url.QueryEscape("buy frozen " + name)
	return []string{
		"https://www.google.com/search?q=" + q,
		"https://duckduckgo.com/?q=" + q,
	}
}
