// Package camera defines the camera records shared across the discovery
// pipeline: partially-known summaries scraped from list pages, fully-resolved
// details scraped from per-camera pages, and the read-through union of both.
package camera

// Summary is a partially-known camera taken from a list page. Coordinates are
// not known at this stage; Name may equal ID when the page carried no caption.
type Summary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SnapshotURL string `json:"snapshot_url"`
	LiveFeedURL string `json:"live_feed_url,omitempty"`
}

// Coords is a WGS84 position in decimal degrees.
type Coords struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Detail is a fully-resolved camera. A Detail always carries coordinates; a
// detail page that publishes none never becomes a Detail. SnapshotURL is
// derived from the id, never scraped.
type Detail struct {
	ID          string `json:"id"`
	Coords      Coords `json:"coords"`
	Name        string `json:"name"`
	SnapshotURL string `json:"snapshot_url"`
	LiveFeedURL string `json:"live_feed_url,omitempty"`
}

// Record is everything currently known about a camera: always the summary
// fields, plus coordinates once detail resolution has succeeded.
type Record struct {
	Summary
	Coords *Coords `json:"coords,omitempty"`
}

// Resolved reports whether the record carries verified coordinates.
func (r Record) Resolved() bool { return r.Coords != nil }

// AsRecord widens a Detail into a Record.
func (d Detail) AsRecord() Record {
	c := d.Coords
	return Record{
		Summary: Summary{
			ID:          d.ID,
			Name:        d.Name,
			SnapshotURL: d.SnapshotURL,
			LiveFeedURL: d.LiveFeedURL,
		},
		Coords: &c,
	}
}
