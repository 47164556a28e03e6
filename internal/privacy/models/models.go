// Package models holds the payloads exchanged with the privacy tooling host.
package models

// DataPoint is one labelled value in an export item.
type DataPoint struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ExportItem is one record in a personal data export, grouped for display.
type ExportItem struct {
	GroupID    string      `json:"group_id"`
	GroupLabel string      `json:"group_label"`
	ItemID     string      `json:"item_id"`
	Data       []DataPoint `json:"data"`
}

// ExportResponse is a single export page. Done tells the host to stop paging.
type ExportResponse struct {
	Data []ExportItem `json:"data"`
	Done bool         `json:"done"`
}

// ErasureResponse is a single erasure page.
type ErasureResponse struct {
	ItemsRemoved  bool     `json:"items_removed"`
	ItemsRetained bool     `json:"items_retained"`
	Messages      []string `json:"messages"`
	Done          bool     `json:"done"`
}

// ExportReport aggregates every export page for one identity.
type ExportReport struct {
	Email string       `json:"email"`
	Items []ExportItem `json:"items"`
	Pages int          `json:"pages"`
}

// ErasureReport aggregates every erasure page for one identity.
type ErasureReport struct {
	Email         string   `json:"email"`
	ItemsRemoved  bool     `json:"items_removed"`
	ItemsRetained bool     `json:"items_retained"`
	Messages      []string `json:"messages"`
	Pages         int      `json:"pages"`
	Sweeps        int      `json:"sweeps"`
}
