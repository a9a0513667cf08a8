package monday

import "encoding/json"

// Board is the subset of board metadata a sync needs.
type Board struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Column describes one board column.
type Column struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// Item is a single board row with its column values.
type Item struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Group        *Group        `json:"group"`
	ColumnValues []ColumnValue `json:"column_values"`
}

// Group is the board group an item belongs to.
type Group struct {
	Title string `json:"title"`
}

// ColumnValue carries the API's text rendering of a column value plus the
// raw typed JSON. Mirror and board_relation columns expose their content
// through display_value instead of text.
type ColumnValue struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	Text         string          `json:"text"`
	Value        json.RawMessage `json:"value"`
	DisplayValue string          `json:"display_value,omitempty"`
}

type itemsPage struct {
	Cursor string `json:"cursor"`
	Items  []Item `json:"items"`
}
