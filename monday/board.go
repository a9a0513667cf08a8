package monday

import (
	"context"
	"fmt"
)

const columnValuesFragment = `
        column_values {
          id
          type
          text
          value
          ... on MirrorValue { display_value }
          ... on BoardRelationValue { display_value }
        }`

const boardQuery = `
query ($boardID: [ID!], $limit: Int!) {
  boards(ids: $boardID) {
    id
    name
    columns { id title type }
    items_page(limit: $limit) {
      cursor
      items {
        id
        name
        group { title }` + columnValuesFragment + `
      }
    }
  }
}`

const nextPageQuery = `
query ($cursor: String!, $limit: Int!) {
  next_items_page(cursor: $cursor, limit: $limit) {
    cursor
    items {
      id
      name
      group { title }` + columnValuesFragment + `
    }
  }
}`

// BoardItems fetches board metadata and every item on the board, following
// the items_page cursor until the API stops returning one. pageSize bounds
// each page; the API itself caps it at 500.
func (c *Client) BoardItems(ctx context.Context, boardID string, pageSize int) (*Board, []Item, error) {
	var first struct {
		Boards []struct {
			Board
			ItemsPage itemsPage `json:"items_page"`
		} `json:"boards"`
	}
	vars := map[string]any{"boardID": []string{boardID}, "limit": pageSize}
	if err := c.Do(ctx, boardQuery, vars, &first); err != nil {
		return nil, nil, fmt.Errorf("failed to fetch board %s: %w", boardID, err)
	}
	if len(first.Boards) == 0 {
		return nil, nil, fmt.Errorf("board %s not found", boardID)
	}

	board := first.Boards[0].Board
	items := first.Boards[0].ItemsPage.Items
	cursor := first.Boards[0].ItemsPage.Cursor

	for cursor != "" {
		var next struct {
			NextItemsPage itemsPage `json:"next_items_page"`
		}
		vars := map[string]any{"cursor": cursor, "limit": pageSize}
		if err := c.Do(ctx, nextPageQuery, vars, &next); err != nil {
			return nil, nil, fmt.Errorf("failed to fetch next page for board %s: %w", boardID, err)
		}
		items = append(items, next.NextItemsPage.Items...)
		cursor = next.NextItemsPage.Cursor
	}

	return &board, items, nil
}

// ColumnTitles returns a lookup from column id to column title.
func (b *Board) ColumnTitles() map[string]string {
	titles := make(map[string]string, len(b.Columns))
	for _, col := range b.Columns {
		titles[col.ID] = col.Title
	}
	return titles
}
