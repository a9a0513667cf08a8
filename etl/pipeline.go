// Package etl wires the stages of a board sync together: fetch items from
// the API, convert column values, validate against the destination schema,
// then truncate-and-reload (or upsert) through the loader pool.
package etl

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Active-Apparel-Group/data-orchestration-sub002/config"
	"github.com/Active-Apparel-Group/data-orchestration-sub002/db"
	"github.com/Active-Apparel-Group/data-orchestration-sub002/monday"
	"github.com/Active-Apparel-Group/data-orchestration-sub002/worker"
)

// Row columns derived from the item itself rather than a column value.
const (
	ItemIDColumn = "item_id"
	NameColumn   = "name"
	GroupColumn  = "group_title"
)

// Stats summarizes one pipeline run.
type Stats struct {
	BoardName      string
	FetchedItems   int
	SkippedItems   int
	DroppedColumns []string
	InsertedRows   int64
	FailedRows     int64
	FailedBatches  int64
	Elapsed        time.Duration
}

// Pipeline executes one board-to-table sync.
type Pipeline struct {
	client *monday.Client
	conn   *db.Connection
	loader *worker.Loader
	cfg    *config.Config
	log    *zap.SugaredLogger
	def    *Definition
}

// New builds a pipeline for def.
func New(client *monday.Client, conn *db.Connection, cfg *config.Config, log *zap.SugaredLogger, def *Definition) *Pipeline {
	return &Pipeline{
		client: client,
		conn:   conn,
		loader: worker.NewLoader(conn, cfg.WorkerCount, cfg, log),
		cfg:    cfg,
		log:    log,
		def:    def,
	}
}

// Progress exposes the loader counters for progress reporting.
func (p *Pipeline) Progress() *worker.Progress {
	return p.loader.GetProgress()
}

// Run executes the sync end to end. Items that fail conversion are logged
// and skipped; batch insert failures are counted but don't abort the run.
func (p *Pipeline) Run(ctx context.Context) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}

	board, items, err := p.client.BoardItems(ctx, p.def.BoardID, p.cfg.PageSize)
	if err != nil {
		return nil, err
	}
	stats.BoardName = board.Name
	stats.FetchedItems = len(items)
	p.log.Infow("fetched board items",
		"board", board.Name,
		"board_id", p.def.BoardID,
		"items", len(items))

	titles := board.ColumnTitles()
	rows := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		row, err := p.buildRow(titles, item)
		if err != nil {
			stats.SkippedItems++
			p.log.Warnw("skipping item", "item_id", item.ID, "error", err)
			continue
		}
		rows = append(rows, row)
	}

	schema, err := p.conn.TableSchema(p.def.Table)
	if err != nil {
		return nil, err
	}
	columns, dropped := p.tableColumns(schema, rows)
	stats.DroppedColumns = dropped
	if len(dropped) > 0 {
		p.log.Warnw("dropping columns with no destination",
			"table", p.def.Table,
			"columns", dropped)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("no mapped columns exist in table %s", p.def.Table)
	}

	if !p.cfg.Upsert && !p.cfg.NoTruncate {
		if err := p.conn.Truncate(p.def.Table); err != nil {
			return nil, err
		}
	}

	if p.cfg.Upsert {
		for _, row := range rows {
			p.loader.SubmitUpsert(p.def.Table, p.def.KeyColumn, columns, row)
		}
	} else {
		p.submitBatches(columns, rows)
	}
	p.loader.StopAndWait()

	progress := p.loader.GetProgress()
	stats.InsertedRows = progress.InsertedRows.Load()
	stats.FailedRows = progress.FailedRows.Load()
	stats.FailedBatches = progress.FailedBatches.Load()
	stats.Elapsed = time.Since(start)

	p.log.Infow("sync finished",
		"board", board.Name,
		"table", p.def.Table,
		"inserted", stats.InsertedRows,
		"failed_rows", stats.FailedRows,
		"skipped_items", stats.SkippedItems,
		"elapsed", stats.Elapsed)

	return stats, nil
}

// buildRow converts one item into a destination row keyed by column name.
func (p *Pipeline) buildRow(titles map[string]string, item monday.Item) (map[string]interface{}, error) {
	row := make(map[string]interface{}, len(item.ColumnValues)+3)

	id, err := strconv.ParseInt(item.ID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("item has non-numeric id %q", item.ID)
	}
	row[p.destColumn(ItemIDColumn)] = id
	row[p.destColumn(NameColumn)] = item.Name
	if item.Group != nil {
		row[p.destColumn(GroupColumn)] = item.Group.Title
	}

	for _, cv := range item.ColumnValues {
		val, err := monday.Convert(cv)
		if err != nil {
			return nil, err
		}
		name := p.def.Columns[cv.ID]
		if name == "" {
			name = titles[cv.ID]
		}
		if name == "" {
			name = cv.ID
		}
		row[name] = val
	}

	return row, nil
}

func (p *Pipeline) destColumn(name string) string {
	if mapped := p.def.Columns[name]; mapped != "" {
		return mapped
	}
	return name
}

// tableColumns intersects the row keys with the destination schema,
// preserving the table's ordinal order, and reports the dropped keys.
func (p *Pipeline) tableColumns(schema *db.TableSchema, rows []map[string]interface{}) ([]string, []string) {
	seen := make(map[string]bool)
	for _, row := range rows {
		for name := range row {
			seen[name] = true
		}
	}

	var columns []string
	for _, col := range schema.Columns {
		if seen[col.Name] {
			columns = append(columns, col.Name)
			delete(seen, col.Name)
		}
	}

	dropped := make([]string, 0, len(seen))
	for name := range seen {
		dropped = append(dropped, name)
	}
	sort.Strings(dropped)
	return columns, dropped
}

// submitBatches chunks rows into fixed-size batches in table column order.
func (p *Pipeline) submitBatches(columns []string, rows []map[string]interface{}) {
	for start := 0; start < len(rows); start += p.cfg.BatchSize {
		end := start + p.cfg.BatchSize
		if end > len(rows) {
			end = len(rows)
		}

		batch := worker.Batch{Table: p.def.Table, Columns: columns}
		for _, row := range rows[start:end] {
			values := make([]interface{}, len(columns))
			for i, col := range columns {
				values[i] = row[col] // missing keys load as NULL
			}
			batch.Rows = append(batch.Rows, values)
		}
		p.loader.Submit(batch)
	}
}
