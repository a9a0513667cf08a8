// Package worker runs destination writes on a fixed-size pool. Batches are
// independent: a failed batch is logged and counted while the rest continue.
package worker

import (
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/Active-Apparel-Group/data-orchestration-sub002/config"
	"github.com/Active-Apparel-Group/data-orchestration-sub002/db"
)

// Batch is one unit of load work: rows sharing a table and column order.
type Batch struct {
	Table   string
	Columns []string
	Rows    [][]interface{}
}

// Progress tracks load progress with atomic counters.
type Progress struct {
	InsertedRows  atomic.Int64
	FailedRows    atomic.Int64
	FailedBatches atomic.Int64
	StartTime     time.Time
}

// Loader writes batches to the destination database using a worker pool.
type Loader struct {
	conn     *db.Connection
	pool     pond.Pool
	progress *Progress
	cfg      *config.Config
	log      *zap.SugaredLogger
}

// NewLoader creates a loader with maxWorkers concurrent writers.
func NewLoader(conn *db.Connection, maxWorkers int, cfg *config.Config, log *zap.SugaredLogger) *Loader {
	return &Loader{
		conn: conn,
		pool: pond.NewPool(maxWorkers, pond.WithQueueSize(maxWorkers*2000)),
		progress: &Progress{
			StartTime: time.Now(),
		},
		cfg: cfg,
		log: log,
	}
}

// Submit queues a batch insert.
func (l *Loader) Submit(batch Batch) {
	l.pool.SubmitErr(func() error {
		err := l.conn.InsertBatch(batch.Table, batch.Columns, batch.Rows)
		if err != nil {
			l.progress.FailedBatches.Add(1)
			l.progress.FailedRows.Add(int64(len(batch.Rows)))
			l.log.Errorw("batch insert failed",
				"table", batch.Table,
				"rows", len(batch.Rows),
				"error", err)
			return err
		}
		l.progress.InsertedRows.Add(int64(len(batch.Rows)))
		return nil
	})
}

// SubmitUpsert queues a single-row upsert keyed on keyCol.
func (l *Loader) SubmitUpsert(table, keyCol string, columns []string, data map[string]interface{}) {
	l.pool.SubmitErr(func() error {
		err := l.conn.UpsertRow(table, keyCol, columns, data)
		if err != nil {
			l.progress.FailedBatches.Add(1)
			l.progress.FailedRows.Add(1)
			l.log.Errorw("upsert failed",
				"table", table,
				"key", data[keyCol],
				"error", err)
			return err
		}
		l.progress.InsertedRows.Add(1)
		return nil
	})
}

// GetProgress returns the shared progress counters.
func (l *Loader) GetProgress() *Progress {
	return l.progress
}

// StopAndWait stops the worker pool and waits for all queued work to finish.
func (l *Loader) StopAndWait() {
	l.pool.StopAndWait()
}
