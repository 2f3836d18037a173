// Package audit records an immutable trail of batch operations for
// compliance review. Every batch, whatever its outcome, produces one
// record capturing the operation id, tier, lock and emergency flags,
// engine set, per-file counts, and timing.
//
// Records are written asynchronously: the Recorder enqueues onto a
// buffered channel drained by a single worker, so a slow or locked
// database never blocks the batch pipeline. Two storage backends are
// provided, SQLite for production and an in-memory store for tests.
// A retention pruner deletes expired records on a cron schedule.
//
// # Usage
//
//	store, err := audit.NewSQLiteStore(audit.DefaultSQLiteConfig())
//	if err != nil {
//		return err
//	}
//	recorder := audit.NewRecorder(store, nil)
//	defer recorder.Close()
//
//	recorder.Record(&audit.Record{
//		OperationID: result.OperationID,
//		Operation:   "redact",
//		Tier:        result.Tier,
//	})
package audit
