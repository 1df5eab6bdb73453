// Package queue persists subsplice jobs in SQLite and enforces their
// lifecycle.
//
// Each run of the pipeline is a Job moving through queued, planning,
// extracting and assembling before it lands in completed or failed. The Store
// owns the database connection, schema initialization, busy retries and the
// transition rules; callers never write Status directly.
//
// The database is job history rather than a work queue: runs are driven by
// the CLI, and ResetStuck marks jobs orphaned by a crash as failed on the next
// start. Schema changes bump schemaVersion in schema.go; users clear the
// database to adopt the new schema.
package queue
