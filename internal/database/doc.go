// Package database provides SQLite-based storage for paperstat.
//
// This package implements the SnapshotDB, which stores the raw analysis
// payloads fetched from the survey backend. Snapshots make it possible to
// rerun statistics and exports offline and to see how a survey's answers
// developed over time.
//
// We use SQLite via modernc.org/sqlite: the database is a single file and
// the driver is CGO-free, so the binary cross-compiles.
//
// Identical payloads are detected by their SHA3-256 digest and stored once.
package database
