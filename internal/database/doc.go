// Package database provides SQLite-based storage of analysis history.
//
// Each saved analysis keeps headline totals in queryable columns plus the
// full report as JSON, so past results can be listed quickly and re-rendered
// exactly. The database lives in the user's XDG data directory by default.
package database
