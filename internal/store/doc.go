// Package store persists resolution runs in SQLite so that two resolutions
// of the same workspace can be compared later.
//
// A run records the graph it was computed from (name, path and content
// fingerprint) and one TargetReport per resolved target. Reports are stored
// as canonical JSON, so identical resolutions produce identical rows.
//
// # Database Configuration
//
//   - journal_mode=WAL: readers proceed while a run is being saved
//   - synchronous=NORMAL
//   - busy_timeout=5000: lock waits give up after 5 seconds
//   - foreign_keys=ON: deleting a run deletes its target reports
//
// Runs are ordered by an autoincrement seq column. Timestamps are recorded
// for display only.
package store
