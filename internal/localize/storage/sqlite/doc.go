// Package sqlite persists localization cycle results for replay analysis.
//
// The schema is owned by the embedded migrations; callers open the
// database, call Migrate once, and then write through CycleStore.
package sqlite
